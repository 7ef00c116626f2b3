package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/mq"
)

// ErrPublish возвращается, когда брокер не принял событие
var ErrPublish = errors.New("notification: failed to publish event")

// Sink публикует события о бронированиях в брокер.
// Вызывается после коммита, ошибки только логируются вызывающей стороной.
type Sink struct {
	broker  Broker
	timeout time.Duration
	log     Logger
}

func NewSink(broker Broker, timeout time.Duration, log Logger) *Sink {
	return &Sink{
		broker:  broker,
		timeout: timeout,
		log:     log,
	}
}

// Publish отправляет событие, ключ маршрутизации совпадает с action
func (s *Sink) Publish(ctx context.Context, event domain.ReservationEvent) error {
	msg := newMessage(uuid.NewString(), event)

	publishCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		publishCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.broker.Publish(publishCtx, msg.Action, envelope(msg, event)); err != nil {
		return fmt.Errorf("%w: action=%s reservation=%d: %v", ErrPublish, msg.Action, msg.ReservationID, err)
	}

	s.log.Info("Notification published: event=%s action=%s reservation=%d", msg.EventID, msg.Action, msg.ReservationID)
	return nil
}

// envelope заголовки дублируют ключевые поля, чтобы потребитель мог фильтровать без разбора тела
func envelope(msg Message, event domain.ReservationEvent) mq.Envelope {
	return mq.Envelope{
		MessageID:  msg.EventID,
		Type:       msg.Action,
		OccurredAt: event.OccurredAt,
		Headers: map[string]any{
			"reservation_id": msg.ReservationID,
			"employee_id":    msg.EmployeeID,
			"date":           msg.Date,
			"status":         msg.Status,
		},
		Body: msg,
	}
}

// LogSink пишет события в лог, когда брокер отключён
type LogSink struct {
	log Logger
}

func NewLogSink(log Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, event domain.ReservationEvent) error {
	r := event.Reservation
	s.log.Info("Notification (log only): action=%s reservation=%d employee=%d date=%s %s-%s status=%s",
		event.Action, r.ID, r.EmployeeID, r.Date.Format(domain.DateFormat), r.StartTime, r.EndTime, r.Status)
	return nil
}
