package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	employeeRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/employee"
	reservationRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/reservation"
	"github.com/m04kA/SPA-BookingService/pkg/metrics"
	"github.com/m04kA/SPA-BookingService/pkg/retry"
)

// UseCase use case для переноса активного бронирования на другой интервал
type UseCase struct {
	reservationRepo ReservationRepository
	overrideRepo    OverrideRepository
	employeeRepo    EmployeeRepository
	txManager       TransactionManager
	cache           SlotCache
	sink            NotificationSink
	metrics         Metrics
	rules           domain.BookingRules
	txTimeout       time.Duration
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	overrideRepo OverrideRepository,
	employeeRepo EmployeeRepository,
	txManager TransactionManager,
	cache SlotCache,
	sink NotificationSink,
	metrics Metrics,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		overrideRepo:    overrideRepo,
		employeeRepo:    employeeRepo,
		txManager:       txManager,
		cache:           cache,
		sink:            sink,
		metrics:         metrics,
		rules: domain.BookingRules{
			MinNoticeMinutes:   settings.MinNoticeMinutes,
			AdvanceBookingDays: settings.AdvanceBookingDays,
		},
		txTimeout:    settings.TxTimeout,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute переносит бронирование. Длительность сохраняется,
// проверка пересечений исключает само переносимое бронирование.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Reservation, error) {
	uc.logger.Info("RescheduleBooking: reservation=%d, actor=%d, date=%s, time=%s",
		req.ReservationID, req.Actor.UserID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if req.ReservationID <= 0 {
		return nil, fmt.Errorf("%w: reservationID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// 2. Проверяем новую дату и время относительно текущего момента
	if err := uc.rules.CheckTime(req.Date, req.StartTime, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("RescheduleBooking: booking time rejected: %v", err)
		return nil, err
	}

	// 3. Получаем текущее бронирование и проверяем права
	var current *domain.Reservation
	err := retry.Once(ctx, func(ctx context.Context) error {
		var err error
		current, err = uc.reservationRepo.GetByID(ctx, req.ReservationID)
		return err
	})
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			uc.logger.Warn("RescheduleBooking: reservation id=%d not found", req.ReservationID)
			return nil, ErrReservationNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get reservation id=%d: %v", req.ReservationID, err)
		return nil, fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
	}

	if !req.Actor.CanAccess(current) {
		uc.logger.Warn("RescheduleBooking: access denied for user=%d to reservation id=%d", req.Actor.UserID, current.ID)
		return nil, ErrAccessDenied
	}

	if !current.CanBeRescheduled() {
		uc.logger.Warn("RescheduleBooking: reservation id=%d has status %s", current.ID, current.Status)
		return nil, fmt.Errorf("%w: status %s", domain.ErrNotActive, current.Status)
	}

	// 4. Новый интервал с прежней длительностью
	interval, err := domain.BookingInterval(req.Date, req.StartTime, current.Interval().Minutes())
	if err != nil {
		uc.logger.Warn("RescheduleBooking: invalid interval: %v", err)
		return nil, err
	}

	// 5. Получаем расписание мастера
	var employee *domain.Employee
	err = retry.Once(ctx, func(ctx context.Context) error {
		var err error
		employee, err = uc.employeeRepo.GetByID(ctx, current.EmployeeID)
		return err
	})
	if err != nil {
		if errors.Is(err, employeeRepo.ErrEmployeeNotFound) {
			return nil, ErrEmployeeNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get employee id=%d: %v", current.EmployeeID, err)
		return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
	}
	if !employee.IsActive {
		uc.logger.Warn("RescheduleBooking: employee id=%d is inactive", current.EmployeeID)
		return nil, ErrEmployeeNotFound
	}

	// 6. Транзакция: блокировка нового дня, перепроверка и обновление
	txCtx, cancel := uc.withTxTimeout(ctx)
	defer cancel()

	err = uc.txManager.Do(txCtx, func(txCtx context.Context) error {
		// 6.1. Сериализуем писателей для (мастер, новая дата)
		if err := uc.reservationRepo.LockEmployeeDay(txCtx, current.EmployeeID, interval.Date); err != nil {
			uc.logger.Error("RescheduleBooking: failed to lock employee day: %v", err)
			return fmt.Errorf("%w: failed to lock employee day: %v", ErrInternal, err)
		}

		// 6.2. Переопределения на новую дату
		overrides, err := uc.overrideRepo.GetByEmployeeAndDate(txCtx, current.EmployeeID, interval.Date)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to get overrides: %v", err)
			return fmt.Errorf("%w: failed to get overrides: %v", ErrInternal, err)
		}

		// 6.3. Активные бронирования на новую дату (FOR UPDATE)
		reservations, err := uc.reservationRepo.GetActiveByEmployeeAndDate(txCtx, current.EmployeeID, interval.Date)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to get reservations: %v", err)
			return fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
		}

		// 6.4. Та же проверка, что при создании, без самого бронирования
		if err := domain.CheckAvailability(employee.Schedule, interval, overrides, reservations, current.ID); err != nil {
			if errors.Is(err, domain.ErrIntervalTaken) {
				uc.logger.Warn("RescheduleBooking: interval %s overlaps an active reservation", interval)
				return ErrSlotNotAvailable
			}
			uc.logger.Warn("RescheduleBooking: interval %s rejected: %v", interval, err)
			return err
		}

		// 6.5. Обновляем интервал (только если бронирование всё ещё активно)
		if err := uc.reservationRepo.Reschedule(txCtx, current.ID, interval); err != nil {
			switch {
			case errors.Is(err, reservationRepo.ErrOverlap):
				return ErrSlotNotAvailable
			case errors.Is(err, reservationRepo.ErrStatusChanged):
				uc.logger.Warn("RescheduleBooking: reservation id=%d changed concurrently", current.ID)
				return fmt.Errorf("%w: reservation changed concurrently", domain.ErrNotActive)
			default:
				uc.logger.Error("RescheduleBooking: failed to update reservation: %v", err)
				return fmt.Errorf("%w: failed to update reservation: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.metrics.RecordReservation(metrics.OutcomeConflict)
			return nil, err
		}
		if domain.KindOf(err) == nil {
			uc.logger.Error("RescheduleBooking: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
		}
		return nil, err
	}

	now := uc.timeProvider.Now()
	updated := *current
	updated.Date = interval.Date
	updated.StartTime = interval.Start
	updated.EndTime = interval.End
	updated.UpdatedAt = now

	uc.logger.Info("RescheduleBooking: reservation id=%d moved from %s to %s", current.ID, current.Interval(), interval)

	// 7. Инвалидируем кэш для старой и новой даты, публикуем событие
	uc.metrics.RecordReservation(metrics.OutcomeRescheduled)
	for _, date := range uniqueDates(current.Interval().Date, interval.Date) {
		if err := uc.cache.Invalidate(ctx, current.EmployeeID, date); err != nil {
			uc.logger.Warn("RescheduleBooking: failed to invalidate slot cache: %v", err)
		}
	}
	if err := uc.sink.Publish(ctx, domain.NewReservationEvent(domain.ActionRescheduled, &updated, now)); err != nil {
		uc.logger.Warn("RescheduleBooking: failed to publish notification: %v", err)
	}

	return &updated, nil
}

func (uc *UseCase) withTxTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.txTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.txTimeout)
}

func uniqueDates(from, to time.Time) []time.Time {
	if domain.SameDate(from, to) {
		return []time.Time{to}
	}
	return []time.Time{from, to}
}
