package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	reservationRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/reservation"
	"github.com/m04kA/SPA-BookingService/internal/service/reservations/models"
	"github.com/m04kA/SPA-BookingService/pkg/metrics"
	"github.com/m04kA/SPA-BookingService/pkg/retry"
)

// Service сервис для чтения бронирований и смены их статуса
type Service struct {
	reservationRepo ReservationRepository
	cache           SlotCache
	sink            NotificationSink
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	cache SlotCache,
	sink NotificationSink,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		cache:           cache,
		sink:            sink,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID
// Видеть бронирование может владелец или сотрудник салона
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, actor.UserID)

	reservation, err := s.getReservation(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(reservation) {
		s.logger.Warn("GetByID: access denied for user=%d to reservation id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainReservation(reservation), nil
}

// ListByUser получает историю бронирований пользователя
// Клиент видит только свои бронирования, сотрудник - любые
func (s *Service) ListByUser(ctx context.Context, actor domain.Actor, req *models.GetUserReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("ListByUser: fetching reservations for user=%d, status=%v", req.UserID, req.Status)

	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if actor.UserID != req.UserID && !actor.IsStaff() {
		s.logger.Warn("ListByUser: user=%d cannot list reservations of user=%d", actor.UserID, req.UserID)
		return nil, ErrAccessDenied
	}

	var status *domain.ReservationStatus
	if req.Status != nil {
		parsed, err := domain.ParseReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("ListByUser: invalid status=%s", *req.Status)
			return nil, err
		}
		status = &parsed
	}

	var reservations []*domain.Reservation
	err := retry.Once(ctx, func(ctx context.Context) error {
		var err error
		reservations, err = s.reservationRepo.GetByUserID(ctx, req.UserID, status)
		return err
	})
	if err != nil {
		s.logger.Error("ListByUser: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: ListByUser - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByUser: fetched %d reservations for user=%d", len(reservations), req.UserID)
	return models.FromDomainReservationList(reservations), nil
}

// ListByEmployee получает бронирования мастера с фильтрацией по периоду и статусу
// Доступно только сотрудникам
func (s *Service) ListByEmployee(ctx context.Context, actor domain.Actor, req *models.GetEmployeeReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("ListByEmployee: fetching reservations for employee=%d by user=%d", req.EmployeeID, actor.UserID)

	if !actor.IsStaff() {
		s.logger.Warn("ListByEmployee: user=%d is not staff", actor.UserID)
		return nil, ErrAccessDenied
	}

	if req.EmployeeID <= 0 {
		return nil, fmt.Errorf("%w: employeeID must be positive", ErrInvalidInput)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListByEmployee: invalid filter for employee=%d: %v", req.EmployeeID, err)
		return nil, err
	}

	var reservations []*domain.Reservation
	err = retry.Once(ctx, func(ctx context.Context) error {
		var err error
		reservations, err = s.reservationRepo.GetByEmployeeWithFilter(ctx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("ListByEmployee: repository error for employee=%d: %v", req.EmployeeID, err)
		return nil, fmt.Errorf("%w: ListByEmployee - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByEmployee: fetched %d reservations for employee=%d", len(reservations), req.EmployeeID)
	return models.FromDomainReservationList(reservations), nil
}

// UpdateStatus переводит бронирование в новый статус по машине состояний
// Доступно только сотрудникам. Перевод в cancelled выполняется как отмена без причины.
func (s *Service) UpdateStatus(ctx context.Context, id int64, actor domain.Actor, req *models.UpdateStatusRequest) (*models.ReservationResponse, error) {
	s.logger.Info("UpdateStatus: updating reservation id=%d to status=%s by user=%d", id, req.Status, actor.UserID)

	if !actor.IsStaff() {
		s.logger.Warn("UpdateStatus: user=%d is not staff", actor.UserID)
		return nil, ErrAccessDenied
	}

	next, err := domain.ParseReservationStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for reservation id=%d", req.Status, id)
		return nil, err
	}

	if next == domain.StatusCancelled {
		return s.Cancel(ctx, id, actor, &models.CancelReservationRequest{})
	}

	reservation, err := s.getReservation(ctx, "UpdateStatus", id)
	if err != nil {
		return nil, err
	}

	if !reservation.Status.CanTransitionTo(next) {
		s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for reservation id=%d", reservation.Status, next, id)
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, reservation.Status, next)
	}

	// Обновление условное: если статус успели поменять, строк не будет
	if err := s.reservationRepo.UpdateStatus(ctx, id, reservation.Status, next); err != nil {
		if errors.Is(err, reservationRepo.ErrStatusChanged) {
			s.logger.Warn("UpdateStatus: reservation id=%d changed concurrently", id)
			s.metrics.RecordReservation(metrics.OutcomeConflict)
			return nil, ErrStatusChanged
		}
		s.logger.Error("UpdateStatus: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	updated := *reservation
	updated.Status = next
	updated.UpdatedAt = s.timeProvider.Now()

	s.logger.Info("UpdateStatus: reservation id=%d moved to status=%s", id, next)
	s.afterWrite(ctx, "UpdateStatus", domain.ActionStatusChanged, metrics.OutcomeStatusChanged, &updated)

	return models.FromDomainReservation(&updated), nil
}

// Cancel отменяет бронирование
// Отменить может владелец или сотрудник, только в статусах pending и confirmed
func (s *Service) Cancel(ctx context.Context, id int64, actor domain.Actor, req *models.CancelReservationRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d by user=%d", id, actor.UserID)

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	reservation, err := s.getReservation(ctx, "Cancel", id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(reservation) {
		s.logger.Warn("Cancel: access denied for user=%d to reservation id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	if !reservation.CanBeCancelled() {
		s.logger.Warn("Cancel: reservation id=%d cannot be cancelled, status=%s", id, reservation.Status)
		return nil, ErrCannotCancel
	}

	if err := s.reservationRepo.Cancel(ctx, id, reservation.Status, req.Reason); err != nil {
		if errors.Is(err, reservationRepo.ErrStatusChanged) {
			s.logger.Warn("Cancel: reservation id=%d changed concurrently", id)
			s.metrics.RecordReservation(metrics.OutcomeConflict)
			return nil, ErrStatusChanged
		}
		s.logger.Error("Cancel: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	updated := *reservation
	updated.Status = domain.StatusCancelled
	updated.CancellationReason = req.Reason
	updated.CancelledAt = &now
	updated.UpdatedAt = now

	s.logger.Info("Cancel: successfully cancelled reservation id=%d", id)
	s.afterWrite(ctx, "Cancel", domain.ActionCancelled, metrics.OutcomeCancelled, &updated)

	return models.FromDomainReservation(&updated), nil
}

// Вспомогательные методы

func (s *Service) getReservation(ctx context.Context, method string, id int64) (*domain.Reservation, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: reservationID must be positive", ErrInvalidInput)
	}

	var reservation *domain.Reservation
	err := retry.Once(ctx, func(ctx context.Context) error {
		var err error
		reservation, err = s.reservationRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", method, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}

	return reservation, nil
}

// afterWrite метрики, инвалидация кэша и событие; ошибки только логируются
func (s *Service) afterWrite(ctx context.Context, method string, action domain.ReservationAction, outcome string, r *domain.Reservation) {
	s.metrics.RecordReservation(outcome)

	if err := s.cache.Invalidate(ctx, r.EmployeeID, r.Date); err != nil {
		s.logger.Warn("%s: failed to invalidate slot cache: %v", method, err)
	}

	if err := s.sink.Publish(ctx, domain.NewReservationEvent(action, r, s.timeProvider.Now())); err != nil {
		s.logger.Warn("%s: failed to publish notification: %v", method, err)
	}
}
