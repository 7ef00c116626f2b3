package overrides

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	employeeRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/employee"
	overrideRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/override"
	"github.com/m04kA/SPA-BookingService/internal/service/overrides/models"
	"github.com/m04kA/SPA-BookingService/pkg/retry"
)

// Service сервис блокировок и дополнительных интервалов мастера
type Service struct {
	overrideRepo OverrideRepository
	locker       DayLocker
	employeeRepo EmployeeRepository
	txManager    TransactionManager
	cache        SlotCache
	logger       Logger
}

// NewService создает новый экземпляр сервиса переопределений
func NewService(
	overrideRepo OverrideRepository,
	locker DayLocker,
	employeeRepo EmployeeRepository,
	txManager TransactionManager,
	cache SlotCache,
	logger Logger,
) *Service {
	return &Service{
		overrideRepo: overrideRepo,
		locker:       locker,
		employeeRepo: employeeRepo,
		txManager:    txManager,
		cache:        cache,
		logger:       logger,
	}
}

// Create создает переопределение расписания
// Доступно только сотрудникам. Пересечение с переопределением противоположного
// знака на ту же дату отклоняется как конфликт.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req *models.CreateOverrideRequest) (*models.OverrideResponse, error) {
	s.logger.Info("Create: creating override for employee=%d, date=%s, %s-%s, available=%t by user=%d",
		req.EmployeeID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime, req.Available, actor.UserID)

	// 1. Проверяем права доступа
	if !actor.IsStaff() {
		s.logger.Warn("Create: user=%d is not staff", actor.UserID)
		return nil, ErrAccessDenied
	}

	// 2. Валидируем входные данные
	if req.EmployeeID <= 0 {
		return nil, fmt.Errorf("%w: employeeID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.Reason != nil && len(*req.Reason) > domain.MaxOverrideReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxOverrideReasonLength)
	}
	interval, err := domain.NewInterval(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		s.logger.Warn("Create: invalid interval: %v", err)
		return nil, err
	}

	// 3. Проверяем, что мастер существует и активен
	var employee *domain.Employee
	err = retry.Once(ctx, func(ctx context.Context) error {
		var err error
		employee, err = s.employeeRepo.GetByID(ctx, req.EmployeeID)
		return err
	})
	if err != nil {
		if errors.Is(err, employeeRepo.ErrEmployeeNotFound) {
			s.logger.Warn("Create: employee id=%d not found", req.EmployeeID)
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("Create: failed to get employee id=%d: %v", req.EmployeeID, err)
		return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
	}
	if !employee.IsActive {
		s.logger.Warn("Create: employee id=%d is inactive", req.EmployeeID)
		return nil, ErrEmployeeNotFound
	}

	candidate := &domain.AvailabilityOverride{
		EmployeeID: req.EmployeeID,
		Interval:   interval,
		Available:  req.Available,
		Reason:     req.Reason,
	}

	var created *domain.AvailabilityOverride

	// 4. Под блокировкой дня проверяем конфликт полярности и сохраняем
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.locker.LockEmployeeDay(txCtx, req.EmployeeID, interval.Date); err != nil {
			s.logger.Error("Create: failed to lock employee day: %v", err)
			return fmt.Errorf("%w: failed to lock employee day: %v", ErrInternal, err)
		}

		existing, err := s.overrideRepo.GetByEmployeeAndDate(txCtx, req.EmployeeID, interval.Date)
		if err != nil {
			s.logger.Error("Create: failed to get overrides: %v", err)
			return fmt.Errorf("%w: failed to get overrides: %v", ErrInternal, err)
		}

		for _, o := range existing {
			if candidate.ConflictsWith(o) {
				s.logger.Warn("Create: interval %s conflicts with override id=%d", interval, o.ID)
				return fmt.Errorf("%w: override id=%d", domain.ErrOverrideConflict, o.ID)
			}
		}

		created, err = s.overrideRepo.Create(txCtx, candidate)
		if err != nil {
			s.logger.Error("Create: repository error: %v", err)
			return fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if domain.KindOf(err) == nil {
			s.logger.Error("Create: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
		}
		return nil, err
	}

	s.invalidate(ctx, "Create", created)

	s.logger.Info("Create: successfully created override id=%d", created.ID)
	return models.FromDomainOverride(created), nil
}

// Delete удаляет переопределение
// Доступно только сотрудникам
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	s.logger.Info("Delete: deleting override id=%d by user=%d", id, actor.UserID)

	if !actor.IsStaff() {
		s.logger.Warn("Delete: user=%d is not staff", actor.UserID)
		return ErrAccessDenied
	}
	if id <= 0 {
		return fmt.Errorf("%w: overrideID must be positive", ErrInvalidInput)
	}

	var override *domain.AvailabilityOverride
	err := retry.Once(ctx, func(ctx context.Context) error {
		var err error
		override, err = s.overrideRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, overrideRepo.ErrOverrideNotFound) {
			s.logger.Warn("Delete: override id=%d not found", id)
			return ErrOverrideNotFound
		}
		s.logger.Error("Delete: repository error for override id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	if err := s.overrideRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, overrideRepo.ErrOverrideNotFound) {
			s.logger.Warn("Delete: override id=%d already deleted", id)
			return ErrOverrideNotFound
		}
		s.logger.Error("Delete: repository error for override id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.invalidate(ctx, "Delete", override)

	s.logger.Info("Delete: successfully deleted override id=%d", id)
	return nil
}

// List получает переопределения мастера за период
// Доступно только сотрудникам
func (s *Service) List(ctx context.Context, actor domain.Actor, req *models.ListOverridesRequest) (*models.OverrideListResponse, error) {
	s.logger.Info("List: fetching overrides for employee=%d by user=%d", req.EmployeeID, actor.UserID)

	if !actor.IsStaff() {
		s.logger.Warn("List: user=%d is not staff", actor.UserID)
		return nil, ErrAccessDenied
	}
	if req.EmployeeID <= 0 {
		return nil, fmt.Errorf("%w: employeeID must be positive", ErrInvalidInput)
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, fmt.Errorf("%w: to is before from", ErrInvalidInput)
	}

	filter := domain.OverridesFilter{EmployeeID: req.EmployeeID, From: req.From, To: req.To}

	var overrides []*domain.AvailabilityOverride
	err := retry.Once(ctx, func(ctx context.Context) error {
		var err error
		overrides, err = s.overrideRepo.GetByFilter(ctx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("List: repository error for employee=%d: %v", req.EmployeeID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d overrides for employee=%d", len(overrides), req.EmployeeID)
	return models.FromDomainOverrideList(overrides), nil
}

func (s *Service) invalidate(ctx context.Context, method string, o *domain.AvailabilityOverride) {
	if err := s.cache.Invalidate(ctx, o.EmployeeID, o.Interval.Date); err != nil {
		s.logger.Warn("%s: failed to invalidate slot cache: %v", method, err)
	}
}
