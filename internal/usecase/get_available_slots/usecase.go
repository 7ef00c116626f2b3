package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	slotCache "github.com/m04kA/SPA-BookingService/internal/infra/cache/slots"
	employeeRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/employee"
	"github.com/m04kA/SPA-BookingService/pkg/metrics"
	"github.com/m04kA/SPA-BookingService/pkg/retry"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// Settings правила бронирования из конфигурации
type Settings struct {
	DefaultSlotMinutes int
	MinNoticeMinutes   int
	AdvanceBookingDays int // 0 = без ограничений
}

// UseCase use case для получения свободных слотов мастера
type UseCase struct {
	employeeRepo    EmployeeRepository
	overrideRepo    OverrideRepository
	reservationRepo ReservationRepository
	cache           SlotCache
	metrics         Metrics
	settings        Settings
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	employeeRepo EmployeeRepository,
	overrideRepo OverrideRepository,
	reservationRepo ReservationRepository,
	cache SlotCache,
	metrics Metrics,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.DefaultSlotMinutes <= 0 {
		settings.DefaultSlotMinutes = domain.DefaultSlotDurationMinutes
	}
	return &UseCase{
		employeeRepo:    employeeRepo,
		overrideRepo:    overrideRepo,
		reservationRepo: reservationRepo,
		cache:           cache,
		metrics:         metrics,
		settings:        settings,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных (до любых обращений к хранилищу)
	slotLength, err := uc.validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	date := domain.DateOnly(req.Date)
	uc.logger.Info("GetAvailableSlots: employee=%d, date=%s, slotLength=%d",
		req.EmployeeID, date.Format(domain.DateFormat), slotLength)

	// 2. Проверяем горизонт бронирования
	now := uc.timeProvider.Now()
	if uc.settings.AdvanceBookingDays > 0 &&
		date.After(domain.DateOnly(now).AddDate(0, 0, uc.settings.AdvanceBookingDays)) {
		return nil, fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, uc.settings.AdvanceBookingDays)
	}

	// 3. Получаем мастера (неизвестный или неактивный мастер = 404 для любой даты)
	employee, err := uc.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	// 4. Прошедшая дата: слотов нет
	if isDateInPast(date, now) {
		uc.logger.Info("GetAvailableSlots: date %s is in the past", date.Format(domain.DateFormat))
		return uc.response(req.EmployeeID, date, slotLength, []domain.Interval{}), nil
	}

	// 5. Считаем слоты (из кэша или из хранилища)
	slots, err := uc.freeSlots(ctx, employee, date, slotLength)
	if err != nil {
		return nil, err
	}

	// 6. Для сегодняшней даты убираем слоты ближе minNotice
	if domain.SameDate(date, now) {
		minStart, err := types.NewTimeString(now).AddMinutes(uc.settings.MinNoticeMinutes)
		if err != nil {
			// now + notice за пределами дня: сегодня бронировать уже нечего
			slots = []domain.Interval{}
		} else {
			slots = filterNotBefore(slots, minStart)
		}
	}

	uc.logger.Info("GetAvailableSlots: %d free slots for employee=%d, date=%s",
		len(slots), req.EmployeeID, date.Format(domain.DateFormat))

	return uc.response(req.EmployeeID, date, slotLength, slots), nil
}

func (uc *UseCase) validateRequest(req *Request) (int, error) {
	if req.EmployeeID <= 0 {
		return 0, fmt.Errorf("%w: employeeID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return 0, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	slotLength := uc.settings.DefaultSlotMinutes
	if req.SlotLength != nil {
		slotLength = *req.SlotLength
	}
	if slotLength <= 0 || slotLength > domain.MaxSlotDurationMinutes {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSlotLength, slotLength)
	}

	return slotLength, nil
}

// activeEmployee получает мастера с одним повтором при временной ошибке хранилища
func (uc *UseCase) activeEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	var employee *domain.Employee
	err := retry.Once(ctx, func(ctx context.Context) error {
		var err error
		employee, err = uc.employeeRepo.GetByID(ctx, employeeID)
		return err
	})
	if err != nil {
		if errors.Is(err, employeeRepo.ErrEmployeeNotFound) {
			uc.logger.Warn("GetAvailableSlots: employee id=%d not found", employeeID)
			return nil, ErrEmployeeNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get employee id=%d: %v", employeeID, err)
		return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
	}
	if !employee.IsActive {
		uc.logger.Warn("GetAvailableSlots: employee id=%d is inactive", employeeID)
		return nil, ErrEmployeeNotFound
	}
	return employee, nil
}

// freeSlots возвращает не зависящие от времени свободные слоты.
// Ошибки кэша логируются и не прерывают запрос.
func (uc *UseCase) freeSlots(ctx context.Context, employee *domain.Employee, date time.Time, slotLength int) ([]domain.Interval, error) {
	employeeID := employee.ID

	cached, err := uc.cache.Get(ctx, employeeID, date, slotLength)
	switch {
	case err == nil:
		uc.metrics.RecordSlotCache(metrics.CacheHit)
		return cached, nil
	case errors.Is(err, slotCache.ErrCacheMiss):
		uc.metrics.RecordSlotCache(metrics.CacheMiss)
	default:
		uc.metrics.RecordSlotCache(metrics.CacheError)
		uc.logger.Warn("GetAvailableSlots: cache get failed, computing from storage: %v", err)
	}

	// Поколение берём до чтения хранилища: инвалидация во время чтения
	// сдвинет его, и посчитанный результат не попадёт в кэш
	gen, genErr := uc.cache.Generation(ctx, employeeID, date)
	if genErr != nil {
		uc.logger.Warn("GetAvailableSlots: cache generation unavailable, result will not be cached: %v", genErr)
	}

	// Получаем переопределения
	var overrides []*domain.AvailabilityOverride
	err = retry.Once(ctx, func(ctx context.Context) error {
		var err error
		overrides, err = uc.overrideRepo.GetByEmployeeAndDate(ctx, employeeID, date)
		return err
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get overrides: %v", err)
		return nil, fmt.Errorf("%w: failed to get overrides: %v", ErrInternal, err)
	}

	// Получаем активные бронирования
	var reservations []*domain.Reservation
	err = retry.Once(ctx, func(ctx context.Context) error {
		var err error
		reservations, err = uc.reservationRepo.GetActiveByEmployeeAndDate(ctx, employeeID, date)
		return err
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
	}

	slots, err := computeFreeSlots(employee.Schedule, date, overrides, reservations, slotLength)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		err := uc.cache.Set(ctx, employeeID, date, slotLength, gen, slots)
		switch {
		case err == nil:
		case errors.Is(err, slotCache.ErrStaleGeneration):
			uc.logger.Info("GetAvailableSlots: slots for employee=%d, date=%s invalidated during read, not cached",
				employeeID, date.Format(domain.DateFormat))
		default:
			uc.logger.Warn("GetAvailableSlots: cache set failed: %v", err)
		}
	}

	return slots, nil
}

func (uc *UseCase) response(employeeID int64, date time.Time, slotLength int, slots []domain.Interval) *Response {
	result := make([]Slot, 0, len(slots))
	for _, s := range slots {
		result = append(result, Slot{Start: s.Start, End: s.End})
	}
	return &Response{
		EmployeeID: employeeID,
		Date:       date,
		SlotLength: slotLength,
		Slots:      result,
	}
}
