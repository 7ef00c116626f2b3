package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	catalogRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/catalog"
	employeeRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/employee"
	reservationRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/reservation"
	"github.com/m04kA/SPA-BookingService/pkg/metrics"
	"github.com/m04kA/SPA-BookingService/pkg/retry"
)

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	overrideRepo    OverrideRepository
	employeeRepo    EmployeeRepository
	catalog         ServiceCatalog
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
	catalog ServiceCatalog,
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
		catalog:         catalog,
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

// Execute выполняет use case создания бронирования.
// Проверка пересечений и вставка выполняются в одной транзакции под advisory-блокировкой
// на пару (мастер, дата), поэтому два пересекающихся бронирования не могут быть зафиксированы оба.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Reservation, error) {
	uc.logger.Info("CreateBooking: user=%d, employee=%d, service=%d, date=%s, time=%s",
		req.UserID, req.EmployeeID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем дату и время относительно текущего момента
	if err := uc.rules.CheckTime(req.Date, req.StartTime, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("CreateBooking: booking time rejected: %v", err)
		return nil, err
	}

	// 3. Получаем услугу
	var service *domain.Service
	err := retry.Once(ctx, func(ctx context.Context) error {
		var err error
		service, err = uc.catalog.GetByID(ctx, req.ServiceID)
		return err
	})
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 4. Вычисляем интервал: end = start + duration
	interval, err := domain.BookingInterval(req.Date, req.StartTime, service.DurationMinutes)
	if err != nil {
		uc.logger.Warn("CreateBooking: invalid interval: %v", err)
		return nil, err
	}

	// 5. Получаем мастера
	var employee *domain.Employee
	err = retry.Once(ctx, func(ctx context.Context) error {
		var err error
		employee, err = uc.employeeRepo.GetByID(ctx, req.EmployeeID)
		return err
	})
	if err != nil {
		if errors.Is(err, employeeRepo.ErrEmployeeNotFound) {
			uc.logger.Warn("CreateBooking: employee id=%d not found", req.EmployeeID)
			return nil, ErrEmployeeNotFound
		}
		uc.logger.Error("CreateBooking: failed to get employee id=%d: %v", req.EmployeeID, err)
		return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
	}
	if !employee.IsActive {
		uc.logger.Warn("CreateBooking: employee id=%d is inactive", req.EmployeeID)
		return nil, ErrEmployeeNotFound
	}

	var result *domain.Reservation

	// 6. Транзакция с ограничением по времени: при таймауте откатывается целиком
	txCtx, cancel := uc.withTxTimeout(ctx)
	defer cancel()

	err = uc.txManager.Do(txCtx, func(txCtx context.Context) error {
		// 6.1. Сериализуем всех писателей для пары (мастер, дата)
		if err := uc.reservationRepo.LockEmployeeDay(txCtx, req.EmployeeID, interval.Date); err != nil {
			uc.logger.Error("CreateBooking: failed to lock employee day: %v", err)
			return fmt.Errorf("%w: failed to lock employee day: %v", ErrInternal, err)
		}

		// 6.2. Переопределения расписания на дату
		overrides, err := uc.overrideRepo.GetByEmployeeAndDate(txCtx, req.EmployeeID, interval.Date)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get overrides: %v", err)
			return fmt.Errorf("%w: failed to get overrides: %v", ErrInternal, err)
		}

		// 6.3. Активные бронирования внутри транзакции (FOR UPDATE)
		reservations, err := uc.reservationRepo.GetActiveByEmployeeAndDate(txCtx, req.EmployeeID, interval.Date)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get reservations: %v", err)
			return fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
		}

		// 6.4. Интервал должен быть в рабочем времени и не пересекаться с бронированиями
		if err := domain.CheckAvailability(employee.Schedule, interval, overrides, reservations, 0); err != nil {
			if errors.Is(err, domain.ErrIntervalTaken) {
				uc.logger.Warn("CreateBooking: interval %s overlaps an active reservation", interval)
				return ErrSlotNotAvailable
			}
			uc.logger.Warn("CreateBooking: interval %s rejected: %v", interval, err)
			return err
		}

		// 6.5. Создаём бронирование в статусе pending с денормализацией
		created, err := uc.reservationRepo.Create(txCtx, &domain.Reservation{
			UserID:          req.UserID,
			EmployeeID:      req.EmployeeID,
			ServiceID:       req.ServiceID,
			Date:            interval.Date,
			StartTime:       interval.Start,
			EndTime:         interval.End,
			Status:          domain.StatusPending,
			Price:           service.Price,
			Notes:           req.Notes,
			EmployeeName:    employee.Name,
			ServiceName:     service.Name,
			DurationMinutes: service.DurationMinutes,
		})
		if err != nil {
			if errors.Is(err, reservationRepo.ErrOverlap) {
				uc.logger.Warn("CreateBooking: storage rejected overlapping interval %s", interval)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateBooking: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
		}

		result = created
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.metrics.RecordReservation(metrics.OutcomeConflict)
			return nil, err
		}
		if domain.KindOf(err) == nil {
			// Ошибки begin/commit и истёкший таймаут транзакции
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created reservation id=%d", result.ID)

	// 7. Побочные эффекты после коммита не влияют на результат
	uc.afterCommit(ctx, result)

	return result, nil
}

func (uc *UseCase) withTxTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.txTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.txTimeout)
}

func (uc *UseCase) afterCommit(ctx context.Context, r *domain.Reservation) {
	uc.metrics.RecordReservation(metrics.OutcomeCreated)

	if err := uc.cache.Invalidate(ctx, r.EmployeeID, r.Date); err != nil {
		uc.logger.Warn("CreateBooking: failed to invalidate slot cache: %v", err)
	}

	event := domain.NewReservationEvent(domain.ActionCreated, r, uc.timeProvider.Now())
	if err := uc.sink.Publish(ctx, event); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish notification: %v", err)
	}
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.EmployeeID <= 0 {
		return fmt.Errorf("%w: employeeID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}
