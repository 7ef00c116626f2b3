package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelReservationHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/cancel_reservation"
	createBookingHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/create_booking"
	createOverrideHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/create_override"
	deleteOverrideHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/delete_override"
	getAvailableSlotsHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/get_available_slots"
	getEmployeeReservationsHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/get_employee_reservations"
	getReservationHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/get_reservation"
	getUserReservationsHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/get_user_reservations"
	listOverridesHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/list_overrides"
	rescheduleBookingHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/reschedule_booking"
	updateReservationStatusHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/update_reservation_status"
	"github.com/m04kA/SPA-BookingService/internal/api/middleware"
	"github.com/m04kA/SPA-BookingService/internal/config"
	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/internal/infra/cache/slots"
	catalogRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/catalog"
	employeeRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/employee"
	"github.com/m04kA/SPA-BookingService/internal/infra/storage/migrations"
	overrideRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/override"
	reservationRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/reservation"
	"github.com/m04kA/SPA-BookingService/internal/integrations/notification"
	overridesService "github.com/m04kA/SPA-BookingService/internal/service/overrides"
	reservationsService "github.com/m04kA/SPA-BookingService/internal/service/reservations"
	createBookingUC "github.com/m04kA/SPA-BookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SPA-BookingService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/SPA-BookingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SPA-BookingService/pkg/dbmetrics"
	"github.com/m04kA/SPA-BookingService/pkg/logger"
	"github.com/m04kA/SPA-BookingService/pkg/metrics"
	"github.com/m04kA/SPA-BookingService/pkg/mq"
	"github.com/m04kA/SPA-BookingService/pkg/txmanager"
)

// slotCache кэш слотов, общий для чтения и инвалидации
type slotCache interface {
	Get(ctx context.Context, employeeID int64, date time.Time, slotLength int) ([]domain.Interval, error)
	Generation(ctx context.Context, employeeID int64, date time.Time) (int64, error)
	Set(ctx context.Context, employeeID int64, date time.Time, slotLength int, gen int64, slots []domain.Interval) error
	Invalidate(ctx context.Context, employeeID int64, date time.Time) error
}

type notificationSink interface {
	Publish(ctx context.Context, event domain.ReservationEvent) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SPA-BookingService...")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Run(db, log); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
	}

	// С nil метриками обёртка работает как обычный *sql.DB
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txManager := txmanager.NewTransactionManager(wrappedDB)

	// Кэш слотов
	var cache slotCache = slots.Nop{}
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			// Без кэша сервис продолжает работать, слоты считаются на каждый запрос
			log.Warn("Redis unavailable at %s, slot cache disabled: %v", cfg.Redis.Addr, err)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			cache = slots.NewCache(redisClient, time.Duration(cfg.Redis.SlotsTTLSeconds)*time.Second)
			log.Info("Slot cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.SlotsTTLSeconds)
		}
		cancel()
	}

	// Уведомления о бронированиях
	var sink notificationSink = notification.NewLogSink(log)
	var publisher *mq.Publisher
	if cfg.Notifications.Enabled {
		publisher, err = mq.NewPublisher(cfg.Notifications.AMQPURL, cfg.Notifications.Exchange)
		if err != nil {
			log.Warn("RabbitMQ unavailable, notifications are logged only: %v", err)
		} else {
			sink = notification.NewSink(
				publisher,
				time.Duration(cfg.Notifications.PublishTimeoutMs)*time.Millisecond,
				log,
			)
			log.Info("Notifications enabled (exchange=%s)", cfg.Notifications.Exchange)
		}
	}

	// Инициализируем репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	overrideRepository := overrideRepo.NewRepository(wrappedDB)
	employeeRepository := employeeRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)

	// Инициализируем use cases
	txTimeout := time.Duration(cfg.Booking.TxTimeoutSeconds) * time.Second

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		employeeRepository,
		overrideRepository,
		reservationRepository,
		cache,
		metricsCollector,
		getAvailableSlotsUC.Settings{
			DefaultSlotMinutes: cfg.Booking.DefaultSlotMinutes,
			MinNoticeMinutes:   cfg.Booking.MinNoticeMinutes,
			AdvanceBookingDays: cfg.Booking.AdvanceBookingDays,
		},
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		reservationRepository,
		overrideRepository,
		employeeRepository,
		catalogRepository,
		txManager,
		cache,
		sink,
		metricsCollector,
		createBookingUC.Settings{
			MinNoticeMinutes:   cfg.Booking.MinNoticeMinutes,
			AdvanceBookingDays: cfg.Booking.AdvanceBookingDays,
			TxTimeout:          txTimeout,
		},
		log,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		reservationRepository,
		overrideRepository,
		employeeRepository,
		txManager,
		cache,
		sink,
		metricsCollector,
		rescheduleBookingUC.Settings{
			MinNoticeMinutes:   cfg.Booking.MinNoticeMinutes,
			AdvanceBookingDays: cfg.Booking.AdvanceBookingDays,
			TxTimeout:          txTimeout,
		},
		log,
	)

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		cache,
		sink,
		metricsCollector,
		log,
	)
	overrideSvc := overridesService.NewService(
		overrideRepository,
		reservationRepository,
		employeeRepository,
		txManager,
		cache,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	updateReservationStatus := updateReservationStatusHandler.NewHandler(reservationSvc, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationSvc, log)
	getEmployeeReservations := getEmployeeReservationsHandler.NewHandler(reservationSvc, log)
	listOverrides := listOverridesHandler.NewHandler(overrideSvc, log)
	createOverride := createOverrideHandler.NewHandler(overrideSvc, log)
	deleteOverride := deleteOverrideHandler.NewHandler(overrideSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		log.Info("Rate limit enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты мастера на дату
	api.HandleFunc("/employees/{employeeId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/reservations", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/status", updateReservationStatus.Handle).Methods(http.MethodPatch)

	// История бронирований клиента
	protected.HandleFunc("/users/{userId}/reservations", getUserReservations.Handle).Methods(http.MethodGet)

	// --- Для персонала салона ---
	protected.HandleFunc("/employees/{employeeId}/reservations", getEmployeeReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/employees/{employeeId}/overrides", listOverrides.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/employees/{employeeId}/overrides", createOverride.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/overrides/{overrideId}", deleteOverride.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error("Failed to close RabbitMQ publisher: %v", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}
