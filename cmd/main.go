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

	cancelBookingHandler "github.com/m04kA/Turf-BookingService/internal/api/handlers/cancel_booking"
	createSlotsHandler "github.com/m04kA/Turf-BookingService/internal/api/handlers/create_slots"
	getAvailableSlotsHandler "github.com/m04kA/Turf-BookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/Turf-BookingService/internal/api/handlers/get_booking"
	getCancellationInfoHandler "github.com/m04kA/Turf-BookingService/internal/api/handlers/get_cancellation_info"
	getFacilityBookingsHandler "github.com/m04kA/Turf-BookingService/internal/api/handlers/get_facility_bookings"
	getUserBookingsHandler "github.com/m04kA/Turf-BookingService/internal/api/handlers/get_user_bookings"
	ownerCancelBookingHandler "github.com/m04kA/Turf-BookingService/internal/api/handlers/owner_cancel_booking"
	reserveSlotsHandler "github.com/m04kA/Turf-BookingService/internal/api/handlers/reserve_slots"
	verifyPaymentHandler "github.com/m04kA/Turf-BookingService/internal/api/handlers/verify_payment"
	"github.com/m04kA/Turf-BookingService/internal/api/middleware"
	"github.com/m04kA/Turf-BookingService/internal/config"
	"github.com/m04kA/Turf-BookingService/internal/holdsweeper"
	bookingRepo "github.com/m04kA/Turf-BookingService/internal/infra/storage/booking"
	earningsRepo "github.com/m04kA/Turf-BookingService/internal/infra/storage/earnings"
	slotRepo "github.com/m04kA/Turf-BookingService/internal/infra/storage/slot"
	facilityServiceClient "github.com/m04kA/Turf-BookingService/internal/integrations/facilityservice"
	notifierClient "github.com/m04kA/Turf-BookingService/internal/integrations/notifier"
	paymentGatewayClient "github.com/m04kA/Turf-BookingService/internal/integrations/paymentgw"
	bookingsService "github.com/m04kA/Turf-BookingService/internal/service/bookings"
	slotsService "github.com/m04kA/Turf-BookingService/internal/service/slots"
	cancelBookingUC "github.com/m04kA/Turf-BookingService/internal/usecase/cancel_booking"
	ownerCancelBookingUC "github.com/m04kA/Turf-BookingService/internal/usecase/owner_cancel_booking"
	reserveSlotsUC "github.com/m04kA/Turf-BookingService/internal/usecase/reserve_slots"
	verifyPaymentUC "github.com/m04kA/Turf-BookingService/internal/usecase/verify_payment"
	"github.com/m04kA/Turf-BookingService/pkg/dbmetrics"
	"github.com/m04kA/Turf-BookingService/pkg/logger"
	"github.com/m04kA/Turf-BookingService/pkg/metrics"
	"github.com/m04kA/Turf-BookingService/pkg/simpletxmanager"
	"github.com/m04kA/Turf-BookingService/pkg/txmanager"
)

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

	log.Info("Starting Turf-BookingService...")
	log.Info("Configuration loaded from config.toml")

	policy := cfg.Policy.ToDomain()

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Инициализируем интеграционных клиентов
	facilityClient := facilityServiceClient.NewClient(
		cfg.FacilityService.URL,
		time.Duration(cfg.FacilityService.Timeout)*time.Second,
		log,
	)
	gatewayClient := paymentGatewayClient.NewClient(
		cfg.PaymentGateway.URL,
		cfg.PaymentGateway.KeyID,
		cfg.PaymentGateway.Secret,
		cfg.PaymentGateway.Currency,
		time.Duration(cfg.PaymentGateway.Timeout)*time.Second,
		log,
	)
	notifyClient := notifierClient.NewClient(
		cfg.Notifier.URL,
		time.Duration(cfg.Notifier.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (FacilityService=%s, PaymentGateway=%s, Notifier=%s)",
		cfg.FacilityService.URL, cfg.PaymentGateway.URL, cfg.Notifier.URL)

	// Инициализируем репозитории (с метриками или без)
	var (
		slotRepository     *slotRepo.Repository
		bookingRepository  *bookingRepo.Repository
		earningsRepository *earningsRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		slotRepository = slotRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		earningsRepository = earningsRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		slotRepository = slotRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		earningsRepository = earningsRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	timeProvider := &reserveSlotsUC.RealTimeProvider{}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		facilityClient,
		log,
	)
	slotSvc := slotsService.NewService(
		slotRepository,
		facilityClient,
		txMgr,
		timeProvider,
		log,
	)

	// Инициализируем use cases
	reserveSlotsUseCase := reserveSlotsUC.NewUseCase(
		slotRepository,
		bookingRepository,
		facilityClient,
		gatewayClient,
		txMgr,
		policy,
		log,
	)
	verifyPaymentUseCase := verifyPaymentUC.NewUseCase(
		bookingRepository,
		slotRepository,
		earningsRepository,
		gatewayClient,
		notifyClient,
		txMgr,
		policy,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		gatewayClient,
		notifyClient,
		txMgr,
		policy,
		timeProvider,
		log,
	)
	ownerCancelBookingUseCase := ownerCancelBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		earningsRepository,
		facilityClient,
		gatewayClient,
		notifyClient,
		txMgr,
		policy,
		timeProvider,
		log,
	)

	// Фоновое освобождение истекших удержаний
	sweeper := holdsweeper.New(
		slotRepository,
		bookingRepository,
		metricsCollector,
		timeProvider,
		cfg.Policy.SweepInterval(),
		log,
	)
	if err := sweeper.Start(context.Background()); err != nil {
		log.Fatal("Failed to start hold sweeper: %v", err)
	}

	// Инициализируем handlers
	reserveSlots := reserveSlotsHandler.NewHandler(reserveSlotsUseCase, log)
	verifyPayment := verifyPaymentHandler.NewHandler(verifyPaymentUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	ownerCancelBooking := ownerCancelBookingHandler.NewHandler(ownerCancelBookingUseCase, log)
	getCancellationInfo := getCancellationInfoHandler.NewHandler(cancelBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getFacilityBookings := getFacilityBookingsHandler.NewHandler(bookingSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(slotSvc, log)
	createSlots := createSlotsHandler.NewHandler(slotSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Callback платежного шлюза (подлинность доказывает подпись)
	api.HandleFunc("/payments/verify", verifyPayment.Handle).Methods(http.MethodPost)

	// Слоты площадки на дату
	api.HandleFunc("/facilities/{facilityId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования (игрок) ---
	protected.HandleFunc("/bookings/reserve", reserveSlots.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/cancellation-info", getCancellationInfo.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление площадкой (владелец) ---
	protected.HandleFunc("/owner/slots", createSlots.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/owner/slots/grid", createSlots.HandleGrid).Methods(http.MethodPost)
	protected.HandleFunc("/owner/bookings/{bookingId}/cancel", ownerCancelBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/facilities/{facilityId}/bookings", getFacilityBookings.Handle).Methods(http.MethodGet)

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

	if err := sweeper.Stop(); err != nil {
		log.Error("Failed to stop hold sweeper: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
