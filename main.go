package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"counselbook/config"
	"counselbook/cron"
	"counselbook/database"
	availabilityRepo "counselbook/database/repository/availability"
	counselorRepo "counselbook/database/repository/counselor"
	recordsRepo "counselbook/database/repository/records"
	sessionRepo "counselbook/database/repository/session"
	timeslotRepo "counselbook/database/repository/timeslot"
	userRepo "counselbook/database/repository/user"
	"counselbook/handlers"
	"counselbook/middleware"
	"counselbook/routes"
	"counselbook/services/booking"
	"counselbook/services/counselor"
	"counselbook/services/events"
	"counselbook/services/notification"
	"counselbook/services/payment"
	"counselbook/services/tasks"
	"counselbook/services/user"
	"counselbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type indexed interface {
	EnsureIndexes(ctx context.Context) error
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		logger.Fatal("main: failed to register validators", zap.Error(err))
	}

	// repositories.
	slots := timeslotRepo.NewMongoTimeSlotRepo()
	sessions := sessionRepo.NewMongoSessionRepo()
	records := recordsRepo.NewMongoRecordRepo()
	availability := availabilityRepo.NewMongoAvailabilityRepo()
	counselors := counselorRepo.NewMongoCounselorRepo()
	students := userRepo.NewMongoUserRepo()

	for _, repo := range []indexed{slots, sessions, records, availability, counselors, students} {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := repo.EnsureIndexes(ctx)
		cancel()
		if err != nil {
			logger.Fatal("main: failed to ensure indexes", zap.Error(err))
		}
	}

	// infrastructure.
	gateway, err := payment.NewGateway(config.AppConfig.PaymentGateway, config.AppConfig.StripeKey, config.AppConfig.PaymentSigningSecret)
	if err != nil {
		logger.Fatal("main: failed to configure payment gateway", zap.Error(err))
	}
	notifier, err := notification.NewDefaultNotificationService(students, counselors, utils.FCMClient, logger)
	if err != nil {
		logger.Fatal("main: failed to configure notifications", zap.Error(err))
	}
	queueClient := asynq.NewClient(cron.QueueRedisOpt())
	defer queueClient.Close()
	lifecycle := events.NewKafkaLifecyclePublisher(config.AppConfig.KafkaBrokers, config.AppConfig.KafkaTopic, logger)
	slotFeed := events.NewRedisSlotFeed(utils.GetCacheClient(), logger)
	metrics := utils.NewBookingMetrics(prometheus.DefaultRegisterer)

	// services.
	bookingService := &booking.DefaultBookingService{
		Sessions:   sessions,
		Slots:      slots,
		Records:    records,
		Counselors: counselors,
		Students:   students,
		Tx:         database.NewTransactionManager(database.MongoClient),
		Gateway:    gateway,
		Notifier:   notifier,
		Reminders:  tasks.NewAsynqReminderScheduler(queueClient),
		SlotFeed:   slotFeed,
		Lifecycle:  lifecycle,
		Metrics:    metrics,
		Logger:     logger,
		Settings:   booking.SettingsFromConfig(config.AppConfig),
	}
	counselorService := &counselor.DefaultCounselorService{
		Slots:        slots,
		Availability: availability,
		Counselors:   counselors,
		SlotFeed:     slotFeed,
		Metrics:      metrics,
		Logger:       logger,
		Rules:        counselor.RulesFromConfig(config.AppConfig),
	}
	deviceService := user.NewDefaultDeviceService(students, counselors)

	// reminder worker.
	worker, err := cron.InitReminderWorker(&cron.ReminderHandler{
		Sessions: sessions,
		Notifier: notifier,
		Dedupe:   utils.GetCacheClient(),
		Metrics:  metrics,
		Logger:   logger,
	}, logger)
	if err != nil {
		logger.Fatal("main: failed to start reminder worker", zap.Error(err))
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	utils.StartHealthMonitor(rootCtx, 30*time.Second, []*redis.Client{utils.GetCacheClient()}, database.MongoClient)

	var verifier middleware.TokenVerifier
	if config.AppConfig.AuthMode == "firebase" {
		verifier = middleware.FirebaseVerifier{Client: utils.AuthClient}
	} else {
		if config.AppConfig.JWTSecret == "" {
			logger.Fatal("main: JWT_SECRET must be set when AUTH_MODE is jwt")
		}
		verifier = middleware.JWTVerifier{Secret: []byte(config.AppConfig.JWTSecret)}
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin, logger))
	router.Use(middleware.MetricsMiddleware(metrics))

	handlerBundle := handlers.NewHandlerBundle(bookingService, counselorService, deviceService, slotFeed)
	routes.RegisterRoutes(router, handlerBundle, verifier)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	if err := lifecycle.Close(); err != nil {
		logger.Warn("main: closing lifecycle publisher", zap.Error(err))
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: disconnecting mongo", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
