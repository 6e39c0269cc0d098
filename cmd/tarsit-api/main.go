package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	_ "github.com/tarsit/tarsit-api/api/swagger"
	"github.com/tarsit/tarsit-api/internal/handler"
	"github.com/tarsit/tarsit-api/internal/repository"
	"github.com/tarsit/tarsit-api/internal/server"
	"github.com/tarsit/tarsit-api/internal/service"
	"github.com/tarsit/tarsit-api/pkg/cache"
	"github.com/tarsit/tarsit-api/pkg/config"
	"github.com/tarsit/tarsit-api/pkg/database"
	"github.com/tarsit/tarsit-api/pkg/events"
	"github.com/tarsit/tarsit-api/pkg/logger"
	"github.com/tarsit/tarsit-api/pkg/tracing"
)

// @title Tarsit Appointments API
// @version 1.0.0
// @description Appointment booking, availability and business hours for Tarsit businesses.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type eventPublisher interface {
	Publish(ctx context.Context, msg events.Message) error
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	location, err := time.LoadLocation(cfg.Appointments.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Appointments.Timezone, err)
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logr.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logr.Info("migrations applied")
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// the cache is optional; requests fall through to Postgres
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	if !cfg.Metrics.Enabled {
		metrics = nil
	}

	publisher, err := newPublisher(cfg.Notifications, logr)
	if err != nil {
		return fmt.Errorf("init event publisher: %w", err)
	}
	defer publisher.Close() //nolint:errcheck

	notifications := service.NewNotificationService(publisher, service.NotificationConfig{
		Enabled:    cfg.Notifications.Enabled,
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
	}, metrics, logr)
	notifications.Start(ctx)
	defer notifications.Stop()

	validate := validator.New()
	appointmentRepo := repository.NewAppointmentRepository(db)
	businessRepo := repository.NewBusinessRepository(db)
	hoursRepo := repository.NewBusinessHoursRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Appointments.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	}, logr)
	permissionSvc := service.NewPermissionService(businessRepo, teamRepo, logr)
	hoursSvc := service.NewBusinessHoursService(hoursRepo, businessRepo, permissionSvc, cacheSvc, auditRepo, validate, logr)
	appointmentSvc := service.NewAppointmentService(
		appointmentRepo,
		businessRepo,
		hoursSvc,
		permissionSvc,
		notifications,
		cacheSvc,
		metrics,
		auditRepo,
		validate,
		logr,
		service.AppointmentConfig{
			Location:         location,
			DefaultDuration:  cfg.Appointments.DefaultDuration,
			EnforceNoOverlap: cfg.Appointments.EnforceNoOverlap,
			SlotCacheTTL:     cfg.Appointments.SlotCacheTTL,
		},
	)
	exportSvc := service.NewCalendarExportService(appointmentSvc, nil, nil, logr)

	readiness := map[string]handler.Pinger{"postgres": handler.PingFunc(db.PingContext)}
	if redisClient != nil {
		readiness["redis"] = cacheRepo
	}
	if broker, ok := publisher.(handler.Pinger); ok && cfg.Notifications.Enabled {
		readiness["kafka"] = broker
	}

	router := server.NewRouter(server.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		EnableMetrics:  cfg.Metrics.Enabled,
	}, server.Handlers{
		Appointments:  handler.NewAppointmentHandler(appointmentSvc, exportSvc),
		BusinessHours: handler.NewBusinessHoursHandler(hoursSvc),
		System:        handler.NewMetricsHandler(metrics, readiness),
	}, authSvc, metrics, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           otelhttp.NewHandler(router, cfg.Tracing.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newPublisher(cfg config.NotificationsConfig, logr *zap.Logger) (eventPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logr.Info("no kafka brokers configured, appointment events are logged only")
		return events.NewLogPublisher(logr), nil
	}
	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, err
	}
	logr.Info("publishing appointment events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	return publisher, nil
}
