package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/client"
	"github.com/itrun-git/itrun-back/internal/config"
	"github.com/itrun-git/itrun-back/internal/database"
	"github.com/itrun-git/itrun-back/internal/job"
	"github.com/itrun-git/itrun-back/internal/lock"
	"github.com/itrun-git/itrun-back/internal/metrics"
	"github.com/itrun-git/itrun-back/internal/ordering"
	"github.com/itrun-git/itrun-back/internal/repository"
	"github.com/itrun-git/itrun-back/internal/router"
	"github.com/itrun-git/itrun-back/internal/service"
	"github.com/itrun-git/itrun-back/internal/tracing"
)

const (
	businessMetricsInterval = 30 * time.Second
	dbStatsInterval         = 15 * time.Second
	migrationRetries        = 5
)

func runServe(ctx context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting itrun API",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("lock_backend", cfg.Ordering.LockBackend),
	)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, logger)
	if err != nil {
		logger.Warn("Tracing not initialized", zap.Error(err))
	}

	m := metrics.New(logger)

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}
	stopDBStats := database.StartDBStatsCollector(db, m, dbStatsInterval)
	defer close(stopDBStats)

	if cfg.Database.AutoMigrate {
		if err := database.SafeAutoMigrateWithRetry(db, logger, migrationRetries); err != nil {
			return err
		}
	}

	s3Client := newObjectStore(cfg, m, logger)

	locker, closeLocker, err := newLocker(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	engine := ordering.NewEngine(db, locker, logger, ordering.WithRecorder(m))
	invites := service.NewInviteTokens(cfg.Invite.Secret, cfg.Invite.TTL, cfg.Invite.FrontendURL)

	r := router.Setup(router.Config{
		DB:             db,
		Logger:         logger,
		JWTSecret:      cfg.JWT.Secret,
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        m,
		Engine:         engine,
		S3Client:       s3Client,
		Invites:        invites,
		MaxFileSize:    cfg.Upload.MaxFileSize,
		RateLimit:      cfg.RateLimit,
		Tracing:        cfg.Tracing.Enabled,
	})

	collector := metrics.NewBusinessMetricsCollector(db, m, logger, businessMetricsInterval)
	collector.Start()
	defer collector.Stop()

	scheduler, err := startJobs(cfg, db, engine, s3Client, m, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("itrun API started",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s%s/swagger/index.html", cfg.Server.Port, cfg.Server.BasePath)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}

	logger.Info("Server exited gracefully")
	return nil
}

func runMigrate(configPath string) error {
	cfg, logger, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return database.SafeAutoMigrate(db, logger)
}

func bootstrap(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}

func openDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := database.New(database.ConfigFrom(cfg.Database))
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}
	logger.Info("Database connected", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

// newObjectStore falls back to an in-memory store when S3 is not configured
func newObjectStore(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) service.S3Client {
	if cfg.S3.Bucket == "" || cfg.S3.Region == "" {
		logger.Warn("S3 configuration incomplete, files are kept in memory")
		return client.NewMockS3Client()
	}
	s3Client, err := client.NewS3Client(&cfg.S3, m)
	if err != nil {
		logger.Warn("Failed to initialize S3 client, files are kept in memory", zap.Error(err))
		return client.NewMockS3Client()
	}
	logger.Info("S3 client initialized",
		zap.String("bucket", cfg.S3.Bucket),
		zap.String("region", cfg.S3.Region),
		zap.String("endpoint", cfg.S3.Endpoint),
	)
	return s3Client
}

func newLocker(cfg *config.Config, logger *zap.Logger) (lock.Locker, func(), error) {
	if cfg.Ordering.LockBackend != "redis" {
		return lock.NewLocalLocker(cfg.Ordering.LockWait), func() {}, nil
	}
	rdb, err := database.NewRedis(cfg.Redis, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis for ordering locks: %w", err)
	}
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	return lock.NewRedisLocker(rdb, cfg.Ordering.LockWait, cfg.Ordering.LockTTL, logger), closeFn, nil
}

func startJobs(cfg *config.Config, db *gorm.DB, engine *ordering.Engine, s3Client service.S3Client, m *metrics.Metrics, logger *zap.Logger) (*job.Scheduler, error) {
	if !cfg.Jobs.Enabled {
		logger.Info("Background jobs disabled")
		return nil, nil
	}

	scheduler := job.NewScheduler(m, logger)
	cleanup := job.NewFileCleanupJob(repository.NewFileDeletionRepository(db), s3Client, m, logger)
	if err := scheduler.Add(cfg.Jobs.FileCleanupSchedule, cleanup); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", cleanup.Name(), err)
	}
	repair := job.NewPositionRepairJob(engine, m, logger)
	if err := scheduler.Add(cfg.Jobs.PositionRepairSchedule, repair); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", repair.Name(), err)
	}
	scheduler.Start()
	return scheduler, nil
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
