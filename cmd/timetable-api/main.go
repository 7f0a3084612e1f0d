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
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-timetable-api/pkg/oracle"
)

// @title Timetable API
// @version 1.0.0
// @description Generates conflict-free weekly timetables per academic year and term.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB, logr); err != nil {
			logr.Sugar().Fatalw("failed to migrate database", "error", err)
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, continuing without cache and distributed locks", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	timetableRepo := repository.NewTimetableRepository(db)
	runRepo := repository.NewGenerationRunRepository(db)

	var cacheRepo service.CacheRepository
	var distributedLock service.ScopeLocker
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		distributedLock = repository.NewScopeLockRepository(redisClient, cfg.Scheduler.LockTTL)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Sessions.CacheTTL, logr, redisClient != nil)

	oracleAdapter, closeOracle := newOracleAdapter(ctx, cfg, logr)
	defer closeOracle()
	engine := scheduler.NewEngine(
		oracleAdapter,
		scheduler.NewAllocator(cfg.Scheduler.Seed, cfg.Scheduler.DurationTolerance),
	)
	generator := service.NewTimetableGenerator(
		timetableRepo,
		timetableRepo,
		runRepo,
		engine,
		service.NewScopeLocker(distributedLock),
		cacheSvc,
		metrics,
		logr,
		service.TimetableGeneratorConfig{Window: scheduler.Window{Open: cfg.Scheduler.WindowOpen, Close: cfg.Scheduler.WindowClose}},
	)

	worker := service.NewGenerationWorker(runRepo, generator, logr)
	queue := jobs.NewQueue("timetable-generation", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Scheduler.AsyncWorkers,
		MaxRetries: 0,
		// A run must not outlive the distributed scope lock.
		JobTimeout: cfg.Scheduler.LockTTL,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	generatorSvc := service.NewTimetableGeneratorService(generator, runRepo, queue, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, cacheSvc, metrics, validate, logr, cfg.Sessions.CacheTTL)
	tokens := service.NewTokenService(cfg.JWT.Secret)

	if _, err := generatorSvc.RecoverInterrupted(ctx, cfg.Scheduler.LockTTL); err != nil {
		logr.Sugar().Warnw("failed to recover interrupted generation runs", "error", err)
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logr.Sugar().Warnw("unknown scheduler timezone, using UTC", "timezone", cfg.Scheduler.Timezone, "error", err)
		loc = time.UTC
	}
	timetableHandler := handler.NewTimetableHandler(generatorSvc, timetableSvc, loc)
	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(tokens))
	{
		timetable := api.Group("/timetable")
		timetable.GET("/sessions", timetableHandler.Sessions)
		timetable.GET("/runs", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), timetableHandler.Runs)
		timetable.GET("/runs/:id", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), timetableHandler.Run)
		timetable.POST("/generate", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), timetableHandler.Generate)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}

// newOracleAdapter returns nil when the oracle is switched off so the engine
// goes straight to the allocator.
func newOracleAdapter(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*scheduler.OracleAdapter, func()) {
	noop := func() {}
	if !cfg.Oracle.Enabled {
		return nil, noop
	}
	if cfg.Oracle.APIKey == "" {
		logr.Warn("ENABLE_ORACLE is set without ORACLE_API_KEY, using the greedy allocator only")
		return nil, noop
	}
	client, err := oracle.NewGemini(ctx, cfg.Oracle, logr)
	if err != nil {
		logr.Warn("failed to initialise oracle client, using the greedy allocator only", zap.Error(err))
		return nil, noop
	}
	logr.Info("oracle enabled", zap.String("model", cfg.Oracle.Model), zap.Duration("timeout", cfg.Oracle.Timeout))
	return scheduler.NewOracleAdapter(client, cfg.Oracle.Timeout, cfg.Scheduler.DurationTolerance), func() {
		if err := client.Close(); err != nil {
			logr.Warn("failed to close oracle client", zap.Error(err))
		}
	}
}
