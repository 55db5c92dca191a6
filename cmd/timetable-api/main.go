package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/engine"
	"github.com/noah-isme/timetable-api/internal/handler"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/sat"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/timetable-api/pkg/storage"
)

// @title Timetable API
// @version 1.0.0
// @description Weekly class timetabling service
// @BasePath /
// @schemes http

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
	sugar := logr.Sugar()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()

	engines := map[string]service.EngineFactory{
		config.EngineGreedy: func(seed int64) engine.Engine {
			return engine.NewGreedyScheduler(engine.GreedyOptions{
				MaxRounds:     cfg.Scheduler.MaxRounds,
				FacultyDayCap: cfg.Scheduler.FacultyDayCap,
				Relaxation: engine.RelaxationPolicy{
					MaxDeficitCourses: cfg.Scheduler.RelaxationThreshold,
					FacultyDayCap:     cfg.Scheduler.RelaxationCap,
					ExtraRounds:       cfg.Scheduler.RelaxationRounds,
				},
				Seed:   seed,
				Logger: logr,
			})
		},
	}

	defaultEngine := cfg.Scheduler.Engine
	if solver, err := sat.NewSolver(cfg.Solver.Backend, cfg.Solver.Timeout); err == nil {
		exact := engine.NewExactScheduler(solver, logr)
		engines[config.EngineExact] = func(int64) engine.Engine { return exact }
		sugar.Infow("exact engine available", "backend", solver.Name())
	} else {
		if defaultEngine == config.EngineExact {
			defaultEngine = config.EngineGreedy
			sugar.Warnw("exact engine configured but unavailable, falling back to greedy", "error", err)
		} else {
			sugar.Infow("exact engine unavailable", "error", err)
		}
	}

	var results repository.ResultRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			sugar.Fatalw("redis connection failed", "error", err)
		}
		defer client.Close() //nolint:errcheck
		results = repository.NewRedisResultRepository(client, cfg.Scheduler.ResultTTL, logr)
	} else {
		results = repository.NewMemoryResultRepository(cfg.Scheduler.ResultTTL)
	}

	var archiveSvc *service.ArchiveService
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			sugar.Fatalw("database connection failed", "error", err)
		}
		defer db.Close() //nolint:errcheck
		archiveRepo := repository.NewArchiveRepository(db)
		if err := archiveRepo.EnsureSchema(context.Background()); err != nil {
			sugar.Fatalw("archive schema init failed", "error", err)
		}
		archiveSvc = service.NewArchiveService(archiveRepo, metricsSvc, logr, service.ArchiveConfig{})
		archiveSvc.Start(context.Background())
		defer archiveSvc.Stop()
	}

	store, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		sugar.Fatalw("export storage init failed", "error", err)
	}
	store.StartCleanup(context.Background(), cfg.Export.CleanupInterval, cfg.Export.FileTTL, logr)

	scheduleSvc := service.NewScheduleService(engines, results, archiveSvc, metricsSvc, nil, logr, service.ScheduleConfig{
		DefaultEngine:  defaultEngine,
		DefaultSeed:    cfg.Scheduler.Seed,
		LabBlockLength: cfg.Scheduler.LabBlockLength,
	})
	exportSvc := service.NewExportService(results, store, metricsSvc, logr)

	timetables := handler.NewTimetableHandler(scheduleSvc)
	exports := handler.NewExportHandler(exportSvc)
	archives := handler.NewArchiveHandler(archiveSvc)
	health := handler.NewHealthHandler(scheduleSvc)
	metrics := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", metrics.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/sample", timetables.Sample)
		api.POST("/schedule/generate", timetables.Generate)
		api.POST("/schedule/validate", timetables.Validate)
		api.GET("/results/:id", timetables.Result)
		api.GET("/results/:id/export", exports.Download)
		api.GET("/archives", archives.List)
		api.GET("/archives/:id", archives.Get)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	sugar.Infow("server starting", "addr", addr, "env", cfg.Env, "engine", defaultEngine)
	if err := r.Run(addr); err != nil {
		sugar.Fatalw("server failed", "error", err)
	}
}
