package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/cache"
	"github.com/epsilon-academy/academy-backend/internal/config"
	"github.com/epsilon-academy/academy-backend/internal/database"
	"github.com/epsilon-academy/academy-backend/internal/handler"
	"github.com/epsilon-academy/academy-backend/internal/logger"
	"github.com/epsilon-academy/academy-backend/internal/middleware"
	"github.com/epsilon-academy/academy-backend/internal/repository"
	"github.com/epsilon-academy/academy-backend/internal/repository/memory"
	"github.com/epsilon-academy/academy-backend/internal/router"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/epsilon-academy/academy-backend/internal/validator"
	ws "github.com/epsilon-academy/academy-backend/internal/websocket"
	"github.com/epsilon-academy/academy-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Bool("skip_auth", cfg.SkipAuth).
		Msg("Starting Epsilon Academy Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Select Store ──────────────────────────────────────────────────
	var (
		stores   service.Stores
		dbPinger handler.Pinger
		storeKey = "postgres"
		opts     = router.Options{Logger: log}
	)

	if cfg.SkipAuth {
		db := memory.NewDB()
		if err := memory.Seed(db, cfg.BcryptCost); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed in-memory store")
		}
		stores = service.Stores{
			Profiles:    memory.NewProfileRepository(db),
			Courses:     memory.NewCourseRepository(db),
			Enrollments: memory.NewEnrollmentRepository(db),
			Groups:      memory.NewGroupRepository(db),
			Messages:    memory.NewMessageRepository(db),
			LiveClasses: memory.NewLiveClassRepository(db),
			Evaluations: memory.NewEvaluationRepository(db),
			Dashboard:   memory.NewDashboardRepository(db),
		}
		storeKey = "memory"
		opts.Dev = memory.DevIdentity
		log.Warn().Msg("SKIP_AUTH enabled: serving in-memory fixtures, X-Dev-Role impersonation is active")
	} else {
		// ─── Connect to PostgreSQL ─────────────────────────────────────
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		stores = service.Stores{
			Profiles:    repository.NewProfileRepository(pool),
			Courses:     repository.NewCourseRepository(pool),
			Enrollments: repository.NewEnrollmentRepository(pool),
			Groups:      repository.NewGroupRepository(pool),
			Messages:    repository.NewMessageRepository(pool),
			LiveClasses: repository.NewLiveClassRepository(pool),
			Evaluations: repository.NewEvaluationRepository(pool),
			Dashboard:   repository.NewDashboardRepository(pool),
		}
		dbPinger = pool
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	var denylist cache.Denylist = cache.NewMemoryDenylist()
	if rdb != nil {
		defer rdb.Close()
		denylist = cache.NewRedisDenylist(rdb)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	svcs := service.NewServices(cfg, stores, denylist, cache.NewStatisticsCache(rdb, cfg.StatsCacheTTL), log)
	hub := ws.NewHub(svcs.LiveClass, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	system := handler.NewSystemHandler(dbPinger, rdb, storeKey, log)
	handlers := router.NewHandlers(cfg, svcs, hub, system, log)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	if cfg.AuthRateLimit > 0 {
		opts.AuthLimiter = middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
		go opts.AuthLimiter.Run(workerCtx)
	}
	liveClassWorker := worker.NewLiveClassWorker(stores.LiveClasses, log)
	go liveClassWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(svcs.Auth, handlers, cfg, opts)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Str("store", storeKey).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers.
	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
