package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/config"
	"github.com/happypororo/W-Best-Tracker/pkg/database"
	"github.com/happypororo/W-Best-Tracker/pkg/handlers"
	"github.com/happypororo/W-Best-Tracker/pkg/logging"
	"github.com/happypororo/W-Best-Tracker/pkg/middleware"
	"github.com/happypororo/W-Best-Tracker/pkg/repositories"
	"github.com/happypororo/W-Best-Tracker/pkg/scraper"
	"github.com/happypororo/W-Best-Tracker/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migrateSchema(cfg, logger); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	products := repositories.NewProductRepository()
	rankings := repositories.NewRankingRepository()
	changes := repositories.NewChangeRepository()
	brands := repositories.NewBrandRepository()
	jobs := repositories.NewJobRepository()

	detector := services.NewChangeDetector(rankings, changes, logger)
	brandStats := services.NewBrandStatsService(brands, logger)
	ingest := services.NewIngestService(db.Pool, products, rankings, brands, detector, brandStats, logger)
	recorder := services.NewJobRecorder(db, jobs, logger)

	wconcept := scraper.New(&cfg.Scraper, logger)
	tracker := services.NewTracker(wconcept, ingest, recorder, logger)

	if cfg.Scheduler.Enabled {
		sched := services.NewScheduler(tracker, cfg.Scheduler.Interval, cfg.Scheduler.RunOnStart, logger)
		go sched.Run(ctx)
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg).RegisterRoutes(mux)
	handlers.NewProductHandler(products, rankings, logger).RegisterRoutes(mux)
	handlers.NewChangeHandler(changes, logger).RegisterRoutes(mux)
	handlers.NewBrandHandler(brands, logger).RegisterRoutes(mux)
	handlers.NewJobHandler(jobs, products, brands, rankings, logger).RegisterRoutes(mux)
	handlers.NewCrawlHandler(tracker, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(database.WithPool(db)(mux))
	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Starting w-best-tracker",
		zap.String("addr", server.Addr),
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.Bool("scheduler", cfg.Scheduler.Enabled))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// migrateSchema runs migrations over database/sql, which golang-migrate
// requires.
func migrateSchema(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return database.RunMigrations(sqlDB, cfg.MigrationsPath, logger)
}
