// Package main provides the entry point for the print-shop quoting service
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/printshop/app/handlers"
	"github.com/amirphl/printshop/app/router"
	"github.com/amirphl/printshop/app/scheduler"
	businessflow "github.com/amirphl/printshop/business_flow"
	"github.com/amirphl/printshop/config"
	"github.com/amirphl/printshop/migrations"
	"github.com/amirphl/printshop/repository"
	"github.com/amirphl/printshop/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	stopFuncs []func()
	closers   []func() error

	cache       *redis.Client
	metricsFlow businessflow.SupplierMetricsFlow
}

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logOut := utils.SetupLogOutput(utils.LogOutputOptions{
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	defer logOut.Close()

	log.Printf("Starting printshop %s (%s)...", cfg.Deployment.Version, cfg.Deployment.Environment)

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.startBackgroundJobs(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	for _, fn := range app.stopFuncs {
		fn()
	}

	if err := app.router.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	for _, fn := range app.closers {
		if err := fn(); err != nil {
			log.Printf("Error closing resource: %v", err)
		}
	}

	log.Println("Server stopped")
}

// initializeDatabase opens the postgres pool and applies pending migrations
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	gormCfg := &gorm.Config{
		Logger: logger.New(log.New(log.Writer(), "", log.LstdFlags), logger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: utils.UTCNow,
	}
	if !cfg.SlowQueryLog {
		gormCfg.Logger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("Database migrations applied")
	}

	return db, nil
}

// initializeCache connects to redis when caching is enabled.
// A nil client means the service runs without metrics caching or auto-select locks.
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor periodically pings redis so connectivity loss shows up in the log
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(monitorCtx, 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// startBackgroundJobs launches the cache monitor and the metrics warm-up loop
func (a *Application) startBackgroundJobs(ctx context.Context) {
	if a.cache != nil {
		a.stopFuncs = append(a.stopFuncs, startCacheHealthMonitor(ctx, a.cache, 30*time.Second))
	}
	if a.config.Scheduler.MetricsWarmupEnabled {
		spec := a.config.Scheduler.WarmupSpec()
		warmup := scheduler.NewMetricsWarmupScheduler(a.metricsFlow, spec, a.config.Scheduler.MetricsWarmupInterval/2)
		stop, err := warmup.Start(ctx)
		if err != nil {
			log.Printf("Supplier metrics warm-up not started: %v", err)
			return
		}
		a.stopFuncs = append(a.stopFuncs, stop)
		log.Printf("Supplier metrics warm-up scheduled (%s)", spec)
	}
}

// initializeApplication wires storage, flows and handlers
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	app := &Application{config: cfg}
	app.closers = append(app.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		log.Printf("Cache disabled: %v", err)
		rc = nil
	}
	if rc != nil {
		app.closers = append(app.closers, rc.Close)
	}

	// Repositories
	transactor := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	unitRepo := repository.NewProductUnitRepository(db)
	priceRepo := repository.NewSupplierPriceRepository(db)
	jobRepo := repository.NewSupplierJobRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	itemRepo := repository.NewQuoteItemRepository(db)
	weightsRepo := repository.NewScoringWeightsRepository(db)

	// Business flows
	metricsFlow := businessflow.NewSupplierMetricsFlow(userRepo, jobRepo, unitRepo, rc, &cfg.Cache, cfg.Scoring.MetricsCacheTTL)
	recommendationFlow := businessflow.NewRecommendationFlow(priceRepo, unitRepo, weightsRepo, metricsFlow, cfg.Scoring)
	selectionFlow := businessflow.NewSelectionFlow(transactor, quoteRepo, itemRepo, userRepo, recommendationFlow, rc, &cfg.Cache, cfg.Scoring.AutoSelectLockTimeout)
	lifecycleFlow := businessflow.NewQuoteLifecycleFlow(transactor, quoteRepo, itemRepo, userRepo, jobRepo, unitRepo, metricsFlow, cfg.Scoring.DefaultMarkupPercent, cfg.Document)
	jobFlow := businessflow.NewSupplierJobFlow(transactor, jobRepo, quoteRepo, itemRepo, userRepo, metricsFlow)
	priceFlow := businessflow.NewSupplierPriceFlow(priceRepo, userRepo, unitRepo)
	settingsFlow := businessflow.NewScoringSettingsFlow(weightsRepo, cfg.Scoring.Model)

	app.cache = rc
	app.metricsFlow = metricsFlow

	app.router = router.NewFiberRouter(cfg, router.Handlers{
		Recommendation: handlers.NewRecommendationHandler(recommendationFlow),
		Quote:          handlers.NewQuoteHandler(lifecycleFlow, selectionFlow),
		Supplier:       handlers.NewSupplierHandler(priceFlow, metricsFlow, jobFlow),
		Scoring:        handlers.NewScoringSettingsHandler(settingsFlow),
	})

	return app, nil
}
