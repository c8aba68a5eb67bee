// Package main provides the entry point for the cargo insurance certificate service
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/cargo-certificates/app/handlers"
	"github.com/amirphl/cargo-certificates/app/middleware"
	"github.com/amirphl/cargo-certificates/app/router"
	"github.com/amirphl/cargo-certificates/app/services"
	"github.com/amirphl/cargo-certificates/app/storage"
	businessflow "github.com/amirphl/cargo-certificates/business_flow"
	"github.com/amirphl/cargo-certificates/config"
	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	stopFuncs []func()
}

func main() {
	log.Println("Starting cargo certificates service...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	closeLog := initializeLogging(cfg.Logging)
	defer closeLog()

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

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

	if err := app.router.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	for _, fn := range app.stopFuncs {
		fn()
	}

	log.Println("Server stopped")
}

// initializeLogging routes the standard logger to stdout, a rotated file, or both
func initializeLogging(cfg config.LoggingConfig) func() {
	log.SetFlags(log.LstdFlags | log.LUTC)

	if cfg.Output != "file" && cfg.Output != "both" {
		log.SetOutput(os.Stdout)
		return func() {}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	var out io.Writer = rotator
	if cfg.Output == "both" {
		out = io.MultiWriter(os.Stdout, rotator)
	}
	log.SetOutput(out)
	log.Printf("Logging to %s (max %dMB, %d backups, %d days)", cfg.FilePath, cfg.MaxSize, cfg.MaxBackups, cfg.MaxAge)

	return func() {
		if err := rotator.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}
}

// initializeDatabase opens the configured database with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=1&_busy_timeout=5000")
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		dialector = postgres.Open(dsn)
	}

	logLevel := logger.Error
	if cfg.SlowQueryLog {
		logLevel = logger.Warn
	}
	gormLogger := logger.New(log.Default(), logger.Config{
		SlowThreshold:             cfg.SlowQueryTime,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(models.AllModels()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Println("Database schema migrated")
	}

	log.Printf("Database connection established (driver=%s)", cfg.Driver)
	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", opt.DB)
	return rc, nil
}

// startCacheHealthMonitor periodically pings Redis to surface connectivity issues.
// The returned function stops the monitor.
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
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication wires repositories, services, flows and handlers
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	stopFuncs = append(stopFuncs, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 30*time.Second))
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
	}

	bootstrapAdminID := uuid.Nil
	if cfg.Admin.BootstrapProfileID != "" {
		bootstrapAdminID, err = uuid.Parse(cfg.Admin.BootstrapProfileID)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_BOOTSTRAP_PROFILE_ID: %w", err)
		}
	}

	archive, err := storage.NewFromConfig(context.Background(), cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize certificate storage: %w", err)
	}

	profileRepo := repository.NewProfileRepository(db)
	contractRepo := repository.NewContractRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	counterRepo := repository.NewSequenceCounterRepository(db)

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Printf("Token service initialized with issuer: %q, audience: %q", cfg.JWT.Issuer, cfg.JWT.Audience)

	rates := services.NewCachedExchangeRateClient(
		services.NewFrankfurterClient(cfg.CurrencyAPI.BaseURL, cfg.CurrencyAPI.Timeout),
		rc,
		cfg.Cache.RedisPrefix,
		cfg.Cache.DefaultTTL,
	)
	renderer := services.NewCertificatePDFRenderer()

	allocator := businessflow.NewCertificateNumberAllocator(cfg.Certificates.NumberStrategy, certificateRepo, counterRepo)
	log.Printf("Certificate numbers allocated with %q strategy", cfg.Certificates.NumberStrategy)

	profileFlow := businessflow.NewProfileFlow(profileRepo, bootstrapAdminID, cfg.Admin.BootstrapFullName)
	contractFlow := businessflow.NewContractFlow(contractRepo, certificateRepo)
	certificateFlow := businessflow.NewCertificateFlow(certificateRepo, contractRepo, allocator, rates, renderer, archive)
	exportFlow := businessflow.NewCertificateExportFlow(certificateRepo)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, profileFlow)

	r := router.NewFiberRouter(cfg, authMiddleware, router.Handlers{
		Profile:     handlers.NewProfileHandler(profileFlow),
		Contract:    handlers.NewContractHandler(contractFlow),
		Certificate: handlers.NewCertificateHandler(certificateFlow),
		PDF:         handlers.NewCertificatePDFHandler(certificateFlow),
		Export:      handlers.NewCertificateExportHandler(exportFlow),
		Currency:    handlers.NewCurrencyHandler(rates),
	})

	return &Application{
		router:    r,
		config:    cfg,
		stopFuncs: stopFuncs,
	}, nil
}
