package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straye-as/quote-api/docs"
	"github.com/straye-as/quote-api/internal/config"
	"github.com/straye-as/quote-api/internal/database"
	"github.com/straye-as/quote-api/internal/http/handler"
	"github.com/straye-as/quote-api/internal/http/middleware"
	"github.com/straye-as/quote-api/internal/http/router"
	"github.com/straye-as/quote-api/internal/jobs"
	"github.com/straye-as/quote-api/internal/logger"
	"github.com/straye-as/quote-api/internal/quickbooks"
	"github.com/straye-as/quote-api/internal/repository"
	"github.com/straye-as/quote-api/internal/service"
	"go.uber.org/zap"
)

// @title Quote API
// @version 1.0
// @description Quotes with line items, kept in sync with QuickBooks Online estimates

// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description Shared API key

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.App.Environment == "development" || basicCfg.App.Environment == "local" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// staging and production pull secrets from Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
	}

	// Repositories
	quoteRepo := repository.NewQuoteRepository(db)
	quoteItemRepo := repository.NewQuoteItemRepository(db)
	connectionRepo := repository.NewQuickBooksConnectionRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// Services
	credentialService := service.NewCredentialService(connectionRepo, &cfg.QuickBooks, log)
	qbClient := quickbooks.NewClient(&cfg.QuickBooks, credentialService, log)
	numberService := service.NewQuoteNumberService(quoteRepo, cfg.Quotes.NumberFormat, log)
	syncService := service.NewQuoteSyncService(
		qbClient,
		quoteRepo,
		numberService,
		cfg.QuickBooks.PullPageSize,
		cfg.QuickBooks.DefaultItemID,
		log,
	)
	alertService := service.NewAlertService(alertRepo, quoteRepo, cfg.Alerts.ExpiryWindow(), log)
	quoteService := service.NewQuoteService(
		quoteRepo,
		quoteItemRepo,
		numberService,
		syncService,
		alertService,
		cfg.Quotes.NumberRetries,
		cfg.Alerts.TimeoutDuration(),
		log,
	)

	if status, err := credentialService.Status(ctx); err == nil {
		log.Info("QuickBooks connection",
			zap.Bool("connected", status.Connected),
			zap.String("source", status.Source),
			zap.String("realm_id", status.RealmID),
			zap.Bool("reconnect_required", status.ReconnectRequired),
		)
	}

	rt := router.NewRouter(
		cfg,
		log,
		db,
		middleware.NewAPIKeyAuth(cfg.ApiKey.Value, cfg.App.Environment, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		handler.NewQuoteHandler(quoteService, log),
		handler.NewQuickBooksHandler(credentialService, log),
		handler.NewAlertHandler(alertService, log),
	)

	var scheduler *jobs.Scheduler
	if cfg.Alerts.Enabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterExpirationAlertJob(
			scheduler,
			alertService,
			log,
			cfg.Alerts.Cron,
			cfg.Alerts.TimeoutDuration(),
		); err != nil {
			log.Error("Failed to register expiration alert job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			log.Info("Scheduler started with expiration alert job",
				zap.String("cron_expr", cfg.Alerts.Cron),
				zap.Duration("window", cfg.Alerts.ExpiryWindow()),
			)
		}
	} else {
		log.Info("Expiration alert sweep disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
