package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sh44ni/telalalbedaya-sub000/internal/config"
	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/dashboard"
	"github.com/sh44ni/telalalbedaya-sub000/internal/database"
	"github.com/sh44ni/telalalbedaya-sub000/internal/export"
	telalHttp "github.com/sh44ni/telalalbedaya-sub000/internal/http"
	customerHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/customer"
	dashboardHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/dashboard"
	exportHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/export"
	importHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/importcsv"
	matchingHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/matching"
	projectHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/project"
	propertyHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/ratelimit"
	rentalHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/rental"
	txHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/transaction"
	"github.com/sh44ni/telalalbedaya-sub000/internal/importer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/matching"
	"github.com/sh44ni/telalalbedaya-sub000/internal/project"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/receipt"
	"github.com/sh44ni/telalalbedaya-sub000/internal/reminder"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/settlement"
	"github.com/sh44ni/telalalbedaya-sub000/internal/store"
	"github.com/sh44ni/telalalbedaya-sub000/internal/store/memory"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

// backend is every repository the services need; both stores satisfy it.
type backend interface {
	transaction.Repository
	project.Repository
	property.Repository
	customer.Repository
	rental.Repository
	matching.Repository
	dashboard.Repository
	reminder.Repository
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	var repo backend

	switch cfg.Store.Driver {
	case config.StoreMemory:
		slog.Warn("using in-memory store, data is lost on restart")

		repo = memory.New()
	default:
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			return err
		}

		repo = store.New(db)
	}

	var mailer reminder.Mailer = reminder.LogMailer{}
	if cfg.SMTP.Host != "" {
		mailer = reminder.NewSMTPMailer(reminder.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	var (
		receipts           = receipt.NewRenderer(cfg.Company.Name)
		transactionService = transaction.NewService(repo, settlement.NewEngine())
		matchingService    = matching.NewService(repo)
		rentalService      = rental.NewService(repo)
		importService      = importer.NewService(matchingService)
		exportService      = export.NewService(transactionService, receipts)
		reminderService    = reminder.NewService(repo, mailer, cfg.Company.Name)
	)

	limiter, err := ratelimit.New(cfg.RateLimit.Rate)
	if err != nil {
		return fmt.Errorf("parsing RATE_LIMIT: %w", err)
	}

	router := telalHttp.New(telalHttp.Handlers{
		Transactions: txHandler.NewHandler(transactionService, receipts),
		Dashboard:    dashboardHandler.NewHandler(dashboard.NewService(repo)),
		Projects:     projectHandler.NewHandler(project.NewService(repo)),
		Properties:   propertyHandler.NewHandler(property.NewService(repo)),
		Customers:    customerHandler.NewHandler(customer.NewService(repo)),
		Rentals:      rentalHandler.NewHandler(rentalService, reminderService),
		Import:       importHandler.NewHandler(importService, transactionService),
		Matching:     matchingHandler.NewHandler(matchingService),
		Export:       exportHandler.NewHandler(exportService),
	}, telalHttp.Options{
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Limiter:        limiter,
	})

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("AUTH_JWT_SECRET is empty, API is unauthenticated")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr, "store", cfg.Store.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
