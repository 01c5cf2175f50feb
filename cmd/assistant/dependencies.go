package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ovozpay/nlu-engine/internal/domain/analytics"
	"github.com/ovozpay/nlu-engine/internal/domain/categorization"
	"github.com/ovozpay/nlu-engine/internal/domain/command"
	"github.com/ovozpay/nlu-engine/internal/domain/debts"
	"github.com/ovozpay/nlu-engine/internal/domain/goals"
	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
	"github.com/ovozpay/nlu-engine/internal/domain/reconcile"
	"github.com/ovozpay/nlu-engine/internal/domain/reminders"
	"github.com/ovozpay/nlu-engine/internal/domain/settings"
	"github.com/ovozpay/nlu-engine/internal/domain/sources"
	"github.com/ovozpay/nlu-engine/internal/domain/transactions"
	"github.com/ovozpay/nlu-engine/pkg/config"
	"github.com/ovozpay/nlu-engine/pkg/cron"
	"github.com/ovozpay/nlu-engine/pkg/currency"
	"github.com/ovozpay/nlu-engine/pkg/db"
	"github.com/ovozpay/nlu-engine/pkg/notify"
)

// Dependencies holds everything the storage-backed commands need.
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	CategorizationRepo *categorization.Repository
	TransactionsRepo   *transactions.Repository
	GoalsRepo          *goals.Repository
	SourcesRepo        *sources.Repository
	SettingsRepo       *settings.Repository
	RemindersRepo      *reminders.Repository
	DebtsRepo          *debts.Repository
	AnalyticsRepo      *analytics.Repository
	ReconcileRepo      *reconcile.Repository

	// Services
	SuggestionIndex       *categorization.SuggestionIndex
	CategorizationService *categorization.Service
	CurrencyService       *currency.Service
	Notifier              notify.Notifier
	ReconcileService      *reconcile.Service
	Exporter              *analytics.Exporter
	Classifier            *nlu.Classifier
	Dispatcher            *command.Dispatcher
	Scheduler             *cron.Scheduler
}

// InitDependencies connects the database, runs migrations and wires the
// full command pipeline.
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes the repository layer
func (d *Dependencies) initRepositories() error {
	d.CategorizationRepo = categorization.NewRepository(d.DB.Pool)
	d.TransactionsRepo = transactions.NewRepository(d.DB.Pool)
	d.GoalsRepo = goals.NewRepository(d.DB.Pool)
	d.SourcesRepo = sources.NewRepository(d.DB.Pool)
	d.SettingsRepo = settings.NewRepository(d.DB.Pool)
	d.RemindersRepo = reminders.NewRepository(d.DB.Pool)
	d.DebtsRepo = debts.NewRepository(d.DB.Pool)
	d.AnalyticsRepo = analytics.NewRepository(d.DB.Pool)
	d.ReconcileRepo = reconcile.NewRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices wires the classifier, the executors behind the
// dispatcher, reconciliation and the background scheduler.
func (d *Dependencies) initServices() error {
	// Categorization with the in-memory suggestion index
	index, err := categorization.NewSuggestionIndex("")
	if err != nil {
		return fmt.Errorf("failed to build suggestion index: %w", err)
	}
	d.SuggestionIndex = index
	d.CategorizationService = categorization.NewService(d.CategorizationRepo, index, d.Logger)

	// Exchange rates with the CBU feed
	d.CurrencyService = currency.NewService(currency.Config{
		RatesURL:       d.Config.Currency.RatesURL,
		CacheTTL:       time.Duration(d.Config.Currency.CacheTTLMinutes) * time.Minute,
		RequestsPerMin: d.Config.Currency.RequestsPerMin,
	}, d.Logger)

	// Messaging gateway webhook; notifications are dropped when no
	// webhook is configured
	if d.Config.Notify.WebhookURL != "" {
		d.Notifier = notify.NewService(d.Config.Notify.WebhookURL, d.Config.Notify.AuthToken, d.Logger)
	} else {
		d.Notifier = notify.Nop{}
		d.Logger.Warn("notification webhook not configured, notifications disabled")
	}

	// Receipt-voice reconciliation
	window := time.Duration(d.Config.Reconcile.TimeWindowMinutes) * time.Minute
	d.ReconcileService = reconcile.NewService(d.ReconcileRepo, d.Notifier, window, d.Logger)

	// Analytics exports
	d.Exporter = analytics.NewExporter(d.AnalyticsRepo, d.Logger)

	// The parsing pipeline and the executors behind it
	d.Classifier = nlu.NewClassifier(d.Logger)
	d.Dispatcher = command.NewDispatcher(d.Logger,
		transactions.NewExecutor(d.TransactionsRepo, d.CategorizationService, d.Logger),
		goals.NewExecutor(d.GoalsRepo, d.Logger),
		sources.NewExecutor(d.SourcesRepo, d.Logger),
		settings.NewExecutor(d.SettingsRepo, d.Logger),
		reminders.NewExecutor(d.RemindersRepo, d.Logger),
		debts.NewExecutor(d.DebtsRepo, d.Logger),
		analytics.NewExecutor(d.AnalyticsRepo, d.Logger),
	)

	// Background jobs
	d.Scheduler = cron.NewScheduler(d.RemindersRepo, d.DebtsRepo, d.ReconcileService, d.CurrencyService, d.Notifier, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.SuggestionIndex != nil {
		if err := d.SuggestionIndex.Close(); err != nil {
			d.Logger.Warn("failed to close suggestion index", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
