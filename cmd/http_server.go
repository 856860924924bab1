package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/donation-ledger/internal"
	"github.com/frahmantamala/donation-ledger/internal/advance"
	advancePostgres "github.com/frahmantamala/donation-ledger/internal/advance/postgres"
	"github.com/frahmantamala/donation-ledger/internal/core/events"
	"github.com/frahmantamala/donation-ledger/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/donation-ledger/internal/dashboard/postgres"
	"github.com/frahmantamala/donation-ledger/internal/expense"
	expensePostgres "github.com/frahmantamala/donation-ledger/internal/expense/postgres"
	"github.com/frahmantamala/donation-ledger/internal/ledger"
	ledgerPostgres "github.com/frahmantamala/donation-ledger/internal/ledger/postgres"
	"github.com/frahmantamala/donation-ledger/internal/notification"
	"github.com/frahmantamala/donation-ledger/internal/outstanding"
	outstandingPostgres "github.com/frahmantamala/donation-ledger/internal/outstanding/postgres"
	"github.com/frahmantamala/donation-ledger/internal/receipt"
	receiptPostgres "github.com/frahmantamala/donation-ledger/internal/receipt/postgres"
	"github.com/frahmantamala/donation-ledger/internal/transport/rest"
	"github.com/frahmantamala/donation-ledger/internal/txnlog"
	txnlogPostgres "github.com/frahmantamala/donation-ledger/internal/txnlog/postgres"
	"github.com/frahmantamala/donation-ledger/pkg/logger"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := validateOpenAPISpec("./api/openapi.yml"); err != nil {
		deps.Logger.Warn("openapi spec validation failed", "error", err)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger

	bus := events.NewEventBus(lg)

	dispatcher := notification.NewDispatcher(notification.NewLogNotifier(lg), lg)
	dispatcher.Register(bus)

	prefixes := receipt.NewPrefixes(
		cfg.Receipt.BoliPrefix,
		cfg.Receipt.AdvancePrefix,
		cfg.Receipt.OutstandingPrefix,
	)
	counters := receiptPostgres.NewCounterAllocator(deps.Gorm, prefixes)

	ledgerRepo := ledgerPostgres.NewLedgerRepository(deps.Gorm, counters)
	ledgerService := ledger.NewService(ledgerRepo, bus, lg)

	advanceRepo := advancePostgres.NewAdvanceRepository(deps.Gorm, counters, ledgerRepo)
	advanceService := advance.NewService(advanceRepo, bus, lg)

	outstandingRepo := outstandingPostgres.NewOutstandingRepository(deps.Gorm, counters)
	outstandingService := outstanding.NewService(outstandingRepo, lg)

	expenseRepo := expensePostgres.NewExpenseRepository(deps.Gorm)
	expenseService := expense.NewService(expenseRepo, lg)

	dashboardRepo := dashboardPostgres.NewDashboardRepository(deps.Gorm)
	dashboardService := dashboard.NewService(dashboardRepo, lg)

	txnlogRepo := txnlogPostgres.NewTxnLogRepository(deps.Gorm)
	txnlogService := txnlog.NewService(txnlogRepo, lg)

	handlers := rest.Handlers{
		Ledger:      ledger.NewHandler(ledgerService),
		Advance:     advance.NewHandler(advanceService),
		Outstanding: outstanding.NewHandler(outstandingService),
		Expense:     expense.NewHandler(expenseService),
		Dashboard:   dashboard.NewHandler(dashboardService),
		Txnlog:      txnlog.NewHandler(txnlogService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, cfg, handlers, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitFromConfig(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		Gorm:   gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already-pooled pgx connection so gorm and
// raw sql queries share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
}

// validateOpenAPISpec loads and validates the served spec so drift between
// the document and reality fails loudly at startup rather than in a client.
func validateOpenAPISpec(path string) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("load spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return fmt.Errorf("validate spec: %w", err)
	}
	return nil
}
