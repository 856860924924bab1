package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/donation-ledger/internal"
	"github.com/frahmantamala/donation-ledger/internal/advance"
	"github.com/frahmantamala/donation-ledger/internal/dashboard"
	"github.com/frahmantamala/donation-ledger/internal/expense"
	"github.com/frahmantamala/donation-ledger/internal/ledger"
	"github.com/frahmantamala/donation-ledger/internal/outstanding"
	"github.com/frahmantamala/donation-ledger/internal/transport/middleware"
	"github.com/frahmantamala/donation-ledger/internal/transport/swagger"
	"github.com/frahmantamala/donation-ledger/internal/txnlog"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups the module handlers the router mounts.
type Handlers struct {
	Ledger      *ledger.Handler
	Advance     *advance.Handler
	Outstanding *outstanding.Handler
	Expense     *expense.Handler
	Dashboard   *dashboard.Handler
	Txnlog      *txnlog.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cfg *internal.Config, handlers Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.ActorContext(cfg.Security.TokenSecret))

			pr.Route("/entries", func(er chi.Router) {
				er.Post("/", handlers.Ledger.CreateEntry)
				er.Get("/", handlers.Ledger.ListEntries)
				er.Get("/{id}", handlers.Ledger.GetEntry)
				er.Delete("/{id}", handlers.Ledger.DeleteEntry)

				er.Post("/{id}/payments", handlers.Ledger.RecordPayment)
				er.Patch("/{id}/payments/{index}", handlers.Ledger.EditPayment)
				er.Delete("/{id}/payments/{index}", handlers.Ledger.DeletePayment)

				er.Post("/{id}/apply-advance", handlers.Advance.ApplyAdvance)
			})

			pr.Route("/advances", func(ar chi.Router) {
				ar.Post("/", handlers.Advance.CreateAdvance)
				ar.Get("/", handlers.Advance.ListAdvances)
				ar.Get("/usages", handlers.Advance.ListUsages)
				ar.Get("/balance/{userId}", handlers.Advance.GetBalance)
			})

			pr.Route("/outstanding", func(or chi.Router) {
				or.Post("/", handlers.Outstanding.CreateRecord)
				or.Get("/", handlers.Outstanding.ListRecords)
				or.Get("/{id}", handlers.Outstanding.GetRecord)

				or.Post("/{id}/payments", handlers.Outstanding.RecordPayment)
				or.Patch("/{id}/payments/{index}", handlers.Outstanding.EditPayment)
				or.Delete("/{id}/payments/{index}", handlers.Outstanding.DeletePayment)
			})

			pr.Route("/expenses", func(xr chi.Router) {
				xr.Post("/", handlers.Expense.CreateExpense)
				xr.Get("/", handlers.Expense.ListExpenses)
				xr.Get("/{id}", handlers.Expense.GetExpense)
				xr.Delete("/{id}", handlers.Expense.DeleteExpense)
			})

			pr.Get("/dashboard/summary", handlers.Dashboard.GetSummary)
			pr.Get("/transactions", handlers.Txnlog.ListTransactions)
		})
	})
}
