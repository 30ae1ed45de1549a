package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"debiti/internal/middleware/ratelimit"
	"debiti/internal/middleware/security"
	"debiti/internal/middleware/trace"
	"debiti/internal/services"
)

// Server exposes the debt ledger as a JSON API.
type Server struct {
	http.Server

	debts *services.DebtService

	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, debts *services.DebtService) *Server {
	s := &Server{
		debts:   debts,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	extractor := security.NewExtractor()
	tracer := trace.NewMiddleware(extractor.ClientIP)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(tracer.Middleware)
	api.Use(security.Headers())
	api.Use(s.limiter.Middleware(extractor.ClientIP, nil))

	api.HandleFunc("/banks", s.handleCreateBank).Methods(http.MethodPost)
	api.HandleFunc("/banks", s.handleListBanks).Methods(http.MethodGet)
	api.HandleFunc("/banks/{id:[0-9]+}", s.handleGetBank).Methods(http.MethodGet)
	api.HandleFunc("/banks/{id:[0-9]+}", s.handleUpdateBank).Methods(http.MethodPatch)
	api.HandleFunc("/banks/{id:[0-9]+}", s.handleDeleteBank).Methods(http.MethodDelete)

	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleGetTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleUpdateTransaction).Methods(http.MethodPatch)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/payments", s.handleCreatePayment).Methods(http.MethodPost)
	api.HandleFunc("/payments", s.handleListPayments).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id:[0-9]+}", s.handleGetPayment).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id:[0-9]+}", s.handleUpdatePayment).Methods(http.MethodPatch)
	api.HandleFunc("/payments/{id:[0-9]+}", s.handleDeletePayment).Methods(http.MethodDelete)

	api.HandleFunc("/reports/monthly", s.handleMonthlyReport).Methods(http.MethodGet)
	api.HandleFunc("/reports/categories", s.handleAllCategoryReports).Methods(http.MethodGet)
	api.HandleFunc("/reports/categories/{category}", s.handleCategoryReport).Methods(http.MethodGet)
	api.HandleFunc("/reports/due-dates", s.handleDueDateReport).Methods(http.MethodGet)
	api.HandleFunc("/reports/due-dates/upcoming", s.handleUpcomingDueDates).Methods(http.MethodGet)
	api.HandleFunc("/reports/due-dates/overdue", s.handleOverdueDueDates).Methods(http.MethodGet)

	s.Server = http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Router returns the configured handler, for tests.
func (s *Server) Router() http.Handler {
	return s.Server.Handler
}

// Shutdown stops the rate limiter cleanup goroutine and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
