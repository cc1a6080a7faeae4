package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"fortune/ledger-service/application"
)

type moveFunc func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error

// Server is the HTTP surface of the ledger
type Server struct {
	httpServer    *http.Server
	ledger        *application.Ledger
	accounts      *application.Accounts
	accrualWorker *application.AccrualWorker
	cycleWorker   *application.CycleWorker
	oracle        application.PriceOracle
}

// New creates a new HTTP server wired to the application layer
func New(
	addr string,
	ledger *application.Ledger,
	accounts *application.Accounts,
	accrualWorker *application.AccrualWorker,
	cycleWorker *application.CycleWorker,
	oracle application.PriceOracle,
) *Server {
	s := &Server{
		ledger:        ledger,
		accounts:      accounts,
		accrualWorker: accrualWorker,
		cycleWorker:   cycleWorker,
		oracle:        oracle,
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/rates", s.handleRates)

	r.Group(func(r chi.Router) {
		r.Use(authenticated)

		r.Post("/accounts", s.handleRegister)
		r.Get("/accounts/me", s.handleSnapshot)
		r.Patch("/accounts/me/flags", s.handleSetFlags)

		r.Post("/deposits", s.handleDeposit)
		r.Post("/withdrawals", s.handleWithdrawal)
		r.Get("/transactions", s.handleListTransactions)

		r.Post("/reinvest", s.handleReinvest)
		r.Post("/pool/reinvest", s.handlePoolReinvest)
		r.Post("/pool/withdraw", s.handlePoolWithdraw)

		r.Get("/referrals", s.handleReferrals)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly)

			r.Get("/transactions", s.handleAdminListPending)
			r.Post("/transactions/{id}/approve", s.handleAdminApprove)
			r.Post("/transactions/{id}/reject", s.handleAdminReject)
			r.Post("/transactions/{id}/undo", s.handleAdminUndo)

			r.Post("/accounts/{id}/adjust", s.handleAdminAdjust)

			r.Post("/jobs/accrue", s.handleAdminAccrue)
			r.Post("/jobs/tick", s.handleAdminTick)
		})
	})

	return r
}

// requestLogger logs each request through logrus
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Info("Handled request")
	})
}

// Start begins serving. Blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
