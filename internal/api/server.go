// Package api provides the HTTP REST API for the tax engine.
//
// It exposes full calculations, quarterly estimates, deduction validation and
// rate table inspection and refresh.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/config"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/rates"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     config.APIConfig
	engine  *calculation.TaxEngine
	logger  *zap.Logger
	version string
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg config.APIConfig, engine *calculation.TaxEngine, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		version: version,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on an existing listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", zap.String("addr", ln.Addr().String()))
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.CORSOrigins) > 0 {
		origins = s.cfg.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/tax/calculate", s.handleCalculate)
		r.Post("/tax/estimate", s.handleEstimate)
		r.Post("/deductions/validate", s.handleValidateDeductions)

		r.Get("/rates", s.handleRates)
		r.Post("/rates/refresh", s.handleRefreshRates)
	})

	return r
}

// requestLogger logs one structured line per request
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Duration("duration", time.Since(start)))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// EstimateRequest is the body for POST /api/v1/tax/estimate.
type EstimateRequest struct {
	Income       decimal.Decimal     `json:"income"`
	FilingStatus domain.FilingStatus `json:"filingStatus"`
	State        string              `json:"state,omitempty"`
}

// DeductionsRequest is the body for POST /api/v1/deductions/validate.
type DeductionsRequest struct {
	Deductions []domain.Deduction `json:"deductions"`
}

// RatesResponse describes the rate table in effect.
type RatesResponse struct {
	TaxYear int          `json:"taxYear"`
	Loader  string       `json:"loader"`
	Table   *rates.Table `json:"table"`
}

// HealthResponse is the payload of /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	TaxYear int    `json:"taxYear"`
	Remote  bool   `json:"remote"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: HealthResponse{
			Status:  "ok",
			Version: s.version,
			TaxYear: s.engine.Rates.Current().TaxYear,
			Remote:  s.engine.Remote != nil,
		},
	})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var input domain.TaxFormInput
	if !s.decodeBody(w, r, &input) {
		return
	}

	result, err := s.engine.Calculate(r.Context(), input)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	schedule, err := s.engine.EstimateQuarterly(r.Context(), req.Income, req.FilingStatus, req.State)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: schedule})
}

func (s *Server) handleValidateDeductions(w http.ResponseWriter, r *http.Request) {
	var req DeductionsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.engine.ValidateDeductions(req.Deductions),
	})
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	table := s.engine.Rates.Current()
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: RatesResponse{
			TaxYear: table.TaxYear,
			Loader:  s.engine.Rates.LoaderDescription(),
			Table:   table,
		},
	})
}

func (s *Server) handleRefreshRates(w http.ResponseWriter, r *http.Request) {
	table, err := s.engine.Rates.Refresh(r.Context())
	if err != nil {
		s.logger.Warn("rate refresh failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.logger.Info("rate table refreshed", zap.Int("tax_year", table.TaxYear))
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: RatesResponse{
			TaxYear: table.TaxYear,
			Loader:  s.engine.Rates.LoaderDescription(),
			Table:   table,
		},
	})
}

// decodeBody decodes a JSON body into v, writing a 400 on failure
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeEngineError maps structural input errors to 400 and everything else to 500
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("calculation failed", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "calculation failed")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write JSON response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
