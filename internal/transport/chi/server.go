// Package chi exposes the HTTP API: hybrid search, discovery, health, and
// metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/confradar/confradar/internal/domain"
	"github.com/confradar/confradar/internal/domain/query"
	logpkg "github.com/confradar/confradar/internal/logger"
	"github.com/confradar/confradar/internal/usecase/discovery"
	"github.com/confradar/confradar/internal/usecase/retrieval"
)

// pinger is the health-check view of the backing store.
type pinger interface {
	Ping(ctx context.Context) error
}

// searcher runs the hybrid retrieval pipeline.
type searcher interface {
	Search(ctx context.Context, q query.Normalized) (*retrieval.Response, error)
}

// discoverer runs the URL discovery pipeline.
type discoverer interface {
	RunSearch(ctx context.Context, in discovery.Input) (discovery.Result, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	search        searcher
	discover      discoverer
	store         pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search searcher, discover discoverer, store pinger, logger *zap.Logger) *Server {
	s := &Server{
		search:   search,
		discover: discover,
		store:    store,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		countryMismatchHandler,
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrQueryTooLong, http.StatusBadRequest, codeQueryTooLong),
		sentinelHandler(domain.ErrRogueAugmentation, http.StatusBadRequest, codeRogueAugmentation),
		sentinelHandler(domain.ErrCircuitOpen, http.StatusServiceUnavailable, codeCircuitOpen),
		sentinelHandler(domain.ErrProviderTimeout, http.StatusGatewayTimeout, codeProviderTimeout),
		sentinelHandler(domain.ErrProvider, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// Routes mounts the API on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.Search)
	r.Post("/v1/discover", s.Discover)
	r.Get("/healthz", s.Health)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := query.New(req.toRaw(), s.requestLogger(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp, err := s.search.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("X-Correlation-ID", q.CorrelationID)
	writeJSON(w, http.StatusOK, resp)
}

// Discover handles POST /v1/discover.
func (s *Server) Discover(w http.ResponseWriter, r *http.Request) {
	var req DiscoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.discover.RunSearch(r.Context(), req.toInput())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DiscoverResponse{
		URLs:            res.URLs,
		RetriedWithBase: res.RetriedWithBase,
	})
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.requestLogger(r).Warn("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrQueryTooLong,
		domain.ErrRogueAugmentation,
		domain.ErrCountryMismatch,
		domain.ErrCircuitOpen,
		domain.ErrProviderTimeout,
		domain.ErrProvider,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// countryMismatchHandler handles ErrCountryMismatch with the offending
// document ids in the payload.
func countryMismatchHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrCountryMismatch) {
		return false
	}
	var cme *domain.CountryMismatchError
	if errors.As(err, &cme) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":      codeCountryMismatch,
			"message":   msg,
			"requested": cme.Requested,
			"doc_ids":   cme.DocIDs,
		})
		return true
	}
	writeError(w, http.StatusUnprocessableEntity, codeCountryMismatch, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// requestLogger returns the middleware-scoped logger for the request, or the
// server logger when no middleware provided one.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return logpkg.FromContextOr(r.Context(), s.logger)
}
