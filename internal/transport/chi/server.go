package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/casesearch/internal/domain"
	"github.com/kailas-cloud/casesearch/internal/domain/document"
	"github.com/kailas-cloud/casesearch/internal/logger"
	"github.com/kailas-cloud/casesearch/internal/metrics"
	healthuc "github.com/kailas-cloud/casesearch/internal/usecase/health"
	"github.com/kailas-cloud/casesearch/internal/version"
)

// Searcher runs the search pipeline.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]document.Document, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Options configures the HTTP server.
type Options struct {
	// Samples returns the cases served when the store is down or finds nothing. Nil disables the fallback.
	Samples func() []document.Document
	APIKeys []string
}

// Server serves the search API.
type Server struct {
	search        Searcher
	health        HealthChecker
	samples       func() []document.Document
	apiKeys       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, opts Options, log *zap.Logger) *Server {
	s := &Server{
		search:  search,
		health:  health,
		samples: opts.Samples,
		apiKeys: opts.APIKeys,
		logger:  log,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRepositoryUnavailable, http.StatusServiceUnavailable, CodeRepositoryUnavailable),
	}
	return s
}

// Router builds the chi router with the middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.apiKeys))
	r.Use(metrics.Middleware())

	r.Post("/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	limit := 0
	if req.Limit != nil {
		if *req.Limit <= 0 || *req.Limit > MaxLimit {
			writeError(w, http.StatusBadRequest, CodeValidationFailed,
				fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
			return
		}
		limit = *req.Limit
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	docs, err := s.search.Search(ctx, req.Query, limit)
	if err != nil {
		if errors.Is(err, domain.ErrRepositoryUnavailable) && s.samples != nil {
			logger.FromContext(r.Context()).Warn("Case store unavailable, serving samples", zap.Error(err))
			s.writeSamples(w, "Case store is unavailable. Showing sample cases instead.")
			return
		}
		s.handleDomainError(w, r, err)
		return
	}

	if len(docs) == 0 && s.samples != nil && strings.TrimSpace(req.Query) != "" {
		s.writeSamples(w, "No matching cases. Showing sample cases instead.")
		return
	}

	if docs == nil {
		docs = []document.Document{}
	}
	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{
		Items:  docs,
		Total:  len(docs),
		Source: SourceStore,
	})
}

func (s *Server) writeSamples(w http.ResponseWriter, warning string) {
	docs := s.samples()
	writeJSON(w, http.StatusOK, SearchResponse{
		Items:   docs,
		Total:   len(docs),
		Source:  SourceSamples,
		Warning: warning,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.SearchUsage) {
	if usage == nil {
		return
	}
	if usage.TotalTokens > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
	w.Header().Set("X-Search-Fallback", strconv.FormatBool(usage.FallbackUsed))
	w.Header().Set("X-Search-Reranked", strconv.FormatBool(usage.Reranked))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees the sentinel's message, never the wrapped cause.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
