package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates search works without semantic reranking.
	Degraded Status = "degraded"
	// Unhealthy indicates the case store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckIdle indicates a lazily built component that has not been used yet.
	CheckIdle CheckResult = "idle"
)

// Component names in Report.Checks.
const (
	ComponentDatabase  = "database"
	ComponentEmbedding = "embedding"
)

// DefaultTimeout bounds each component check.
const DefaultTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	timeout   time.Duration
}

// New creates a Service. embedding can be nil.
func New(db DBPinger, embedding EmbeddingChecker) *Service {
	return &Service{db: db, embedding: embedding, timeout: DefaultTimeout}
}

// Check runs health checks against all components.
// A lazily built embedder is reported idle instead of being built by the probe.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)

	checks[ComponentDatabase] = s.probe(ctx, s.db.Ping)

	if s.embedding != nil {
		if l, ok := s.embedding.(lazyLoader); ok && !l.Loaded() {
			checks[ComponentEmbedding] = CheckIdle
		} else {
			checks[ComponentEmbedding] = s.probe(ctx, s.embedding.HealthCheck)
		}
	}

	status := Healthy
	switch {
	case checks[ComponentDatabase] == CheckError:
		status = Unhealthy
	case checks[ComponentEmbedding] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) probe(ctx context.Context, fn func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
