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
	// Degraded indicates partial failure. Search keeps answering: a cache outage
	// only affects the next startup, a provider outage zeroes query relevance.
	Degraded Status = "degraded"
	// Unhealthy indicates every checked component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names.
const (
	CheckCache     = "cache"
	CheckEmbedding = "embedding"
)

// DefaultTimeout bounds a single component check.
const DefaultTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status      Status
	Checks      map[string]CheckResult
	CacheDriver string
	Courses     int
}

// Options configures the health service. Nil components are not checked.
type Options struct {
	Cache       CachePinger
	CacheDriver string
	Embedding   EmbeddingChecker
	Courses     int
	Timeout     time.Duration
}

// Service coordinates health checks.
type Service struct {
	opts Options
}

// New creates a Service.
func New(opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheDriver == "" {
		opts.CacheDriver = "none"
	}
	return &Service{opts: opts}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.opts.Cache != nil {
		checks[CheckCache] = s.run(ctx, s.opts.Cache.Ping)
	}
	if s.opts.Embedding != nil {
		checks[CheckEmbedding] = s.run(ctx, s.opts.Embedding.HealthCheck)
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{
		Status:      status,
		Checks:      checks,
		CacheDriver: s.opts.CacheDriver,
		Courses:     s.opts.Courses,
	}
}

func (s *Service) run(ctx context.Context, check func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	if err := check(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
