package health

import (
	"context"
	"time"
)

// Status represents the service status. The service is healthy whenever it can answer.
type Status string

// Healthy is the only status reported; a missing provider degrades to fallback, not to failure.
const Healthy Status = "healthy"

// ProviderStatus describes the language model provider.
type ProviderStatus string

const (
	// ProviderConfigured means a credential is set.
	ProviderConfigured ProviderStatus = "configured"
	// ProviderNotConfigured means requests use fallback content only.
	ProviderNotConfigured ProviderStatus = "not_configured"
	// ProviderReachable means a probe reached the provider.
	ProviderReachable ProviderStatus = "reachable"
	// ProviderUnreachable means a probe failed.
	ProviderUnreachable ProviderStatus = "unreachable"
)

// Report aggregates health check results.
type Report struct {
	Status         Status
	Timestamp      time.Time
	CorpusSize     int
	ProviderActive bool
	Provider       ProviderStatus
}

// Service coordinates health checks.
type Service struct {
	corpus   CorpusCounter
	provider ProviderChecker
	now      func() time.Time
}

// New creates a Service. provider is nil when no credential is configured.
func New(corpus CorpusCounter, provider ProviderChecker) *Service {
	return &Service{corpus: corpus, provider: provider, now: time.Now}
}

// Check reports corpus size and provider state. With probe set the provider is called.
func (s *Service) Check(ctx context.Context, probe bool) Report {
	r := Report{
		Status:     Healthy,
		Timestamp:  s.now(),
		CorpusSize: s.corpus.Count(),
		Provider:   ProviderNotConfigured,
	}
	if s.provider == nil {
		return r
	}

	r.ProviderActive = true
	r.Provider = ProviderConfigured
	if !probe {
		return r
	}

	if err := s.provider.HealthCheck(ctx); err != nil {
		r.Provider = ProviderUnreachable
	} else {
		r.Provider = ProviderReachable
	}
	return r
}
