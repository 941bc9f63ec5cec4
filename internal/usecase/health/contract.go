package health

import "context"

// CorpusCounter reports the corpus size.
type CorpusCounter interface {
	Count() int
}

// ProviderChecker checks language model provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
