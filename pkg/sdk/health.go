package scriptforge

import (
	"context"

	healthuc "github.com/kailas-cloud/scriptforge/internal/usecase/health"
)

// Health reports corpus size and model state. With probe set, the model provider is
// called; only clients built with WithOpenAI can be probed.
func (c *Client) Health(ctx context.Context, probe bool) HealthStatus {
	report := c.healthSvc.Check(ctx, probe)
	return HealthStatus{
		Status:         string(report.Status),
		CorpusSize:     report.CorpusSize,
		ProviderActive: report.ProviderActive,
		ProviderStatus: string(report.Provider),
		Timestamp:      report.Timestamp,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context, probe bool) healthuc.Report
}

// staticProvider reports a custom completer as configured; it cannot be probed.
type staticProvider struct{}

func (staticProvider) HealthCheck(context.Context) error { return nil }
