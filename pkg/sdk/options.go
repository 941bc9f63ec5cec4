package scriptforge

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	corpusDirs []string

	completer Completer
	openAI    *openAIConfig

	topN         int
	excerptChars int
	temperature  float32

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

type openAIConfig struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

// WithCorpusDirs sets candidate corpus directories in priority order.
// The first existing directory is loaded; the rest are ignored.
func WithCorpusDirs(dirs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusDirs = dirs
	})
}

// WithOpenAI uses an OpenAI-compatible chat-completion API.
// Empty baseURL means api.openai.com; empty model means gpt-3.5-turbo.
// A blank key or the sample placeholder key leaves the client in fallback-only mode.
func WithOpenAI(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		oa := c.ensureOpenAI()
		oa.apiKey = apiKey
		oa.baseURL = baseURL
		oa.model = model
	})
}

// WithRequestTimeout bounds each model call. Default: 60s.
func WithRequestTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.ensureOpenAI().timeout = d
	})
}

func (c *clientConfig) ensureOpenAI() *openAIConfig {
	if c.openAI == nil {
		c.openAI = &openAIConfig{}
	}
	return c.openAI
}

// WithCompleter sets a custom model. It takes precedence over WithOpenAI.
func WithCompleter(cp Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = cp
	})
}

// WithTopN sets how many corpus excerpts ground each request. Default: 3.
func WithTopN(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topN = n
	})
}

// WithExcerptChars sets how many characters of each excerpt are used. Default: 1000.
func WithExcerptChars(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.excerptChars = n
	})
}

// WithTemperature sets the sampling temperature. Default: 0.3.
func WithTemperature(t float32) Option {
	return optionFunc(func(c *clientConfig) {
		c.temperature = t
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
