package generation

import (
	"context"

	"go.uber.org/zap"

	domgen "github.com/kailas-cloud/scriptforge/internal/domain/generation"
	"github.com/kailas-cloud/scriptforge/internal/metrics"
	"github.com/kailas-cloud/scriptforge/internal/usecase/fallback"
	"github.com/kailas-cloud/scriptforge/internal/usecase/relevance"
)

// Config tunes prompt construction and the model budget.
type Config struct {
	TopN             int
	ExcerptChars     int
	Temperature      float32
	SceneMaxTokens   int
	OutlineMaxTokens int
}

// DefaultConfig returns the production budget.
func DefaultConfig() Config {
	return Config{
		TopN:             relevance.DefaultTopN,
		ExcerptChars:     relevance.DefaultExcerptChars,
		Temperature:      0.3,
		SceneMaxTokens:   1000,
		OutlineMaxTokens: 800,
	}
}

// Service generates scenes and outlines from the corpus.
type Service struct {
	corpus    CorpusReader
	completer Completer
	composer  *fallback.Composer
	cfg       Config
	logger    *zap.Logger
}

// New creates a generation service. completer may be nil, in which case every
// request is served by the fallback composer.
func New(corpus CorpusReader, completer Completer, cfg Config, logger *zap.Logger) *Service {
	def := DefaultConfig()
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	if cfg.ExcerptChars <= 0 {
		cfg.ExcerptChars = def.ExcerptChars
	}
	if cfg.SceneMaxTokens <= 0 {
		cfg.SceneMaxTokens = def.SceneMaxTokens
	}
	if cfg.OutlineMaxTokens <= 0 {
		cfg.OutlineMaxTokens = def.OutlineMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		corpus:    corpus,
		completer: completer,
		composer:  fallback.New(cfg.ExcerptChars),
		cfg:       cfg,
		logger:    logger,
	}
}

// Generate produces content for the request. The model is tried once; any failure
// is answered by the fallback composer over the same excerpts. Any prompt, even an
// empty one, gets content. Output types other than Outline produce a scene, and the
// result echoes the requested type.
func (s *Service) Generate(ctx context.Context, req domgen.Request) (domgen.Result, error) {
	echoed := req.OutputType
	if echoed == "" {
		echoed = domgen.Script
	}
	kind := echoed.Kind()

	excerpts := relevance.Top(req.Prompt, s.corpus.All(), s.cfg.TopN)

	completion := s.complete(ctx, kind, req.Prompt, excerpts)
	if completion.OK() {
		metrics.GenerationsTotal.WithLabelValues(string(kind), string(domgen.SourceModel)).Inc()
		return domgen.Result{
			Content:    completion.Text(),
			OutputType: echoed,
			Source:     domgen.SourceModel,
		}, nil
	}

	s.logger.Info("Serving fallback content",
		zap.String("output_type", string(kind)),
		zap.String("reason", string(completion.Reason())),
		zap.Int("excerpts", len(excerpts)),
		zap.Error(completion.Err()),
	)
	metrics.GenerationsTotal.WithLabelValues(string(kind), string(domgen.SourceFallback)).Inc()

	return domgen.Result{
		Content:        s.composer.Compose(req.Prompt, kind, excerpts),
		OutputType:     echoed,
		Source:         domgen.SourceFallback,
		FallbackReason: completion.Reason(),
	}, nil
}

func (s *Service) complete(
	ctx context.Context, outputType domgen.OutputType, prompt string, excerpts []relevance.Scored,
) domgen.Completion {
	if s.completer == nil {
		return domgen.Failed(domgen.NotConfigured, nil)
	}

	system, user := buildMessages(outputType, prompt, relevance.FormatExcerpts(excerpts, s.cfg.ExcerptChars))
	maxTokens := s.cfg.SceneMaxTokens
	if outputType == domgen.Outline {
		maxTokens = s.cfg.OutlineMaxTokens
	}

	return s.completer.Complete(ctx, domgen.Prompt{
		System:      system,
		User:        user,
		MaxTokens:   maxTokens,
		Temperature: s.cfg.Temperature,
	})
}

// Available reports whether a model is wired in.
func (s *Service) Available() bool {
	return s.completer != nil
}
