package scriptforge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/scriptforge/internal/config"
	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
	domgen "github.com/kailas-cloud/scriptforge/internal/domain/generation"
	"github.com/kailas-cloud/scriptforge/internal/domain/screenplay"
	corpusrepo "github.com/kailas-cloud/scriptforge/internal/repository/corpus"
	openaitransport "github.com/kailas-cloud/scriptforge/internal/transport/openai"
	generationuc "github.com/kailas-cloud/scriptforge/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/scriptforge/internal/usecase/health"
	traininguc "github.com/kailas-cloud/scriptforge/internal/usecase/training"
)

const (
	defaultModel   = "gpt-3.5-turbo"
	defaultTimeout = 60 * time.Second
)

// Internal interfaces for substitution in tests.
type generationUseCase interface {
	Generate(ctx context.Context, req domgen.Request) (domgen.Result, error)
}

type trainingUseCase interface {
	Train(ctx context.Context, in traininguc.Input) (domcorpus.Document, int, error)
}

type corpusReader interface {
	All() []domcorpus.Document
	Get(id string) (domcorpus.Document, error)
}

// Client is the scriptforge SDK entry point.
type Client struct {
	corpus     corpusReader
	genSvc     generationUseCase
	trainSvc   trainingUseCase
	healthSvc  healthUseCase
	corpusRoot string
	obs        *observer
}

// New creates a Client and loads the corpus from the first existing corpus directory.
// A client without WithOpenAI or WithCompleter serves fallback content only.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{temperature: 0.3}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store := corpusrepo.NewStore()
	var root string
	if len(cfg.corpusDirs) > 0 {
		var docs []domcorpus.Document
		root, docs, err = corpusrepo.NewLoader(cfg.corpusDirs, zap.NewNop()).Load()
		if err != nil {
			return nil, fmt.Errorf("scriptforge: load corpus: %w", err)
		}
		store.Load(docs)
	}

	return wireClient(store, root, cfg, obs), nil
}

func wireClient(store *corpusrepo.Store, root string, cfg *clientConfig, obs *observer) *Client {
	// Nil interfaces, not typed nil pointers, when no model is configured.
	var completer generationuc.Completer
	var provider healthuc.ProviderChecker
	switch {
	case cfg.completer != nil:
		completer = &completerAdapter{inner: cfg.completer}
		provider = staticProvider{}
	case cfg.openAI != nil && config.UsableAPIKey(cfg.openAI.apiKey):
		oa := newOpenAICompleter(cfg.openAI)
		completer = oa
		provider = oa
	}

	genSvc := generationuc.New(store, completer, generationuc.Config{
		TopN:         cfg.topN,
		ExcerptChars: cfg.excerptChars,
		Temperature:  cfg.temperature,
	}, zap.NewNop())

	return &Client{
		corpus:     store,
		genSvc:     genSvc,
		trainSvc:   traininguc.New(store),
		healthSvc:  healthuc.New(store, provider),
		corpusRoot: root,
		obs:        obs,
	}
}

func newOpenAICompleter(c *openAIConfig) *openaitransport.Completer {
	model := c.model
	if model == "" {
		model = defaultModel
	}
	timeout := c.timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return openaitransport.NewCompleter(&openaitransport.Config{
		APIKey:  c.apiKey,
		BaseURL: c.baseURL,
		Model:   model,
		Timeout: timeout,
	})
}

// CorpusRoot returns the directory the corpus was loaded from, or "" if none was found.
func (c *Client) CorpusRoot() string {
	return c.corpusRoot
}

// Generate writes a scene or an outline for prompt. An empty outputType means Scene;
// any other value besides Scene and Outline is rejected with ErrInvalidInput.
// Model failures are not errors: the result then comes from the fallback composer.
func (c *Client) Generate(ctx context.Context, prompt string, outputType OutputType) (g Generation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("generate", start, err) }()

	ot, err := domgen.ParseOutputType(string(outputType))
	if err != nil {
		return Generation{}, fmt.Errorf("generate: %w", err)
	}

	res, err := c.genSvc.Generate(ctx, domgen.Request{Prompt: prompt, OutputType: ot})
	if err != nil {
		return Generation{}, fmt.Errorf("generate: %w", err)
	}

	g = Generation{
		Content:        res.Content,
		OutputType:     OutputType(res.OutputType),
		FromModel:      res.Source == domgen.SourceModel,
		FallbackReason: string(res.FallbackReason),
	}
	c.obs.observeGeneration(g)
	return g, nil
}

// Train adds a script to the corpus and returns it with the new corpus size.
func (c *Client) Train(ctx context.Context, in TrainInput) (s Script, count int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("train", start, err) }()

	doc, count, err := c.trainSvc.Train(ctx, traininguc.Input{
		Content:  in.Content,
		ScriptID: in.ScriptID,
		Metadata: in.Metadata,
	})
	if err != nil {
		return Script{}, count, fmt.Errorf("train: %w", err)
	}
	return scriptFromDomain(doc), count, nil
}

// Scripts returns every corpus entry in insertion order.
func (c *Client) Scripts() []Script {
	docs := c.corpus.All()
	out := make([]Script, len(docs))
	for i, d := range docs {
		out[i] = scriptFromDomain(d)
	}
	return out
}

// Script returns one corpus entry by ID. File scripts use their corpus-relative path as ID.
func (c *Client) Script(id string) (s Script, err error) {
	start := time.Now()
	defer func() {
		// A missing script is an answer, not a failure.
		if errors.Is(err, ErrNotFound) {
			c.obs.observe("script.get", start, nil)
			return
		}
		c.obs.observe("script.get", start, err)
	}()

	doc, err := c.corpus.Get(id)
	if err != nil {
		return Script{}, fmt.Errorf("get script: %w", err)
	}
	return scriptFromDomain(doc), nil
}

func scriptFromDomain(d domcorpus.Document) Script {
	s := Script{
		ID:       d.ID,
		Filename: d.Filename,
		Content:  d.Content,
		Metadata: d.Metadata,
		Parsed:   structureFromDomain(d.Structure()),
	}
	if d.Timestamp != nil {
		s.Timestamp = *d.Timestamp
	}
	return s
}

func structureFromDomain(p screenplay.Script) Structure {
	dialogue := make([]string, len(p.Dialogue))
	for i, ex := range p.Dialogue {
		dialogue[i] = ex.String()
	}
	return Structure{
		Scenes:       p.Scenes,
		Characters:   p.Characters,
		Dialogue:     dialogue,
		Descriptions: p.Descriptions,
	}
}
