package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/scriptforge/internal/config"
	logpkg "github.com/kailas-cloud/scriptforge/internal/logger"
	"github.com/kailas-cloud/scriptforge/internal/metrics"
	corpusrepo "github.com/kailas-cloud/scriptforge/internal/repository/corpus"
	chiTransport "github.com/kailas-cloud/scriptforge/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/scriptforge/internal/transport/openai"
	"github.com/kailas-cloud/scriptforge/internal/version"
	cataloguc "github.com/kailas-cloud/scriptforge/internal/usecase/catalog"
	generationuc "github.com/kailas-cloud/scriptforge/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/scriptforge/internal/usecase/health"
	traininguc "github.com/kailas-cloud/scriptforge/internal/usecase/training"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting scriptforge API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("corpus_dirs", cfg.Corpus.Dirs),
	)

	metrics.RegisterGenerationMetrics()

	// Corpus: first existing directory wins
	store := corpusrepo.NewStore()
	root, docs, err := corpusrepo.NewLoader(cfg.Corpus.Dirs, logger).Load()
	if err != nil {
		logger.Error("Corpus load failed, continuing with what was read", zap.Error(err))
	}
	store.Load(docs)

	// Pass nil interfaces (not typed nil pointers) when no provider is configured.
	var completer generationuc.Completer
	var providerChecker healthuc.ProviderChecker
	if cfg.LLM.Configured() {
		c := openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		completer = c
		providerChecker = c
		logger.Info("Language model configured",
			zap.String("model", cfg.LLM.Model),
			zap.String("base_url", cfg.LLM.BaseURL),
		)
	} else {
		logger.Warn("OPENAI_API_KEY not set or placeholder, serving fallback content only")
	}

	genSvc := generationuc.New(store, completer, generationuc.Config{
		TopN:             cfg.Corpus.TopN,
		ExcerptChars:     cfg.Corpus.ExcerptChars,
		Temperature:      cfg.LLM.Temperature,
		SceneMaxTokens:   cfg.LLM.SceneMaxTokens,
		OutlineMaxTokens: cfg.LLM.OutlineMaxTokens,
	}, logger)
	trainSvc := traininguc.New(store)
	healthSvc := healthuc.New(store, providerChecker)

	catalogSvc := cataloguc.New(store)

	server := chiTransport.NewServer(genSvc, trainSvc, store, catalogSvc, healthSvc, logger).
		WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes)
	handler := chiTransport.NewRouter(server, logger, cfg.HTTP.CORSOrigin)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Corpus.Watch && root != "" {
		watcher := corpusrepo.NewWatcher(root, store, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("Corpus watcher stopped", zap.Error(err))
			}
		}()
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr), zap.Int("corpus_size", store.Count()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
