package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/extraction"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/logging"
	"github.com/jonathan/resume-matcher/internal/matcher"
	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/similarity"
)

// runtime is a wired matcher plus everything that must be closed with it.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	matcher *matcher.Service
	closers []func() error
}

func (r *runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	_ = r.logger.Sync()
	return errors.Join(errs...)
}

// loadConfig reads the config file and environment, then applies the
// persistent log flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRuntime wires the matcher. With a Gemini key it uses hosted embeddings
// and LLM extraction; without one it runs fully offline.
func newRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	logger, err := logging.New(cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	rt := &runtime{cfg: cfg, logger: logger}

	scorer, err := scoring.NewEngine(cfg.Scoring, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}

	var (
		embedder embedding.Embedder
		jobs     extraction.JobExtractor
		resumes  extraction.ResumeExtractor
	)
	if key := cfg.Gemini.APIKey; key != "" {
		gem, err := embedding.NewGeminiEmbedder(ctx, key, cfg.Gemini.EmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		rt.closers = append(rt.closers, gem.Close)

		client, err := llm.NewClient(ctx, cfg.LLMConfig(), key)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		rt.closers = append(rt.closers, client.Close)

		policy := cfg.RetryPolicy()
		policy.Logger = logger
		ext := extraction.NewLLMExtractor(client, extraction.WithPolicy(policy), extraction.WithLogger(logger))
		embedder, jobs, resumes = gem, ext, ext
	} else {
		logger.Warn("no Gemini API key configured; using offline hash embeddings and heuristic extraction")
		h := extraction.NewHeuristicExtractor()
		embedder, jobs, resumes = embedding.NewHashEmbedder(cfg.Embedding.Dimensions), h, h
	}

	simOpts := []similarity.Option{similarity.WithLogger(logger)}
	if cfg.Redis.URL != "" {
		store, err := embedding.ConnectRedisStore(ctx, cfg.Redis.URL, cfg.Redis.Prefix)
		if err != nil {
			logger.Warn("redis embedding tier unavailable; continuing with the in-process cache only", zap.Error(err))
		} else {
			rt.closers = append(rt.closers, store.Close)
			simOpts = append(simOpts, similarity.WithL2(store, cfg.Redis.TTL))
		}
	}

	sim := similarity.NewEngine(embedder, embedding.NewCache(cfg.CacheConfig()), simOpts...)
	rt.matcher = matcher.New(sim, scorer, jobs, resumes,
		matcher.WithLogger(logger),
		matcher.WithBatching(cfg.Batch.Size, cfg.Batch.Delay))
	return rt, nil
}

// setup loads config and wires the runtime for a command.
func setup(cmd *cobra.Command) (context.Context, *runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	ctx := commandContext(cmd)
	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return ctx, rt, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
