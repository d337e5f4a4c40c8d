// Package similarity computes the embedding-based semantic match between a job
// posting and a resume.
package similarity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/metrics"
	"github.com/jonathan/resume-matcher/internal/types"
)

// MaxEmbedChars bounds the normalized text sent to the embedding model.
const MaxEmbedChars = 8000

// Section weights.
const (
	experienceWeight       = 0.7
	skillsWeight           = 0.3
	requirementsWeight     = 0.5
	responsibilitiesWeight = 0.3
	qualificationsWeight   = 0.2
)

// L2Store is a second cache tier consulted after in-process misses.
type L2Store interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vector []float32, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// Engine embeds text sections and scores their similarity.
type Engine struct {
	embedder embedding.Embedder
	cache    *embedding.Cache
	l2       L2Store
	ttl      time.Duration
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithL2 adds a persistent cache tier.
func WithL2(store L2Store, ttl time.Duration) Option {
	return func(e *Engine) {
		e.l2 = store
		e.ttl = ttl
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a similarity engine. A nil cache gets the default cache.
func NewEngine(embedder embedding.Embedder, cache *embedding.Cache, opts ...Option) *Engine {
	if cache == nil {
		cache = embedding.NewCache(embedding.DefaultCacheConfig())
	}
	e := &Engine{
		embedder: embedder,
		cache:    cache,
		ttl:      embedding.DefaultCacheTTL,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache exposes the in-process cache for stats and clearing.
func (e *Engine) Cache() *embedding.Cache {
	return e.cache
}

// ClearCache empties both cache tiers.
func (e *Engine) ClearCache(ctx context.Context) error {
	e.cache.Clear()
	if e.l2 != nil {
		if err := e.l2.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear L2 cache: %w", err)
		}
	}
	return nil
}

// NormalizeText prepares text for embedding: whitespace is collapsed, letters
// are lowercased and the result is cut to MaxEmbedChars runes. It is idempotent.
func NormalizeText(text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	runes := []rune(normalized)
	if len(runes) > MaxEmbedChars {
		normalized = strings.TrimSpace(string(runes[:MaxEmbedChars]))
	}
	return normalized
}

// Embed returns the embedding of text, served from cache when a vector for the
// same normalized text was computed within the TTL.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	normalized := NormalizeText(text)
	if normalized == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	key := embedding.Key(e.embedder.Model() + "\x00" + normalized)

	if vec, ok := e.cache.Get(key); ok {
		metrics.EmbeddingCacheLookups.WithLabelValues("l1", "hit").Inc()
		return vec, nil
	}
	metrics.EmbeddingCacheLookups.WithLabelValues("l1", "miss").Inc()

	if e.l2 != nil {
		vec, ok, err := e.l2.Get(ctx, key)
		switch {
		case err != nil:
			e.logger.Warn("L2 embedding cache read failed", zap.Error(err))
		case ok:
			metrics.EmbeddingCacheLookups.WithLabelValues("l2", "hit").Inc()
			e.cache.Set(key, vec)
			return vec, nil
		default:
			metrics.EmbeddingCacheLookups.WithLabelValues("l2", "miss").Inc()
		}
	}

	start := time.Now()
	vec, err := e.embedder.Embed(ctx, normalized)
	metrics.EmbeddingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	e.cache.Set(key, vec)
	if e.l2 != nil {
		if err := e.l2.Set(ctx, key, vec, e.ttl); err != nil {
			e.logger.Warn("L2 embedding cache write failed", zap.Error(err))
		}
	}
	return vec, nil
}

// Calculate scores a resume against a job posting. It never fails: any error
// yields the fixed low-confidence fallback.
func (e *Engine) Calculate(ctx context.Context, job types.JobSections, resume types.ResumeSections) types.SimilarityScores {
	scores, err := e.calculate(ctx, job, resume)
	if err != nil {
		e.logger.Warn("similarity calculation failed, using fallback scores", zap.Error(err))
		return types.FallbackSimilarity()
	}
	return scores
}

func (e *Engine) calculate(ctx context.Context, job types.JobSections, resume types.ResumeSections) (types.SimilarityScores, error) {
	texts := []string{
		orFallback(job.Requirements, job.RawText),
		orFallback(job.Responsibilities, job.RawText),
		orFallback(job.Qualifications, job.RawText),
		orFallback(resume.Experience, resume.RawText),
		orFallback(resume.Skills, resume.RawText),
	}
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	for i, text := range texts {
		g.Go(func() error {
			vec, err := e.Embed(gctx, text)
			if err != nil {
				return err
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.SimilarityScores{}, err
	}

	resumeVec, err := weightedAverage(vectors[3], vectors[4], experienceWeight, skillsWeight)
	if err != nil {
		return types.SimilarityScores{}, err
	}

	req, err := clampedCosine(resumeVec, vectors[0])
	if err != nil {
		return types.SimilarityScores{}, err
	}
	resp, err := clampedCosine(resumeVec, vectors[1])
	if err != nil {
		return types.SimilarityScores{}, err
	}
	qual, err := clampedCosine(resumeVec, vectors[2])
	if err != nil {
		return types.SimilarityScores{}, err
	}

	overall := requirementsWeight*req + responsibilitiesWeight*resp + qualificationsWeight*qual

	return types.SimilarityScores{
		RequirementsMatch:     req,
		ResponsibilitiesMatch: resp,
		QualificationsMatch:   qual,
		OverallSemantic:       overall,
		Confidence:            AssessConfidence(job, resume, []float64{req, resp, qual}),
	}, nil
}

func orFallback(section, raw string) string {
	if strings.TrimSpace(section) != "" {
		return section
	}
	return raw
}
