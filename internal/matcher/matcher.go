// Package matcher runs the full resume/job analysis: segmentation, semantic
// similarity and feature extraction in parallel, then feature matching,
// scoring and explanation.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/explain"
	"github.com/jonathan/resume-matcher/internal/extraction"
	"github.com/jonathan/resume-matcher/internal/matching"
	"github.com/jonathan/resume-matcher/internal/metrics"
	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/segment"
	"github.com/jonathan/resume-matcher/internal/similarity"
	"github.com/jonathan/resume-matcher/internal/types"
)

// Defaults for batch processing.
const (
	DefaultBatchSize  = 3
	DefaultBatchDelay = 100 * time.Millisecond
)

// Service is the matching orchestrator. It is safe for concurrent use.
type Service struct {
	similarity *similarity.Engine
	scoring    *scoring.Engine
	jobs       extraction.JobExtractor
	resumes    extraction.ResumeExtractor
	logger     *zap.Logger
	batchSize  int
	batchDelay time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBatching sets the batch group size and the pause between groups.
func WithBatching(size int, delay time.Duration) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
		if delay >= 0 {
			s.batchDelay = delay
		}
	}
}

// New wires a Service from its collaborators.
func New(sim *similarity.Engine, scorer *scoring.Engine, jobs extraction.JobExtractor, resumes extraction.ResumeExtractor, opts ...Option) *Service {
	s := &Service{
		similarity: sim,
		scoring:    scorer,
		jobs:       jobs,
		resumes:    resumes,
		logger:     zap.NewNop(),
		batchSize:  DefaultBatchSize,
		batchDelay: DefaultBatchDelay,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoringConfig returns the active scoring configuration.
func (s *Service) ScoringConfig() scoring.Config {
	return s.scoring.Config()
}

// AnalyzeMatch scores resume against job. It never returns an error or
// panics: failures come back as a MatchError with a fallback score.
func (s *Service) AnalyzeMatch(ctx context.Context, job string, resume ResumeInput, opts *Options) (out types.MatchOutcome) {
	start := s.now()
	mode := "full"
	if !opts.includeExplanation() {
		mode = "quick"
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("match analysis panicked", zap.Any("panic", r), zap.Stack("stack"))
			out = types.MatchOutcome{Error: newMatchError(&PanicError{Value: r}, FallbackScore, s.now())}
		}
		outcome := metrics.OutcomeSuccess
		if !out.OK() {
			outcome = metrics.OutcomeError
		}
		metrics.MatchesTotal.WithLabelValues(outcome).Inc()
		metrics.MatchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}()

	result, err := s.analyze(ctx, job, resume, opts)
	if err != nil {
		me := newMatchError(err, FallbackScore, s.now())
		s.logger.Warn("match analysis failed",
			zap.String("error_type", string(me.ErrorType)),
			zap.Error(err))
		return types.MatchOutcome{Error: me}
	}
	result.ProcessingTimeMs = s.now().Sub(start).Milliseconds()
	return types.MatchOutcome{Result: result}
}

func (s *Service) analyze(ctx context.Context, job string, resume ResumeInput, opts *Options) (*types.MatchResult, error) {
	if err := validateInput(job, resume); err != nil {
		return nil, err
	}
	if opts != nil {
		if err := s.scoring.ApplyOverrides(opts.CustomWeights, opts.CustomGates); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobSections := segment.SegmentJob(job)
	var resumeSections types.ResumeSections
	if strings.TrimSpace(resume.Content) != "" {
		resumeSections = segment.SegmentResume(resume.Content)
	} else {
		resumeSections = sectionsFromFeatures(*resume.Features)
	}

	var (
		mu             sync.Mutex
		warnings       []string
		simScores      = types.FallbackSimilarity()
		jobFeatures    = extraction.EmptyJobFeatures()
		resumeFeatures = extraction.EmptyResumeFeatures()
	)
	warn := func(msgs ...string) {
		mu.Lock()
		warnings = append(warnings, msgs...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.guard("similarity", warn, func() {
		simScores = s.similarity.Calculate(gctx, jobSections, resumeSections)
		if simScores.Degraded {
			warn("semantic similarity unavailable; fallback similarity scores used")
		}
	}))
	g.Go(s.guard("job extraction", warn, func() {
		f, err := s.jobs.ExtractJobFeatures(gctx, jobSections)
		jobFeatures = recoverFeatures(s, extraction.SideJob, f, err, extraction.EmptyJobFeatures(), warn)
	}))
	if resume.Features != nil {
		resumeFeatures = *resume.Features
	} else {
		g.Go(s.guard("resume extraction", warn, func() {
			f, err := s.resumes.ExtractResumeFeatures(gctx, resumeSections)
			resumeFeatures = recoverFeatures(s, extraction.SideResume, f, err, extraction.EmptyResumeFeatures(), warn)
		}))
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("match cancelled after fan-out: %w", err)
	}

	featureMatch := matching.Analyze(jobFeatures, resumeFeatures, jobSections.RawText)
	scored := s.scoring.Calculate(scoring.Input{
		Similarity:   simScores,
		FeatureMatch: featureMatch,
		Job:          jobFeatures,
		Resume:       resumeFeatures,
	})

	result := &types.MatchResult{
		ID:             uuid.NewString(),
		FinalScore:     scored.FinalScore,
		Confidence:     scored.Confidence,
		JobSections:    jobSections,
		ResumeSections: resumeSections,
		JobFeatures:    jobFeatures,
		ResumeFeatures: resumeFeatures,
		Similarity:     simScores,
		FeatureMatch:   featureMatch,
		Scoring:        scored,
		Warnings:       warnings,
		StrictMode:     opts.strict(),
		Timestamp:      s.now(),
	}
	if opts.includeExplanation() {
		exp := explain.Generate(explain.Input{
			Similarity:   simScores,
			FeatureMatch: featureMatch,
			Job:          jobFeatures,
			Resume:       resumeFeatures,
			Scoring:      scored,
		})
		result.Explanation = &exp
	}
	return result, nil
}

// guard adapts fn for errgroup. A panic inside a collaborator becomes a
// warning and leaves that branch's fallback value in place.
func (s *Service) guard(name string, warn func(...string), fn func()) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("collaborator panicked", zap.String("component", name), zap.Any("panic", r))
				warn(fmt.Sprintf("%s failed: %v", name, r))
			}
		}()
		fn()
		return nil
	}
}

// recoverFeatures keeps partially extracted features and substitutes empty
// ones for any other failure. Failures become warnings either way.
func recoverFeatures[T any](s *Service, side string, f T, err error, empty T, warn func(...string)) T {
	if err == nil {
		return f
	}
	var pe *extraction.PartialError
	if errors.As(err, &pe) {
		warn(pe.Warnings()...)
		return f
	}
	s.logger.Warn("feature extraction failed", zap.String("side", side), zap.Error(err))
	warn(fmt.Sprintf("%s feature extraction failed: %v", side, err))
	return empty
}

// ClearCache empties the embedding caches.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.similarity.ClearCache(ctx)
}

// CacheStats reports the in-process embedding cache counters.
func (s *Service) CacheStats() embedding.CacheStats {
	return s.similarity.Cache().Stats()
}
