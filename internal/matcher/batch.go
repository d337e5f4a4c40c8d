package matcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-matcher/internal/explain"
	"github.com/jonathan/resume-matcher/internal/metrics"
	"github.com/jonathan/resume-matcher/internal/types"
)

// AnalyzeBatchMatches analyzes pairs in groups of the configured size with a
// pause between groups. The output has the same length and order as pairs.
// A failed pair carries the batch fallback score; pairs not started before
// ctx ends are reported as timeouts.
func (s *Service) AnalyzeBatchMatches(ctx context.Context, pairs []Pair) []types.MatchOutcome {
	return s.AnalyzeBatchStream(ctx, pairs, nil)
}

// AnalyzeBatchStream is AnalyzeBatchMatches that also hands each outcome to
// emit as soon as it is known. emit calls are serialized but arrive in
// completion order; index is the pair's position.
func (s *Service) AnalyzeBatchStream(ctx context.Context, pairs []Pair, emit func(index int, o types.MatchOutcome)) []types.MatchOutcome {
	return s.runBatch(ctx, pairs, emit, func(ctx context.Context, p Pair) types.MatchOutcome {
		return s.AnalyzeMatch(ctx, p.Job, p.Resume, p.Options)
	})
}

// GetQuickScores scores pairs without attaching explanations.
func (s *Service) GetQuickScores(ctx context.Context, pairs []Pair) []types.QuickScore {
	outcomes := s.runBatch(ctx, pairs, nil, func(ctx context.Context, p Pair) types.MatchOutcome {
		opts := Options{}
		if p.Options != nil {
			opts = *p.Options
		}
		noExplanation := false
		opts.IncludeExplanation = &noExplanation
		return s.AnalyzeMatch(ctx, p.Job, p.Resume, &opts)
	})

	scores := make([]types.QuickScore, len(outcomes))
	for i, o := range outcomes {
		scores[i] = quickScore(o)
	}
	return scores
}

func quickScore(o types.MatchOutcome) types.QuickScore {
	if !o.OK() {
		return types.QuickScore{
			Score:      o.Score(),
			Confidence: types.ConfidenceLow,
			Reason:     o.Error.Message,
			Gap:        "Analysis failed",
			Error:      o.Error.Details,
		}
	}
	r := o.Result
	q := explain.Quick(explain.Input{
		Similarity:   r.Similarity,
		FeatureMatch: r.FeatureMatch,
		Job:          r.JobFeatures,
		Resume:       r.ResumeFeatures,
		Scoring:      r.Scoring,
	})
	return types.QuickScore{Score: q.Score, Confidence: q.Confidence, Reason: q.OneLineReason, Gap: q.TopGap}
}

func (s *Service) runBatch(ctx context.Context, pairs []Pair, emit func(int, types.MatchOutcome), analyze func(context.Context, Pair) types.MatchOutcome) []types.MatchOutcome {
	metrics.BatchSize.Observe(float64(len(pairs)))
	out := make([]types.MatchOutcome, len(pairs))

	var emitMu sync.Mutex
	publish := func(i int) {
		if emit == nil {
			return
		}
		emitMu.Lock()
		defer emitMu.Unlock()
		emit(i, out[i])
	}

	for start := 0; start < len(pairs); start += s.batchSize {
		if start > 0 && !s.pause(ctx) {
			s.markCancelled(ctx, out, start, publish)
			break
		}
		if ctx.Err() != nil {
			s.markCancelled(ctx, out, start, publish)
			break
		}

		end := min(start+s.batchSize, len(pairs))
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				o := analyze(ctx, pairs[i])
				if o.Error != nil {
					o.Error.FallbackScore = BatchFallbackScore
				}
				out[i] = o
				publish(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	s.logger.Debug("batch finished", zap.Int("pairs", len(pairs)), zap.Int("group_size", s.batchSize))
	return out
}

// pause waits the inter-group delay; false means ctx ended first.
func (s *Service) pause(ctx context.Context) bool {
	if s.batchDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(s.batchDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Service) markCancelled(ctx context.Context, out []types.MatchOutcome, from int, publish func(int)) {
	err := fmt.Errorf("batch cancelled before pair was processed: %w", ctx.Err())
	s.logger.Warn("batch cancelled", zap.Int("remaining", len(out)-from), zap.Error(ctx.Err()))
	for i := from; i < len(out); i++ {
		me := newMatchError(err, BatchFallbackScore, s.now())
		me.ErrorType = types.ErrorTypeTimeout
		out[i] = types.MatchOutcome{Error: me}
		publish(i)
	}
}
