package matcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/extraction"
	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/similarity"
	"github.com/jonathan/resume-matcher/internal/types"
)

const sampleJob = `Senior Backend Engineer

About the role
We are a fintech company building payment infrastructure.

Requirements
- 5+ years of professional software engineering experience
- Strong Go and PostgreSQL skills
- Experience with Kubernetes and Terraform
- Bachelor's degree in Computer Science

Nice to have
- Kafka
`

const sampleResume = `Jane Doe
Senior Software Engineer, Berlin

Summary
Backend engineer with 7 years of experience building payment systems in fintech.

Experience
Senior Software Engineer, PayCo (2019 - present)
- Built Go services on Kubernetes backed by PostgreSQL

Skills
Go, PostgreSQL, Kubernetes, Docker

Education
Master's in Computer Science
`

type jobExtractorFunc func(ctx context.Context, s types.JobSections) (types.JobFeatures, error)

func (f jobExtractorFunc) ExtractJobFeatures(ctx context.Context, s types.JobSections) (types.JobFeatures, error) {
	return f(ctx, s)
}

type resumeExtractorFunc func(ctx context.Context, s types.ResumeSections) (types.ResumeFeatures, error)

func (f resumeExtractorFunc) ExtractResumeFeatures(ctx context.Context, s types.ResumeSections) (types.ResumeFeatures, error) {
	return f(ctx, s)
}

func newTestService(t *testing.T, jobs extraction.JobExtractor, resumes extraction.ResumeExtractor, opts ...Option) *Service {
	t.Helper()
	return newServiceWithEmbedder(t, embedding.NewHashEmbedder(256), jobs, resumes, opts...)
}

func newServiceWithEmbedder(t *testing.T, embedder embedding.Embedder, jobs extraction.JobExtractor, resumes extraction.ResumeExtractor, opts ...Option) *Service {
	t.Helper()
	logger := zaptest.NewLogger(t)
	heuristic := extraction.NewHeuristicExtractor()
	if jobs == nil {
		jobs = heuristic
	}
	if resumes == nil {
		resumes = heuristic
	}
	sim := similarity.NewEngine(embedder, embedding.NewCache(embedding.DefaultCacheConfig()), similarity.WithLogger(logger))
	scorer, err := scoring.NewEngine(scoring.DefaultConfig(), logger)
	require.NoError(t, err)
	return New(sim, scorer, jobs, resumes, append([]Option{WithLogger(logger), WithBatching(2, 0)}, opts...)...)
}

func ptr[T any](v T) *T { return &v }

func TestAnalyzeMatch_Success(t *testing.T) {
	svc := newTestService(t, nil, nil)

	out := svc.AnalyzeMatch(context.Background(), sampleJob, ResumeInput{Content: sampleResume}, nil)
	require.True(t, out.OK(), "unexpected error: %+v", out.Error)

	r := out.Result
	assert.NotEmpty(t, r.ID)
	assert.GreaterOrEqual(t, r.FinalScore, 0)
	assert.LessOrEqual(t, r.FinalScore, 100)
	assert.Contains(t, r.ResumeFeatures.Skills, "Go")
	assert.Contains(t, r.JobFeatures.Skills.AllSkills(), "Kubernetes")
	assert.False(t, r.Similarity.Degraded)
	require.NotNil(t, r.Explanation)
	assert.NotEmpty(t, r.Explanation.Summary)
	assert.False(t, r.StrictMode)
	assert.GreaterOrEqual(t, r.ProcessingTimeMs, int64(0))
}

func TestAnalyzeMatch_NoExplanationAndStrict(t *testing.T) {
	svc := newTestService(t, nil, nil)

	out := svc.AnalyzeMatch(context.Background(), sampleJob, ResumeInput{Content: sampleResume},
		&Options{IncludeExplanation: ptr(false), StrictMode: true})
	require.True(t, out.OK())
	assert.Nil(t, out.Result.Explanation)
	assert.True(t, out.Result.StrictMode)
}

func TestAnalyzeMatch_ValidationErrors(t *testing.T) {
	svc := newTestService(t, nil, nil)

	tests := []struct {
		name   string
		job    string
		resume ResumeInput
	}{
		{"empty job", "   ", ResumeInput{Content: sampleResume}},
		{"missing resume", sampleJob, ResumeInput{}},
		{"oversized job", strings.Repeat("a", MaxInputChars+1), ResumeInput{Content: sampleResume}},
		{"oversized resume", sampleJob, ResumeInput{Content: strings.Repeat("a", MaxInputChars+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := svc.AnalyzeMatch(context.Background(), tt.job, tt.resume, nil)
			require.False(t, out.OK())
			assert.Equal(t, types.ErrorTypeValidation, out.Error.ErrorType)
			assert.Equal(t, FallbackScore, out.Error.FallbackScore)
			assert.Equal(t, FallbackScore, out.Score())
			assert.False(t, out.Error.Timestamp.IsZero())
		})
	}
}

func TestAnalyzeMatch_PreExtractedFeaturesSkipExtractor(t *testing.T) {
	var calls atomic.Int32
	resumes := resumeExtractorFunc(func(ctx context.Context, s types.ResumeSections) (types.ResumeFeatures, error) {
		calls.Add(1)
		return types.ResumeFeatures{}, nil
	})
	svc := newTestService(t, nil, resumes)

	features := types.ResumeFeatures{
		Skills:            []string{"Go", "PostgreSQL", "Kubernetes"},
		Domains:           []string{"fintech"},
		YearsOfExperience: ptr(6.0),
		CurrentLevel:      "senior",
		Education:         "Bachelor's",
	}
	out := svc.AnalyzeMatch(context.Background(), sampleJob, ResumeInput{Features: &features}, nil)
	require.True(t, out.OK(), "unexpected error: %+v", out.Error)
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, features.Skills, out.Result.ResumeFeatures.Skills)
	assert.Contains(t, out.Result.ResumeSections.Summary, "Senior professional")
	assert.Contains(t, out.Result.ResumeSections.RawText, "PostgreSQL")
}

func TestSectionsFromFeatures_MultibyteLevel(t *testing.T) {
	s := sectionsFromFeatures(types.ResumeFeatures{CurrentLevel: "éxpert", Skills: []string{"Go"}})
	assert.True(t, utf8.ValidString(s.Summary))
	assert.Contains(t, s.Summary, "Éxpert professional")

	s = sectionsFromFeatures(types.ResumeFeatures{CurrentLevel: "senior"})
	assert.Contains(t, s.Summary, "Senior professional")
}

func TestAnalyzeMatch_ExtractorFailureBecomesWarning(t *testing.T) {
	jobs := jobExtractorFunc(func(ctx context.Context, s types.JobSections) (types.JobFeatures, error) {
		return types.JobFeatures{}, errors.New("upstream unavailable")
	})
	svc := newTestService(t, jobs, nil)

	out := svc.AnalyzeMatch(context.Background(), sampleJob, ResumeInput{Content: sampleResume}, nil)
	require.True(t, out.OK())
	assert.Empty(t, out.Result.JobFeatures.Skills.AllSkills())
	require.NotEmpty(t, out.Result.Warnings)
	assert.Contains(t, strings.Join(out.Result.Warnings, "\n"), "job feature extraction failed")
}

func TestAnalyzeMatch_PartialExtractionKeepsFeatures(t *testing.T) {
	resumes := resumeExtractorFunc(func(ctx context.Context, s types.ResumeSections) (types.ResumeFeatures, error) {
		f := extraction.EmptyResumeFeatures()
		f.Skills = []string{"Go"}
		return f, &extraction.PartialError{
			Side:     extraction.SideResume,
			Failures: []extraction.FieldFailure{{Field: "domains", Err: errors.New("bad json")}},
		}
	})
	svc := newTestService(t, nil, resumes)

	out := svc.AnalyzeMatch(context.Background(), sampleJob, ResumeInput{Content: sampleResume}, nil)
	require.True(t, out.OK())
	assert.Equal(t, []string{"Go"}, out.Result.ResumeFeatures.Skills)
	assert.NotEmpty(t, out.Result.Warnings)
}

func TestAnalyzeMatch_CollaboratorPanicIsContained(t *testing.T) {
	jobs := jobExtractorFunc(func(ctx context.Context, s types.JobSections) (types.JobFeatures, error) {
		panic("boom")
	})
	svc := newTestService(t, jobs, nil)

	out := svc.AnalyzeMatch(context.Background(), sampleJob, ResumeInput{Content: sampleResume}, nil)
	require.True(t, out.OK())
	assert.Contains(t, strings.Join(out.Result.Warnings, "\n"), "job extraction failed: boom")
}

func TestAnalyzeMatch_CancelledContext(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := svc.AnalyzeMatch(ctx, sampleJob, ResumeInput{Content: sampleResume}, nil)
	require.False(t, out.OK())
	assert.Equal(t, types.ErrorTypeTimeout, out.Error.ErrorType)
}

func TestAnalyzeMatch_OverridesRetained(t *testing.T) {
	svc := newTestService(t, nil, nil)

	out := svc.AnalyzeMatch(context.Background(), sampleJob, ResumeInput{Content: sampleResume},
		&Options{CustomWeights: &scoring.WeightOverrides{Semantic: ptr(1.0)}, CustomGates: &scoring.GateOverrides{MaxYearsGap: ptr(5.0)}})
	require.True(t, out.OK())

	cfg := svc.ScoringConfig()
	assert.InDelta(t, 1.0/1.65, cfg.Weights.Semantic, 1e-9)
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-9)
	assert.Equal(t, 5.0, cfg.Gates.MaxYearsGap)

	out = svc.AnalyzeMatch(context.Background(), sampleJob, ResumeInput{Content: sampleResume}, nil)
	require.True(t, out.OK())
	assert.InDelta(t, 1.0/1.65, svc.ScoringConfig().Weights.Semantic, 1e-9)
}

func TestAnalyzeMatch_InvalidOverride(t *testing.T) {
	svc := newTestService(t, nil, nil)

	out := svc.AnalyzeMatch(context.Background(), sampleJob, ResumeInput{Content: sampleResume},
		&Options{CustomWeights: &scoring.WeightOverrides{Skills: ptr(-1.0)}})
	require.False(t, out.OK())
	assert.Equal(t, types.ErrorTypeValidation, out.Error.ErrorType)
	assert.InDelta(t, 0.30, svc.ScoringConfig().Weights.Skills, 1e-9)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.ErrorType
	}{
		{"nil", nil, types.ErrorTypeUnknown},
		{"validation type", &ValidationError{Field: "job", Message: "empty"}, types.ErrorTypeValidation},
		{"scoring config", &scoring.ConfigError{Field: "Weights.Skills", Tag: "gte"}, types.ErrorTypeValidation},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), types.ErrorTypeTimeout},
		{"model type", &embedding.ModelError{Model: "m", Cause: errors.New("quota")}, types.ErrorTypeModel},
		{"api call", &extraction.APICallError{Field: "skills", Message: "failed"}, types.ErrorTypeModel},
		{"panic", &PanicError{Value: "x"}, types.ErrorTypeProcessing},
		{"timeout keyword", errors.New("request timed out"), types.ErrorTypeTimeout},
		{"model keyword", errors.New("Embedding service unavailable"), types.ErrorTypeModel},
		{"processing keyword", errors.New("score is NaN"), types.ErrorTypeProcessing},
		{"unknown", errors.New("something odd"), types.ErrorTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestAnalyzeBatchMatches_PreservesOrder(t *testing.T) {
	svc := newTestService(t, nil, nil)

	pairs := []Pair{
		{Job: sampleJob, Resume: ResumeInput{Content: sampleResume}},
		{Job: "", Resume: ResumeInput{Content: sampleResume}},
		{Job: sampleJob, Resume: ResumeInput{Content: "Barista with latte art skills"}},
		{Job: sampleJob, Resume: ResumeInput{Content: sampleResume}, Options: &Options{StrictMode: true}},
		{Job: sampleJob, Resume: ResumeInput{}},
	}
	out := svc.AnalyzeBatchMatches(context.Background(), pairs)
	require.Len(t, out, len(pairs))

	assert.True(t, out[0].OK())
	require.False(t, out[1].OK())
	assert.Equal(t, BatchFallbackScore, out[1].Error.FallbackScore)
	assert.True(t, out[2].OK())
	require.True(t, out[3].OK())
	assert.True(t, out[3].Result.StrictMode)
	require.False(t, out[4].OK())
	assert.Equal(t, BatchFallbackScore, out[4].Score())

	assert.Greater(t, out[0].Result.FinalScore, out[2].Result.FinalScore)
}

func TestAnalyzeBatchMatches_Empty(t *testing.T) {
	svc := newTestService(t, nil, nil)
	assert.Empty(t, svc.AnalyzeBatchMatches(context.Background(), nil))
}

func TestAnalyzeBatchMatches_CancelledBeforeStart(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pairs := []Pair{
		{Job: sampleJob, Resume: ResumeInput{Content: sampleResume}},
		{Job: sampleJob, Resume: ResumeInput{Content: sampleResume}},
		{Job: sampleJob, Resume: ResumeInput{Content: sampleResume}},
	}
	out := svc.AnalyzeBatchMatches(ctx, pairs)
	require.Len(t, out, 3)
	for _, o := range out {
		require.False(t, o.OK())
		assert.Equal(t, types.ErrorTypeTimeout, o.Error.ErrorType)
		assert.Equal(t, BatchFallbackScore, o.Error.FallbackScore)
	}
}

func TestAnalyzeBatchMatches_CancelledDuringDelay(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.batchSize = 1
	svc.batchDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	pairs := []Pair{
		{Job: sampleJob, Resume: ResumeInput{Content: sampleResume}},
		{Job: sampleJob, Resume: ResumeInput{Content: sampleResume}},
	}
	out := svc.AnalyzeBatchMatches(ctx, pairs)
	require.Len(t, out, 2)
	assert.True(t, out[0].OK())
	require.False(t, out[1].OK())
	assert.Equal(t, types.ErrorTypeTimeout, out[1].Error.ErrorType)
}

func TestAnalyzeBatchMatches_BoundedGroups(t *testing.T) {
	const (
		groupSize = 3
		delay     = 40 * time.Millisecond
	)
	var (
		mu       sync.Mutex
		inFlight int
		peak     int
		starts   []time.Time
	)
	heuristic := extraction.NewHeuristicExtractor()
	jobs := jobExtractorFunc(func(ctx context.Context, s types.JobSections) (types.JobFeatures, error) {
		mu.Lock()
		inFlight++
		peak = max(peak, inFlight)
		starts = append(starts, time.Now())
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return heuristic.ExtractJobFeatures(ctx, s)
	})
	svc := newTestService(t, jobs, nil, WithBatching(groupSize, delay))

	pairs := make([]Pair, 7)
	for i := range pairs {
		pairs[i] = Pair{Job: sampleJob, Resume: ResumeInput{Content: sampleResume}}
	}
	out := svc.AnalyzeBatchMatches(context.Background(), pairs)
	require.Len(t, out, len(pairs))
	for i, o := range out {
		assert.True(t, o.OK(), "pair %d: %+v", i, o.Error)
	}

	assert.Equal(t, groupSize, peak)
	require.Len(t, starts, len(pairs))
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	// groups are [0,3) [3,6) [6,7); each waits for the previous one plus the delay
	assert.GreaterOrEqual(t, starts[3].Sub(starts[2]), delay)
	assert.GreaterOrEqual(t, starts[6].Sub(starts[5]), delay)
}

func TestGetQuickScores(t *testing.T) {
	svc := newTestService(t, nil, nil)

	pairs := []Pair{
		{Job: sampleJob, Resume: ResumeInput{Content: sampleResume}, Options: &Options{IncludeExplanation: ptr(true)}},
		{Job: "", Resume: ResumeInput{Content: sampleResume}},
	}
	scores := svc.GetQuickScores(context.Background(), pairs)
	require.Len(t, scores, 2)

	assert.Empty(t, scores[0].Error)
	assert.NotEmpty(t, scores[0].Reason)
	assert.NotEmpty(t, scores[0].Gap)
	assert.GreaterOrEqual(t, scores[0].Score, 0)

	assert.Equal(t, BatchFallbackScore, scores[1].Score)
	assert.Equal(t, types.ConfidenceLow, scores[1].Confidence)
	assert.NotEmpty(t, scores[1].Error)

	// the caller's options are not mutated
	assert.True(t, *pairs[0].Options.IncludeExplanation)
}

func TestCacheStatsAndClear(t *testing.T) {
	svc := newTestService(t, nil, nil)

	out := svc.AnalyzeMatch(context.Background(), sampleJob, ResumeInput{Content: sampleResume}, nil)
	require.True(t, out.OK())
	assert.Positive(t, svc.CacheStats().Size)

	require.NoError(t, svc.ClearCache(context.Background()))
	assert.Zero(t, svc.CacheStats().Size)
}

func TestAnalyzeBatchStream_EmitsEveryPair(t *testing.T) {
	svc := newTestService(t, nil, nil)

	pairs := []Pair{
		{Job: sampleJob, Resume: ResumeInput{Content: sampleResume}},
		{Job: "", Resume: ResumeInput{Content: sampleResume}},
		{Job: sampleJob, Resume: ResumeInput{Content: sampleResume}},
	}
	seen := make(map[int]types.MatchOutcome)
	out := svc.AnalyzeBatchStream(context.Background(), pairs, func(i int, o types.MatchOutcome) {
		seen[i] = o
	})

	require.Len(t, seen, 3)
	for i := range pairs {
		assert.Equal(t, out[i].OK(), seen[i].OK())
	}
	assert.False(t, seen[1].OK())
}
