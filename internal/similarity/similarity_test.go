package similarity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/types"
)

// countingEmbedder wraps another embedder and counts model calls.
type countingEmbedder struct {
	inner embedding.Embedder
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) Model() string { return "counting" }

func (c *countingEmbedder) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newCounting() *countingEmbedder {
	return &countingEmbedder{inner: embedding.NewHashEmbedder(256)}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "go developer with aws", NormalizeText("  Go   Developer\n\twith AWS "))
	long := strings.Repeat("é", MaxEmbedChars+50)
	assert.Len(t, []rune(NormalizeText(long)), MaxEmbedChars)

	once := NormalizeText("Mixed   CASE\ntext")
	assert.Equal(t, once, NormalizeText(once))
}

func TestEmbed_CachesWithinTTL(t *testing.T) {
	emb := newCounting()
	engine := NewEngine(emb, nil)
	ctx := context.Background()

	a, err := engine.Embed(ctx, "Senior Go Engineer")
	require.NoError(t, err)
	b, err := engine.Embed(ctx, "  senior   go engineer ")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 1, emb.Calls())
}

func TestEmbed_ZeroCapacityAlwaysCallsModel(t *testing.T) {
	emb := newCounting()
	engine := NewEngine(emb, embedding.NewCache(embedding.CacheConfig{Capacity: 0}))
	ctx := context.Background()

	_, err := engine.Embed(ctx, "text")
	require.NoError(t, err)
	_, err = engine.Embed(ctx, "text")
	require.NoError(t, err)

	assert.Equal(t, 2, emb.Calls())
}

func TestEmbed_EmptyText(t *testing.T) {
	engine := NewEngine(newCounting(), nil)
	_, err := engine.Embed(context.Background(), "   ")
	assert.Error(t, err)
}

func TestEmbed_L2TierServesAfterL1Clear(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := embedding.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	emb := newCounting()
	engine := NewEngine(emb, nil, WithL2(store, time.Hour), WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	first, err := engine.Embed(ctx, "kubernetes operator")
	require.NoError(t, err)

	engine.Cache().Clear()
	second, err := engine.Embed(ctx, "kubernetes operator")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, emb.Calls())

	require.NoError(t, engine.ClearCache(ctx))
	_, err = engine.Embed(ctx, "kubernetes operator")
	require.NoError(t, err)
	assert.Equal(t, 2, emb.Calls())
}

func richJob() types.JobSections {
	return types.JobSections{
		Requirements:     "5+ years of Go, Kubernetes, PostgreSQL and distributed systems experience",
		Responsibilities: "Design and build distributed backend services in Go running on Kubernetes",
		Qualifications:   "Experience with PostgreSQL, Kubernetes and Go microservices",
		Summary:          "Backend engineer on the platform team",
		RawText:          strings.Repeat("Backend Go engineer building distributed Kubernetes services with PostgreSQL. ", 5),
	}
}

func richResume() types.ResumeSections {
	return types.ResumeSections{
		Experience: "Built distributed backend services in Go on Kubernetes with PostgreSQL for 6 years",
		Skills:     "Go, Kubernetes, PostgreSQL, distributed systems, microservices",
		Education:  "BS Computer Science",
		Summary:    "Backend engineer",
		RawText:    strings.Repeat("Go engineer with Kubernetes and PostgreSQL building distributed backend services. ", 5),
	}
}

func TestCalculate_ScoresInRange(t *testing.T) {
	engine := NewEngine(newCounting(), nil)

	scores := engine.Calculate(context.Background(), richJob(), richResume())

	for _, v := range []float64{scores.RequirementsMatch, scores.ResponsibilitiesMatch, scores.QualificationsMatch, scores.OverallSemantic} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	expected := 0.5*scores.RequirementsMatch + 0.3*scores.ResponsibilitiesMatch + 0.2*scores.QualificationsMatch
	assert.InDelta(t, expected, scores.OverallSemantic, 1e-9)
	assert.False(t, scores.Degraded)
	assert.Greater(t, scores.OverallSemantic, 0.2)
}

func TestCalculate_UsesRawTextForEmptySections(t *testing.T) {
	emb := newCounting()
	engine := NewEngine(emb, nil)

	job := types.JobSections{RawText: "Go engineer"}
	resume := types.ResumeSections{RawText: "Go engineer"}
	scores := engine.Calculate(context.Background(), job, resume)

	// concurrent misses on the same text may each reach the model
	assert.LessOrEqual(t, emb.Calls(), 5)
	assert.InDelta(t, 1.0, scores.OverallSemantic, 1e-5)
	assert.Equal(t, types.ConfidenceLow, scores.Confidence)
}

func TestCalculate_FallbackOnModelError(t *testing.T) {
	emb := newCounting()
	emb.err = errors.New("quota exceeded")
	engine := NewEngine(emb, nil, WithLogger(zaptest.NewLogger(t)))

	scores := engine.Calculate(context.Background(), richJob(), richResume())

	assert.Equal(t, types.FallbackSimilarity(), scores)
}

func TestCalculate_FallbackOnEmptyInput(t *testing.T) {
	engine := NewEngine(newCounting(), nil)
	scores := engine.Calculate(context.Background(), types.JobSections{}, types.ResumeSections{})
	assert.True(t, scores.Degraded)
}

func TestCalculate_SecondCallHitsCache(t *testing.T) {
	emb := newCounting()
	engine := NewEngine(emb, nil)
	ctx := context.Background()

	engine.Calculate(ctx, richJob(), richResume())
	calls := emb.Calls()
	engine.Calculate(ctx, richJob(), richResume())

	assert.Equal(t, calls, emb.Calls())
}

func TestAssessConfidence(t *testing.T) {
	job, resume := richJob(), richResume()

	assert.Equal(t, types.ConfidenceHigh, AssessConfidence(job, resume, []float64{0.8, 0.82, 0.79}))
	assert.Equal(t, types.ConfidenceMedium, AssessConfidence(job, resume, []float64{0.5, 0.3, 0.6}))
	assert.Equal(t, types.ConfidenceLow, AssessConfidence(job, resume, []float64{0.9, 0.1, 0.5}))

	short := types.JobSections{Requirements: "Go", RawText: "Go"}
	assert.Equal(t, types.ConfidenceLow, AssessConfidence(short, types.ResumeSections{RawText: "Go"}, []float64{0.9, 0.9, 0.9}))
}

func TestCosine(t *testing.T) {
	c, err := Cosine([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c, 1e-9)

	c, err = Cosine([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, c, 1e-9)

	clamped, err := clampedCosine([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, clamped)

	c, err = Cosine([]float32{0, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, c)

	_, err = Cosine([]float32{1}, []float32{1, 2})
	assert.Error(t, err)
}
