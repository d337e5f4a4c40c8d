package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/extraction"
	"github.com/jonathan/resume-matcher/internal/matcher"
	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/similarity"
	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	testJob = `Senior Go Engineer

Requirements
- 5+ years of experience
- Go, PostgreSQL and Kubernetes
`
	testResume = `Summary
Senior engineer with 6 years of experience.

Skills
Go, PostgreSQL, Kubernetes
`
)

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) *Server {
	t.Helper()
	logger := zaptest.NewLogger(t)
	heuristic := extraction.NewHeuristicExtractor()
	sim := similarity.NewEngine(embedding.NewHashEmbedder(128), embedding.NewCache(embedding.DefaultCacheConfig()))
	scorer, err := scoring.NewEngine(scoring.DefaultConfig(), logger)
	require.NoError(t, err)
	svc := matcher.New(sim, scorer, heuristic, heuristic, matcher.WithBatching(2, 0))

	cfg := config.Default().Server
	cfg.RateLimit = 1000
	cfg.RateBurst = 1000
	if mutate != nil {
		mutate(&cfg)
	}
	s := New(svc, cfg, logger)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandleMatch(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/match", map[string]any{"job": testJob, "resume": testResume})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result types.MatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.ID)
	assert.NotNil(t, result.Explanation)
	assert.Contains(t, result.ResumeFeatures.Skills, "Kubernetes")
}

func TestHandleMatch_PreExtractedFeatures(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/match", map[string]any{
		"job":             testJob,
		"resume_features": map[string]any{"skills": []string{"Go"}, "years_of_experience": 3},
		"options":         map[string]any{"include_explanation": false},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result types.MatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Nil(t, result.Explanation)
	assert.Equal(t, []string{"Go"}, result.ResumeFeatures.Skills)
}

func TestHandleMatch_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"malformed JSON", `{"job":`, ""},
		{"unknown field", `{"job":"x","resume":"y","extra":1}`, ""},
		{"missing job", map[string]any{"resume": testResume}, "Job"},
		{"missing resume", map[string]any{"job": testJob}, "Resume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/match", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			if tt.field != "" {
				assert.Contains(t, rec.Body.String(), tt.field)
			}
		})
	}
}

func TestHandleMatch_MatchErrorStatus(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/match", map[string]any{"job": "   ", "resume": testResume})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var me types.MatchError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, types.ErrorTypeValidation, me.ErrorType)
	assert.Equal(t, matcher.FallbackScore, me.FallbackScore)
}

func TestHandleMatch_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) { c.MaxBodyBytes = 2048 })
	rec := do(t, s, http.MethodPost, "/match", map[string]any{"job": strings.Repeat("a", 4096), "resume": testResume})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleBatch(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/match/batch", map[string]any{"pairs": []map[string]any{
		{"job": testJob, "resume": testResume},
		{"job": " ", "resume": testResume},
		{"job": testJob, "resume": testResume},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), resp.RequestID)
	require.Len(t, resp.Results, 3)
	assert.NotNil(t, resp.Results[0].Result)
	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, matcher.BatchFallbackScore, resp.Results[1].Error.FallbackScore)
}

func TestHandleBatch_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/match/batch", map[string]any{"pairs": []map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	pairs := make([]map[string]any, MaxBatchPairs+1)
	for i := range pairs {
		pairs[i] = map[string]any{"job": "j", "resume": "r"}
	}
	rec = do(t, s, http.MethodPost, "/match/batch", map[string]any{"pairs": pairs})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/match/batch", map[string]any{"pairs": []map[string]any{{"job": "j"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pairs[0].Resume")
}

func TestHandleQuick(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/match/quick", map[string]any{"pairs": []map[string]any{
		{"job": testJob, "resume": testResume},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp quickResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Scores, 1)
	assert.NotEmpty(t, resp.Scores[0].Reason)
	assert.Empty(t, resp.Scores[0].Error)
}

func TestHandleBatchStream(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/match/batch/stream", map[string]any{"pairs": []map[string]any{
		{"job": testJob, "resume": testResume},
		{"job": " ", "resume": testResume},
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	var events []string
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			events = append(events, name)
		}
	}
	assert.Equal(t, []string{"result", "result", "complete"}, events)
	assert.Contains(t, body, `"failed":1`)
	assert.Contains(t, body, "id: 0\n")
	assert.Contains(t, body, "id: 1\n")
}

func TestCacheEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/match", map[string]any{"job": testJob, "resume": testResume}).Code)

	var stats embedding.CacheStats
	rec := do(t, s, http.MethodGet, "/cache/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Positive(t, stats.Size)

	rec = do(t, s, http.MethodDelete, "/cache", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/cache/stats", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Zero(t, stats.Size)
}

func TestScoringConfigReflectsOverrides(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/match", map[string]any{
		"job":     testJob,
		"resume":  testResume,
		"options": map[string]any{"custom_gates": map[string]any{"max_years_gap": 4}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cfg scoring.Config
	rec = do(t, s, http.MethodGet, "/config/scoring", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, 4.0, cfg.Gates.MaxYearsGap)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/health", nil)

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resume_matcher_http_requests_total")
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) {
		c.RateLimit = 0.001
		c.RateBurst = 1
	})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/cache/stats", nil).Code)
	rec := do(t, s, http.MethodGet, "/cache/stats", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	// health is never limited
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodOptions, "/match", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", &ErrValidation{Field: "job", Message: "failed required"}, http.StatusBadRequest},
		{"bad json", &ErrBadJSON{Cause: assert.AnError}, http.StatusBadRequest},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestMatchErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, MatchErrorStatus(types.ErrorTypeValidation))
	assert.Equal(t, http.StatusGatewayTimeout, MatchErrorStatus(types.ErrorTypeTimeout))
	assert.Equal(t, http.StatusBadGateway, MatchErrorStatus(types.ErrorTypeModel))
	assert.Equal(t, http.StatusInternalServerError, MatchErrorStatus(types.ErrorTypeUnknown))
}
