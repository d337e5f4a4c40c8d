package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/llm"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Batch.Size)
	assert.Equal(t, 100*time.Millisecond, cfg.Batch.Delay)
	assert.Equal(t, 0.35, cfg.Scoring.Weights.Semantic)
	assert.Empty(t, cfg.Gemini.APIKey)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
	assert.Equal(t, Default().Scoring, cfg.Scoring)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "matcher.yaml", `
batch:
  size: 5
  delay: 250ms
scoring:
  weights:
    semantic: 0.5
  gates:
    max_years_gap: 4
logging:
  format: json
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Batch.Size)
	assert.Equal(t, 250*time.Millisecond, cfg.Batch.Delay)
	assert.Equal(t, 0.5, cfg.Scoring.Weights.Semantic)
	assert.Equal(t, 0.30, cfg.Scoring.Weights.Skills)
	assert.Equal(t, 4.0, cfg.Scoring.Gates.MaxYearsGap)
	assert.True(t, cfg.Scoring.Gates.RequireWorkAuth)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RESUME_MATCHER_SERVER_PORT", "9191")
	t.Setenv("RESUME_MATCHER_EXTRACTION_TIMEOUT", "5s")
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Extraction.Timeout)
	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
}

func TestLoad_PrefixedKeyWins(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "fallback")
	t.Setenv("RESUME_MATCHER_GEMINI_API_KEY", "primary")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.Gemini.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/matcher.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := writeFile(t, "bad.json", `{"batch": {"size": 0}}`)
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Batch.Size")
}

func TestValidate_CrossField(t *testing.T) {
	cfg := Default()
	cfg.Extraction.InitialBackoff = 10 * time.Second
	cfg.Extraction.MaxBackoff = time.Second
	assert.ErrorContains(t, cfg.Validate(), "max_backoff")

	cfg = Default()
	cfg.Logging.Level = "chatty"
	assert.ErrorContains(t, cfg.Validate(), "logging.level")

	cfg = Default()
	cfg.Scoring.Weights.Semantic = 0
	cfg.Scoring.Weights.Skills = 0
	cfg.Scoring.Weights.Experience = 0
	cfg.Scoring.Weights.Level = 0
	cfg.Scoring.Weights.Domain = 0
	cfg.Scoring.Weights.Education = 0
	assert.ErrorContains(t, cfg.Validate(), "weights")

	cfg = Default()
	cfg.Redis.URL = "not a url"
	assert.Error(t, cfg.Validate())
}

func TestAdapters(t *testing.T) {
	cfg := Default()
	cfg.Gemini.LiteModel = "tiny"
	cfg.Embedding.Capacity = 0
	cfg.Extraction.MaxRetries = 4

	assert.Equal(t, "tiny", cfg.LLMConfig().GetModel(llm.TierLite))
	assert.Equal(t, 0, cfg.CacheConfig().Capacity)
	assert.Equal(t, 4, cfg.RetryPolicy().MaxRetries)
}
