// Package config loads matcher settings from defaults, an optional YAML or
// JSON file, and RESUME_MATCHER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/logging"
	"github.com/jonathan/resume-matcher/internal/resilience"
	"github.com/jonathan/resume-matcher/internal/scoring"
)

// EnvPrefix prefixes every environment override, e.g. RESUME_MATCHER_SERVER_PORT.
const EnvPrefix = "RESUME_MATCHER"

// Config is the full runtime configuration.
type Config struct {
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Scoring    scoring.Config   `mapstructure:"scoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Server     ServerConfig     `mapstructure:"server"`
}

// GeminiConfig selects the hosted models. An empty APIKey switches the
// matcher to the offline embedder and heuristic extractor.
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	LiteModel      string `mapstructure:"lite_model" validate:"required"`
	StandardModel  string `mapstructure:"standard_model" validate:"required"`
	EmbeddingModel string `mapstructure:"embedding_model" validate:"required"`
}

// EmbeddingConfig sizes the in-process embedding cache.
type EmbeddingConfig struct {
	TTL        time.Duration `mapstructure:"ttl" validate:"gte=0"`
	Capacity   int           `mapstructure:"capacity" validate:"gte=0"`
	Dimensions int           `mapstructure:"dimensions" validate:"gte=16,lte=4096"`
}

// RedisConfig enables the shared embedding tier when URL is set.
type RedisConfig struct {
	URL    string        `mapstructure:"url" validate:"omitempty,url"`
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// BatchConfig bounds concurrent work in batch requests.
type BatchConfig struct {
	Size  int           `mapstructure:"size" validate:"gte=1,lte=50"`
	Delay time.Duration `mapstructure:"delay" validate:"gte=0"`
}

// ExtractionConfig is the retry policy for model calls.
type ExtractionConfig struct {
	MaxRetries     int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" validate:"gte=0"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff" validate:"gte=0"`
	Multiplier     float64       `mapstructure:"multiplier" validate:"gte=1"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// LoggingConfig selects the zap encoder and level.
type LoggingConfig struct {
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Level  string `mapstructure:"level"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	RateLimit       float64       `mapstructure:"rate_limit" validate:"gt=0"`
	RateBurst       int           `mapstructure:"rate_burst" validate:"gte=1"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"gte=1024"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	llmCfg := llm.DefaultConfig()
	cache := embedding.DefaultCacheConfig()
	retry := resilience.DefaultPolicy()
	return Config{
		Gemini: GeminiConfig{
			LiteModel:      llmCfg.GetModel(llm.TierLite),
			StandardModel:  llmCfg.GetModel(llm.TierStandard),
			EmbeddingModel: llmCfg.EmbeddingModel,
		},
		Embedding: EmbeddingConfig{TTL: cache.TTL, Capacity: cache.Capacity, Dimensions: 256},
		Redis:     RedisConfig{Prefix: "resume-matcher:emb:", TTL: 24 * time.Hour},
		Batch:     BatchConfig{Size: 3, Delay: 100 * time.Millisecond},
		Extraction: ExtractionConfig{
			MaxRetries:     retry.MaxRetries,
			InitialBackoff: retry.InitialBackoff,
			MaxBackoff:     retry.MaxBackoff,
			Multiplier:     retry.Multiplier,
			Timeout:        retry.Timeout,
		},
		Scoring: scoring.DefaultConfig(),
		Logging: LoggingConfig{Format: "console", Level: "info"},
		Server: ServerConfig{
			Port:            8080,
			RateLimit:       5,
			RateBurst:       10,
			MaxBodyBytes:    1 << 20,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
		},
	}
}

// LoadDotEnv loads .env from the working directory when present.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// Load builds the configuration. path may be empty; otherwise it names a
// YAML or JSON file whose values override the defaults. Environment
// variables override both. GEMINI_API_KEY is honoured as a fallback key.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding gemini api key: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]any{
		"gemini.api_key":                    d.Gemini.APIKey,
		"gemini.lite_model":                 d.Gemini.LiteModel,
		"gemini.standard_model":             d.Gemini.StandardModel,
		"gemini.embedding_model":            d.Gemini.EmbeddingModel,
		"embedding.ttl":                     d.Embedding.TTL,
		"embedding.capacity":                d.Embedding.Capacity,
		"embedding.dimensions":              d.Embedding.Dimensions,
		"redis.url":                         d.Redis.URL,
		"redis.prefix":                      d.Redis.Prefix,
		"redis.ttl":                         d.Redis.TTL,
		"batch.size":                        d.Batch.Size,
		"batch.delay":                       d.Batch.Delay,
		"extraction.max_retries":            d.Extraction.MaxRetries,
		"extraction.initial_backoff":        d.Extraction.InitialBackoff,
		"extraction.max_backoff":            d.Extraction.MaxBackoff,
		"extraction.multiplier":             d.Extraction.Multiplier,
		"extraction.timeout":                d.Extraction.Timeout,
		"scoring.weights.semantic":          d.Scoring.Weights.Semantic,
		"scoring.weights.skills":            d.Scoring.Weights.Skills,
		"scoring.weights.experience":        d.Scoring.Weights.Experience,
		"scoring.weights.level":             d.Scoring.Weights.Level,
		"scoring.weights.domain":            d.Scoring.Weights.Domain,
		"scoring.weights.education":         d.Scoring.Weights.Education,
		"scoring.gates.min_skills_coverage": d.Scoring.Gates.MinSkillsCoverage,
		"scoring.gates.max_years_gap":       d.Scoring.Gates.MaxYearsGap,
		"scoring.gates.require_work_auth":   d.Scoring.Gates.RequireWorkAuth,
		"scoring.gates.require_education":   d.Scoring.Gates.RequireEducation,
		"scoring.enable_bonuses":            d.Scoring.EnableBonuses,
		"scoring.enable_penalties":          d.Scoring.EnablePenalties,
		"scoring.strict_mode":               d.Scoring.StrictMode,
		"scoring.enforce_work_auth_penalty": d.Scoring.EnforceWorkAuthPenalty,
		"logging.format":                    d.Logging.Format,
		"logging.level":                     d.Logging.Level,
		"server.port":                       d.Server.Port,
		"server.rate_limit":                 d.Server.RateLimit,
		"server.rate_burst":                 d.Server.RateBurst,
		"server.max_body_bytes":             d.Server.MaxBodyBytes,
		"server.read_timeout":               d.Server.ReadTimeout,
		"server.write_timeout":              d.Server.WriteTimeout,
		"server.shutdown_timeout":           d.Server.ShutdownTimeout,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

var validate = validator.New()

// Validate checks field ranges and cross-field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("config error: logging.level: %w", err)
	}
	if c.Extraction.MaxBackoff > 0 && c.Extraction.MaxBackoff < c.Extraction.InitialBackoff {
		return fmt.Errorf("config error: extraction.max_backoff (%s) is below extraction.initial_backoff (%s)",
			c.Extraction.MaxBackoff, c.Extraction.InitialBackoff)
	}
	if c.Scoring.Weights.Sum() <= 0 {
		return fmt.Errorf("config error: scoring weights must not all be zero")
	}
	return nil
}

// LLMConfig maps the Gemini settings onto the client configuration.
func (c *Config) LLMConfig() *llm.Config {
	out := llm.DefaultConfig()
	out.Models[llm.TierLite] = c.Gemini.LiteModel
	out.Models[llm.TierStandard] = c.Gemini.StandardModel
	out.EmbeddingModel = c.Gemini.EmbeddingModel
	return out
}

// CacheConfig maps the embedding settings onto the cache configuration.
func (c *Config) CacheConfig() embedding.CacheConfig {
	out := embedding.DefaultCacheConfig()
	out.TTL = c.Embedding.TTL
	out.Capacity = c.Embedding.Capacity
	return out
}

// RetryPolicy maps the extraction settings onto a resilience policy.
func (c *Config) RetryPolicy() resilience.Policy {
	return resilience.Policy{
		MaxRetries:     c.Extraction.MaxRetries,
		InitialBackoff: c.Extraction.InitialBackoff,
		MaxBackoff:     c.Extraction.MaxBackoff,
		Multiplier:     c.Extraction.Multiplier,
		Timeout:        c.Extraction.Timeout,
	}
}
