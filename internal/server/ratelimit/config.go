package ratelimit

import (
	"math"
	"time"
)

// EndpointConfig is the limit for one route.
type EndpointConfig struct {
	Path   string  // exact path, or a prefix when it ends in "/"
	Method string  // HTTP method
	Rate   float64 // sustained requests per second; zero or less means unlimited
	Burst  int     // bucket size; defaults to ceil(Rate)
}

// Config holds limiter settings.
type Config struct {
	Enabled         bool
	DefaultRate     float64
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	EndpointConfigs []EndpointConfig
}

// NewConfig builds a config whose default is rate/burst. Batch routes get a
// third of both since each request fans out into several analyses.
func NewConfig(rate float64, burst int) *Config {
	return &Config{
		Enabled:         rate > 0,
		DefaultRate:     rate,
		DefaultBurst:    burst,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		EndpointConfigs: DefaultEndpointConfigs(rate, burst),
	}
}

// DefaultEndpointConfigs returns the per-route overrides.
func DefaultEndpointConfigs(rate float64, burst int) []EndpointConfig {
	batchBurst := max(1, burst/3)
	return []EndpointConfig{
		{Path: "/match/batch", Method: "POST", Rate: rate / 3, Burst: batchBurst},
		{Path: "/match/quick", Method: "POST", Rate: rate / 3, Burst: batchBurst},
		{Path: "/cache", Method: "DELETE", Rate: rate / 3, Burst: 1},
	}
}

func (c EndpointConfig) burst() int {
	if c.Burst > 0 {
		return c.Burst
	}
	return max(1, int(math.Ceil(c.Rate)))
}
