// Package scoring fuses semantic similarity and structured feature matches into
// a single 0-100 score with gates, adjustments and a confidence grade.
package scoring

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Weights are the relative importance of the six score dimensions.
type Weights struct {
	Semantic   float64 `json:"semantic" mapstructure:"semantic" validate:"gte=0"`
	Skills     float64 `json:"skills" mapstructure:"skills" validate:"gte=0"`
	Experience float64 `json:"experience" mapstructure:"experience" validate:"gte=0"`
	Level      float64 `json:"level" mapstructure:"level" validate:"gte=0"`
	Domain     float64 `json:"domain" mapstructure:"domain" validate:"gte=0"`
	Education  float64 `json:"education" mapstructure:"education" validate:"gte=0"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Semantic + w.Skills + w.Experience + w.Level + w.Domain + w.Education
}

// Gates are the hard pass/fail thresholds.
type Gates struct {
	MinSkillsCoverage float64 `json:"min_skills_coverage" mapstructure:"min_skills_coverage" validate:"gte=0,lte=1"`
	MaxYearsGap       float64 `json:"max_years_gap" mapstructure:"max_years_gap" validate:"gte=0"`
	RequireWorkAuth   bool    `json:"require_work_auth" mapstructure:"require_work_auth"`
	RequireEducation  bool    `json:"require_education" mapstructure:"require_education"`
}

// Config is the full scoring configuration.
type Config struct {
	Weights                Weights `json:"weights" mapstructure:"weights"`
	Gates                  Gates   `json:"gates" mapstructure:"gates"`
	EnableBonuses          bool    `json:"enable_bonuses" mapstructure:"enable_bonuses"`
	EnablePenalties        bool    `json:"enable_penalties" mapstructure:"enable_penalties"`
	StrictMode             bool    `json:"strict_mode" mapstructure:"strict_mode"`
	EnforceWorkAuthPenalty bool    `json:"enforce_work_auth_penalty" mapstructure:"enforce_work_auth_penalty"`
}

// DefaultWeights returns the standard dimension weights.
func DefaultWeights() Weights {
	return Weights{
		Semantic:   0.35,
		Skills:     0.30,
		Experience: 0.15,
		Level:      0.10,
		Domain:     0.05,
		Education:  0.05,
	}
}

// DefaultGates returns the standard gate thresholds.
func DefaultGates() Gates {
	return Gates{
		MinSkillsCoverage: 0.5,
		MaxYearsGap:       2,
		RequireWorkAuth:   true,
		RequireEducation:  false,
	}
}

// DefaultConfig returns the standard scoring configuration.
func DefaultConfig() Config {
	return Config{
		Weights:         DefaultWeights(),
		Gates:           DefaultGates(),
		EnableBonuses:   true,
		EnablePenalties: true,
	}
}

// NormalizeWeights scales weights to sum to 1. Negative or non-finite weights
// count as zero; an all-zero set falls back to the defaults.
func NormalizeWeights(w Weights) Weights {
	values := []*float64{&w.Semantic, &w.Skills, &w.Experience, &w.Level, &w.Domain, &w.Education}
	for _, v := range values {
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			*v = 0
		}
	}
	sum := w.Sum()
	if sum <= 0 {
		return DefaultWeights()
	}
	for _, v := range values {
		*v /= sum
	}
	return w
}

// WeightOverrides is a partial weight update. Nil fields keep the current value.
type WeightOverrides struct {
	Semantic   *float64 `json:"semantic,omitempty" validate:"omitempty,gte=0"`
	Skills     *float64 `json:"skills,omitempty" validate:"omitempty,gte=0"`
	Experience *float64 `json:"experience,omitempty" validate:"omitempty,gte=0"`
	Level      *float64 `json:"level,omitempty" validate:"omitempty,gte=0"`
	Domain     *float64 `json:"domain,omitempty" validate:"omitempty,gte=0"`
	Education  *float64 `json:"education,omitempty" validate:"omitempty,gte=0"`
}

// Apply merges the overrides into w.
func (o WeightOverrides) Apply(w Weights) Weights {
	setIf(&w.Semantic, o.Semantic)
	setIf(&w.Skills, o.Skills)
	setIf(&w.Experience, o.Experience)
	setIf(&w.Level, o.Level)
	setIf(&w.Domain, o.Domain)
	setIf(&w.Education, o.Education)
	return w
}

// GateOverrides is a partial gate update. Nil fields keep the current value.
type GateOverrides struct {
	MinSkillsCoverage *float64 `json:"min_skills_coverage,omitempty" validate:"omitempty,gte=0,lte=1"`
	MaxYearsGap       *float64 `json:"max_years_gap,omitempty" validate:"omitempty,gte=0"`
	RequireWorkAuth   *bool    `json:"require_work_auth,omitempty"`
	RequireEducation  *bool    `json:"require_education,omitempty"`
}

// Apply merges the overrides into g.
func (o GateOverrides) Apply(g Gates) Gates {
	setIf(&g.MinSkillsCoverage, o.MinSkillsCoverage)
	setIf(&g.MaxYearsGap, o.MaxYearsGap)
	setIf(&g.RequireWorkAuth, o.RequireWorkAuth)
	setIf(&g.RequireEducation, o.RequireEducation)
	return g
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

var validate = validator.New()

// ConfigError reports an invalid scoring configuration.
type ConfigError struct {
	Field string
	Tag   string
	Value interface{}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid scoring config: %s failed %q (got %v)", e.Field, e.Tag, e.Value)
}

// validateStruct runs struct-tag validation and converts the first failure into a ConfigError.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return &ConfigError{Field: fe.Namespace(), Tag: fe.Tag(), Value: fe.Value()}
	}
	return fmt.Errorf("invalid scoring config: %w", err)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validateStruct(c)
}
