package scoring

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/types"
)

// Adjustment sizes.
const (
	highSemanticBonus        = 5.0
	highSemanticThreshold    = 0.75
	maxExperienceBonus       = 3.0
	fullCoverageBonus        = 3.0
	fullCoverageThreshold    = 0.95
	educationExceedsBonus    = 2.0
	lowSemanticThreshold     = 0.3
	lowSemanticBaseThreshold = 70.0
	maxLowSemanticPenalty    = 10.0
	additionalSkillsLimit    = 20
	perAdditionalSkill       = 0.5
	maxAdditionalPenalty     = 5.0
	inconsistencyThreshold   = 0.5
	inconsistencyPenalty     = 8.0
	skillsGateMultiplier     = 50.0
	skillsGateFloor          = 10.0
	experienceGatePerYear    = 3.0
	maxExperienceGatePenalty = 20.0
	workAuthGatePenalty      = 25.0
)

// Input is everything the engine needs to score one match.
type Input struct {
	Similarity   types.SimilarityScores
	FeatureMatch types.FeatureMatchAnalysis
	Job          types.JobFeatures
	Resume       types.ResumeFeatures
}

// Engine computes hybrid scores. Its configuration may be updated concurrently
// with scoring.
type Engine struct {
	mu     sync.RWMutex
	cfg    Config
	logger *zap.Logger
}

// NewEngine validates cfg and returns an engine with normalized weights.
func NewEngine(cfg Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Weights = NormalizeWeights(cfg.Weights)
	return &Engine{cfg: cfg, logger: logger}, nil
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// ApplyOverrides merges partial weight and gate updates into the active
// configuration. The merged values are retained for later calls.
func (e *Engine) ApplyOverrides(weights *WeightOverrides, gates *GateOverrides) error {
	if weights == nil && gates == nil {
		return nil
	}
	if weights != nil {
		if err := validateStruct(weights); err != nil {
			return err
		}
	}
	if gates != nil {
		if err := validateStruct(gates); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if weights != nil {
		e.cfg.Weights = NormalizeWeights(weights.Apply(e.cfg.Weights))
	}
	if gates != nil {
		e.cfg.Gates = gates.Apply(e.cfg.Gates)
	}
	return nil
}

// Calculate scores one match.
func (e *Engine) Calculate(in Input) types.ScoringResult {
	cfg := e.Config()
	fm := in.FeatureMatch
	semantic := unit(in.Similarity.OverallSemantic)

	breakdown := types.ScoreBreakdown{
		Semantic:      component(semantic, cfg.Weights.Semantic),
		Skills:        component(fm.Skills.Score, cfg.Weights.Skills),
		Experience:    component(fm.Experience.Score, cfg.Weights.Experience),
		Level:         component(fm.Level.Score, cfg.Weights.Level),
		Domain:        component(fm.Domain.Score, cfg.Weights.Domain),
		Education:     component(fm.Education.Score, cfg.Weights.Education),
		Bonuses:       []types.Adjustment{},
		Penalties:     []types.Adjustment{},
		GatePenalties: []types.Adjustment{},
	}
	breakdown.BaseScore = breakdown.Semantic.Contribution + breakdown.Skills.Contribution +
		breakdown.Experience.Contribution + breakdown.Level.Contribution +
		breakdown.Domain.Contribution + breakdown.Education.Contribution

	gates := evaluateGates(cfg.Gates, in)
	quality := qualityIndicators(in, semantic)

	if cfg.EnableBonuses {
		breakdown.Bonuses = bonuses(in, semantic)
	}
	if cfg.EnablePenalties {
		breakdown.Penalties = penalties(in, semantic, breakdown.BaseScore, quality.ConsistencyScore)
	}
	breakdown.TotalBonus = sumPoints(breakdown.Bonuses)
	breakdown.TotalPenalty = sumPoints(breakdown.Penalties)

	score := breakdown.BaseScore + breakdown.TotalBonus - breakdown.TotalPenalty
	score, breakdown.GatePenalties = e.applyGatePenalties(cfg, gates, score)

	return types.ScoringResult{
		FinalScore:        finalize(score),
		Confidence:        overallConfidence(in.Similarity.Confidence, gates, fm.Skills.Coverage, quality.DataCompleteness),
		Breakdown:         breakdown,
		GateResults:       gates,
		QualityIndicators: quality,
	}
}

func component(score, weight float64) types.ComponentScore {
	s := unit(score)
	return types.ComponentScore{Score: s, Weight: weight, Contribution: s * 100 * weight}
}

// unit clamps v into [0,1], mapping NaN to 0.
func unit(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func evaluateGates(g Gates, in Input) types.GateResults {
	fm := in.FeatureMatch
	var r types.GateResults

	coverage := unit(fm.Skills.Coverage)
	r.SkillsGate = types.GateResult{
		Passed:    coverage >= g.MinSkillsCoverage,
		Value:     coverage,
		Threshold: g.MinSkillsCoverage,
	}
	if !r.SkillsGate.Passed {
		r.SkillsGate.Reason = fmt.Sprintf("skills coverage %.0f%% is below the %.0f%% minimum", coverage*100, g.MinSkillsCoverage*100)
	}

	gap := 0.0
	if in.Job.YearsRequired != nil {
		candidate := 0.0
		if in.Resume.YearsOfExperience != nil {
			candidate = *in.Resume.YearsOfExperience
		}
		gap = math.Max(0, *in.Job.YearsRequired-candidate)
	}
	r.ExperienceGate = types.GateResult{
		Passed:    gap <= g.MaxYearsGap,
		Value:     gap,
		Threshold: g.MaxYearsGap,
	}
	if !r.ExperienceGate.Passed {
		r.ExperienceGate.Reason = fmt.Sprintf("%.1f years short of the requirement, more than the allowed %.1f", gap, g.MaxYearsGap)
	}

	r.WorkAuthGate = types.GateResult{Passed: true, Value: fm.Location.Score, Threshold: 1}
	if g.RequireWorkAuth && isTrue(in.Job.WorkAuthRequired) {
		switch {
		case in.Resume.WorkAuthStatus == nil:
			r.WorkAuthGate.Reason = "work authorization required but not stated"
		case !*in.Resume.WorkAuthStatus:
			r.WorkAuthGate.Passed = false
			r.WorkAuthGate.Reason = "candidate is not authorized to work for this job"
		}
	}

	r.EducationGate = types.GateResult{Passed: true, Value: fm.Education.Score, Threshold: 1}
	if g.RequireEducation && in.Job.Education != "" && !fm.Education.MeetsRequirement {
		r.EducationGate.Passed = false
		r.EducationGate.Reason = fmt.Sprintf("education below the required %s", in.Job.Education)
	}

	r.OverallGatesPassed = r.SkillsGate.Passed && r.ExperienceGate.Passed &&
		r.WorkAuthGate.Passed && r.EducationGate.Passed
	return r
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

func bonuses(in Input, semantic float64) []types.Adjustment {
	fm := in.FeatureMatch
	out := []types.Adjustment{}

	if semantic >= highSemanticThreshold && in.Similarity.Confidence == types.ConfidenceHigh {
		out = append(out, types.Adjustment{
			Name:   "high_semantic_similarity",
			Points: highSemanticBonus,
			Reason: "strong semantic similarity with high confidence",
		})
	}

	if in.Job.YearsRequired != nil && in.Resume.YearsOfExperience != nil {
		if excess := *in.Resume.YearsOfExperience - *in.Job.YearsRequired; excess > 0 {
			out = append(out, types.Adjustment{
				Name:   "exceeds_experience",
				Points: math.Min(maxExperienceBonus, excess),
				Reason: fmt.Sprintf("%.1f years beyond the requirement", excess),
			})
		}
	}

	if len(fm.Skills.RequiredSkills) > 0 && fm.Skills.Coverage >= fullCoverageThreshold {
		out = append(out, types.Adjustment{
			Name:   "full_skills_coverage",
			Points: fullCoverageBonus,
			Reason: "covers nearly all required skills",
		})
	}

	if fm.Education.Exceeds {
		out = append(out, types.Adjustment{
			Name:   "education_exceeds",
			Points: educationExceedsBonus,
			Reason: "education above the requirement",
		})
	}
	return out
}

func penalties(in Input, semantic, base, consistency float64) []types.Adjustment {
	fm := in.FeatureMatch
	out := []types.Adjustment{}

	// Ramps in above base 70 rather than stepping straight to the full penalty.
	if semantic < lowSemanticThreshold && base > lowSemanticBaseThreshold {
		out = append(out, types.Adjustment{
			Name:   "low_semantic_similarity",
			Points: math.Min(maxLowSemanticPenalty, base-lowSemanticBaseThreshold),
			Reason: "structured features match but the texts read differently",
		})
	}

	if extra := len(fm.Skills.AdditionalSkills) - additionalSkillsLimit; extra > 0 {
		out = append(out, types.Adjustment{
			Name:   "excess_additional_skills",
			Points: math.Min(maxAdditionalPenalty, perAdditionalSkill*float64(extra)),
			Reason: fmt.Sprintf("%d unrelated skills listed", len(fm.Skills.AdditionalSkills)),
		})
	}

	if consistency < inconsistencyThreshold && semantic > structuredMean(fm) {
		out = append(out, types.Adjustment{
			Name:   "inconsistent_signals",
			Points: inconsistencyPenalty,
			Reason: "semantic similarity is much higher than the structured evidence",
		})
	}
	return out
}

// applyGatePenalties subtracts the per-gate penalties from score.
func (e *Engine) applyGatePenalties(cfg Config, gates types.GateResults, score float64) (float64, []types.Adjustment) {
	out := []types.Adjustment{}

	if !gates.SkillsGate.Passed {
		p := (gates.SkillsGate.Threshold - gates.SkillsGate.Value) * skillsGateMultiplier
		p = math.Min(p, math.Max(0, score-skillsGateFloor))
		if p > 0 {
			score -= p
			out = append(out, types.Adjustment{Name: "skills_gate", Points: p, Reason: gates.SkillsGate.Reason})
		}
	}

	if !gates.ExperienceGate.Passed {
		p := math.Min(maxExperienceGatePenalty, experienceGatePerYear*(gates.ExperienceGate.Value-gates.ExperienceGate.Threshold))
		score -= p
		out = append(out, types.Adjustment{Name: "experience_gate", Points: p, Reason: gates.ExperienceGate.Reason})
	}

	if !gates.WorkAuthGate.Passed {
		if cfg.EnforceWorkAuthPenalty {
			score -= workAuthGatePenalty
			out = append(out, types.Adjustment{Name: "work_auth_gate", Points: workAuthGatePenalty, Reason: gates.WorkAuthGate.Reason})
		} else {
			e.logger.Warn("work authorization gate failed but its penalty is not enforced",
				zap.String("reason", gates.WorkAuthGate.Reason))
		}
	}
	return score, out
}

func sumPoints(adjustments []types.Adjustment) float64 {
	total := 0.0
	for _, a := range adjustments {
		total += a.Points
	}
	return total
}

// finalize clamps to [0,100] and rounds. NaN scores become 0.
func finalize(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, score))))
}

func structuredMean(fm types.FeatureMatchAnalysis) float64 {
	return (unit(fm.Skills.Coverage) + unit(fm.Experience.Score) + unit(fm.Domain.Score)) / 3
}

func qualityIndicators(in Input, semantic float64) types.QualityIndicators {
	return types.QualityIndicators{
		SemanticConfidence: in.Similarity.Confidence,
		DataCompleteness:   DataCompleteness(in.Job, in.Resume),
		ConsistencyScore:   math.Max(0, 1-math.Abs(semantic-structuredMean(in.FeatureMatch))),
	}
}

// DataCompleteness is the mean share of the five checked fields present on
// each side: skills, domains, years, level and education.
func DataCompleteness(job types.JobFeatures, resume types.ResumeFeatures) float64 {
	jobPresent := countTrue(
		len(job.Skills.AllSkills()) > 0,
		len(job.Domains) > 0,
		job.YearsRequired != nil,
		job.LevelRequired != "",
		job.Education != "",
	)
	resumePresent := countTrue(
		len(resume.Skills) > 0,
		len(resume.Domains) > 0,
		resume.YearsOfExperience != nil,
		resume.CurrentLevel != "",
		resume.Education != "",
	)
	return (float64(jobPresent)/5 + float64(resumePresent)/5) / 2
}

func countTrue(values ...bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}

func overallConfidence(semantic types.Confidence, gates types.GateResults, coverage, completeness float64) types.Confidence {
	switch {
	case semantic == types.ConfidenceHigh && gates.OverallGatesPassed && coverage > 0.7 && completeness > 0.8:
		return types.ConfidenceHigh
	case semantic == types.ConfidenceLow || !gates.OverallGatesPassed || completeness < 0.4:
		return types.ConfidenceLow
	default:
		return types.ConfidenceMedium
	}
}
