package types

// ComponentScore is one weighted dimension of the final score.
type ComponentScore struct {
	Score        float64 `json:"score"`        // 0-1 dimension score
	Weight       float64 `json:"weight"`       // normalized weight
	Contribution float64 `json:"contribution"` // points on the 0-100 scale
}

// Adjustment is a bonus or penalty applied on top of the weighted base score.
type Adjustment struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Reason string  `json:"reason"`
}

// ScoreBreakdown explains how the final score was assembled.
type ScoreBreakdown struct {
	Semantic      ComponentScore `json:"semantic"`
	Skills        ComponentScore `json:"skills"`
	Experience    ComponentScore `json:"experience"`
	Level         ComponentScore `json:"level"`
	Domain        ComponentScore `json:"domain"`
	Education     ComponentScore `json:"education"`
	BaseScore     float64        `json:"base_score"`
	Bonuses       []Adjustment   `json:"bonuses"`
	Penalties     []Adjustment   `json:"penalties"`
	GatePenalties []Adjustment   `json:"gate_penalties"`
	TotalBonus    float64        `json:"total_bonus"`
	TotalPenalty  float64        `json:"total_penalty"`
}

// GateResult is the outcome of a single hard gate.
type GateResult struct {
	Passed    bool    `json:"passed"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Reason    string  `json:"reason,omitempty"`
}

// GateResults holds every hard gate and their conjunction.
type GateResults struct {
	SkillsGate         GateResult `json:"skills_gate"`
	ExperienceGate     GateResult `json:"experience_gate"`
	WorkAuthGate       GateResult `json:"work_auth_gate"`
	EducationGate      GateResult `json:"education_gate"`
	OverallGatesPassed bool       `json:"overall_gates_passed"`
}

// Failed returns the names of the gates that did not pass.
func (g GateResults) Failed() []string {
	var failed []string
	if !g.SkillsGate.Passed {
		failed = append(failed, "skills")
	}
	if !g.ExperienceGate.Passed {
		failed = append(failed, "experience")
	}
	if !g.WorkAuthGate.Passed {
		failed = append(failed, "work_auth")
	}
	if !g.EducationGate.Passed {
		failed = append(failed, "education")
	}
	return failed
}

// QualityIndicators describe how trustworthy a score is, independent of its magnitude.
type QualityIndicators struct {
	SemanticConfidence Confidence `json:"semantic_confidence"`
	DataCompleteness   float64    `json:"data_completeness"`
	ConsistencyScore   float64    `json:"consistency_score"`
}

// ScoringResult is the output of the hybrid scoring engine.
type ScoringResult struct {
	FinalScore        int               `json:"final_score"`
	Confidence        Confidence        `json:"confidence"`
	Breakdown         ScoreBreakdown    `json:"breakdown"`
	GateResults       GateResults       `json:"gate_results"`
	QualityIndicators QualityIndicators `json:"quality_indicators"`
}
