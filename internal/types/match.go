package types

import "time"

// KeyInsights are the three headline observations of an explanation.
type KeyInsights struct {
	StrongestMatch       string `json:"strongest_match"`
	BiggestGap           string `json:"biggest_gap"`
	ImprovementPotential string `json:"improvement_potential"`
}

// MatchExplanation is the human-readable account of a score.
type MatchExplanation struct {
	Strengths       []string    `json:"strengths"`
	Concerns        []string    `json:"concerns"`
	Summary         string      `json:"summary"`
	Recommendations []string    `json:"recommendations"`
	KeyInsights     KeyInsights `json:"key_insights"`
}

// QuickSummary is the compact form of an explanation.
type QuickSummary struct {
	Score         int        `json:"score"`
	OneLineReason string     `json:"one_line_reason"`
	TopGap        string     `json:"top_gap"`
	Confidence    Confidence `json:"confidence"`
}

// ErrorType classifies match failures.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeProcessing ErrorType = "processing"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeModel      ErrorType = "model"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// MatchResult is a completed match analysis.
type MatchResult struct {
	ID               string               `json:"id"`
	FinalScore       int                  `json:"final_score"`
	Confidence       Confidence           `json:"confidence"`
	JobSections      JobSections          `json:"job_sections"`
	ResumeSections   ResumeSections       `json:"resume_sections"`
	JobFeatures      JobFeatures          `json:"job_features"`
	ResumeFeatures   ResumeFeatures       `json:"resume_features"`
	Similarity       SimilarityScores     `json:"similarity"`
	FeatureMatch     FeatureMatchAnalysis `json:"feature_match"`
	Scoring          ScoringResult        `json:"scoring"`
	Explanation      *MatchExplanation    `json:"explanation,omitempty"`
	Warnings         []string             `json:"warnings,omitempty"`
	StrictMode       bool                 `json:"strict_mode"`
	ProcessingTimeMs int64                `json:"processing_time_ms"`
	Timestamp        time.Time            `json:"timestamp"`
}

// MatchError is the failure record returned instead of a result.
type MatchError struct {
	Message       string    `json:"error"`
	ErrorType     ErrorType `json:"error_type"`
	Details       string    `json:"details,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	FallbackScore int       `json:"fallback_score"`
}

// MatchOutcome holds exactly one of Result or Error.
type MatchOutcome struct {
	Result *MatchResult `json:"result,omitempty"`
	Error  *MatchError  `json:"error,omitempty"`
}

// OK reports whether the outcome carries a result.
func (o MatchOutcome) OK() bool {
	return o.Result != nil
}

// Score returns the final score, or the fallback score for failures.
func (o MatchOutcome) Score() int {
	if o.Result != nil {
		return o.Result.FinalScore
	}
	if o.Error != nil {
		return o.Error.FallbackScore
	}
	return 0
}

// QuickScore is the lightweight per-pair result of a quick scoring pass.
type QuickScore struct {
	Score      int        `json:"score"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
	Gap        string     `json:"gap"`
	Error      string     `json:"error,omitempty"`
}
