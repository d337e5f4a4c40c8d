package types

// Confidence is a qualitative reliability label.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// SimilarityScores holds the embedding-based similarity signal for one match.
type SimilarityScores struct {
	RequirementsMatch     float64    `json:"requirements_match"`
	ResponsibilitiesMatch float64    `json:"responsibilities_match"`
	QualificationsMatch   float64    `json:"qualifications_match"`
	OverallSemantic       float64    `json:"overall_semantic"`
	Confidence            Confidence `json:"confidence"`
	Degraded              bool       `json:"degraded,omitempty"` // true when the fallback values were returned
}

// FallbackSimilarity is returned when the similarity signal cannot be computed.
func FallbackSimilarity() SimilarityScores {
	return SimilarityScores{
		RequirementsMatch:     0.1,
		ResponsibilitiesMatch: 0.1,
		QualificationsMatch:   0.1,
		OverallSemantic:       0.1,
		Confidence:            ConfidenceLow,
		Degraded:              true,
	}
}
