package similarity

import (
	"github.com/jonathan/resume-matcher/internal/types"
)

// Confidence tier thresholds.
const (
	highMaxVariance = 0.01
	highMinLength   = 500
	highMinRichness = 4
	highMinMean     = 0.5

	mediumMaxVariance = 0.05
	mediumMinLength   = 200
	mediumMinRichness = 3
	mediumMinMean     = 0.3
)

// AssessConfidence grades how much the semantic scores can be trusted, based
// on their agreement, the amount of input text and how many sections were found.
func AssessConfidence(job types.JobSections, resume types.ResumeSections, scores []float64) types.Confidence {
	mean, variance := meanVariance(scores)
	length := len([]rune(job.RawText)) + len([]rune(resume.RawText))
	richness := job.Richness() + resume.Richness()

	switch {
	case variance < highMaxVariance && length >= highMinLength && richness >= highMinRichness && mean >= highMinMean:
		return types.ConfidenceHigh
	case variance < mediumMaxVariance && length >= mediumMinLength && richness >= mediumMinRichness && mean >= mediumMinMean:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}

// meanVariance returns the mean and population variance of values.
func meanVariance(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, sq / float64(len(values))
}
