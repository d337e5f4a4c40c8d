package matcher

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/types"
)

// ResumeInput is resume text, pre-extracted features, or both. When Features
// is set the resume extractor is skipped.
type ResumeInput struct {
	Content  string                `json:"content,omitempty"`
	Features *types.ResumeFeatures `json:"features,omitempty"`
}

// Options tune a single analysis.
type Options struct {
	// IncludeExplanation defaults to true when nil.
	IncludeExplanation *bool `json:"include_explanation,omitempty"`
	// StrictMode is informational and echoed on the result.
	StrictMode bool `json:"strict_mode,omitempty"`
	// CustomWeights and CustomGates are merged into the active scoring
	// configuration and remain in effect for later calls.
	CustomWeights *scoring.WeightOverrides `json:"custom_weights,omitempty"`
	CustomGates   *scoring.GateOverrides   `json:"custom_gates,omitempty"`
}

func (o *Options) includeExplanation() bool {
	if o == nil || o.IncludeExplanation == nil {
		return true
	}
	return *o.IncludeExplanation
}

func (o *Options) strict() bool {
	return o != nil && o.StrictMode
}

// Pair is one job/resume combination in a batch.
type Pair struct {
	Job     string      `json:"job"`
	Resume  ResumeInput `json:"resume"`
	Options *Options    `json:"options,omitempty"`
}

// MaxInputChars bounds each input document.
const MaxInputChars = 100_000

func validateInput(job string, resume ResumeInput) error {
	if strings.TrimSpace(job) == "" {
		return &ValidationError{Field: "job", Message: "job description is required"}
	}
	if len(job) > MaxInputChars {
		return &ValidationError{Field: "job", Message: fmt.Sprintf("job description exceeds %d characters", MaxInputChars)}
	}
	if strings.TrimSpace(resume.Content) == "" && resume.Features == nil {
		return &ValidationError{Field: "resume", Message: "resume content or features are required"}
	}
	if len(resume.Content) > MaxInputChars {
		return &ValidationError{Field: "resume", Message: fmt.Sprintf("resume content exceeds %d characters", MaxInputChars)}
	}
	return nil
}

// sectionsFromFeatures renders pre-extracted features as resume text so the
// similarity engine has something to embed.
func sectionsFromFeatures(f types.ResumeFeatures) types.ResumeSections {
	var summary []string
	if f.CurrentLevel != "" {
		summary = append(summary, capitalize(f.CurrentLevel)+" professional")
	}
	if f.YearsOfExperience != nil {
		summary = append(summary, fmt.Sprintf("%g years of experience", *f.YearsOfExperience))
	}
	if len(f.Domains) > 0 {
		summary = append(summary, "domains: "+strings.Join(f.Domains, ", "))
	}

	s := types.ResumeSections{
		Summary:   strings.Join(summary, "; "),
		Skills:    strings.Join(f.Skills, ", "),
		Education: f.Education,
	}
	s.Experience = s.Skills
	s.RawText = strings.TrimSpace(strings.Join([]string{s.Summary, s.Skills, s.Education}, "\n"))
	return s
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
