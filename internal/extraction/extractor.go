// Package extraction turns segmented job postings and resumes into the
// structured features the matcher compares.
package extraction

import (
	"context"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

// JobExtractor produces job features. A *PartialError result still comes with
// usable features; any other error means the features are empty.
type JobExtractor interface {
	ExtractJobFeatures(ctx context.Context, sections types.JobSections) (types.JobFeatures, error)
}

// ResumeExtractor produces resume features under the same error contract as JobExtractor.
type ResumeExtractor interface {
	ExtractResumeFeatures(ctx context.Context, sections types.ResumeSections) (types.ResumeFeatures, error)
}

// Extractor handles both sides.
type Extractor interface {
	JobExtractor
	ResumeExtractor
}

// Sides used in metric labels and warnings.
const (
	SideJob    = "job"
	SideResume = "resume"
)

// EmptyJobFeatures is the neutral job record used when extraction fails outright.
func EmptyJobFeatures() types.JobFeatures {
	return types.JobFeatures{
		Skills:  types.JobSkills{Required: []string{}, Preferred: []string{}, All: []string{}},
		Domains: []string{},
	}
}

// EmptyResumeFeatures is the neutral resume record used when extraction fails outright.
func EmptyResumeFeatures() types.ResumeFeatures {
	return types.ResumeFeatures{Skills: []string{}, Domains: []string{}}
}

// jobText is the text handed to the model: named sections when any were
// found, the raw posting otherwise.
func jobText(s types.JobSections) string {
	if s.Richness() == 0 {
		return s.RawText
	}
	return joinNonEmpty(s.Summary, s.Requirements, s.Qualifications, s.Responsibilities)
}

func resumeText(s types.ResumeSections) string {
	if s.Richness() == 0 {
		return s.RawText
	}
	return joinNonEmpty(s.Summary, s.Experience, s.Skills, s.Education)
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// firstNonEmpty returns the first text with content, for the narrow regex extractors.
func firstNonEmpty(texts ...string) string {
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			return t
		}
	}
	return ""
}

// firstFound runs extract over texts in order and returns the first non-zero
// result. Narrow sections go first; the wider text catches what they miss.
func firstFound[T comparable](extract func(string) T, texts ...string) T {
	var zero T
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if v := extract(t); v != zero {
			return v
		}
	}
	return zero
}
