// Package types provides type definitions for structured data used throughout the resume-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// JobSections holds the semantic sections of a job posting after segmentation.
type JobSections struct {
	Requirements     string `json:"requirements"`
	Responsibilities string `json:"responsibilities"`
	Qualifications   string `json:"qualifications"`
	Summary          string `json:"summary"`
	RawText          string `json:"raw_text"`
}

// ResumeSections holds the semantic sections of a resume after segmentation.
type ResumeSections struct {
	Experience string `json:"experience"`
	Skills     string `json:"skills"`
	Education  string `json:"education"`
	Summary    string `json:"summary"`
	RawText    string `json:"raw_text"`
}

// Richness returns the number of non-empty named sections (raw text excluded).
func (s JobSections) Richness() int {
	return countNonEmpty(s.Requirements, s.Responsibilities, s.Qualifications, s.Summary)
}

// Richness returns the number of non-empty named sections (raw text excluded).
func (s ResumeSections) Richness() int {
	return countNonEmpty(s.Experience, s.Skills, s.Education, s.Summary)
}

func countNonEmpty(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
