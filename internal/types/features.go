package types

import "strings"

// JobSkills separates the skills of a posting into required and preferred sets.
// All is the full list as extracted; Required and Preferred may be empty when the
// extractor did not classify them.
type JobSkills struct {
	Required  []string `json:"required"`
	Preferred []string `json:"preferred"`
	All       []string `json:"all"`
}

// JobFeatures is the structured view of a job posting produced by an extractor.
// Empty strings and nil pointers mean the value is unknown.
type JobFeatures struct {
	Skills           JobSkills `json:"skills"`
	Domains          []string  `json:"domains"`
	YearsRequired    *float64  `json:"years_required"`
	LevelRequired    string    `json:"level_required,omitempty"`
	Education        string    `json:"education,omitempty"`
	WorkAuthRequired *bool     `json:"work_auth_required"`
	Location         string    `json:"location,omitempty"`
}

// ResumeFeatures is the structured view of a resume produced by an extractor.
type ResumeFeatures struct {
	Skills            []string `json:"skills"`
	Domains           []string `json:"domains"`
	YearsOfExperience *float64 `json:"years_of_experience"`
	CurrentLevel      string   `json:"current_level,omitempty"`
	Education         string   `json:"education,omitempty"`
	WorkAuthStatus    *bool    `json:"work_auth_status"`
	Location          string   `json:"location,omitempty"`
}

// AllSkills returns the union of All, Required and Preferred, deduplicated
// case-insensitively while keeping first-seen spelling and order.
func (s JobSkills) AllSkills() []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{s.All, s.Required, s.Preferred} {
		for _, skill := range list {
			key := strings.ToLower(strings.TrimSpace(skill))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, strings.TrimSpace(skill))
		}
	}
	return out
}

// Classified reports whether the extractor already split skills into required/preferred.
func (s JobSkills) Classified() bool {
	return len(s.Required) > 0 || len(s.Preferred) > 0
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}
