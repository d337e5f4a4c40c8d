package types

// GapSeverity grades how far a candidate falls short of an experience requirement.
type GapSeverity string

const (
	GapNone     GapSeverity = "none"
	GapMinor    GapSeverity = "minor"
	GapModerate GapSeverity = "moderate"
	GapMajor    GapSeverity = "major"
)

// WorkAuthStatus describes the outcome of the work authorization comparison.
type WorkAuthStatus string

const (
	WorkAuthNotRequired   WorkAuthStatus = "not_required"
	WorkAuthAuthorized    WorkAuthStatus = "authorized"
	WorkAuthUnknown       WorkAuthStatus = "unknown"
	WorkAuthNotAuthorized WorkAuthStatus = "not_authorized"
)

// SkillsMatch is the skills dimension of a feature comparison.
type SkillsMatch struct {
	Score             float64  `json:"score"`
	Coverage          float64  `json:"coverage"`
	PreferredCoverage float64  `json:"preferred_coverage"`
	OverlapScore      float64  `json:"overlap_score"`
	RequiredSkills    []string `json:"required_skills"`
	PreferredSkills   []string `json:"preferred_skills"`
	MatchedRequired   []string `json:"matched_required"`
	MissingRequired   []string `json:"missing_required"`
	MatchedPreferred  []string `json:"matched_preferred"`
	MissingPreferred  []string `json:"missing_preferred"`
	AdditionalSkills  []string `json:"additional_skills"`
}

// DomainMatch is the industry/domain dimension of a feature comparison.
type DomainMatch struct {
	Score          float64  `json:"score"`
	JobDomains     []string `json:"job_domains"`
	MatchedDomains []string `json:"matched_domains"`
	MissingDomains []string `json:"missing_domains"`
}

// ExperienceMatch is the years-of-experience dimension of a feature comparison.
type ExperienceMatch struct {
	Score              float64     `json:"score"`
	RequiredYears      *float64    `json:"required_years"`
	CandidateYears     *float64    `json:"candidate_years"`
	YearsGap           float64     `json:"years_gap"`
	GapSeverity        GapSeverity `json:"gap_severity"`
	ExceedsRequirement bool        `json:"exceeds_requirement"`
}

// LevelMatch is the seniority dimension of a feature comparison.
type LevelMatch struct {
	Score          float64 `json:"score"`
	RequiredLevel  string  `json:"required_level,omitempty"`
	CandidateLevel string  `json:"candidate_level,omitempty"`
	LevelGap       int     `json:"level_gap"`
	IsPromotable   bool    `json:"is_promotable"`
	Known          bool    `json:"known"` // both levels were placed on the ladder
}

// EducationMatch is the education dimension of a feature comparison.
type EducationMatch struct {
	Score              float64 `json:"score"`
	RequiredEducation  string  `json:"required_education,omitempty"`
	CandidateEducation string  `json:"candidate_education,omitempty"`
	MeetsRequirement   bool    `json:"meets_requirement"`
	Exceeds            bool    `json:"exceeds"`
}

// LocationMatch is the location and work authorization dimension of a feature comparison.
type LocationMatch struct {
	Score               float64        `json:"score"`
	WorkAuthRequired    *bool          `json:"work_auth_required"`
	CandidateAuthorized *bool          `json:"candidate_authorized"`
	Status              WorkAuthStatus `json:"status"`
	JobLocation         string         `json:"job_location,omitempty"`
	CandidateLocation   string         `json:"candidate_location,omitempty"`
	LocationCompatible  bool           `json:"location_compatible"`
}

// FeatureMatchAnalysis bundles the six structured comparisons.
type FeatureMatchAnalysis struct {
	Skills     SkillsMatch     `json:"skills_match"`
	Domain     DomainMatch     `json:"domain_match"`
	Experience ExperienceMatch `json:"experience_match"`
	Level      LevelMatch      `json:"level_match"`
	Education  EducationMatch  `json:"education_match"`
	Location   LocationMatch   `json:"location_match"`
}
