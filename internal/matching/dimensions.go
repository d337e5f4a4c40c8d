package matching

import (
	"math"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

// Missing-data defaults. They differ per dimension and are kept as-is.
const (
	missingCandidateYearsScore = 0.0
	missingCandidateLevelScore = 0.0
	unknownLevelScore          = 0.5
	missingEducationScore      = 0.3
	belowEducationScore        = 0.3
	unknownWorkAuthScore       = 0.5
	notAuthorizedScore         = 0.1
)

// AnalyzeDomain scores the share of job domains present in the resume. A domain
// matches when either name contains the other, ignoring case.
func AnalyzeDomain(job types.JobFeatures, resume types.ResumeFeatures) types.DomainMatch {
	jobDomains := dedupe(job.Domains)
	m := types.DomainMatch{
		Score:          1.0,
		JobDomains:     jobDomains,
		MatchedDomains: []string{},
		MissingDomains: []string{},
	}
	if len(jobDomains) == 0 {
		return m
	}

	for _, d := range jobDomains {
		if domainPresent(resume.Domains, d) {
			m.MatchedDomains = append(m.MatchedDomains, d)
		} else {
			m.MissingDomains = append(m.MissingDomains, d)
		}
	}
	m.Score = float64(len(m.MatchedDomains)) / float64(len(jobDomains))
	return m
}

func domainPresent(candidate []string, domain string) bool {
	want := skillKey(domain)
	for _, c := range candidate {
		have := skillKey(c)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return true
		}
	}
	return false
}

// AnalyzeExperience compares required and actual years of experience.
func AnalyzeExperience(job types.JobFeatures, resume types.ResumeFeatures) types.ExperienceMatch {
	m := types.ExperienceMatch{
		RequiredYears:  job.YearsRequired,
		CandidateYears: resume.YearsOfExperience,
	}

	if resume.YearsOfExperience == nil {
		m.Score = missingCandidateYearsScore
		m.GapSeverity = types.GapMajor
		if job.YearsRequired != nil {
			m.YearsGap = *job.YearsRequired
		}
		return m
	}
	if job.YearsRequired == nil {
		m.Score = 1.0
		m.GapSeverity = types.GapNone
		return m
	}

	required, candidate := *job.YearsRequired, *resume.YearsOfExperience
	gap := math.Max(0, required-candidate)
	m.YearsGap = gap

	switch {
	case gap == 0:
		m.Score, m.GapSeverity = 1.0, types.GapNone
	case gap <= 1:
		m.Score, m.GapSeverity = 0.9, types.GapMinor
	case gap <= 3:
		m.Score, m.GapSeverity = 0.7, types.GapModerate
	default:
		m.Score, m.GapSeverity = 0.4, types.GapMajor
	}

	if candidate > required {
		m.ExceedsRequirement = true
		m.Score = math.Min(1.0, m.Score+0.1)
	}
	return m
}

// AnalyzeLevel places both sides on the seniority ladder and scores the gap.
func AnalyzeLevel(job types.JobFeatures, resume types.ResumeFeatures) types.LevelMatch {
	m := types.LevelMatch{
		RequiredLevel:  job.LevelRequired,
		CandidateLevel: resume.CurrentLevel,
	}
	if strings.TrimSpace(resume.CurrentLevel) == "" {
		m.Score = missingCandidateLevelScore
		return m
	}

	requiredIdx, okRequired := LevelIndex(job.LevelRequired)
	candidateIdx, okCandidate := LevelIndex(resume.CurrentLevel)
	if !okRequired || !okCandidate {
		m.Score = unknownLevelScore
		m.IsPromotable = true
		return m
	}

	m.Known = true
	m.LevelGap = requiredIdx - candidateIdx
	switch {
	case m.LevelGap <= 0:
		m.Score, m.IsPromotable = 1.0, true
	case m.LevelGap == 1:
		m.Score, m.IsPromotable = 0.8, true
	case m.LevelGap == 2:
		m.Score, m.IsPromotable = 0.6, true
	default:
		m.Score, m.IsPromotable = 0.3, false
	}
	return m
}

// AnalyzeEducation compares education levels on the degree ladder.
func AnalyzeEducation(job types.JobFeatures, resume types.ResumeFeatures) types.EducationMatch {
	m := types.EducationMatch{
		RequiredEducation:  job.Education,
		CandidateEducation: resume.Education,
	}

	requiredRank, hasRequirement := EducationRank(job.Education)
	if !hasRequirement {
		m.Score = 1.0
		m.MeetsRequirement = true
		return m
	}
	candidateRank, hasCandidate := EducationRank(resume.Education)
	if !hasCandidate {
		m.Score = missingEducationScore
		return m
	}

	m.MeetsRequirement = candidateRank >= requiredRank
	m.Exceeds = candidateRank > requiredRank
	if m.MeetsRequirement {
		m.Score = 1.0
	} else {
		m.Score = belowEducationScore
	}
	return m
}

// AnalyzeLocation compares work authorization and reports location compatibility.
func AnalyzeLocation(job types.JobFeatures, resume types.ResumeFeatures) types.LocationMatch {
	m := types.LocationMatch{
		WorkAuthRequired:    job.WorkAuthRequired,
		CandidateAuthorized: resume.WorkAuthStatus,
		JobLocation:         job.Location,
		CandidateLocation:   resume.Location,
		LocationCompatible:  locationCompatible(job.Location, resume.Location),
	}

	switch {
	case job.WorkAuthRequired == nil || !*job.WorkAuthRequired:
		m.Score, m.Status = 1.0, types.WorkAuthNotRequired
	case resume.WorkAuthStatus == nil:
		m.Score, m.Status = unknownWorkAuthScore, types.WorkAuthUnknown
	case *resume.WorkAuthStatus:
		m.Score, m.Status = 1.0, types.WorkAuthAuthorized
	default:
		m.Score, m.Status = notAuthorizedScore, types.WorkAuthNotAuthorized
	}
	return m
}

// locationCompatible treats remote jobs and unknown locations as compatible;
// otherwise one location string must contain the other.
func locationCompatible(jobLocation, candidateLocation string) bool {
	job, candidate := skillKey(jobLocation), skillKey(candidateLocation)
	if job == "" || candidate == "" || strings.Contains(job, "remote") {
		return true
	}
	return strings.Contains(job, candidate) || strings.Contains(candidate, job)
}

// Analyze runs all six comparisons.
func Analyze(job types.JobFeatures, resume types.ResumeFeatures, jobText string) types.FeatureMatchAnalysis {
	return types.FeatureMatchAnalysis{
		Skills:     AnalyzeSkills(job, resume, jobText),
		Domain:     AnalyzeDomain(job, resume),
		Experience: AnalyzeExperience(job, resume),
		Level:      AnalyzeLevel(job, resume),
		Education:  AnalyzeEducation(job, resume),
		Location:   AnalyzeLocation(job, resume),
	}
}
