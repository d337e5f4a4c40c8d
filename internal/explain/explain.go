// Package explain turns scoring signals into a deterministic human-readable
// account of a match.
package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

// Output limits.
const (
	maxStrengths       = 3
	maxConcerns        = 3
	maxRecommendations = 4
	maxListedSkills    = 3
)

// Categories shared by statements, gaps and insights.
const (
	CategorySemantic   = "semantic"
	CategorySkills     = "skills"
	CategoryExperience = "experience"
	CategoryLevel      = "level"
	CategoryDomain     = "domain"
	CategoryEducation  = "education"
	CategoryWorkAuth   = "work_auth"
	CategoryData       = "data"
)

// gatePriority puts gate failures ahead of every other concern.
const gatePriority = 100.0

// Input is the full signal set an explanation is derived from.
type Input struct {
	Similarity   types.SimilarityScores
	FeatureMatch types.FeatureMatchAnalysis
	Job          types.JobFeatures
	Resume       types.ResumeFeatures
	Scoring      types.ScoringResult
}

// statement is a candidate strength or concern.
type statement struct {
	category string
	priority float64
	text     string
}

// Generate builds the explanation for a scored match.
func Generate(in Input) types.MatchExplanation {
	strengths := rank(collectStrengths(in), maxStrengths)
	concerns := rank(collectConcerns(in), maxConcerns)

	return types.MatchExplanation{
		Strengths:       texts(strengths),
		Concerns:        texts(concerns),
		Summary:         Summary(in.Scoring.FinalScore, in.Scoring.Confidence),
		Recommendations: recommendations(in),
		KeyInsights: types.KeyInsights{
			StrongestMatch:       strongestMatch(in),
			BiggestGap:           biggestGap(concerns),
			ImprovementPotential: improvementPotential(in),
		},
	}
}

func collectStrengths(in Input) []statement {
	fm := in.FeatureMatch
	var out []statement

	sem := in.Similarity.OverallSemantic
	switch {
	case sem >= 0.75:
		out = append(out, statement{CategorySemantic, sem * 10, "Resume content closely mirrors the job description"})
	case sem >= 0.6:
		out = append(out, statement{CategorySemantic, sem * 8, "Resume content aligns well with the job description"})
	}

	if len(fm.Skills.RequiredSkills) > 0 {
		switch {
		case fm.Skills.Coverage >= 0.9:
			out = append(out, statement{CategorySkills, fm.Skills.Coverage * 10,
				fmt.Sprintf("Has nearly all required skills (%s)", listSkills(fm.Skills.MatchedRequired))})
		case fm.Skills.Coverage >= 0.7:
			out = append(out, statement{CategorySkills, fm.Skills.Coverage * 8,
				fmt.Sprintf("Covers most required skills (%s)", listSkills(fm.Skills.MatchedRequired))})
		}
	}
	if len(fm.Skills.MatchedPreferred) > 0 {
		out = append(out, statement{CategorySkills, 4 + float64(len(fm.Skills.MatchedPreferred)),
			fmt.Sprintf("Brings preferred skills: %s", listSkills(fm.Skills.MatchedPreferred))})
	}

	exp := fm.Experience
	if exp.CandidateYears != nil && exp.RequiredYears != nil {
		switch {
		case exp.ExceedsRequirement:
			out = append(out, statement{CategoryExperience, 9,
				fmt.Sprintf("%s of experience exceeds the %s required", years(*exp.CandidateYears), years(*exp.RequiredYears))})
		case exp.GapSeverity == types.GapNone:
			out = append(out, statement{CategoryExperience, 8,
				fmt.Sprintf("Meets the %s experience requirement", years(*exp.RequiredYears))})
		}
	}

	if fm.Level.Known && fm.Level.LevelGap <= 0 {
		out = append(out, statement{CategoryLevel, 7,
			fmt.Sprintf("Seniority (%s) fits the %s role", fm.Level.CandidateLevel, fm.Level.RequiredLevel)})
	}

	if len(fm.Domain.MatchedDomains) > 0 {
		out = append(out, statement{CategoryDomain, 5 * fm.Domain.Score,
			fmt.Sprintf("Relevant domain background in %s", strings.Join(fm.Domain.MatchedDomains, ", "))})
	}

	if in.Job.Education != "" && fm.Education.Exceeds {
		out = append(out, statement{CategoryEducation, 4,
			fmt.Sprintf("Education (%s) exceeds the %s requirement", fm.Education.CandidateEducation, fm.Education.RequiredEducation)})
	} else if in.Job.Education != "" && fm.Education.MeetsRequirement {
		out = append(out, statement{CategoryEducation, 3, "Meets the education requirement"})
	}

	if fm.Location.Status == types.WorkAuthAuthorized {
		out = append(out, statement{CategoryWorkAuth, 3, "Authorized to work as required"})
	}
	return out
}

func collectConcerns(in Input) []statement {
	fm := in.FeatureMatch
	gates := in.Scoring.GateResults
	var out []statement

	if !gates.SkillsGate.Passed {
		out = append(out, statement{CategorySkills, gatePriority + (1 - fm.Skills.Coverage),
			fmt.Sprintf("Missing key required skills: %s", listSkills(fm.Skills.MissingRequired))})
	} else if len(fm.Skills.MissingRequired) > 0 {
		out = append(out, statement{CategorySkills, 10 * (1 - fm.Skills.Coverage),
			fmt.Sprintf("Missing some required skills: %s", listSkills(fm.Skills.MissingRequired))})
	}

	if !gates.ExperienceGate.Passed {
		out = append(out, statement{CategoryExperience, gatePriority + gates.ExperienceGate.Value/10,
			fmt.Sprintf("Experience falls %s short of the requirement", years(gates.ExperienceGate.Value))})
	} else if fm.Experience.CandidateYears == nil {
		out = append(out, statement{CategoryExperience, 6, "Years of experience could not be determined"})
	} else if fm.Experience.YearsGap > 0 {
		out = append(out, statement{CategoryExperience, 3 + fm.Experience.YearsGap,
			fmt.Sprintf("Slightly under the experience requirement by %s", years(fm.Experience.YearsGap))})
	}

	if !gates.WorkAuthGate.Passed {
		out = append(out, statement{CategoryWorkAuth, gatePriority + 1, "Not authorized to work where the job requires"})
	} else if fm.Location.Status == types.WorkAuthUnknown {
		out = append(out, statement{CategoryWorkAuth, 4, "Work authorization is required but not stated"})
	}

	if !gates.EducationGate.Passed {
		out = append(out, statement{CategoryEducation, gatePriority,
			fmt.Sprintf("Does not meet the %s education requirement", in.Job.Education)})
	} else if in.Job.Education != "" && !fm.Education.MeetsRequirement {
		out = append(out, statement{CategoryEducation, 4,
			fmt.Sprintf("Education below the preferred %s", in.Job.Education)})
	}

	if fm.Level.Known && fm.Level.LevelGap > 0 {
		priority := 3 + 2*float64(fm.Level.LevelGap)
		text := fmt.Sprintf("Current level (%s) is below the %s role", fm.Level.CandidateLevel, fm.Level.RequiredLevel)
		if !fm.Level.IsPromotable {
			text = fmt.Sprintf("Seniority gap: %s candidate for a %s role", fm.Level.CandidateLevel, fm.Level.RequiredLevel)
		}
		out = append(out, statement{CategoryLevel, priority, text})
	}

	if len(fm.Domain.MissingDomains) > 0 {
		out = append(out, statement{CategoryDomain, 5 * (1 - fm.Domain.Score),
			fmt.Sprintf("No background in %s", strings.Join(fm.Domain.MissingDomains, ", "))})
	}

	if sem := in.Similarity.OverallSemantic; sem < 0.4 {
		out = append(out, statement{CategorySemantic, 8 * (1 - sem), "Resume content differs substantially from the job description"})
	}

	if in.Scoring.QualityIndicators.DataCompleteness < 0.5 {
		out = append(out, statement{CategoryData, 5, "Limited information available to assess the match"})
	}
	return out
}

// rank sorts statements by priority, keeps the best per category and truncates.
func rank(statements []statement, limit int) []statement {
	sort.SliceStable(statements, func(i, j int) bool {
		return statements[i].priority > statements[j].priority
	})
	seen := make(map[string]bool)
	out := make([]statement, 0, limit)
	for _, s := range statements {
		if seen[s.category] {
			continue
		}
		seen[s.category] = true
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

func texts(statements []statement) []string {
	out := make([]string, len(statements))
	for i, s := range statements {
		out[i] = s.text
	}
	return out
}

// Summary returns the headline sentence for a score and confidence.
func Summary(score int, confidence types.Confidence) string {
	var head string
	switch {
	case score >= 85:
		head = "Excellent match"
	case score >= 70:
		head = "Strong match"
	case score >= 55:
		head = "Good match"
	case score >= 40:
		head = "Moderate match"
	case score >= 30:
		head = "Weak match"
	default:
		head = "Poor match"
	}

	var qualifier string
	switch confidence {
	case types.ConfidenceHigh:
		qualifier = "with high confidence in the assessment"
	case types.ConfidenceMedium:
		qualifier = "with moderate confidence in the assessment"
	default:
		qualifier = "though limited data lowers confidence in the assessment"
	}
	return fmt.Sprintf("%s (%d/100), %s.", head, score, qualifier)
}

func recommendations(in Input) []string {
	fm := in.FeatureMatch
	gates := in.Scoring.GateResults
	var out []string

	if len(fm.Skills.MissingRequired) > 0 {
		out = append(out, fmt.Sprintf("Highlight or build experience with %s", listSkills(fm.Skills.MissingRequired)))
	}
	if !gates.ExperienceGate.Passed {
		out = append(out, "Emphasize the scope and impact of past roles to offset the experience gap")
	} else if fm.Experience.CandidateYears == nil {
		out = append(out, "State total years of professional experience explicitly")
	}
	if fm.Level.Known && fm.Level.LevelGap > 0 {
		if fm.Level.IsPromotable {
			out = append(out, "Show leadership and ownership examples that support a step up in level")
		} else {
			out = append(out, "Consider roles closer to the current seniority level")
		}
	}
	if len(fm.Skills.MissingPreferred) > 0 && len(out) < maxRecommendations {
		out = append(out, fmt.Sprintf("Mention any exposure to preferred skills such as %s", listSkills(fm.Skills.MissingPreferred)))
	}
	if fm.Location.Status == types.WorkAuthUnknown {
		out = append(out, "Clarify work authorization status")
	}
	if in.Job.Education != "" && !fm.Education.MeetsRequirement {
		out = append(out, "Point to certifications or equivalent experience in place of the degree requirement")
	}
	if in.Scoring.QualityIndicators.DataCompleteness < 0.6 {
		out = append(out, "Add more detail on skills, experience and education to the resume")
	}
	if len(out) == 0 {
		out = append(out, "Tailor the resume summary to the role's core responsibilities")
	}
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

// strongestMatch names the dimension with the highest component score.
func strongestMatch(in Input) string {
	b := in.Scoring.Breakdown
	candidates := []struct {
		name  string
		score float64
	}{
		{CategorySemantic, b.Semantic.Score},
		{CategorySkills, b.Skills.Score},
		{CategoryExperience, b.Experience.Score},
		{CategoryLevel, b.Level.Score},
		{CategoryDomain, b.Domain.Score},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}
	return best.name
}

func biggestGap(concerns []statement) string {
	if len(concerns) == 0 {
		return "none"
	}
	return concerns[0].category
}

func improvementPotential(in Input) string {
	score := in.Scoring.FinalScore
	severity := in.FeatureMatch.Experience.GapSeverity
	switch {
	case score >= 80:
		return "low"
	case !in.Scoring.GateResults.OverallGatesPassed && (score < 40 || severity == types.GapMajor):
		return "limited"
	case score >= 60 || severity == types.GapMinor || severity == types.GapNone:
		return "moderate"
	default:
		return "high"
	}
}

// Quick builds the quick summary from the top-ranked strength and concern
// alone. Recommendations and key insights are never computed.
func Quick(in Input) types.QuickSummary {
	score, confidence := in.Scoring.FinalScore, in.Scoring.Confidence
	return QuickSummary(score, confidence, types.MatchExplanation{
		Strengths: texts(rank(collectStrengths(in), 1)),
		Concerns:  texts(rank(collectConcerns(in), 1)),
		Summary:   Summary(score, confidence),
	})
}

// QuickSummary condenses an explanation into one line plus the top gap.
func QuickSummary(score int, confidence types.Confidence, explanation types.MatchExplanation) types.QuickSummary {
	reason := strings.TrimSuffix(explanation.Summary, ".")
	if len(explanation.Strengths) > 0 {
		reason = simplify(explanation.Strengths[0])
	}
	gap := "None identified"
	if len(explanation.Concerns) > 0 {
		gap = simplify(explanation.Concerns[0])
	}
	return types.QuickSummary{
		Score:         score,
		OneLineReason: reason,
		TopGap:        gap,
		Confidence:    confidence,
	}
}

// simplify drops parenthesized detail and anything after a colon.
func simplify(s string) string {
	if i := strings.Index(s, " ("); i > 0 {
		if j := strings.Index(s[i:], ")"); j > 0 {
			s = s[:i] + s[i+j+1:]
		}
	}
	if i := strings.Index(s, ":"); i > 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func listSkills(skills []string) string {
	if len(skills) == 0 {
		return "none"
	}
	if len(skills) <= maxListedSkills {
		return strings.Join(skills, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(skills[:maxListedSkills], ", "), len(skills)-maxListedSkills)
}

func years(v float64) string {
	if v == 1 {
		return "1 year"
	}
	if v == float64(int(v)) {
		return fmt.Sprintf("%d years", int(v))
	}
	return fmt.Sprintf("%.1f years", v)
}
