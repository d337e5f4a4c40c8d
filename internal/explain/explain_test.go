package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/matching"
	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/types"
)

func buildInput(t *testing.T, sim types.SimilarityScores, job types.JobFeatures, resume types.ResumeFeatures) Input {
	t.Helper()
	engine, err := scoring.NewEngine(scoring.DefaultConfig(), nil)
	require.NoError(t, err)
	fm := matching.Analyze(job, resume, "")
	result := engine.Calculate(scoring.Input{Similarity: sim, FeatureMatch: fm, Job: job, Resume: resume})
	return Input{Similarity: sim, FeatureMatch: fm, Job: job, Resume: resume, Scoring: result}
}

func strongInput(t *testing.T) Input {
	return buildInput(t,
		types.SimilarityScores{OverallSemantic: 0.8, Confidence: types.ConfidenceHigh},
		types.JobFeatures{
			Skills:        types.JobSkills{Required: []string{"Go", "Kubernetes"}, Preferred: []string{"Terraform"}},
			Domains:       []string{"fintech"},
			YearsRequired: types.Float64(5),
			LevelRequired: "senior",
			Education:     "Bachelor's",
		},
		types.ResumeFeatures{
			Skills:            []string{"Go", "Kubernetes", "Terraform"},
			Domains:           []string{"fintech"},
			YearsOfExperience: types.Float64(8),
			CurrentLevel:      "senior",
			Education:         "Master's",
		},
	)
}

func weakInput(t *testing.T) Input {
	return buildInput(t,
		types.SimilarityScores{OverallSemantic: 0.2, Confidence: types.ConfidenceLow},
		types.JobFeatures{
			Skills:           types.JobSkills{Required: []string{"React", "TypeScript", "CSS", "Redux", "Jest"}},
			YearsRequired:    types.Float64(10),
			LevelRequired:    "director",
			WorkAuthRequired: types.Bool(true),
		},
		types.ResumeFeatures{
			Skills:            []string{"Python"},
			YearsOfExperience: types.Float64(2),
			CurrentLevel:      "junior",
		},
	)
}

func TestGenerate_StrongMatch(t *testing.T) {
	in := strongInput(t)

	e := Generate(in)

	assert.NotEmpty(t, e.Strengths)
	assert.LessOrEqual(t, len(e.Strengths), 3)
	assert.Empty(t, e.Concerns)
	assert.Contains(t, e.Summary, "Excellent match")
	assert.Contains(t, e.Summary, "high confidence")
	assert.Equal(t, "none", e.KeyInsights.BiggestGap)
	assert.Equal(t, "low", e.KeyInsights.ImprovementPotential)
	assert.NotEmpty(t, e.Recommendations)
}

func TestGenerate_WeakMatchGateConcernsFirst(t *testing.T) {
	in := weakInput(t)

	e := Generate(in)

	require.Len(t, e.Concerns, 3)
	assert.Contains(t, e.Concerns[0], "Missing key required skills")
	assert.Contains(t, e.Concerns[1], "short of the requirement")
	assert.Equal(t, CategorySkills, e.KeyInsights.BiggestGap)
	assert.Contains(t, e.Summary, "Poor match")
	assert.LessOrEqual(t, len(e.Recommendations), 4)
	assert.Equal(t, "limited", e.KeyInsights.ImprovementPotential)
}

func TestGenerate_Deterministic(t *testing.T) {
	in := weakInput(t)
	assert.Equal(t, Generate(in), Generate(in))
}

func TestRank_DedupesCategoriesAndTruncates(t *testing.T) {
	ranked := rank([]statement{
		{CategorySkills, 5, "a"},
		{CategorySkills, 9, "b"},
		{CategoryLevel, 7, "c"},
		{CategoryDomain, 1, "d"},
		{CategoryData, 2, "e"},
	}, 3)

	assert.Equal(t, []string{"b", "c", "e"}, texts(ranked))
}

func TestSummary_Ladder(t *testing.T) {
	cases := map[int]string{
		90: "Excellent match",
		85: "Excellent match",
		70: "Strong match",
		60: "Good match",
		45: "Moderate match",
		30: "Weak match",
		10: "Poor match",
	}
	for score, want := range cases {
		assert.Contains(t, Summary(score, types.ConfidenceMedium), want)
	}
	assert.Contains(t, Summary(50, types.ConfidenceLow), "limited data")
}

func TestStrongestMatch(t *testing.T) {
	in := Input{}
	in.Scoring.Breakdown.Semantic.Score = 0.4
	in.Scoring.Breakdown.Skills.Score = 0.9
	in.Scoring.Breakdown.Level.Score = 0.8

	assert.Equal(t, CategorySkills, strongestMatch(in))
}

func TestQuickSummary(t *testing.T) {
	e := types.MatchExplanation{
		Strengths: []string{"Has nearly all required skills (Go, Kubernetes)"},
		Concerns:  []string{"Missing some required skills: gRPC"},
		Summary:   "Strong match (75/100), with moderate confidence in the assessment.",
	}

	q := QuickSummary(75, types.ConfidenceMedium, e)

	assert.Equal(t, 75, q.Score)
	assert.Equal(t, "Has nearly all required skills", q.OneLineReason)
	assert.Equal(t, "Missing some required skills", q.TopGap)
	assert.Equal(t, types.ConfidenceMedium, q.Confidence)
}

func TestQuick_MatchesFullExplanation(t *testing.T) {
	for _, in := range []Input{strongInput(t), weakInput(t)} {
		full := QuickSummary(in.Scoring.FinalScore, in.Scoring.Confidence, Generate(in))
		assert.Equal(t, full, Quick(in))
	}
}

func TestQuickSummary_NoStatements(t *testing.T) {
	q := QuickSummary(20, types.ConfidenceLow, types.MatchExplanation{Summary: "Poor match (20/100), though limited data lowers confidence in the assessment."})

	assert.Equal(t, "Poor match (20/100), though limited data lowers confidence in the assessment", q.OneLineReason)
	assert.Equal(t, "None identified", q.TopGap)
}

func TestListSkills(t *testing.T) {
	assert.Equal(t, "none", listSkills(nil))
	assert.Equal(t, "a, b", listSkills([]string{"a", "b"}))
	assert.Equal(t, "a, b, c and 2 more", listSkills([]string{"a", "b", "c", "d", "e"}))
}

func TestYears(t *testing.T) {
	assert.Equal(t, "1 year", years(1))
	assert.Equal(t, "5 years", years(5))
	assert.Equal(t, "2.5 years", years(2.5))
}
