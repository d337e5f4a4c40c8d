// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to n runes with a trailing ellipsis.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintMatchResult prints every section of a successful analysis.
func (p *Printer) PrintMatchResult(r *types.MatchResult) {
	if r == nil {
		return
	}
	p.PrintScore(r)
	p.PrintFeatures(r.JobFeatures, r.ResumeFeatures)
	p.PrintSkills(r.FeatureMatch.Skills)
	p.PrintBreakdown(r.Scoring)
	if r.Explanation != nil {
		p.PrintExplanation(*r.Explanation)
	}
	p.PrintWarnings(r.Warnings)
}

// PrintScore outputs the headline score, confidence and similarity.
func (p *Printer) PrintScore(r *types.MatchResult) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:       %d / 100\n", r.FinalScore))
	sb.WriteString(fmt.Sprintf("Confidence:  %s\n", r.Confidence))
	sb.WriteString(fmt.Sprintf("Semantic:    %.2f", r.Similarity.OverallSemantic))
	if r.Similarity.Degraded {
		sb.WriteString(" (fallback)")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Time:        %dms", r.ProcessingTimeMs))
	if r.StrictMode {
		sb.WriteString("\nMode:        strict")
	}
	p.printBox("MATCH SCORE", sb.String())
}

// PrintFeatures outputs the extracted job and resume features side by side.
func (p *Printer) PrintFeatures(job types.JobFeatures, resume types.ResumeFeatures) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Level:       %s -> %s\n", orDash(job.LevelRequired), orDash(resume.CurrentLevel)))
	sb.WriteString(fmt.Sprintf("Years:       %s -> %s\n", years(job.YearsRequired), years(resume.YearsOfExperience)))
	sb.WriteString(fmt.Sprintf("Education:   %s -> %s\n", orDash(job.Education), orDash(resume.Education)))
	sb.WriteString(fmt.Sprintf("Domains:     %s -> %s", list(job.Domains), list(resume.Domains)))
	p.printBox("FEATURES (job -> resume)", sb.String())
}

// PrintSkills outputs matched and missing skills.
func (p *Printer) PrintSkills(m types.SkillsMatch) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Required coverage:  %.0f%%\n", m.Coverage*100))
	sb.WriteString(fmt.Sprintf("Preferred coverage: %.0f%%\n", m.PreferredCoverage*100))
	writeList(&sb, "Matched", "✓", m.MatchedRequired)
	writeList(&sb, "Missing", "✗", m.MissingRequired)
	writeList(&sb, "Bonus", "+", m.MatchedPreferred)
	p.printBox("SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBreakdown outputs weighted contributions, adjustments and gates.
func (p *Printer) PrintBreakdown(s types.ScoringResult) {
	b := s.Breakdown
	var sb strings.Builder
	for _, c := range []struct {
		name string
		cs   types.ComponentScore
	}{
		{"semantic", b.Semantic},
		{"skills", b.Skills},
		{"experience", b.Experience},
		{"level", b.Level},
		{"domain", b.Domain},
		{"education", b.Education},
	} {
		sb.WriteString(fmt.Sprintf("%-11s %.2f x %.2f = %5.1f\n", c.name, c.cs.Score, c.cs.Weight, c.cs.Contribution))
	}
	sb.WriteString(fmt.Sprintf("base        %27.1f\n", b.BaseScore))

	adjustments := append(append(append([]types.Adjustment{}, b.Bonuses...), b.Penalties...), b.GatePenalties...)
	for _, adj := range adjustments {
		sb.WriteString(fmt.Sprintf("  %-24s %+6.1f\n", adj.Name, adj.Points))
	}

	if failed := s.GateResults.Failed(); len(failed) > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠ gates failed: %s", strings.Join(failed, ", ")))
	} else {
		sb.WriteString("\n✓ all gates passed")
	}
	p.printBox("SCORE BREAKDOWN", sb.String())
}

// PrintExplanation outputs strengths, concerns and recommendations.
func (p *Printer) PrintExplanation(e types.MatchExplanation) {
	var sb strings.Builder
	sb.WriteString(e.Summary + "\n")
	writeList(&sb, "Strengths", "•", e.Strengths)
	writeList(&sb, "Concerns", "•", e.Concerns)
	writeList(&sb, "Recommendations", "→", e.Recommendations)
	p.printBox("EXPLANATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWarnings outputs degraded-path warnings, if any.
func (p *Printer) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	var sb strings.Builder
	for _, w := range warnings {
		sb.WriteString("⚠ " + w + "\n")
	}
	p.printBox("WARNINGS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchError outputs a failed analysis.
func (p *Printer) PrintMatchError(e *types.MatchError) {
	if e == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Type:      %s\n", e.ErrorType))
	sb.WriteString(fmt.Sprintf("Message:   %s\n", e.Message))
	sb.WriteString(fmt.Sprintf("Fallback:  %d", e.FallbackScore))
	if e.Details != "" {
		sb.WriteString("\nDetails:   " + e.Details)
	}
	p.printBox("MATCH FAILED", sb.String())
}

// PrintQuickScores outputs one line per pair.
func (p *Printer) PrintQuickScores(scores []types.QuickScore) {
	if len(scores) == 0 {
		return
	}
	var sb strings.Builder
	for i, q := range scores {
		sb.WriteString(fmt.Sprintf("#%d  %3d  %-6s %s\n", i+1, q.Score, q.Confidence, q.Reason))
		if q.Error != "" {
			sb.WriteString("    error: " + q.Error + "\n")
		} else {
			sb.WriteString("    gap: " + q.Gap + "\n")
		}
	}
	p.printBox("QUICK SCORES", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, title, bullet string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + title + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  %s %s\n", bullet, items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func years(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
