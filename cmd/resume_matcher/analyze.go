package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/matcher"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/scoring"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score one resume against one job description",
	Long: `Score one resume against one job description and print the full match result as JSON.

The resume is given either as text (--resume) or as pre-extracted features (--resume-features)
that must validate against the resume features schema.

Example:
  resume_matcher analyze --job job.txt --resume resume.txt --verbose
  resume_matcher analyze --job job.txt --resume-features features.json --weights skills=0.5,semantic=0.2`,
	RunE: runAnalyze,
}

var (
	analyzeJobFile           string
	analyzeResumeFile        string
	analyzeFeaturesFile      string
	analyzeNoExplanation     bool
	analyzeStrict            bool
	analyzeWeights           map[string]string
	analyzeMinSkillsCoverage float64
	analyzeMaxYearsGap       float64
	analyzeOutputFile        string
	analyzeVerbose           bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeJobFile, "job", "", "Path to the job description text (required)")
	analyzeCmd.Flags().StringVar(&analyzeResumeFile, "resume", "", "Path to the resume text")
	analyzeCmd.Flags().StringVar(&analyzeFeaturesFile, "resume-features", "", "Path to pre-extracted resume features JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoExplanation, "no-explanation", false, "Skip the human-readable explanation")
	analyzeCmd.Flags().BoolVar(&analyzeStrict, "strict", false, "Mark the result as strict mode")
	analyzeCmd.Flags().StringToStringVar(&analyzeWeights, "weights", nil, "Weight overrides, e.g. skills=0.5,semantic=0.2")
	analyzeCmd.Flags().Float64Var(&analyzeMinSkillsCoverage, "min-skills-coverage", 0, "Override the skills gate threshold (0-1)")
	analyzeCmd.Flags().Float64Var(&analyzeMaxYearsGap, "max-years-gap", 0, "Override the allowed experience shortfall in years")
	analyzeCmd.Flags().StringVarP(&analyzeOutputFile, "out", "o", "", "Write JSON to this file instead of stdout")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print a formatted summary to stderr")
	_ = analyzeCmd.MarkFlagRequired("job")
	analyzeCmd.MarkFlagsMutuallyExclusive("resume", "resume-features")
	analyzeCmd.MarkFlagsOneRequired("resume", "resume-features")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	job, err := readText(analyzeJobFile)
	if err != nil {
		return err
	}

	var resume matcher.ResumeInput
	if analyzeFeaturesFile != "" {
		resume.Features, err = readResumeFeatures(analyzeFeaturesFile)
	} else {
		resume.Content, err = readText(analyzeResumeFile)
	}
	if err != nil {
		return err
	}

	opts, err := analyzeOptions(cmd)
	if err != nil {
		return err
	}

	ctx, rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	out := rt.matcher.AnalyzeMatch(ctx, job, resume, opts)

	if analyzeVerbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		if out.OK() {
			printer.PrintMatchResult(out.Result)
		} else {
			printer.PrintMatchError(out.Error)
		}
	}

	if out.OK() {
		return writeJSON(cmd.OutOrStdout(), analyzeOutputFile, out.Result)
	}
	if err := writeJSON(cmd.OutOrStdout(), analyzeOutputFile, out.Error); err != nil {
		return err
	}
	return fmt.Errorf("match failed (%s): %s", out.Error.ErrorType, out.Error.Details)
}

func analyzeOptions(cmd *cobra.Command) (*matcher.Options, error) {
	include := !analyzeNoExplanation
	opts := &matcher.Options{IncludeExplanation: &include, StrictMode: analyzeStrict}

	if len(analyzeWeights) > 0 {
		w, err := parseWeights(analyzeWeights)
		if err != nil {
			return nil, err
		}
		opts.CustomWeights = w
	}

	var gates scoring.GateOverrides
	if cmd.Flags().Changed("min-skills-coverage") {
		gates.MinSkillsCoverage = &analyzeMinSkillsCoverage
		opts.CustomGates = &gates
	}
	if cmd.Flags().Changed("max-years-gap") {
		gates.MaxYearsGap = &analyzeMaxYearsGap
		opts.CustomGates = &gates
	}
	return opts, nil
}

// parseWeights turns name=value pairs into weight overrides.
func parseWeights(raw map[string]string) (*scoring.WeightOverrides, error) {
	var w scoring.WeightOverrides
	for name, value := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %s=%q: %w", name, value, err)
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "semantic":
			w.Semantic = &v
		case "skills":
			w.Skills = &v
		case "experience":
			w.Experience = &v
		case "level":
			w.Level = &v
		case "domain":
			w.Domain = &v
		case "education":
			w.Education = &v
		default:
			return nil, fmt.Errorf("unknown weight %q (want semantic, skills, experience, level, domain or education)", name)
		}
	}
	return &w, nil
}
