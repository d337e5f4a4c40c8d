package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score many job/resume pairs",
	Long: `Score every pair in a JSON pairs file. Pairs run in small concurrent groups and
the results keep the order of the file. Each entry holds "job" or "job_file", and
"resume", "resume_file" or "resume_features", plus optional "options".`,
	RunE: runBatch,
}

var quickCmd = &cobra.Command{
	Use:   "quick",
	Short: "Print quick scores for many job/resume pairs",
	Long:  `Score every pair in a JSON pairs file without full explanations and print one line per pair.`,
	RunE:  runQuick,
}

var (
	batchPairsFile  string
	batchOutputFile string
	quickPairsFile  string
	quickJSON       bool
)

type batchOutput struct {
	RequestID string               `json:"request_id"`
	Count     int                  `json:"count"`
	Failed    int                  `json:"failed"`
	Results   []types.MatchOutcome `json:"results"`
}

func init() {
	batchCmd.Flags().StringVar(&batchPairsFile, "pairs", "", "Path to the pairs JSON file (required)")
	batchCmd.Flags().StringVarP(&batchOutputFile, "out", "o", "", "Write JSON to this file instead of stdout")
	_ = batchCmd.MarkFlagRequired("pairs")

	quickCmd.Flags().StringVar(&quickPairsFile, "pairs", "", "Path to the pairs JSON file (required)")
	quickCmd.Flags().BoolVar(&quickJSON, "json", false, "Print JSON instead of a table")
	_ = quickCmd.MarkFlagRequired("pairs")

	rootCmd.AddCommand(batchCmd, quickCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	pairs, err := readPairs(batchPairsFile)
	if err != nil {
		return err
	}

	ctx, rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	out := batchOutput{RequestID: uuid.NewString()}
	out.Results = rt.matcher.AnalyzeBatchMatches(ctx, pairs)
	out.Count = len(out.Results)
	for _, o := range out.Results {
		if !o.OK() {
			out.Failed++
		}
	}
	rt.logger.Info("batch complete",
		zap.String("request_id", out.RequestID),
		zap.Int("count", out.Count),
		zap.Int("failed", out.Failed))

	return writeJSON(cmd.OutOrStdout(), batchOutputFile, out)
}

func runQuick(cmd *cobra.Command, _ []string) error {
	pairs, err := readPairs(quickPairsFile)
	if err != nil {
		return err
	}

	ctx, rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	scores := rt.matcher.GetQuickScores(ctx, pairs)
	if quickJSON {
		return writeJSON(cmd.OutOrStdout(), "", scores)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintQuickScores(scores)
	return nil
}
