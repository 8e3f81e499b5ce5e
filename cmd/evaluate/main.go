// Command evaluate measures recommendation quality offline and produces
// submission files from query batches.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"assessment-recommender/internal/di"
	"assessment-recommender/internal/eval"
	"assessment-recommender/internal/infra"
	"assessment-recommender/internal/infra/config"
	"assessment-recommender/internal/infra/logger"
)

var rootCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Offline evaluation of the recommender",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute mean Recall@K over a labeled query set",
	Long: `Run every labeled query through the recommender and report
per-query and mean Recall@K.

The CSV needs Query and Assessment_url columns, one row per
query/relevant-URL pair.

Examples:
  evaluate run --csv labeled.csv
  evaluate run --csv labeled.csv --k 10`,
	RunE: runEvaluation,
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Write a Query,Assessment_url submission file",
	Long: `Recommend for every query in the input CSV and write the
predicted URLs as a submission file.

Examples:
  evaluate predict --csv queries.csv --out submission.csv`,
	RunE: runPrediction,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(predictCmd)

	runCmd.Flags().String("csv", "", "labeled queries CSV (required)")
	runCmd.Flags().Int("k", 10, "cutoff for Recall@K")
	_ = runCmd.MarkFlagRequired("csv")

	predictCmd.Flags().String("csv", "", "queries CSV (required)")
	predictCmd.Flags().String("out", "submission.csv", "output path")
	predictCmd.Flags().Int("k", 10, "recommendations per query")
	_ = predictCmd.MarkFlagRequired("csv")
}

func newRunner(cmd *cobra.Command) (*eval.Runner, func(), error) {
	cfg := config.Load()
	log := logger.New()
	slog.SetDefault(log)

	dbPool, err := infra.NewPostgresDB(cmd.Context(), cfg.DB.DSN()+"?sslmode=disable", infra.PoolConfig{
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	components, err := di.NewApplicationComponents(cfg, dbPool, log)
	if err != nil {
		dbPool.Close()
		return nil, nil, err
	}

	return eval.NewRunner(components.Recommender, log), dbPool.Close, nil
}

func runEvaluation(cmd *cobra.Command, args []string) error {
	csvPath, _ := cmd.Flags().GetString("csv")
	k, _ := cmd.Flags().GetInt("k")

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open labeled csv: %w", err)
	}
	defer func() { _ = file.Close() }()

	labeled, err := eval.LoadLabeledQueries(file)
	if err != nil {
		return err
	}

	runner, cleanup, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := runner.Run(cmd.Context(), labeled, k)
	if err != nil {
		return err
	}

	for _, result := range report.Results {
		if !result.Applicable {
			fmt.Printf("%-60s n/a\n", result.Query)
			continue
		}
		fmt.Printf("%-60s %.4f\n", result.Query, result.Recall)
	}
	if report.Applicable {
		fmt.Printf("\nMean Recall@%d: %.4f\n", report.K, report.Mean)
	} else {
		fmt.Println("\nNo query had ground truth; mean recall is not applicable.")
	}
	return nil
}

func runPrediction(cmd *cobra.Command, args []string) error {
	csvPath, _ := cmd.Flags().GetString("csv")
	outPath, _ := cmd.Flags().GetString("out")
	k, _ := cmd.Flags().GetInt("k")

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open queries csv: %w", err)
	}
	defer func() { _ = file.Close() }()

	queries, err := eval.LoadQueries(file)
	if err != nil {
		return err
	}

	runner, cleanup, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := runner.WriteSubmission(cmd.Context(), queries, k, out); err != nil {
		return err
	}

	fmt.Printf("Wrote predictions for %d queries to %s\n", len(queries), outPath)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
