// Command ingest loads an assessment catalog export into the vector
// store: parse, embed in batches, upsert.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"assessment-recommender/internal/catalog"
	"assessment-recommender/internal/di"
	"assessment-recommender/internal/domain"
	"assessment-recommender/internal/infra"
	"assessment-recommender/internal/infra/config"
	"assessment-recommender/internal/infra/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load a catalog CSV into the assessment index",
	Long: `Parse a catalog export, embed each assessment and upsert the
records into the vector store.

Examples:
  ingest --csv catalog.csv
  ingest --csv catalog.csv --batch-size 32 --embed-rate 5`,
	RunE: runIngest,
}

func init() {
	rootCmd.Flags().String("csv", "", "path to the catalog CSV (required)")
	rootCmd.Flags().Int("batch-size", 16, "assessments embedded per request")
	rootCmd.Flags().Float64("embed-rate", 2, "embedding requests per second")
	_ = rootCmd.MarkFlagRequired("csv")
}

func runIngest(cmd *cobra.Command, args []string) error {
	csvPath, _ := cmd.Flags().GetString("csv")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	embedRate, _ := cmd.Flags().GetFloat64("embed-rate")
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive")
	}

	cfg := config.Load()
	log := logger.New()
	slog.SetDefault(log)

	ctx := cmd.Context()

	dbPool, err := infra.NewPostgresDB(ctx, cfg.DB.DSN()+"?sslmode=disable", infra.PoolConfig{
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer dbPool.Close()

	components, err := di.NewApplicationComponents(cfg, dbPool, log)
	if err != nil {
		return err
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open catalog csv: %w", err)
	}
	defer func() { _ = file.Close() }()

	assessments, err := catalog.ParseCSV(file)
	if err != nil {
		return err
	}
	if len(assessments) == 0 {
		return fmt.Errorf("catalog csv contained no usable rows")
	}

	log.Info("catalog_ingest_started",
		slog.String("csv", csvPath),
		slog.Int("assessment_count", len(assessments)),
		slog.Int("batch_size", batchSize))
	start := time.Now()

	limiter := rate.NewLimiter(rate.Limit(embedRate), 1)
	inserted := 0
	for offset := 0; offset < len(assessments); offset += batchSize {
		end := offset + batchSize
		if end > len(assessments) {
			end = len(assessments)
		}
		batch := assessments[offset:end]

		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		texts := make([]string, len(batch))
		for i, a := range batch {
			texts[i] = catalog.EmbeddingText(a)
		}
		vectors, err := components.Encoder.Encode(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed batch at offset %d: %w", offset, err)
		}

		records := make([]domain.CatalogRecord, len(batch))
		for i, a := range batch {
			records[i] = domain.CatalogRecord{Assessment: a, Embedding: vectors[i]}
		}
		if err := components.CatalogRepo.BulkInsert(ctx, records); err != nil {
			return fmt.Errorf("failed to insert batch at offset %d: %w", offset, err)
		}

		inserted += len(batch)
		log.Info("catalog_batch_ingested",
			slog.Int("inserted", inserted),
			slog.Int("total", len(assessments)))
	}

	total, err := components.CatalogRepo.Count(ctx)
	if err != nil {
		return err
	}

	log.Info("catalog_ingest_completed",
		slog.Int("inserted", inserted),
		slog.Int("catalog_size", total),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
