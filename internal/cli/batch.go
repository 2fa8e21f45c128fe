package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmarchetti/responsa/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Resolve multiple questions from a file in parallel",
	Long: `Batch resolves many fiscal questions concurrently:
- Read questions from the input file (one per line, # for comments)
- Resolve them in parallel with a configurable worker count
- Golden hits, knowledge base search and provider failover all apply
  per question, exactly as with ask
- Optionally write one JSON resolution per question

Example:
  responsa batch domande.txt
  responsa batch domande.txt --concurrency 8 --output-dir ./risposte
  responsa batch domande.txt --kb-dir ./kb --seed golden.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "write one JSON resolution per question")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	registerPipelineFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyPipelineFlags(cfg)
	if concurrency > 0 {
		cfg.Concurrency.BatchWorkers = concurrency
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Responsa Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.BatchWorkers)
	if outputDir != "" {
		fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	}
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	resolver, err := buildResolver(cfg, logger)
	if err != nil {
		return err
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	processor := worker.NewBatchProcessor(resolver, cfg.Concurrency.BatchWorkers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	goldenCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Query, result.Error)
			continue
		}

		successCount++
		if result.Resolution.Answer.FromGolden {
			goldenCount++
			fmt.Fprintf(os.Stderr, "✓ %s (golden, %dms)\n", result.Query, result.Resolution.DurationMs)
		} else {
			fmt.Fprintf(os.Stderr, "✓ %s (%s, %dms)\n",
				result.Query, result.Resolution.Answer.Provider, result.Resolution.DurationMs)
		}

		if outputDir != "" {
			path := filepath.Join(outputDir, sanitizeFilename(result.Query)+".json")
			if err := writeResolution(path, result); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Query, err)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d questions\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d (of which golden: %d)\n", successCount, goldenCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	if outputDir != "" {
		fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func writeResolution(path string, result *worker.ResolveResult) error {
	data, err := json.MarshalIndent(result.Resolution, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// sanitizeFilename turns a question into a safe, bounded file name
func sanitizeFilename(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "",
		"\"", "",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
		"'", "",
	)
	s = replacer.Replace(s)

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "domanda"
	}
	return s
}
