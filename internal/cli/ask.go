package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dmarchetti/responsa/internal/model"
	"github.com/dmarchetti/responsa/internal/pipeline"
	"github.com/dmarchetti/responsa/internal/search"
)

var (
	askTimeout   time.Duration
	askJSON      bool
	askDocs      []string
	kbDir        string
	seedFile     string
	goldenDir    string
	refsFile     string
	noGolden     bool
	strategy     string
	preferred    string
	maxCost      float64
	qualityFloor float64
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <domanda>",
	Short: "Resolve a single fiscal question",
	Long: `Ask resolves one Italian fiscal question:
- Canonicalize the query into atomic facts (importi, date, regimi)
- Check the golden cache for a trusted, still-fresh answer
- Otherwise assemble a token-budgeted context and generate via the
  configured providers, with automatic failover

Example:
  responsa ask "quando scade la dichiarazione IVA annuale?"
  responsa ask "quanto verso con il forfettario?" --doc fattura.txt
  responsa ask "scadenze F24 2026" --kb-dir ./kb --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall resolution timeout")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full resolution as JSON")
	askCmd.Flags().StringArrayVar(&askDocs, "doc", nil, "attach a document (repeatable)")

	registerPipelineFlags(askCmd)
}

// registerPipelineFlags wires the flags shared by ask and batch
func registerPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&kbDir, "kb-dir", "", "knowledge base directory (.md, .txt, .html)")
	cmd.Flags().StringVar(&seedFile, "seed", "", "golden seed file (YAML)")
	cmd.Flags().StringVar(&goldenDir, "golden-dir", "", "persistent golden cache directory")
	cmd.Flags().StringVar(&refsFile, "references", "", "reference feed file (YAML) for freshness checks")
	cmd.Flags().BoolVar(&noGolden, "no-golden", false, "disable the golden cache (always generate)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "routing strategy (cost_optimized, quality_first, balanced, failover)")
	cmd.Flags().StringVar(&preferred, "provider", "", "preferred provider (openai, anthropic, ollama)")
	cmd.Flags().Float64Var(&maxCost, "max-cost", 0, "maximum cost per call")
	cmd.Flags().Float64Var(&qualityFloor, "quality-floor", 0, "minimum provider quality (0-1)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyPipelineFlags(cfg)

	resolver, err := buildResolver(cfg, logger)
	if err != nil {
		return err
	}

	req := pipeline.Request{Query: query}
	for _, path := range askDocs {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read document %s: %w", path, err)
		}
		req.Documents = append(req.Documents, search.Document{
			Name:    filepath.Base(path),
			Content: string(data),
		})
	}

	res, err := resolver.Resolve(ctx, req)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	if askJSON {
		return printJSON(res)
	}
	printResolution(res)
	return nil
}

// applyPipelineFlags overlays the shared CLI flags onto the config
func applyPipelineFlags(cfg *model.Config) {
	if kbDir != "" {
		cfg.Search.KBDir = kbDir
	}
	if seedFile != "" {
		cfg.Golden.SeedFile = seedFile
	}
	if goldenDir != "" {
		cfg.Golden.DiskDir = goldenDir
	}
	if refsFile != "" {
		cfg.Golden.ReferencesFile = refsFile
	}
	if noGolden {
		cfg.Golden.Enabled = false
	}
	if strategy != "" {
		cfg.Routing.Strategy = strategy
	}
	if preferred != "" {
		cfg.Routing.PreferredProvider = preferred
	}
	if maxCost > 0 {
		cfg.Routing.MaxCost = maxCost
	}
	if qualityFloor > 0 {
		cfg.Routing.QualityFloor = qualityFloor
	}
}

func printJSON(res *pipeline.Resolution) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// printResolution renders a resolution for human eyes
func printResolution(res *pipeline.Resolution) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	_, _ = bold.Println(res.Query)
	fmt.Println()
	fmt.Println(res.Answer.Text)
	fmt.Println()

	if len(res.Answer.Citations) > 0 {
		_, _ = faint.Println("Fonti:")
		for _, c := range res.Answer.Citations {
			_, _ = faint.Printf("  - %s\n", c)
		}
		fmt.Println()
	}

	if res.Answer.FromGolden {
		_, _ = color.New(color.FgGreen).Printf("✓ risposta golden (%s)", res.Answer.GoldenID)
	} else {
		_, _ = faint.Printf("generata da %s/%s", res.Answer.Provider, res.Answer.Model)
	}
	_, _ = faint.Printf("  [%dms]\n", res.DurationMs)

	if verbose {
		_, _ = faint.Printf("fatti estratti: %d, firma: %s, decisione golden: %s\n",
			res.Facts.FactCount(), res.Signature, res.Golden.Decision)
		if res.Context != nil {
			_, _ = faint.Printf("contesto: %d token, inclusi %d, esclusi %d, qualità %.2f\n",
				res.Context.TokenCount, len(res.Context.IncludedParts),
				len(res.Context.ExcludedParts), res.Context.QualityScore)
		}
	}
}
