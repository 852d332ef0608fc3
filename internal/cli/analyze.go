package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/assertlens/internal/model"
	"github.com/ppiankov/assertlens/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var analyzeTimeout time.Duration

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <assertions.csv>",
	Short: "Classify every assertion in a table and check comment coverage",
	Long: `Analyze reads a CSV table with the columns file_path, line_number and
assertion_code, and writes the same table with two extra columns:

  assertion_category  immediate | concurrent | temporal | functional | unknown
  has_comment         has_comment | no_comment | file_not_found |
                      line_not_found | error: <message>

A comment counts when it is on the assertion line or one of the two lines
above it and mentions assert, cover or assume.

Example:
  assertlens analyze assertions.csv
  assertlens analyze assertions.csv -o result.csv --root ~/src/soc
  assertlens analyze assertions.csv --summary summary.yaml --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	defaults := model.DefaultConfig()
	flags := analyzeCmd.Flags()

	flags.StringP("output", "o", defaults.Output.Path, "output CSV path")
	flags.String("summary", "", "write the summary to this path (.json, .yaml or .yml)")
	flags.String("root", "", "directory that relative file_path values are resolved against")
	flags.Int("concurrency", defaults.Concurrency.Workers, "number of concurrent workers")
	flags.Int("progress-every", defaults.Output.ProgressEvery, "print progress every N rows (0 disables)")
	flags.Bool("no-cache", false, "re-read source files for every assertion")
	flags.Float64("reads-per-second", defaults.RateLimiting.ReadsPerSecond, "max file reads per second per directory (0 = unlimited)")
	flags.DurationVar(&analyzeTimeout, "timeout", 30*time.Minute, "total timeout for the batch")

	_ = viper.BindPFlag("output.path", flags.Lookup("output"))
	_ = viper.BindPFlag("output.summary_path", flags.Lookup("summary"))
	_ = viper.BindPFlag("analysis.root", flags.Lookup("root"))
	_ = viper.BindPFlag("concurrency.workers", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("output.progress_every", flags.Lookup("progress-every"))
	_ = viper.BindPFlag("rate_limiting.reads_per_second", flags.Lookup("reads-per-second"))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  assertlens analyze\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", input)
	fmt.Fprintf(os.Stderr, "  Output file:  %s\n", cfg.Output.Path)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Cache:        %v\n", cfg.Cache.Enabled)
	if cfg.Analysis.Root != "" {
		fmt.Fprintf(os.Stderr, "  Root:         %s\n", cfg.Analysis.Root)
	}
	fmt.Fprintf(os.Stderr, "\n")

	p := pipeline.NewPipeline(cfg, logger)

	result, err := p.Run(ctx, input)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	p.Renderer().RenderSummary(result.Summary)

	if cfg.Output.SummaryPath != "" {
		fmt.Fprintf(os.Stderr, "✓ Wrote summary: %s\n", cfg.Output.SummaryPath)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote %d rows: %s\n", len(result.Results), cfg.Output.Path)

	return nil
}
