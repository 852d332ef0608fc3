package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/assertlens/internal/model"
	"github.com/ppiankov/assertlens/internal/pipeline"
	"github.com/spf13/cobra"
)

// classifyCmd classifies a single assertion snippet
var classifyCmd = &cobra.Command{
	Use:   "classify <assertion code...>",
	Short: "Classify one assertion and show the rule that decided",
	Long: `Classify prints the category of a single assertion snippet and the
pattern or keyword that selected it. Useful when tuning expectations against
labeled data.

Example:
  assertlens classify 'assert property (@(posedge clk) req |-> ##[1:3] ack);'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.NewPipeline(model.DefaultConfig(), logger)
		d := p.Classify(strings.Join(args, " "))
		fmt.Fprintln(cmd.OutOrStdout(), d.String())
		return nil
	},
}

// locateCmd checks one file position for an explanatory comment
var locateCmd = &cobra.Command{
	Use:   "locate <file> <line>",
	Short: "Check whether the assertion at file:line has an explanatory comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid line number %q: %w", args[1], err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Cache.Enabled = false

		p := pipeline.NewPipeline(cfg, logger)
		fmt.Fprintln(cmd.OutOrStdout(), p.Locate(args[0], line).String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(locateCmd)
}
