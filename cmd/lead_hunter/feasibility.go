package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-hunter/internal/rendering"
	"github.com/jonathan/lead-hunter/internal/search"
)

var feasibilityCmd = &cobra.Command{
	Use:   "feasibility",
	Short: "Build a feasibility table from community discussions",
	Long: `Runs the planned dimension queries, keeps links on the feasibility sites, scrapes them and asks the LLM for a
markdown table comparing the approaches found. The table is written to the report directory.`,
	RunE: runFeasibility,
}

var (
	feasibilitySites []string
	feasibilityOut   string
	feasibilityTitle string
)

func init() {
	feasibilityCmd.Flags().StringSliceVar(&feasibilitySites, "site", nil, "Only scrape links on these sites (overrides config)")
	feasibilityCmd.Flags().StringVarP(&feasibilityOut, "out", "o", "", "Report output directory (overrides config)")
	feasibilityCmd.Flags().StringVar(&feasibilityTitle, "title", "Feasibility", "Document title")

	rootCmd.AddCommand(feasibilityCmd)
}

func runFeasibility(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	if cmd.Flags().Changed("site") {
		cfg.Feasibility.Sites = feasibilitySites
	}
	if cmd.Flags().Changed("out") {
		cfg.Report.OutDir = feasibilityOut
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	prog := newProgress(cmd.ErrOrStderr())
	prog.update("gathering material")
	hunter, client, err := newHunter(ctx, a, prog.onProgress)
	if err != nil {
		prog.stop()
		return err
	}
	defer func() { _ = client.Close() }()

	queries := search.Plan(cfg.Dimensions, cfg.Search.Sites)
	table, err := hunter.Feasibility(ctx, queries, cfg.Feasibility, cfg.LLM.Protocol)
	prog.stop()
	if err != nil {
		return err
	}

	report, err := rendering.Feasibility(feasibilityTitle, table, time.Now())
	if err != nil {
		return err
	}
	path, err := rendering.WriteFile(cfg.Report.OutDir, report)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.out, "Feasibility table written to %s\n", path)
	return nil
}
