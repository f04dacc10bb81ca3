package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-hunter/internal/config"
	"github.com/jonathan/lead-hunter/internal/ranking"
	"github.com/jonathan/lead-hunter/internal/rendering"
)

var huntCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Hunt verified leads per category and write a slide deck",
	Long: `Searches each configured category, scrapes and validates the ranked links, extracts a lead from every valid source,
widens the search once when the yield is poor and falls back to the category's seed URLs when nothing verifies.
The verified leads are written as a Marp deck.`,
	RunE: runHunt,
}

var (
	huntCategories []string
	huntWorkers    int
	huntOut        string
	huntTitle      string
	huntCap        int
)

func init() {
	huntCmd.Flags().StringSliceVarP(&huntCategories, "category", "c", nil, "Category IDs to hunt (default: all configured categories)")
	huntCmd.Flags().IntVarP(&huntWorkers, "workers", "w", 0, "Concurrent link workers, 2-8 (overrides config)")
	huntCmd.Flags().StringVarP(&huntOut, "out", "o", "", "Report output directory (overrides config)")
	huntCmd.Flags().StringVar(&huntTitle, "title", "", "Report title (overrides config)")
	huntCmd.Flags().IntVar(&huntCap, "per-category", 0, "Maximum leads per category in the report (overrides config)")

	rootCmd.AddCommand(huntCmd)
}

func runHunt(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	if cmd.Flags().Changed("workers") {
		cfg.Pipeline.Workers = huntWorkers
	}
	if cmd.Flags().Changed("out") {
		cfg.Report.OutDir = huntOut
	}
	if cmd.Flags().Changed("title") {
		cfg.Report.Title = huntTitle
	}
	if cmd.Flags().Changed("per-category") {
		cfg.Pipeline.PerCategoryCap = huntCap
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	categories, err := selectCategories(cfg.Categories, huntCategories)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	prog := newProgress(cmd.ErrOrStderr())
	hunter, client, err := newHunter(ctx, a, prog.onProgress)
	if err != nil {
		prog.stop()
		return err
	}
	defer func() { _ = client.Close() }()

	a.logger.Info("starting hunt", "categories", len(categories), "workers", cfg.Pipeline.Workers)
	result, err := hunter.Hunt(ctx, categories)
	prog.stop()
	if err != nil {
		return err
	}

	order := make([]string, len(categories))
	for i, c := range categories {
		order[i] = c.Name
	}
	groups := ranking.Arrange(order, ranking.RankLeads(result.Leads(), cfg.Pipeline.PerCategoryCap))
	a.printer.PrintCategoryLeads(groups)

	opts := rendering.DefaultSlideOptions(time.Now())
	opts.AuditChunk = cfg.Report.AuditChunk
	path, err := rendering.WriteFile(cfg.Report.OutDir, rendering.Slides(cfg.Report.Title, groups, opts))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.out, "Report written to %s (run %s)\n", path, result.RunID)
	return nil
}

// selectCategories returns the categories whose IDs are listed, in config
// order, or all of them when ids is empty.
func selectCategories(all []config.Category, ids []string) ([]config.Category, error) {
	if len(ids) == 0 {
		return all, nil
	}

	known := make(map[string]bool, len(all))
	for _, c := range all {
		known[c.ID] = true
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !known[id] {
			return nil, fmt.Errorf("unknown category %q", id)
		}
		wanted[id] = true
	}

	var out []config.Category
	for _, c := range all {
		if wanted[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}
