package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-hunter/internal/config"
	"github.com/jonathan/lead-hunter/internal/harvest"
	"github.com/jonathan/lead-hunter/internal/observability"
	"github.com/jonathan/lead-hunter/internal/ranking"
	"github.com/jonathan/lead-hunter/internal/rendering"
	"github.com/jonathan/lead-hunter/internal/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest posts from an infinite-scroll result page",
	Long: `Drives a browser through the configured search page for each term, scrolling and extracting post records until
the target count or the iteration limit is reached. When a login wall appears the run pauses until you sign in and press
Enter. Terms are aggregated, ranked by total likes and written as an HTML table plus a JSON dump.`,
	RunE: runHarvest,
}

var (
	harvestDriver   string
	harvestTerms    []string
	harvestDiscover bool
	harvestSeed     string
	harvestHeadless bool
	harvestProfile  string
	harvestTop      int
	harvestOut      string
	harvestYes      bool
)

func init() {
	harvestCmd.Flags().StringVar(&harvestDriver, "driver", "", "Browser driver: chromedp or rod (overrides config)")
	harvestCmd.Flags().StringSliceVarP(&harvestTerms, "term", "t", nil, "Search terms to harvest (overrides config)")
	harvestCmd.Flags().BoolVar(&harvestDiscover, "discover", false, "Discover terms from the seed keyword before harvesting")
	harvestCmd.Flags().StringVar(&harvestSeed, "seed", "", "Seed keyword for term discovery (overrides config)")
	harvestCmd.Flags().BoolVar(&harvestHeadless, "headless", false, "Run the browser headless (overrides config)")
	harvestCmd.Flags().StringVar(&harvestProfile, "user-data-dir", "", "Persistent browser profile directory (overrides config)")
	harvestCmd.Flags().IntVar(&harvestTop, "top", 0, "Number of ranked terms in the report, 1 to 5 (overrides config)")
	harvestCmd.Flags().StringVarP(&harvestOut, "out", "o", "", "Report output directory (overrides config)")
	harvestCmd.Flags().BoolVarP(&harvestYes, "yes", "y", false, "Accept discovered terms without asking")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	applyHarvestFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	page, err := openPage(ctx, cfg.Harvest)
	if err != nil {
		return err
	}
	defer func() { _ = page.Close() }()

	h := harvest.New(page, harvest.OptionsFromConfig(cfg.Harvest), nil, a.metrics, a.logger)
	confirmer := newConsoleConfirmer(cmd.InOrStdin(), a.out, a.printer, harvestYes)

	terms := cfg.Harvest.Terms
	if cfg.Harvest.DiscoverTerms {
		terms, err = h.DiscoverTerms(ctx, cfg.Harvest.SeedKeyword, confirmer)
		if err != nil {
			return err
		}
	}
	if len(terms) == 0 {
		return errors.New("no terms to harvest: pass --term, set harvest.terms or enable discovery")
	}

	results, err := h.CollectTerms(ctx, terms, confirmer)
	if err != nil {
		return err
	}

	cats := make([]types.AggregatedCategory, 0, len(results))
	for _, r := range results {
		if r.Err != nil && len(r.Records) == 0 {
			continue
		}
		cats = append(cats, ranking.Aggregate(r.Term, r.Records, cfg.Harvest.RecordsPerTerm))
	}
	ranked := ranking.RankCategories(cats, cfg.Report.TopCategories)
	a.printer.PrintAggregates(ranked)

	now := time.Now()
	report, err := rendering.HTMLTable(cfg.Report.Title, ranked, "harvest", now)
	if err != nil {
		return err
	}
	path, err := rendering.WriteFile(cfg.Report.OutDir, report)
	if err != nil {
		return err
	}
	dump, err := writeJSON(cfg.Report.OutDir, rendering.Filename("harvest", "json", now), ranked)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.out, "Report written to %s\nRecords written to %s\n", path, dump)
	return nil
}

func applyHarvestFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("driver") {
		cfg.Harvest.Driver = harvestDriver
	}
	if f.Changed("term") {
		cfg.Harvest.Terms = harvestTerms
		cfg.Harvest.DiscoverTerms = false
	}
	if f.Changed("discover") {
		cfg.Harvest.DiscoverTerms = harvestDiscover
	}
	if f.Changed("seed") {
		cfg.Harvest.SeedKeyword = harvestSeed
	}
	if f.Changed("headless") {
		cfg.Harvest.Headless = harvestHeadless
	}
	if f.Changed("user-data-dir") {
		cfg.Harvest.UserDataDir = harvestProfile
	}
	if f.Changed("top") {
		cfg.Report.TopCategories = harvestTop
	}
	if f.Changed("out") {
		cfg.Report.OutDir = harvestOut
	}
}

func openPage(ctx context.Context, cfg config.HarvestConfig) (harvest.Page, error) {
	opts := harvest.BrowserOptions{Headless: cfg.Headless, UserDataDir: cfg.UserDataDir}
	if cfg.Driver == "rod" {
		page, err := harvest.NewRodPage(ctx, opts)
		if err != nil {
			return nil, err
		}
		return page, nil
	}
	page, err := harvest.NewChromedpPage(opts)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func writeJSON(dir, name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode records: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// consoleConfirmer asks on the terminal whenever a run suspends and waits
// for a line on in. Auto-accepting only applies to term confirmation; a
// login wall always needs a human.
type consoleConfirmer struct {
	in      *bufio.Reader
	out     io.Writer
	printer *observability.Printer
	yes     bool
}

func newConsoleConfirmer(in io.Reader, out io.Writer, printer *observability.Printer, yes bool) *consoleConfirmer {
	return &consoleConfirmer{in: bufio.NewReader(in), out: out, printer: printer, yes: yes}
}

func (c *consoleConfirmer) Confirm(ctx context.Context, p harvest.Prompt) error {
	switch p.State {
	case harvest.AwaitingConfirmation:
		c.printer.PrintTerms("Discovered terms", p.Terms)
		if c.yes {
			return nil
		}
		_, _ = fmt.Fprint(c.out, "Press Enter to harvest these terms, or type n to abort: ")
	case harvest.AwaitingManualAuth:
		_, _ = fmt.Fprintf(c.out, "Login required while harvesting %q (attempt %d). Sign in in the browser window, then press Enter: ", p.Term, p.Attempt)
	default:
		return nil
	}

	line, err := c.readLine(ctx)
	if err != nil {
		return err
	}
	if p.State == harvest.AwaitingConfirmation && (strings.EqualFold(line, "n") || strings.EqualFold(line, "no")) {
		return errors.New("harvest aborted by user")
	}
	return nil
}

func (c *consoleConfirmer) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			return "", fmt.Errorf("failed to read confirmation: %w", r.err)
		}
		return strings.TrimSpace(r.line), nil
	}
}
