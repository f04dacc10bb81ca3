package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-hunter/internal/search"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the planned search queries",
	Long:  "Builds one query per configured dimension, restricted to the configured sites, and prints them without calling any upstream service.",
	RunE:  runPlan,
}

var (
	planSites []string
	planJSON  bool
)

func init() {
	planCmd.Flags().StringSliceVar(&planSites, "site", nil, "Restrict queries to these sites (overrides config)")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the queries as JSON")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	sites := a.cfg.Search.Sites
	if cmd.Flags().Changed("site") {
		sites = planSites
	}

	queries := search.Plan(a.cfg.Dimensions, sites)
	if planJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(queries)
	}

	a.printer.PrintQueries(queries)
	return nil
}
