// Package main provides the lead_hunter CLI: evidence hunts rendered as slide
// decks, feasibility tables, scroll harvests and the local scrape provider.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	logLevel    string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "lead_hunter",
	Short: "Evidence-backed lead hunting",
	Long: `lead_hunter searches the web for evidence about topic categories, validates and summarizes each source with an LLM,
and assembles verified leads into a Marp slide deck. It also harvests structured records from infinite-scroll result
pages and runs a local scrape provider.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (defaults are used when omitted)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run, e.g. :9090")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
