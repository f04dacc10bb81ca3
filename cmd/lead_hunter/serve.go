package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-hunter/internal/server"
	"github.com/jonathan/lead-hunter/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local scrape provider",
	Long: `Serves POST /scrape with the same request and response contract as the hosted scrape provider, rendering pages in a
local headless browser. Point scrape.endpoint at this server to hunt without a hosted scraping key.
Rate limiting is configured through the PROVIDER_RATE_LIMIT_* environment variables.`,
	RunE: runServe,
}

var (
	servePort          int
	serveRenderTimeout time.Duration
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().DurationVar(&serveRenderTimeout, "render-timeout", server.DefaultRenderTimeout, "Per-page render timeout")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	srv := server.New(server.Config{
		Port:          servePort,
		RenderTimeout: serveRenderTimeout,
		Interval:      a.cfg.Scrape.Interval,
		Concurrency:   a.cfg.Pipeline.Workers,
		RateLimit:     ratelimit.LoadConfig(os.Getenv),
		Metrics:       a.metrics,
		Logger:        a.logger,
	})

	return srv.Start(cmd.Context())
}
