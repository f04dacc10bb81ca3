package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jonathan/lead-hunter/internal/config"
	"github.com/jonathan/lead-hunter/internal/extract"
	"github.com/jonathan/lead-hunter/internal/fetch"
	"github.com/jonathan/lead-hunter/internal/llm"
	"github.com/jonathan/lead-hunter/internal/metrics"
	"github.com/jonathan/lead-hunter/internal/observability"
	"github.com/jonathan/lead-hunter/internal/pacing"
	"github.com/jonathan/lead-hunter/internal/pipeline"
	"github.com/jonathan/lead-hunter/internal/search"
	"github.com/jonathan/lead-hunter/internal/verdict"
)

// app holds what every subcommand needs after configuration is resolved.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	metrics *metrics.Metrics
	out     io.Writer
	printer *observability.Printer

	metricsServer *http.Server
}

// setup loads configuration, applies the global flags and builds the logger
// and metrics. Callers must defer close.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := observability.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		out:     cmd.OutOrStdout(),
	}
	a.printer = observability.NewPrinter(a.out)

	if metricsAddr != "" {
		a.metricsServer = &http.Server{
			Addr:              metricsAddr,
			Handler:           a.metrics.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics listener failed", "addr", metricsAddr, "err", err)
			}
		}()
		logger.Info("serving metrics", "addr", metricsAddr)
	}

	return a, nil
}

func (a *app) close() {
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.metricsServer.Shutdown(ctx)
	}
}

// newSearchProvider builds the configured search backend.
func newSearchProvider(ctx context.Context, cfg config.SearchConfig) (search.Provider, error) {
	switch cfg.Provider {
	case "google":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GOOGLE_SEARCH_API_KEY environment variable or search.api_key is required")
		}
		cs, err := search.NewCustomSearch(ctx, cfg.APIKey, cfg.CX)
		if err != nil {
			return nil, err
		}
		return cs, nil
	default:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("SERPER_API_KEY environment variable or search.api_key is required")
		}
		return search.NewSerper(cfg.Endpoint, cfg.APIKey, cfg.Timeout), nil
	}
}

// newScraper builds the configured scrape backend. The firecrawl protocol
// also serves the local provider started by `serve`, which needs no key.
func newScraper(cfg config.ScrapeConfig, logger *log.Logger) fetch.Scraper {
	switch cfg.Provider {
	case "direct":
		return fetch.NewDirectScraper(cfg.Timeout, cfg.UseBrowser, logger.WithPrefix("direct"))
	default:
		return fetch.NewFirecrawlScraper(cfg.Endpoint, cfg.APIKey, cfg.Timeout)
	}
}

// llmConfig maps the LLM section onto a client configuration.
func llmConfig(cfg config.LLMConfig) (*llm.Config, error) {
	c := llm.ForProvider(cfg.Provider)
	if c == nil {
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
	if cfg.Model != "" {
		c = c.WithAllModels(cfg.Model)
	}
	if cfg.Endpoint != "" && c.Provider != llm.ProviderGemini {
		c.Endpoint = cfg.Endpoint
	}
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	c.APIKey = cfg.APIKey
	if c.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required (set %s_API_KEY or llm.api_key)", cfg.Provider, strings.ToUpper(cfg.Provider))
	}
	return c, nil
}

// newHunter wires the gateways, validator and extractor into a hunter.
// The returned client must be closed by the caller.
func newHunter(ctx context.Context, a *app, onProgress pipeline.ProgressCallback) (*pipeline.Hunter, llm.Client, error) {
	cfg := a.cfg

	provider, err := newSearchProvider(ctx, cfg.Search)
	if err != nil {
		return nil, nil, err
	}

	lc, err := llmConfig(cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	client, err := llm.NewClient(ctx, lc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	scrape := fetch.NewGateway(newScraper(cfg.Scrape, a.logger), fetch.GatewayOptions{
		Limiter: pacing.NewLimiter(cfg.Scrape.Interval, cfg.Pipeline.Workers, nil),
		Memo:    fetch.NewMemo(),
		Metrics: a.metrics,
		Logger:  a.logger,
	})

	hunter := pipeline.NewHunter(pipeline.Deps{
		Search:     search.NewGateway(provider, a.metrics, a.logger),
		Scorer:     search.NewScorer(cfg.Search.Blacklist),
		Scrape:     scrape,
		Validate:   verdict.New(client, cfg.LLM.PositiveToken, a.metrics, a.logger),
		Extract:    extract.New(client, cfg.LLM.Protocol, a.logger),
		Completer:  client,
		Policy:     pipeline.PolicyFromConfig(cfg.Pipeline),
		Sites:      cfg.Search.Sites,
		Metrics:    a.metrics,
		Logger:     a.logger,
		OnProgress: onProgress,
	})
	return hunter, client, nil
}

// progress is a terminal spinner that only runs when stderr is a TTY.
type progress struct {
	s *spinner.Spinner
}

func newProgress(w io.Writer) *progress {
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	s.Start()
	return &progress{s: s}
}

func (p *progress) update(msg string) {
	if p.s == nil {
		return
	}
	p.s.Lock()
	p.s.Suffix = " " + msg
	p.s.Unlock()
}

func (p *progress) stop() {
	if p.s != nil {
		p.s.Stop()
	}
}

// onProgress adapts hunter events to the spinner.
func (p *progress) onProgress(e pipeline.ProgressEvent) {
	if e.Category == "" {
		p.update(e.Message)
		return
	}
	p.update(fmt.Sprintf("[%s] %s", e.Category, e.Message))
}
