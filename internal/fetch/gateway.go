package fetch

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/jonathan/lead-hunter/internal/faults"
	"github.com/jonathan/lead-hunter/internal/metrics"
	"github.com/jonathan/lead-hunter/internal/observability"
	"github.com/jonathan/lead-hunter/internal/pacing"
	"github.com/jonathan/lead-hunter/internal/types"
)

// Result is the typed outcome of a scrape. Doc always carries the source
// URL; its content is empty whenever Err is set.
type Result struct {
	Doc types.RawDocument
	Err *faults.Error
}

// GatewayOptions wires the gateway's collaborators. All fields are optional.
type GatewayOptions struct {
	Limiter *pacing.Limiter
	Memo    *Memo
	Metrics *metrics.Metrics
	Logger  *log.Logger
}

// Gateway is the paced scrape entry point used by the pipeline.
type Gateway struct {
	scraper Scraper
	limiter *pacing.Limiter
	memo    *Memo
	metrics *metrics.Metrics
	logger  *log.Logger
}

// NewGateway creates a gateway around scraper.
func NewGateway(scraper Scraper, opts GatewayOptions) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = observability.Discard()
	}
	return &Gateway{
		scraper: scraper,
		limiter: opts.Limiter,
		memo:    opts.Memo,
		metrics: opts.Metrics,
		logger:  logger.WithPrefix("fetch"),
	}
}

// Scrape fetches url. It waits on the limiter first, never panics and never
// returns an error: failures are carried in Result.Err with empty content.
func (g *Gateway) Scrape(ctx context.Context, url string) Result {
	result, cached := g.memo.Do(url, func() Result {
		return g.scrape(ctx, url)
	})
	if cached {
		g.logger.Debug("scrape served from memo", "url", url)
	}
	return result
}

func (g *Gateway) scrape(ctx context.Context, url string) Result {
	if err := g.limiter.Wait(ctx); err != nil {
		g.metrics.ObserveScrape(string(faults.TransportError))
		return Result{
			Doc: types.RawDocument{SourceURL: url},
			Err: faults.Transport("scrape", url, err),
		}
	}

	doc, err := g.scraper.Scrape(ctx, url)
	doc.SourceURL = url
	if err != nil {
		fe := asFault(url, err)
		g.metrics.ObserveScrape(string(fe.Kind))
		g.logger.Warn("scrape failed", "url", url, "kind", fe.Kind, "err", fe.Cause)
		return Result{Doc: types.RawDocument{SourceURL: url}, Err: fe}
	}

	g.metrics.ObserveScrape(metrics.OutcomeOK)
	g.logger.Debug("scraped", "url", url, "runes", len([]rune(doc.Content)), "links", len(doc.Links))
	return Result{Doc: doc}
}

func asFault(url string, err error) *faults.Error {
	var fe *faults.Error
	if errors.As(err, &fe) {
		return fe
	}
	return faults.Transport("scrape", url, err)
}
