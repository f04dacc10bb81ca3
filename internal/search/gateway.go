package search

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jonathan/lead-hunter/internal/faults"
	"github.com/jonathan/lead-hunter/internal/metrics"
	"github.com/jonathan/lead-hunter/internal/observability"
	"github.com/jonathan/lead-hunter/internal/types"
)

// Provider is a search backend. Implementations return a *faults.Error on
// failure and record each link's section and discovery order.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, n int) ([]types.CandidateLink, error)
}

// Result is the typed outcome of a search. Links is empty whenever Err is set.
type Result struct {
	Links []types.CandidateLink
	Err   *faults.Error
}

// Gateway wraps a Provider so that failures never propagate.
type Gateway struct {
	provider Provider
	metrics  *metrics.Metrics
	logger   *log.Logger
}

// NewGateway creates a search gateway.
func NewGateway(provider Provider, m *metrics.Metrics, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Gateway{provider: provider, metrics: m, logger: logger.WithPrefix("search")}
}

// Search runs query with a result budget of n.
func (g *Gateway) Search(ctx context.Context, query types.Query, n int) Result {
	start := time.Now()
	links, err := g.provider.Search(ctx, query.Text, n)
	elapsed := time.Since(start)

	if err != nil {
		var fe *faults.Error
		if !errors.As(err, &fe) {
			fe = faults.Transport("search", "", err)
		}
		g.metrics.ObserveSearch(g.provider.Name(), string(fe.Kind), elapsed)
		g.logger.Warn("search failed", "dimension", query.DimensionID, "kind", fe.Kind, "err", fe)
		return Result{Err: fe}
	}

	g.metrics.ObserveSearch(g.provider.Name(), metrics.OutcomeOK, elapsed)
	g.logger.Debug("search done", "dimension", query.DimensionID, "links", len(links), "took", elapsed)
	return Result{Links: links}
}
