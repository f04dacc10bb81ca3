// Package metrics defines the Prometheus collectors for the hunt pipeline,
// the harvester and the provider service, and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeOK labels a successful gateway call. Failures use the fault kind.
const OutcomeOK = "ok"

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	SearchCalls       *prometheus.CounterVec
	SearchLatency     *prometheus.HistogramVec
	ScrapeCalls       *prometheus.CounterVec
	Verdicts          *prometheus.CounterVec
	Leads             *prometheus.CounterVec
	Widenings         *prometheus.CounterVec
	Seeds             *prometheus.CounterVec
	HarvestRecords    *prometheus.CounterVec
	HarvestIterations prometheus.Counter
	AuthPrompts       prometheus.Counter
	ProviderRequests  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWith(reg, reg)
}

// NewWith creates the collectors and registers them on reg.
func NewWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		SearchCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_search_calls_total",
				Help: "Search calls by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadhunter_search_latency_seconds",
				Help:    "Search call latency in seconds.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
			},
			[]string{"provider"},
		),
		ScrapeCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_scrape_calls_total",
				Help: "Scrape calls by outcome.",
			},
			[]string{"outcome"},
		),
		Verdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_verdicts_total",
				Help: "Validation verdicts.",
			},
			[]string{"verdict"},
		),
		Leads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_leads_total",
				Help: "Leads produced by category and status.",
			},
			[]string{"category", "status"},
		),
		Widenings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_widenings_total",
				Help: "Low-yield rounds that were widened.",
			},
			[]string{"category"},
		),
		Seeds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_fallback_seeds_total",
				Help: "Fallback seed attempts by outcome.",
			},
			[]string{"outcome"},
		),
		HarvestRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_harvest_records_total",
				Help: "Harvested containers by outcome (kept, duplicate, below_threshold).",
			},
			[]string{"outcome"},
		),
		HarvestIterations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leadhunter_harvest_iterations_total",
				Help: "Scroll iterations performed by the harvester.",
			},
		),
		AuthPrompts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leadhunter_auth_prompts_total",
				Help: "Login barriers that suspended the harvester.",
			},
		),
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_provider_requests_total",
				Help: "Provider service requests by status code.",
			},
			[]string{"status"},
		),
		gatherer: gatherer,
	}

	reg.MustRegister(
		m.SearchCalls,
		m.SearchLatency,
		m.ScrapeCalls,
		m.Verdicts,
		m.Leads,
		m.Widenings,
		m.Seeds,
		m.HarvestRecords,
		m.HarvestIterations,
		m.AuthPrompts,
		m.ProviderRequests,
	)

	return m
}

// Handler returns an HTTP handler that serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveSearch records one search call.
func (m *Metrics) ObserveSearch(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SearchCalls.WithLabelValues(provider, outcome).Inc()
	m.SearchLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveScrape records one scrape call.
func (m *Metrics) ObserveScrape(outcome string) {
	if m == nil {
		return
	}
	m.ScrapeCalls.WithLabelValues(outcome).Inc()
}

// ObserveVerdict records one validation verdict.
func (m *Metrics) ObserveVerdict(verdict string) {
	if m == nil {
		return
	}
	m.Verdicts.WithLabelValues(verdict).Inc()
}

// ObserveLead records one produced lead.
func (m *Metrics) ObserveLead(category, status string) {
	if m == nil {
		return
	}
	m.Leads.WithLabelValues(category, status).Inc()
}

// ObserveWidening records a widened round.
func (m *Metrics) ObserveWidening(category string) {
	if m == nil {
		return
	}
	m.Widenings.WithLabelValues(category).Inc()
}

// ObserveSeed records a fallback seed attempt.
func (m *Metrics) ObserveSeed(outcome string) {
	if m == nil {
		return
	}
	m.Seeds.WithLabelValues(outcome).Inc()
}

// ObserveRecord records the outcome of one harvested container.
func (m *Metrics) ObserveRecord(outcome string) {
	if m == nil {
		return
	}
	m.HarvestRecords.WithLabelValues(outcome).Inc()
}

// ObserveIteration records one harvester scroll iteration.
func (m *Metrics) ObserveIteration() {
	if m == nil {
		return
	}
	m.HarvestIterations.Inc()
}

// ObserveAuthPrompt records a login barrier.
func (m *Metrics) ObserveAuthPrompt() {
	if m == nil {
		return
	}
	m.AuthPrompts.Inc()
}

// ObserveProviderRequest records one provider service response.
func (m *Metrics) ObserveProviderRequest(status string) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(status).Inc()
}
