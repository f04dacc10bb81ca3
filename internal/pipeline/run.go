// Package pipeline orchestrates the evidence hunt: search, score, scrape,
// validate and extract per category, with one-shot adaptive widening and
// fallback seeding.
package pipeline

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/lead-hunter/internal/config"
	"github.com/jonathan/lead-hunter/internal/extract"
	"github.com/jonathan/lead-hunter/internal/fetch"
	"github.com/jonathan/lead-hunter/internal/llm"
	"github.com/jonathan/lead-hunter/internal/metrics"
	"github.com/jonathan/lead-hunter/internal/observability"
	"github.com/jonathan/lead-hunter/internal/search"
	"github.com/jonathan/lead-hunter/internal/types"
)

// Progress steps reported through ProgressCallback.
const (
	StepRound    = "round"
	StepWiden    = "widen"
	StepSeed     = "seed"
	StepCategory = "category"
)

// SeedSection marks leads derived from a category seed URL.
const SeedSection = "seed"

// ProgressEvent represents a progress update during a hunt
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when hunt progress occurs
type ProgressCallback func(event ProgressEvent)

// Searcher runs a planned query. *search.Gateway satisfies it.
type Searcher interface {
	Search(ctx context.Context, query types.Query, n int) search.Result
}

// Scraper fetches a URL. *fetch.Gateway satisfies it.
type Scraper interface {
	Scrape(ctx context.Context, url string) fetch.Result
}

// Validator classifies a document. *verdict.Validator satisfies it.
type Validator interface {
	Validate(ctx context.Context, category string, doc types.RawDocument) types.Verdict
}

// Extractor builds a lead. *extract.Extractor satisfies it.
type Extractor interface {
	Extract(ctx context.Context, doc types.RawDocument) (*types.Lead, extract.Outcome)
}

// Policy holds the fan-out and widening knobs.
type Policy struct {
	Workers       int
	InitialBudget int
	WidenedBudget int
	// A round is widened when it has at least WidenInvalid invalid results
	// and fewer than WidenValid valid ones.
	WidenInvalid int
	WidenValid   int
}

// PolicyFromConfig maps pipeline configuration onto a Policy.
func PolicyFromConfig(c config.PipelineConfig) Policy {
	return Policy{
		Workers:       c.Workers,
		InitialBudget: c.InitialBudget,
		WidenedBudget: c.WidenedBudget,
		WidenInvalid:  c.WidenInvalid,
		WidenValid:    c.WidenValid,
	}
}

// Deps wires the hunter's collaborators. Completer is only needed for the
// feasibility run.
type Deps struct {
	Search     Searcher
	Scorer     *search.Scorer
	Scrape     Scraper
	Validate   Validator
	Extract    Extractor
	Completer  llm.Client
	Policy     Policy
	Sites      []string
	Metrics    *metrics.Metrics
	Logger     *log.Logger
	OnProgress ProgressCallback
}

// Hunter runs hunts. It is safe to reuse across runs.
type Hunter struct {
	deps   Deps
	logger *log.Logger
}

// NewHunter creates a hunter. A missing scorer uses the default blacklist
// and a worker count below one is raised to one.
func NewHunter(deps Deps) *Hunter {
	if deps.Scorer == nil {
		deps.Scorer = search.NewScorer(nil)
	}
	if deps.Policy.Workers < 1 {
		deps.Policy.Workers = 1
	}
	logger := deps.Logger
	if logger == nil {
		logger = observability.Discard()
	}
	return &Hunter{deps: deps, logger: logger.WithPrefix("hunt")}
}

// Round is the outcome of one search-to-extract pass over a category.
type Round struct {
	Budget    int
	Leads     []types.Lead // valid and invalid, in link rank order
	Valid     int
	Invalid   int
	Discarded int
	SearchErr error
}

// CategoryResult is the final state of one category.
type CategoryResult struct {
	Category config.Category
	Leads    []types.Lead
	Widened  bool
	Seeded   bool
	Rounds   []Round
}

// Reportable returns the leads that may appear in a report.
func (c CategoryResult) Reportable() []types.Lead {
	out := make([]types.Lead, 0, len(c.Leads))
	for _, l := range c.Leads {
		if l.Status.Reportable() {
			out = append(out, l)
		}
	}
	return out
}

// Empty reports whether the category ended without a reportable lead.
func (c CategoryResult) Empty() bool {
	return len(c.Reportable()) == 0
}

// Result is the outcome of a hunt.
type Result struct {
	RunID      string
	Categories []CategoryResult
}

// Leads returns every lead of the hunt in category order.
func (r *Result) Leads() []types.Lead {
	var out []types.Lead
	for _, c := range r.Categories {
		out = append(out, c.Leads...)
	}
	return out
}

// ShouldWiden reports whether a round's yield calls for a wider search.
func ShouldWiden(r Round, p Policy) bool {
	return r.Invalid >= p.WidenInvalid && r.Valid < p.WidenValid
}

// Hunt runs every category in order. Upstream failures never abort the hunt;
// only a cancelled context does.
func (h *Hunter) Hunt(ctx context.Context, categories []config.Category) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	for _, cat := range categories {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("hunt cancelled: %w", err)
		}
		cr := h.HuntCategory(ctx, cat)
		result.Categories = append(result.Categories, cr)
		h.emit(ProgressEvent{
			Step:     StepCategory,
			Category: cat.Name,
			Message:  fmt.Sprintf("%d reportable leads", len(cr.Reportable())),
			RunID:    result.RunID,
			Content:  cr.Reportable(),
		})
	}
	return result, nil
}

// HuntCategory runs the initial round, widens once when the yield is poor
// and falls back to seed URLs when nothing reportable was found.
func (h *Hunter) HuntCategory(ctx context.Context, cat config.Category) CategoryResult {
	p := h.deps.Policy
	cr := CategoryResult{Category: cat}

	round := h.RunRound(ctx, cat, p.InitialBudget)
	cr.Rounds = append(cr.Rounds, round)

	if ShouldWiden(round, p) {
		h.logger.Info("widening search", "category", cat.Name, "invalid", round.Invalid, "valid", round.Valid, "budget", p.WidenedBudget)
		h.deps.Metrics.ObserveWidening(cat.ID)
		h.emit(ProgressEvent{
			Step:     StepWiden,
			Category: cat.Name,
			Message:  fmt.Sprintf("%d invalid, %d valid: widening to %d", round.Invalid, round.Valid, p.WidenedBudget),
		})
		round = h.RunRound(ctx, cat, p.WidenedBudget)
		cr.Rounds = append(cr.Rounds, round)
		cr.Widened = true
	}
	cr.Leads = round.Leads

	if cr.Empty() {
		if lead := h.Seed(ctx, cat); lead != nil {
			cr.Leads = append(cr.Leads, *lead)
			cr.Seeded = lead.Status == types.StatusFallback
		}
	}

	for _, l := range cr.Leads {
		h.deps.Metrics.ObserveLead(cat.ID, string(l.Status))
	}
	return cr
}

// linkOutcome is one worker's slot in a round.
type linkOutcome struct {
	lead      *types.Lead
	discarded bool
}

// RunRound searches with budget, ranks the links and processes them on a
// bounded worker pool. Each worker writes only its own slot.
func (h *Hunter) RunRound(ctx context.Context, cat config.Category, budget int) Round {
	round := Round{Budget: budget}

	res := h.deps.Search.Search(ctx, search.CategoryQuery(cat, h.deps.Sites), budget)
	if res.Err != nil {
		round.SearchErr = res.Err
		return round
	}
	links := h.deps.Scorer.Rank(res.Links)

	outcomes := make([]linkOutcome, len(links))
	var g errgroup.Group
	g.SetLimit(h.deps.Policy.Workers)
	for i, link := range links {
		g.Go(func() error {
			outcomes[i] = h.process(ctx, cat, link)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		switch {
		case o.discarded:
			round.Discarded++
		case o.lead == nil:
		case o.lead.Status == types.StatusValid:
			round.Valid++
			round.Leads = append(round.Leads, *o.lead)
		default:
			round.Invalid++
			round.Leads = append(round.Leads, *o.lead)
		}
	}

	h.logger.Debug("round done", "category", cat.Name, "budget", budget, "links", len(links), "valid", round.Valid, "invalid", round.Invalid, "discarded", round.Discarded)
	h.emit(ProgressEvent{
		Step:     StepRound,
		Category: cat.Name,
		Message:  fmt.Sprintf("budget %d: %d links, %d valid, %d invalid", budget, len(links), round.Valid, round.Invalid),
	})
	return round
}

// process scrapes, validates and extracts one link. A failed or empty scrape
// is an invalid result and never reaches the validator.
func (h *Hunter) process(ctx context.Context, cat config.Category, link types.CandidateLink) linkOutcome {
	invalid := &types.Lead{
		ID:        uuid.NewString(),
		Category:  cat.Name,
		Status:    types.StatusInvalid,
		SourceURL: link.URL,
		Score:     link.Score,
		Section:   link.Section,
	}

	res := h.deps.Scrape.Scrape(ctx, link.URL)
	if res.Err != nil || res.Doc.Empty() {
		return linkOutcome{lead: invalid}
	}

	if h.deps.Validate.Validate(ctx, cat.Name, res.Doc) != types.VerdictValid {
		return linkOutcome{lead: invalid}
	}

	lead, outcome := h.deps.Extract.Extract(ctx, res.Doc)
	if outcome == extract.OutcomeDiscarded || lead == nil {
		return linkOutcome{discarded: true}
	}
	lead.Category = cat.Name
	lead.Status = types.StatusValid
	lead.Score = link.Score
	lead.Section = link.Section
	return linkOutcome{lead: lead}
}

// Seed tries the category's seed URLs in order and stops at the first one
// that yields a lead record. A valid seed gives a fallback lead; an invalid
// one gives an invalid lead. Nil means no seed produced a record.
func (h *Hunter) Seed(ctx context.Context, cat config.Category) *types.Lead {
	for _, u := range cat.Seeds {
		h.emit(ProgressEvent{Step: StepSeed, Category: cat.Name, Message: "trying seed " + u})

		res := h.deps.Scrape.Scrape(ctx, u)
		if res.Err != nil {
			h.deps.Metrics.ObserveSeed("failed")
			continue
		}

		lead := &types.Lead{
			ID:        uuid.NewString(),
			Category:  cat.Name,
			Status:    types.StatusInvalid,
			SourceURL: u,
			Score:     search.Score(u),
			Section:   SeedSection,
		}
		if res.Doc.Empty() || h.deps.Validate.Validate(ctx, cat.Name, res.Doc) != types.VerdictValid {
			h.deps.Metrics.ObserveSeed(string(types.StatusInvalid))
			return lead
		}

		extracted, outcome := h.deps.Extract.Extract(ctx, res.Doc)
		if outcome == extract.OutcomeDiscarded || extracted == nil {
			h.deps.Metrics.ObserveSeed(string(extract.OutcomeDiscarded))
			continue
		}
		extracted.Category = cat.Name
		extracted.Status = types.StatusFallback
		extracted.Score = lead.Score
		extracted.Section = SeedSection
		h.deps.Metrics.ObserveSeed(string(types.StatusFallback))
		h.logger.Info("seeded category", "category", cat.Name, "url", u)
		return extracted
	}

	h.logger.Info("no verified leads", "category", cat.Name)
	return nil
}

func (h *Hunter) emit(event ProgressEvent) {
	if h.deps.OnProgress != nil {
		h.deps.OnProgress(event)
	}
}
