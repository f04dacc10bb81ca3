package harvest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jonathan/lead-hunter/internal/config"
	"github.com/jonathan/lead-hunter/internal/faults"
	"github.com/jonathan/lead-hunter/internal/metrics"
	"github.com/jonathan/lead-hunter/internal/observability"
	"github.com/jonathan/lead-hunter/internal/pacing"
	"github.com/jonathan/lead-hunter/internal/types"
)

// State is a position in the harvesting state machine.
type State int

const (
	// Idle is the state of a run that has not started
	Idle State = iota
	// Searching navigates to the search results for the term
	Searching
	// Scrolling loads the next batch of containers
	Scrolling
	// Extracting reads the containers loaded by the last scroll
	Extracting
	// AwaitingManualAuth is entered when a login barrier is detected
	AwaitingManualAuth
	// AwaitingConfirmation is surfaced when discovered terms need approval
	AwaitingConfirmation
	// Done is terminal
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Scrolling:
		return "scrolling"
	case Extracting:
		return "extracting"
	case AwaitingManualAuth:
		return "awaiting_manual_auth"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Prompt describes why a run needs a human.
type Prompt struct {
	State   State
	Term    string
	Attempt int
	Terms   []string
}

// Confirmer is asked to continue whenever a run suspends. Returning an
// error abandons the run.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) error
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) error

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) error {
	return f(ctx, p)
}

// AutoConfirm continues immediately.
var AutoConfirm = ConfirmFunc(func(context.Context, Prompt) error { return nil })

// Options bound and direct a harvest.
type Options struct {
	SearchURL       string // fmt pattern with one %s for the escaped term
	BaseURL         string
	Containers      string
	ScrollOffset    int
	Settle          time.Duration
	MaxIterations   int
	Target          int
	MinLikes        int
	StrategyTimeout time.Duration
	MaxAuthPrompts  int
	AuthMarkers     []string
	TitleSample     int
	TermCount       int
	FallbackTerms   []string
	Stopwords       []string
}

// OptionsFromConfig maps the harvest configuration.
func OptionsFromConfig(cfg config.HarvestConfig) Options {
	return Options{
		SearchURL:       cfg.SearchURL,
		BaseURL:         cfg.BaseURL,
		Containers:      cfg.Containers,
		ScrollOffset:    cfg.ScrollOffset,
		Settle:          cfg.Settle,
		MaxIterations:   cfg.MaxIterations,
		Target:          cfg.Target,
		MinLikes:        cfg.MinLikes,
		StrategyTimeout: cfg.StrategyTimeout,
		MaxAuthPrompts:  cfg.MaxAuthPrompts,
		AuthMarkers:     DefaultAuthMarkers(),
		TitleSample:     cfg.TitleSample,
		TermCount:       cfg.TermCount,
		FallbackTerms:   cfg.FallbackTerms,
		Stopwords:       cfg.Stopwords,
	}
}

// Harvester drives runs against one page session.
type Harvester struct {
	page    Page
	opts    Options
	clock   pacing.Clock
	metrics *metrics.Metrics
	logger  *log.Logger
}

// New creates a harvester. A nil clock uses the wall clock and a nil logger
// discards output.
func New(page Page, opts Options, clock pacing.Clock, m *metrics.Metrics, logger *log.Logger) *Harvester {
	if clock == nil {
		clock = pacing.SystemClock{}
	}
	if logger == nil {
		logger = observability.Discard()
	}
	if opts.MaxAuthPrompts < 1 {
		opts.MaxAuthPrompts = 1
	}
	return &Harvester{
		page:    page,
		opts:    opts,
		clock:   clock,
		metrics: m,
		logger:  logger.WithPrefix("harvest"),
	}
}

type runMode int

const (
	collectRecords runMode = iota
	collectTitles
)

// Run is a resumable cursor over one term's harvest.
type Run struct {
	h     *Harvester
	term  string
	mode  runMode
	state State

	iteration   int
	authPrompts int
	pending     []Element

	records []types.PostRecord
	titles  []string
	seen    map[string]bool
}

// Start creates a run for term in the Idle state.
func (h *Harvester) Start(term string) *Run {
	return &Run{h: h, term: term, state: Idle, seen: make(map[string]bool)}
}

// State returns the current state.
func (r *Run) State() State { return r.state }

// Iterations returns how many scrolls have run.
func (r *Run) Iterations() int { return r.iteration }

// AuthPrompts returns how many times a login barrier suspended the run.
func (r *Run) AuthPrompts() int { return r.authPrompts }

// Records returns the records collected so far.
func (r *Run) Records() []types.PostRecord {
	out := make([]types.PostRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Resume leaves AwaitingManualAuth and re-navigates on the next step.
func (r *Run) Resume() {
	if r.state == AwaitingManualAuth {
		r.state = Searching
	}
}

func (r *Run) target() int {
	if r.mode == collectTitles {
		return r.h.opts.TitleSample
	}
	return r.h.opts.Target
}

func (r *Run) collected() int {
	if r.mode == collectTitles {
		return len(r.titles)
	}
	return len(r.records)
}

// Step performs the work of the current state and moves to the next one.
// A closed session finishes the run cleanly.
func (r *Run) Step(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return r.state, err
	}

	var err error
	switch r.state {
	case Idle:
		r.state = Searching
	case Searching:
		err = r.search(ctx)
	case Scrolling:
		err = r.scroll(ctx)
	case Extracting:
		err = r.extract(ctx)
	case AwaitingManualAuth:
		return r.state, faults.New(faults.AuthRequired, "harvest.step", errors.New("run is suspended until Resume"))
	case Done:
	}

	if err != nil && isClosed(err) {
		r.h.logger.Info("page session closed, keeping partial results", "term", r.term, "collected", r.collected())
		r.state = Done
		return r.state, nil
	}
	if err != nil {
		r.state = Done
	}
	return r.state, err
}

func (r *Run) search(ctx context.Context) error {
	target := fmt.Sprintf(r.h.opts.SearchURL, url.QueryEscape(r.term))
	r.h.logger.Debug("navigating", "term", r.term, "url", target)
	if err := r.h.page.Navigate(ctx, target); err != nil {
		return err
	}
	if err := r.h.clock.Sleep(ctx, r.h.opts.Settle); err != nil {
		return err
	}
	return r.checkAuth(ctx, Scrolling)
}

func (r *Run) scroll(ctx context.Context) error {
	if r.iteration >= r.h.opts.MaxIterations || r.collected() >= r.target() {
		r.state = Done
		return nil
	}
	if err := r.h.page.Alive(ctx); err != nil {
		return err
	}

	if err := r.h.page.Scroll(ctx, r.h.opts.ScrollOffset); err != nil {
		return err
	}
	r.iteration++
	r.h.metrics.ObserveIteration()
	if err := r.h.clock.Sleep(ctx, r.h.opts.Settle); err != nil {
		return err
	}

	if err := r.checkAuth(ctx, Extracting); err != nil || r.state == AwaitingManualAuth {
		return err
	}

	containers, err := r.h.page.Query(ctx, r.h.opts.Containers)
	if err != nil {
		return err
	}
	r.pending = containers
	r.h.logger.Debug("scrolled", "term", r.term, "iteration", r.iteration, "containers", len(containers), "collected", r.collected())
	return nil
}

func (r *Run) checkAuth(ctx context.Context, next State) error {
	blocked, err := authRequired(ctx, r.h.page, r.h.opts.AuthMarkers)
	if err != nil {
		return err
	}
	if blocked {
		r.authPrompts++
		r.h.metrics.ObserveAuthPrompt()
		r.h.logger.Warn("login barrier detected", "term", r.term, "attempt", r.authPrompts)
		r.pending = nil
		r.state = AwaitingManualAuth
		return nil
	}
	r.state = next
	return nil
}

func (r *Run) extract(ctx context.Context) error {
	pending := r.pending
	r.pending = nil

	for _, el := range pending {
		if r.collected() >= r.target() {
			break
		}
		if err := r.visit(ctx, el); err != nil {
			if isClosed(err) || ctx.Err() != nil {
				return err
			}
			r.h.metrics.ObserveRecord("error")
			r.h.logger.Debug("skipping container", "term", r.term, "error", err)
		}
	}

	if r.collected() >= r.target() {
		r.state = Done
		return nil
	}
	r.state = Scrolling
	return nil
}

func (r *Run) visit(ctx context.Context, el Element) error {
	if r.mode == collectTitles {
		title, err := firstOf(ctx, r.h.opts.StrategyTimeout, el, titleChain)
		if err != nil {
			return err
		}
		if title != "" && !r.seen[title] {
			r.seen[title] = true
			r.titles = append(r.titles, title)
		}
		return nil
	}

	id := r.identity(ctx, el)
	if id != "" {
		if r.seen[id] {
			r.h.metrics.ObserveRecord("duplicate")
			return nil
		}
		// Marked before inclusion so a below-threshold card is not re-read.
		r.seen[id] = true
	}

	rec, err := r.h.readRecord(ctx, el)
	if err != nil {
		return err
	}
	rec.ID = id

	if rec.Title == "" || rec.Likes < r.h.opts.MinLikes {
		r.h.metrics.ObserveRecord("below_threshold")
		return nil
	}
	if len(rec.Partial) > 0 {
		r.h.metrics.ObserveRecord(string(faults.ExtractionPartial))
	} else {
		r.h.metrics.ObserveRecord("kept")
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *Run) identity(ctx context.Context, el Element) string {
	for _, name := range []string{"data-note-id", "id"} {
		v, err := runBounded(ctx, r.h.opts.StrategyTimeout, el, attrOf("", name))
		if err == nil && v != "" {
			return v
		}
	}
	return ""
}

// drive steps run to completion, consulting confirmer whenever the run
// suspends on a login barrier.
func (h *Harvester) drive(ctx context.Context, run *Run, confirmer Confirmer) error {
	if confirmer == nil {
		confirmer = AutoConfirm
	}
	for {
		state, err := run.Step(ctx)
		if err != nil {
			return err
		}
		switch state {
		case Done:
			return nil
		case AwaitingManualAuth:
			if run.authPrompts > h.opts.MaxAuthPrompts {
				return faults.New(faults.AuthRequired, "harvest.collect",
					fmt.Errorf("login still required after %d prompts", h.opts.MaxAuthPrompts))
			}
			prompt := Prompt{State: AwaitingManualAuth, Term: run.term, Attempt: run.authPrompts}
			if err := confirmer.Confirm(ctx, prompt); err != nil {
				return err
			}
			run.Resume()
		}
	}
}

// Collect harvests records for term. Records gathered before a failure are
// returned alongside the error.
func (h *Harvester) Collect(ctx context.Context, term string, confirmer Confirmer) ([]types.PostRecord, error) {
	run := h.Start(term)
	err := h.drive(ctx, run, confirmer)
	h.logger.Info("harvest finished", "term", term, "records", len(run.records), "iterations", run.iteration)
	return run.Records(), err
}

// TermRecords is the harvest of one term.
type TermRecords struct {
	Term    string
	Records []types.PostRecord
	Err     error
}

// CollectTerms harvests each term in order. A failing term is recorded and
// the next one is tried; only cancellation stops the loop.
func (h *Harvester) CollectTerms(ctx context.Context, terms []string, confirmer Confirmer) ([]TermRecords, error) {
	out := make([]TermRecords, 0, len(terms))
	for _, term := range terms {
		records, err := h.Collect(ctx, term, confirmer)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		if err != nil {
			h.logger.Warn("term failed", "term", term, "error", err)
		}
		out = append(out, TermRecords{Term: term, Records: records, Err: err})
	}
	return out, nil
}

func isClosed(err error) bool {
	return faults.Is(err, faults.SessionClosed)
}
