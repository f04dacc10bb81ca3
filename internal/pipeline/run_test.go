package pipeline

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jonathan/lead-hunter/internal/config"
	"github.com/jonathan/lead-hunter/internal/faults"
	"github.com/jonathan/lead-hunter/internal/fetch"
	"github.com/jonathan/lead-hunter/internal/metrics"
	"github.com/jonathan/lead-hunter/internal/types"
)

var voiceCategory = config.Category{
	ID:    "fish-speech",
	Name:  "Fish-Speech",
	Query: "Fish-Speech demo",
	Seeds: []string{"https://huggingface.co/spaces/fishaudio/fish-speech"},
}

func TestShouldWiden(t *testing.T) {
	p := testPolicy()
	tests := []struct {
		invalid, valid int
		expected       bool
	}{
		{8, 2, true},
		{10, 0, true},
		{8, 3, false},
		{7, 0, false},
		{20, 5, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ShouldWiden(Round{Invalid: tt.invalid, Valid: tt.valid}, p), "invalid=%d valid=%d", tt.invalid, tt.valid)
	}
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.Defaults().Pipeline)
	assert.Equal(t, testPolicy(), p)
}

func TestHuntCategory_NoWidening(t *testing.T) {
	initial := links("a", 11)
	s := &fakeSearch{byBudget: map[int][]types.CandidateLink{10: initial}}
	v := &fakeValidator{valid: validSet(initial, 3)}
	h := NewHunter(Deps{Search: s, Scrape: &fakeScrape{}, Validate: v, Extract: &fakeExtractor{}, Policy: testPolicy()})

	cr := h.HuntCategory(context.Background(), voiceCategory)

	assert.False(t, cr.Widened)
	assert.False(t, cr.Seeded)
	assert.Equal(t, []int{10}, s.budgets)
	require.Len(t, cr.Rounds, 1)
	assert.Equal(t, 3, cr.Rounds[0].Valid)
	assert.Equal(t, 8, cr.Rounds[0].Invalid)
	assert.Len(t, cr.Reportable(), 3)
	for _, l := range cr.Reportable() {
		assert.Equal(t, types.StatusValid, l.Status)
		assert.Equal(t, "Fish-Speech", l.Category)
	}
}

func TestHuntCategory_WidensOnceAndReplacesResults(t *testing.T) {
	initial := links("a", 10)
	widened := links("b", 12)
	s := &fakeSearch{byBudget: map[int][]types.CandidateLink{10: initial, 30: widened}}
	v := &fakeValidator{valid: validSet(widened, 1)}
	m := metrics.New()
	h := NewHunter(Deps{Search: s, Scrape: &fakeScrape{}, Validate: v, Extract: &fakeExtractor{}, Policy: testPolicy(), Metrics: m})

	cr := h.HuntCategory(context.Background(), voiceCategory)

	// The widened round is itself poor (11 invalid, 1 valid) but is not widened again.
	assert.True(t, cr.Widened)
	assert.Equal(t, []int{10, 30}, s.budgets)
	require.Len(t, cr.Rounds, 2)
	assert.True(t, ShouldWiden(cr.Rounds[1], testPolicy()))

	require.Len(t, cr.Leads, 12)
	for _, l := range cr.Leads {
		assert.Contains(t, l.SourceURL, "b.example")
	}
	assert.Len(t, cr.Reportable(), 1)
	assert.False(t, cr.Seeded)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Widenings.WithLabelValues("fish-speech")))
}

func TestHuntCategory_FailedScrapeSkipsValidator(t *testing.T) {
	ls := links("a", 2)
	scrape := &fakeScrape{results: map[string]fetch.Result{
		ls[0].URL: {Err: faults.Rejected("scrape", ls[0].URL, http.StatusForbidden)},
		ls[1].URL: {},
	}}
	s := &fakeSearch{byBudget: map[int][]types.CandidateLink{10: ls}}
	v := &fakeValidator{}
	h := NewHunter(Deps{Search: s, Scrape: scrape, Validate: v, Extract: &fakeExtractor{}, Policy: testPolicy()})

	round := h.RunRound(context.Background(), voiceCategory, 10)

	assert.Equal(t, 2, round.Invalid)
	assert.False(t, v.called(ls[0].URL))
	assert.False(t, v.called(ls[1].URL))
	for _, l := range round.Leads {
		assert.Equal(t, types.StatusInvalid, l.Status)
	}
}

func TestRunRound_DiscardedNotCounted(t *testing.T) {
	ls := links("a", 3)
	s := &fakeSearch{byBudget: map[int][]types.CandidateLink{10: ls}}
	v := &fakeValidator{valid: validSet(ls, 3)}
	e := &fakeExtractor{discard: map[string]bool{ls[1].URL: true}}
	h := NewHunter(Deps{Search: s, Scrape: &fakeScrape{}, Validate: v, Extract: e, Policy: testPolicy()})

	round := h.RunRound(context.Background(), voiceCategory, 10)

	assert.Equal(t, 2, round.Valid)
	assert.Equal(t, 0, round.Invalid)
	assert.Equal(t, 1, round.Discarded)
	require.Len(t, round.Leads, 2)
	assert.Equal(t, ls[0].URL, round.Leads[0].SourceURL)
	assert.Equal(t, ls[2].URL, round.Leads[1].SourceURL)
}

func TestRunRound_RanksBeforeProcessing(t *testing.T) {
	ls := []types.CandidateLink{
		{URL: "https://www.v2ex.com/t/1", Order: 0},
		{URL: "https://github.com/x/awesome-voice", Title: "Awesome voice", Order: 1},
		{URL: "https://huggingface.co/spaces/a/b", Order: 2},
	}
	s := &fakeSearch{byBudget: map[int][]types.CandidateLink{10: ls}}
	v := &fakeValidator{valid: map[string]bool{"https://www.v2ex.com/t/1": true, "https://huggingface.co/spaces/a/b": true}}
	h := NewHunter(Deps{Search: s, Scrape: &fakeScrape{}, Validate: v, Extract: &fakeExtractor{}, Policy: testPolicy(), Sites: []string{"v2ex.com"}})

	round := h.RunRound(context.Background(), voiceCategory, 10)

	require.Len(t, round.Leads, 2)
	assert.Equal(t, "https://huggingface.co/spaces/a/b", round.Leads[0].SourceURL)
	assert.Equal(t, 10, round.Leads[0].Score)
	assert.Equal(t, "https://www.v2ex.com/t/1", round.Leads[1].SourceURL)
	assert.Equal(t, []string{"Fish-Speech demo (site:v2ex.com)"}, s.queries)
}

func TestRunRound_SearchFailure(t *testing.T) {
	s := &fakeSearch{err: faults.Rejected("search", "serper", http.StatusTooManyRequests)}
	h := NewHunter(Deps{Search: s, Scrape: &fakeScrape{}, Validate: &fakeValidator{}, Extract: &fakeExtractor{}, Policy: testPolicy()})

	round := h.RunRound(context.Background(), voiceCategory, 10)
	assert.Error(t, round.SearchErr)
	assert.Empty(t, round.Leads)
}

func TestRunRound_BoundedWorkers(t *testing.T) {
	ls := links("a", 12)
	scrape := &fakeScrape{hold: make(chan struct{})}
	s := &fakeSearch{byBudget: map[int][]types.CandidateLink{10: ls}}
	policy := testPolicy()
	policy.Workers = 3
	h := NewHunter(Deps{Search: s, Scrape: scrape, Validate: &fakeValidator{}, Extract: &fakeExtractor{}, Policy: policy})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.RunRound(context.Background(), voiceCategory, 10)
	}()
	for range ls {
		scrape.hold <- struct{}{}
	}
	wg.Wait()

	assert.LessOrEqual(t, scrape.peak.Load(), int32(3))
	assert.Len(t, scrape.calls, 12)
}

func TestHuntCategory_FallbackSeed(t *testing.T) {
	tests := []struct {
		name       string
		seeds      []string
		scrape     map[string]fetch.Result
		valid      map[string]bool
		discard    map[string]bool
		wantSeeded bool
		wantSeed   string
		wantStatus types.LeadStatus
		wantCalls  []string
	}{
		{
			name:       "valid seed becomes fallback lead",
			seeds:      []string{"https://huggingface.co/spaces/fishaudio/fish-speech"},
			valid:      map[string]bool{"https://huggingface.co/spaces/fishaudio/fish-speech": true},
			wantSeeded: true,
			wantSeed:   "https://huggingface.co/spaces/fishaudio/fish-speech",
			wantStatus: types.StatusFallback,
			wantCalls:  []string{"https://huggingface.co/spaces/fishaudio/fish-speech"},
		},
		{
			name:  "failed scrape moves to next seed",
			seeds: []string{"https://down.example", "https://github.com/RVC-Boss/GPT-SoVITS"},
			scrape: map[string]fetch.Result{
				"https://down.example": {Err: faults.Transport("scrape", "https://down.example", assert.AnError)},
			},
			valid:      map[string]bool{"https://github.com/RVC-Boss/GPT-SoVITS": true},
			wantSeeded: true,
			wantSeed:   "https://github.com/RVC-Boss/GPT-SoVITS",
			wantStatus: types.StatusFallback,
			wantCalls:  []string{"https://down.example", "https://github.com/RVC-Boss/GPT-SoVITS"},
		},
		{
			name:       "invalid seed stops and leaves the category empty",
			seeds:      []string{"https://one.example", "https://two.example"},
			valid:      map[string]bool{"https://two.example": true},
			wantSeed:   "https://one.example",
			wantStatus: types.StatusInvalid,
			wantCalls:  []string{"https://one.example"},
		},
		{
			name:       "discarded seed moves to next seed",
			seeds:      []string{"https://one.example", "https://two.example"},
			valid:      map[string]bool{"https://one.example": true, "https://two.example": true},
			discard:    map[string]bool{"https://one.example": true},
			wantSeeded: true,
			wantSeed:   "https://two.example",
			wantStatus: types.StatusFallback,
			wantCalls:  []string{"https://one.example", "https://two.example"},
		},
		{
			name: "no seeds gives an explicit empty category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSearch{byBudget: map[int][]types.CandidateLink{}}
			scrape := &fakeScrape{results: tt.scrape}
			h := NewHunter(Deps{
				Search:   s,
				Scrape:   scrape,
				Validate: &fakeValidator{valid: tt.valid},
				Extract:  &fakeExtractor{discard: tt.discard},
				Policy:   testPolicy(),
			})
			cat := voiceCategory
			cat.Seeds = tt.seeds

			cr := h.HuntCategory(context.Background(), cat)

			assert.Equal(t, tt.wantSeeded, cr.Seeded)
			assert.Equal(t, !tt.wantSeeded, cr.Empty())
			assert.Equal(t, tt.wantCalls, scrape.calls)
			if tt.wantSeed == "" {
				assert.Empty(t, cr.Leads)
				return
			}
			require.Len(t, cr.Leads, 1)
			assert.Equal(t, tt.wantSeed, cr.Leads[0].SourceURL)
			assert.Equal(t, tt.wantStatus, cr.Leads[0].Status)
			assert.Equal(t, SeedSection, cr.Leads[0].Section)
		})
	}
}

func TestHuntCategory_SeedsSkippedWhenLeadsFound(t *testing.T) {
	ls := links("a", 2)
	s := &fakeSearch{byBudget: map[int][]types.CandidateLink{10: ls}}
	scrape := &fakeScrape{}
	h := NewHunter(Deps{Search: s, Scrape: scrape, Validate: &fakeValidator{valid: validSet(ls, 1)}, Extract: &fakeExtractor{}, Policy: testPolicy()})

	cr := h.HuntCategory(context.Background(), voiceCategory)

	assert.False(t, cr.Seeded)
	assert.NotContains(t, scrape.calls, voiceCategory.Seeds[0])
}

func TestHunt(t *testing.T) {
	ls := links("a", 1)
	s := &fakeSearch{byBudget: map[int][]types.CandidateLink{10: ls}}

	var mu sync.Mutex
	var events []ProgressEvent
	h := NewHunter(Deps{
		Search:   s,
		Scrape:   &fakeScrape{},
		Validate: &fakeValidator{valid: validSet(ls, 1)},
		Extract:  &fakeExtractor{},
		Policy:   testPolicy(),
		OnProgress: func(e ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		},
	})

	second := config.Category{ID: "gpt-sovits", Name: "GPT-SoVITS", Query: "GPT-SoVITS"}
	result, err := h.Hunt(context.Background(), []config.Category{voiceCategory, second})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Categories, 2)
	assert.Len(t, result.Leads(), 2)

	var categorySteps []string
	for _, e := range events {
		if e.Step == StepCategory {
			categorySteps = append(categorySteps, e.Category)
			assert.Equal(t, result.RunID, e.RunID)
		}
	}
	assert.Equal(t, []string{"Fish-Speech", "GPT-SoVITS"}, categorySteps)
}

func TestHunt_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := NewHunter(Deps{Search: &fakeSearch{}, Scrape: &fakeScrape{}, Validate: &fakeValidator{}, Extract: &fakeExtractor{}, Policy: testPolicy()})
	result, err := h.Hunt(ctx, []config.Category{voiceCategory})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Categories)
}

func TestHunt_DrainsWorkers(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	ls := links("a", 12)
	s := &fakeSearch{byBudget: map[int][]types.CandidateLink{10: ls}}
	policy := testPolicy()
	policy.Workers = 4
	h := NewHunter(Deps{Search: s, Scrape: &fakeScrape{}, Validate: &fakeValidator{valid: validSet(ls, 3)}, Extract: &fakeExtractor{}, Policy: policy})

	result, err := h.Hunt(context.Background(), []config.Category{voiceCategory})
	require.NoError(t, err)
	require.Len(t, result.Categories, 1)
}
