package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonathan/lead-hunter/internal/extract"
	"github.com/jonathan/lead-hunter/internal/faults"
	"github.com/jonathan/lead-hunter/internal/fetch"
	"github.com/jonathan/lead-hunter/internal/search"
	"github.com/jonathan/lead-hunter/internal/types"
)

type fakeSearch struct {
	mu      sync.Mutex
	byBudget map[int][]types.CandidateLink
	err     *faults.Error
	budgets []int
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, q types.Query, n int) search.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budgets = append(f.budgets, n)
	f.queries = append(f.queries, q.Text)
	if f.err != nil {
		return search.Result{Err: f.err}
	}
	return search.Result{Links: f.byBudget[n]}
}

type fakeScrape struct {
	mu       sync.Mutex
	results  map[string]fetch.Result
	calls    []string
	inFlight atomic.Int32
	peak     atomic.Int32
	hold     chan struct{}
}

func (f *fakeScrape) Scrape(_ context.Context, u string) fetch.Result {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if cur <= p || f.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	if f.hold != nil {
		<-f.hold
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, u)
	if r, ok := f.results[u]; ok {
		r.Doc.SourceURL = u
		return r
	}
	return fetch.Result{Doc: types.RawDocument{SourceURL: u, Content: "content of " + u}}
}

type fakeValidator struct {
	mu    sync.Mutex
	valid map[string]bool
	calls []string
}

func (f *fakeValidator) Validate(_ context.Context, _ string, doc types.RawDocument) types.Verdict {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, doc.SourceURL)
	if f.valid[doc.SourceURL] {
		return types.VerdictValid
	}
	return types.VerdictInvalid
}

func (f *fakeValidator) called(u string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == u {
			return true
		}
	}
	return false
}

type fakeExtractor struct {
	discard map[string]bool
}

func (f *fakeExtractor) Extract(_ context.Context, doc types.RawDocument) (*types.Lead, extract.Outcome) {
	if f.discard[doc.SourceURL] {
		return nil, extract.OutcomeDiscarded
	}
	return &types.Lead{
		ID:         "lead-" + doc.SourceURL,
		SourceURL:  doc.SourceURL,
		PreviewURL: doc.SourceURL,
		Problem:    "problem",
	}, extract.OutcomeExtracted
}

func links(prefix string, n int) []types.CandidateLink {
	out := make([]types.CandidateLink, n)
	for i := range out {
		out[i] = types.CandidateLink{URL: fmt.Sprintf("https://%s.example/%d", prefix, i), Section: "organic", Order: i}
	}
	return out
}

func validSet(ls []types.CandidateLink, n int) map[string]bool {
	m := make(map[string]bool)
	for i := 0; i < n && i < len(ls); i++ {
		m[ls[i].URL] = true
	}
	return m
}

func testPolicy() Policy {
	return Policy{Workers: 2, InitialBudget: 10, WidenedBudget: 30, WidenInvalid: 8, WidenValid: 3}
}

type queryMapSearch struct {
	byQuery map[string][]types.CandidateLink
}

func (q *queryMapSearch) Search(_ context.Context, query types.Query, _ int) search.Result {
	return search.Result{Links: q.byQuery[query.Text]}
}
