package fetch

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/lead-hunter/internal/faults"
)

// Memo is a run-scoped cache of scrape results keyed by URL. Concurrent
// requests for the same URL share one upstream call. Transport failures are
// not cached so a later round may retry them.
type Memo struct {
	mu      sync.Mutex
	entries map[string]Result
	group   singleflight.Group
	hits    int
}

// NewMemo creates an empty memo.
func NewMemo() *Memo {
	return &Memo{entries: make(map[string]Result)}
}

// Do returns the cached result for url or calls fetch to produce one.
// The boolean reports whether the result came from the cache.
func (m *Memo) Do(url string, fetch func() Result) (Result, bool) {
	if m == nil {
		return fetch(), false
	}

	m.mu.Lock()
	if cached, ok := m.entries[url]; ok {
		m.hits++
		m.mu.Unlock()
		return cached, true
	}
	m.mu.Unlock()

	v, _, shared := m.group.Do(url, func() (interface{}, error) {
		m.mu.Lock()
		if cached, ok := m.entries[url]; ok {
			m.mu.Unlock()
			return cached, nil
		}
		m.mu.Unlock()

		result := fetch()
		if result.Err == nil || result.Err.Kind != faults.TransportError {
			m.mu.Lock()
			m.entries[url] = result
			m.mu.Unlock()
		}
		return result, nil
	})
	return v.(Result), shared
}

// Len returns the number of cached URLs.
func (m *Memo) Len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Hits returns how many lookups were served from the cache.
func (m *Memo) Hits() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}
