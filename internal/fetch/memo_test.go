package fetch

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/lead-hunter/internal/faults"
	"github.com/jonathan/lead-hunter/internal/types"
)

func TestMemo_CachesResults(t *testing.T) {
	m := NewMemo()
	calls := 0
	fetch := func() Result {
		calls++
		return Result{Doc: types.RawDocument{SourceURL: "u", Content: "x"}}
	}

	r1, cached1 := m.Do("u", fetch)
	r2, cached2 := m.Do("u", fetch)

	assert.False(t, cached1)
	assert.True(t, cached2)
	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, m.Len())
}

func TestMemo_DoesNotCacheTransportErrors(t *testing.T) {
	m := NewMemo()
	calls := 0
	fetch := func() Result {
		calls++
		return Result{Err: faults.Transport("scrape", "u", assert.AnError)}
	}

	m.Do("u", fetch)
	m.Do("u", fetch)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, m.Len())
}

func TestMemo_CachesRejections(t *testing.T) {
	m := NewMemo()
	calls := 0
	fetch := func() Result {
		calls++
		return Result{Err: faults.Rejected("scrape", "u", 404)}
	}

	m.Do("u", fetch)
	m.Do("u", fetch)
	assert.Equal(t, 1, calls)
}

func TestMemo_ConcurrentCallers(t *testing.T) {
	m := NewMemo()
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func() Result {
		calls.Add(1)
		<-release
		return Result{Doc: types.RawDocument{Content: "x"}}
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _ := m.Do("u", fetch)
			assert.Equal(t, "x", res.Doc.Content)
		}()
	}
	close(release)
	wg.Wait()

	// Late arrivals may miss the in-flight call but then hit the cache.
	assert.Equal(t, int32(1), calls.Load())
}

func TestMemo_Nil(t *testing.T) {
	var m *Memo
	res, cached := m.Do("u", func() Result { return Result{Doc: types.RawDocument{Content: "x"}} })
	assert.False(t, cached)
	assert.Equal(t, "x", res.Doc.Content)
	assert.Equal(t, 0, m.Len())
}
