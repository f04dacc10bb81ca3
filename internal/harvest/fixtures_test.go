package harvest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-hunter/internal/observability"
	"github.com/jonathan/lead-hunter/internal/pacing"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const loginWall = `<html><body><div class="login-modal">扫码登录</div></body></html>`

func testOptions() Options {
	return Options{
		SearchURL:       "https://example.test/search_result?keyword=%s",
		BaseURL:         "https://example.test",
		Containers:      ".note-item, section",
		ScrollOffset:    1500,
		Settle:          5 * time.Second,
		MaxIterations:   20,
		Target:          20,
		MinLikes:        5000,
		StrategyTimeout: time.Second,
		MaxAuthPrompts:  3,
		AuthMarkers:     DefaultAuthMarkers(),
		TitleSample:     50,
		TermCount:       3,
		FallbackTerms:   []string{"胶片感调色", "日系小清新", "电影感调色"},
		Stopwords:       []string{"调色", "分享"},
	}
}

// card renders a standard listing card.
func card(id, title, likes string) string {
	return fmt.Sprintf(`<div class="note-item" data-note-id="%s">
  <a href="/explore/%s"><img class="cover" src="https://img.example.test/%s.jpg"></a>
  <div class="footer"><span class="title">%s</span><span class="count">%s</span></div>
</div>`, id, id, id, title, likes)
}

func frame(cards ...string) string {
	return "<html><body><div class=\"feeds\">" + strings.Join(cards, "\n") + "</div></body></html>"
}

func cardsN(prefix string, n int, likes string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = card(fmt.Sprintf("%s%d", prefix, i), fmt.Sprintf("%s title %d", prefix, i), likes)
	}
	return out
}

func newHarvester(t *testing.T, opts Options, frames ...string) (*Harvester, *SnapshotPage, *pacing.ManualClock) {
	t.Helper()
	page, err := NewSnapshotPage(frames...)
	require.NoError(t, err)
	clock := pacing.NewManualClock(epoch)
	return New(page, opts, clock, nil, observability.Discard()), page, clock
}
