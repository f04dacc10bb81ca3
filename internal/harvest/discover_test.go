package harvest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-hunter/internal/observability"
)

func TestRankTerms(t *testing.T) {
	tests := []struct {
		name   string
		titles []string
		n      int
		want   []string
	}{
		{
			name:   "frequency order",
			titles: []string{"富士 胶片 复古", "胶片 日系", "胶片 复古 分享", "a 调色", "复古 日系 胶片"},
			n:      3,
			want:   []string{"胶片", "复古", "日系"},
		},
		{
			name:   "ties keep first seen",
			titles: []string{"beta alpha", "alpha beta"},
			n:      5,
			want:   []string{"beta", "alpha"},
		},
		{
			name:   "punctuation stripped",
			titles: []string{"胶片! 胶片。", "(胶片)"},
			n:      5,
			want:   []string{"胶片"},
		},
		{
			name:   "nothing usable",
			titles: []string{"a b 调色", "分享"},
			n:      5,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RankTerms(tt.titles, []string{"调色", "分享"}, tt.n))
		})
	}
}

func TestPadTerms(t *testing.T) {
	fallback := []string{"x", "y", "z"}
	assert.Equal(t, []string{"a", "x", "y"}, padTerms([]string{"a"}, fallback, 3))
	assert.Equal(t, []string{"x", "y", "z"}, padTerms([]string{"x"}, fallback, 3))
	assert.Equal(t, []string{"a", "b"}, padTerms([]string{"a", "b", "c"}, fallback, 2))
}

func titleCards(titles ...string) []string {
	out := make([]string, len(titles))
	for i, title := range titles {
		out[i] = card(fmt.Sprintf("d%d", i), title, "10")
	}
	return out
}

func TestDiscoverTerms(t *testing.T) {
	opts := testOptions()
	opts.MaxIterations = 2
	h, page, _ := newHarvester(t, opts, frame(titleCards(
		"富士 胶片 复古", "胶片 日系", "胶片 复古 分享", "a 调色", "复古 日系 胶片",
	)...))

	var prompt Prompt
	confirmer := ConfirmFunc(func(_ context.Context, p Prompt) error {
		prompt = p
		return nil
	})

	terms, err := h.DiscoverTerms(context.Background(), "调色", confirmer)
	require.NoError(t, err)

	assert.Equal(t, []string{"胶片", "复古", "日系"}, terms)
	assert.Equal(t, AwaitingConfirmation, prompt.State)
	assert.Equal(t, terms, prompt.Terms)
	assert.Equal(t, []string{"https://example.test/search_result?keyword=%E8%B0%83%E8%89%B2"}, page.Navigations())
}

func TestDiscoverTerms_PadsWithFallback(t *testing.T) {
	opts := testOptions()
	opts.MaxIterations = 1
	h, _, _ := newHarvester(t, opts, frame(titleCards("胶片 调色")...))

	terms, err := h.DiscoverTerms(context.Background(), "调色", AutoConfirm)
	require.NoError(t, err)
	assert.Equal(t, []string{"胶片", "胶片感调色", "日系小清新"}, terms)
}

// brokenPage fails every navigation.
type brokenPage struct{ SnapshotPage }

func (*brokenPage) Navigate(context.Context, string) error {
	return errors.New("dns failure")
}

func TestDiscoverTerms_FailureUsesFallback(t *testing.T) {
	h := New(&brokenPage{}, testOptions(), nil, nil, observability.Discard())

	terms, err := h.DiscoverTerms(context.Background(), "调色", AutoConfirm)
	require.NoError(t, err)
	assert.Equal(t, []string{"胶片感调色", "日系小清新", "电影感调色"}, terms)
}

func TestDiscoverTerms_Rejected(t *testing.T) {
	h, _, _ := newHarvester(t, testOptions(), frame())
	quit := errors.New("not satisfied")

	terms, err := h.DiscoverTerms(context.Background(), "调色", ConfirmFunc(func(context.Context, Prompt) error {
		return quit
	}))
	assert.ErrorIs(t, err, quit)
	assert.Nil(t, terms)
}
