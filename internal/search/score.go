package search

import (
	"sort"
	"strings"

	"github.com/jonathan/lead-hunter/internal/types"
)

// DefaultBlacklist holds the markers of aggregator pages that never carry
// first-hand evidence.
func DefaultBlacklist() []string {
	return []string{"awesome", "list", "collection", "resource", "directory"}
}

// Scorer filters and ranks candidate links.
type Scorer struct {
	blacklist []string
}

// NewScorer creates a scorer. An empty blacklist uses DefaultBlacklist.
func NewScorer(blacklist []string) *Scorer {
	if len(blacklist) == 0 {
		blacklist = DefaultBlacklist()
	}
	lowered := make([]string, 0, len(blacklist))
	for _, b := range blacklist {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			lowered = append(lowered, b)
		}
	}
	return &Scorer{blacklist: lowered}
}

// Blacklisted reports whether the link's title or URL carries a blacklist marker.
func (s *Scorer) Blacklisted(link types.CandidateLink) bool {
	title := strings.ToLower(link.Title)
	u := strings.ToLower(link.URL)
	for _, b := range s.blacklist {
		if strings.Contains(title, b) || strings.Contains(u, b) {
			return true
		}
	}
	return false
}

// Score returns the host heuristic score for a URL.
func Score(rawURL string) int {
	u := strings.ToLower(rawURL)
	score := 0
	if strings.Contains(u, "huggingface.co/spaces") {
		score += 10
	}
	if strings.Contains(u, "replicate.com") {
		score += 8
	}
	if strings.Contains(u, "github.com") {
		if strings.Contains(u, "readme") {
			score += 7
		} else {
			score += 4
		}
	}
	return score
}

// Rank drops blacklisted and repeated links, scores the rest and orders them
// by descending score. Equal scores keep their discovery order.
func (s *Scorer) Rank(links []types.CandidateLink) []types.CandidateLink {
	seen := make(map[string]bool, len(links))
	ranked := make([]types.CandidateLink, 0, len(links))
	for _, link := range links {
		if link.URL == "" || seen[link.URL] || s.Blacklisted(link) {
			continue
		}
		seen[link.URL] = true
		link.Score = Score(link.URL)
		ranked = append(ranked, link)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
