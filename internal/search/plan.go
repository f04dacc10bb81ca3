// Package search plans queries, calls the search capability and scores the
// returned links.
package search

import (
	"strings"

	"github.com/jonathan/lead-hunter/internal/config"
	"github.com/jonathan/lead-hunter/internal/types"
)

// Plan returns one query per dimension, in dimension order.
func Plan(dims []config.Dimension, sites []string) []types.Query {
	queries := make([]types.Query, 0, len(dims))
	for _, d := range dims {
		queries = append(queries, types.Query{
			DimensionID: d.ID,
			Text:        WithSites(d.Title, sites),
		})
	}
	return queries
}

// CategoryQuery builds the query for a hunt category.
func CategoryQuery(c config.Category, sites []string) types.Query {
	return types.Query{DimensionID: c.ID, Text: WithSites(c.Query, sites)}
}

// WithSites appends a site restriction such as "(site:a OR site:b)" to text.
// Blank sites are ignored; no sites leaves text unchanged.
func WithSites(text string, sites []string) string {
	text = strings.TrimSpace(text)
	filters := make([]string, 0, len(sites))
	for _, s := range sites {
		if s = strings.TrimSpace(s); s != "" {
			filters = append(filters, "site:"+s)
		}
	}
	if len(filters) == 0 {
		return text
	}
	return text + " (" + strings.Join(filters, " OR ") + ")"
}
