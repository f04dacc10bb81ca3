package ranking

import (
	"sort"

	"github.com/jonathan/lead-hunter/internal/types"
)

// RankLeads groups reportable leads by category in first-seen order and
// sorts each group by score, highest first. Groups are capped to
// perCategoryCap when it is positive.
func RankLeads(leads []types.Lead, perCategoryCap int) []types.CategoryLeads {
	index := make(map[string]int)
	var groups []types.CategoryLeads
	for _, l := range leads {
		if !l.Status.Reportable() {
			continue
		}
		i, ok := index[l.Category]
		if !ok {
			i = len(groups)
			index[l.Category] = i
			groups = append(groups, types.CategoryLeads{Category: l.Category})
		}
		groups[i].Leads = append(groups[i].Leads, l)
	}

	for i := range groups {
		g := groups[i].Leads
		sort.SliceStable(g, func(a, b int) bool {
			return g[a].Score > g[b].Score
		})
		if perCategoryCap > 0 && len(g) > perCategoryCap {
			groups[i].Leads = g[:perCategoryCap]
		}
	}
	return groups
}

// Arrange lays groups out in the given category order. Categories with no
// group get an empty entry so the report can say so; groups for categories
// not in order follow at the end.
func Arrange(order []string, groups []types.CategoryLeads) []types.CategoryLeads {
	byName := make(map[string]types.CategoryLeads, len(groups))
	for _, g := range groups {
		byName[g.Category] = g
	}

	out := make([]types.CategoryLeads, 0, len(order)+len(groups))
	placed := make(map[string]bool, len(order))
	for _, name := range order {
		if placed[name] {
			continue
		}
		placed[name] = true
		if g, ok := byName[name]; ok {
			out = append(out, g)
		} else {
			out = append(out, types.CategoryLeads{Category: name})
		}
	}
	for _, g := range groups {
		if !placed[g.Category] {
			out = append(out, g)
		}
	}
	return out
}
