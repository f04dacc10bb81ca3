// Package ranking aggregates harvested records per term and orders terms
// and leads for reporting. Every function here is pure and deterministic.
package ranking

import (
	"sort"

	"github.com/jonathan/lead-hunter/internal/types"
)

// TagCloudSize is the number of tags kept per category.
const TagCloudSize = 5

// DefaultTopCategories is the most terms RankCategories keeps.
const DefaultTopCategories = 5

// Aggregate summarizes the records harvested for one term. Totals and the
// tag cloud cover every record; the stored records are sorted by likes and
// then capped to perTermCap (no cap when perTermCap <= 0).
func Aggregate(term string, records []types.PostRecord, perTermCap int) types.AggregatedCategory {
	agg := types.AggregatedCategory{Term: term, TagCloud: []types.TagCount{}}

	for i := range records {
		agg.TotalLikes += records[i].Likes
		if agg.TopPost == nil || records[i].Likes > agg.TopPost.Likes {
			top := records[i]
			agg.TopPost = &top
		}
	}
	agg.TagCloud = TagCloud(records, TagCloudSize)

	sorted := make([]types.PostRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Likes > sorted[j].Likes
	})
	if perTermCap > 0 && len(sorted) > perTermCap {
		sorted = sorted[:perTermCap]
	}
	agg.Records = sorted
	return agg
}

// TagCloud counts tags across records and returns the n most frequent.
// Ties keep first-seen order.
func TagCloud(records []types.PostRecord, n int) []types.TagCount {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		for _, tag := range r.Tags {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	cloud := make([]types.TagCount, 0, len(order))
	for _, tag := range order {
		cloud = append(cloud, types.TagCount{Tag: tag, Count: counts[tag]})
	}
	sort.SliceStable(cloud, func(i, j int) bool {
		return cloud[i].Count > cloud[j].Count
	})
	if len(cloud) > n {
		cloud = cloud[:n]
	}
	return cloud
}

// RankCategories orders categories by total likes, highest first, and keeps
// the top n. n outside 1..DefaultTopCategories means DefaultTopCategories.
// Categories without records are dropped.
func RankCategories(cats []types.AggregatedCategory, n int) []types.AggregatedCategory {
	ranked := make([]types.AggregatedCategory, 0, len(cats))
	for _, c := range cats {
		if c.TopPost == nil {
			continue
		}
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalLikes > ranked[j].TotalLikes
	})
	if n <= 0 || n > DefaultTopCategories {
		n = DefaultTopCategories
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
