package types

// PostRecord is one record collected by the harvester.
type PostRecord struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Likes    int      `json:"likes"`
	CoverURL string   `json:"cover_url,omitempty"`
	Link     string   `json:"link,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	// Partial lists fields that fell back to their default value.
	Partial []string `json:"partial,omitempty"`
}

// TagCount is one tag cloud entry.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// AggregatedCategory summarizes the records harvested for one term.
type AggregatedCategory struct {
	Term       string       `json:"term"`
	TotalLikes int          `json:"total_likes"`
	TopPost    *PostRecord  `json:"top_post,omitempty"`
	TagCloud   []TagCount   `json:"tag_cloud"`
	Records    []PostRecord `json:"records,omitempty"`
}
