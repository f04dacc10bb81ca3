// Package types provides type definitions for structured data used throughout the lead-hunter system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Query is a planned search for one topic dimension.
type Query struct {
	DimensionID string `json:"dimension_id"`
	Text        string `json:"text"`
}

// CandidateLink is a scored, not-yet-fetched URL.
type CandidateLink struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Score   int    `json:"score"`
	Section string `json:"section"`
	// Order is the discovery index within the search response.
	Order int `json:"order"`
}

// LinkKind distinguishes the two shapes a scrape provider may use for an embedded link.
type LinkKind int

const (
	// LinkPlain is a bare URL string
	LinkPlain LinkKind = iota
	// LinkAnnotated carries anchor text alongside the URL
	LinkAnnotated
)

// Link is an embedded link found in a scraped document.
type Link struct {
	Kind LinkKind `json:"kind"`
	URL  string   `json:"url"`
	Text string   `json:"text,omitempty"`
}

// PlainURL builds a Link with no anchor text.
func PlainURL(u string) Link {
	return Link{Kind: LinkPlain, URL: u}
}

// Annotated builds a Link carrying anchor text.
func Annotated(u, text string) Link {
	return Link{Kind: LinkAnnotated, URL: u, Text: text}
}

// RawDocument is the result of a scrape. Content may be empty.
type RawDocument struct {
	SourceURL string `json:"source_url"`
	Content   string `json:"content"`
	Links     []Link `json:"links,omitempty"`
}

// Empty reports whether the scrape produced no usable content.
func (d RawDocument) Empty() bool {
	return len(d.Content) == 0
}

// Verdict is the binary relevance outcome for a document.
type Verdict string

const (
	// VerdictValid marks content relevant to the category
	VerdictValid Verdict = "valid"
	// VerdictInvalid marks irrelevant or unauditable content
	VerdictInvalid Verdict = "invalid"
)

// LeadStatus is the single status a Lead carries.
type LeadStatus string

const (
	// StatusValid is an organically discovered, validated lead
	StatusValid LeadStatus = "valid"
	// StatusInvalid is a lead whose source was rejected by the validator
	StatusInvalid LeadStatus = "invalid"
	// StatusFallback is a validated lead derived from a category seed URL
	StatusFallback LeadStatus = "fallback"
)

// Reportable reports whether a lead with this status may appear in a report.
func (s LeadStatus) Reportable() bool {
	return s == StatusValid || s == StatusFallback
}

// Lead is a validated, structured evidence record.
type Lead struct {
	ID         string     `json:"id"`
	Category   string     `json:"category"`
	Status     LeadStatus `json:"status"`
	PreviewURL string     `json:"preview_url,omitempty"`
	Problem    string     `json:"problem,omitempty"`
	Metric     string     `json:"metric,omitempty"`
	Audit      string     `json:"audit,omitempty"`
	SourceURL  string     `json:"source_url"`
	Score      int        `json:"score"`
	Section    string     `json:"section,omitempty"`
}

// CategoryLeads is the ordered set of reportable leads for one category.
// An empty Leads slice is reported as "no verified leads".
type CategoryLeads struct {
	Category string `json:"category"`
	Leads    []Lead `json:"leads"`
}
