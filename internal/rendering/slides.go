package rendering

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/lead-hunter/internal/types"
)

// Fixed lead page headers.
const (
	HeaderConclusion = "Conclusion"
	HeaderSources    = "Source summary"
	HeaderScore      = "Score"
	HeaderNextAction = "Next action"
	HeaderAudit      = "Audit details"
)

// NoLeadsText is the body of an empty category page.
const NoLeadsText = "No verified leads. Neither organic search nor the category seed produced content that passed validation."

// SlideOptions control slide assembly.
type SlideOptions struct {
	Prefix          string
	AuditChunk      int
	ConclusionRunes int
	MetricRunes     int
	Now             time.Time
}

// DefaultSlideOptions returns the standard page budgets.
func DefaultSlideOptions(now time.Time) SlideOptions {
	return SlideOptions{
		Prefix:          "lead_report",
		AuditChunk:      240,
		ConclusionRunes: 200,
		MetricRunes:     40,
		Now:             now,
	}
}

// Slides assembles a Marp deck: a title page with the lead count, one page
// per lead with the fixed headers, the lead's audit text paginated into
// AuditChunk-rune pages, and a "no verified leads" page for each empty
// category.
func Slides(title string, groups []types.CategoryLeads, opts SlideOptions) Report {
	total := 0
	for _, g := range groups {
		total += len(g.Leads)
	}

	sections := []Section{{
		Heading: EscapeInline(title),
		Body: fmt.Sprintf("Leads: %d\n\nCategories: %d\n\nGenerated: %s",
			total, len(groups), opts.Now.Format("2006-01-02 15:04")),
	}}

	for _, g := range groups {
		if len(g.Leads) == 0 {
			sections = append(sections, Section{Heading: EscapeInline(g.Category), Body: NoLeadsText})
			continue
		}
		for _, lead := range g.Leads {
			sections = append(sections, leadPage(lead, opts))
			for _, chunk := range Chunk(strings.TrimSpace(lead.Audit), opts.AuditChunk) {
				sections = append(sections, Section{
					Heading: HeaderAudit,
					Level:   2,
					Body:    Quote(chunk),
				})
			}
		}
	}

	return Report{
		Filename:    Filename(opts.Prefix, "md", opts.Now),
		Format:      FormatMarp,
		FrontMatter: marpFrontMatter(title),
		Sections:    sections,
	}
}

func marpFrontMatter(title string) string {
	// YAML double-quoted scalar; only quotes and backslashes need escaping.
	quoted := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ").Replace(title)
	return fmt.Sprintf("---\nmarp: true\ntheme: default\npaginate: true\ntitle: \"%s\"\n---", quoted)
}

func leadPage(lead types.Lead, opts SlideOptions) Section {
	conclusion := EscapeInline(Truncate(lead.Problem, opts.ConclusionRunes))
	if conclusion == "" {
		conclusion = "Not stated by the source."
	}
	metric := EscapeInline(Truncate(lead.Metric, opts.MetricRunes))
	if metric == "" {
		metric = "n/a"
	}

	var sources strings.Builder
	fmt.Fprintf(&sources, "- Metric: %s\n", metric)
	if lead.PreviewURL != "" {
		fmt.Fprintf(&sources, "- Preview: <%s>\n", lead.PreviewURL)
	}
	fmt.Fprintf(&sources, "- Source: <%s>", lead.SourceURL)

	score := fmt.Sprintf("%d (%s)", lead.Score, lead.Status)

	body := strings.Join([]string{
		"**" + HeaderConclusion + "**", conclusion, "",
		"**" + HeaderSources + "**", sources.String(), "",
		"**" + HeaderScore + "**", score, "",
		"**" + HeaderNextAction + "**", nextAction(lead),
	}, "\n")

	return Section{Heading: EscapeInline(lead.Category), Body: body}
}

func nextAction(lead types.Lead) string {
	switch {
	case lead.Status == types.StatusFallback:
		return "Seed lead: open the seed page and confirm it still runs before citing it."
	case lead.PreviewURL != "":
		return "Open the preview and reproduce the claimed result."
	default:
		return "Read the source and locate a runnable demo or repository."
	}
}
