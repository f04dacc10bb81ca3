// Package observability provides logging setup and formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/lead-hunter/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to width runes.
func pad(line string, width int) string {
	n := utf8.RuneCountInString(line)
	if n > width {
		runes := []rune(line)
		return string(runes[:width-3]) + "..."
	}
	return line + strings.Repeat(" ", width-n)
}

// PrintQueries outputs the planned search queries.
func (p *Printer) PrintQueries(queries []types.Query) {
	if len(queries) == 0 {
		return
	}

	var sb strings.Builder
	for _, q := range queries {
		sb.WriteString(fmt.Sprintf("[%s]\n", q.DimensionID))
		sb.WriteString(fmt.Sprintf("  %s\n", q.Text))
	}
	p.printBox(fmt.Sprintf("PLANNED QUERIES (%d)", len(queries)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCategoryLeads outputs the reportable leads of each category, top first.
func (p *Printer) PrintCategoryLeads(groups []types.CategoryLeads) {
	if len(groups) == 0 {
		return
	}

	var sb strings.Builder
	total := 0
	for _, g := range groups {
		total += len(g.Leads)
		if len(g.Leads) == 0 {
			sb.WriteString(fmt.Sprintf("%s: no verified leads\n\n", g.Category))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s (%d)\n", g.Category, len(g.Leads)))
		count := min(len(g.Leads), maxItemsToShow)
		for i := 0; i < count; i++ {
			l := g.Leads[i]
			sb.WriteString(fmt.Sprintf("  %d. [%d] %s\n", i+1, l.Score, l.SourceURL))
			if l.Status == types.StatusFallback {
				sb.WriteString("     (seed)\n")
			}
			if l.Problem != "" {
				sb.WriteString(fmt.Sprintf("     %s\n", l.Problem))
			}
		}
		if len(g.Leads) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(g.Leads)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	p.printBox(fmt.Sprintf("VERIFIED LEADS (%d)", total), strings.TrimSuffix(sb.String(), "\n\n"))
}

// PrintAggregates outputs ranked harvest terms with their top tags.
func (p *Printer) PrintAggregates(cats []types.AggregatedCategory) {
	if len(cats) == 0 {
		p.printBox("HARVEST RESULTS", "No term produced records above the threshold.")
		return
	}

	var sb strings.Builder
	for i, c := range cats {
		sb.WriteString(fmt.Sprintf("%d. %s  total=%d records=%d\n", i+1, c.Term, c.TotalLikes, len(c.Records)))
		if c.TopPost != nil {
			sb.WriteString(fmt.Sprintf("   top: %s (%d)\n", c.TopPost.Title, c.TopPost.Likes))
		}
		if len(c.TagCloud) > 0 {
			tags := make([]string, len(c.TagCloud))
			for j, t := range c.TagCloud {
				tags[j] = fmt.Sprintf("%s×%d", t.Tag, t.Count)
			}
			sb.WriteString(fmt.Sprintf("   tags: %s\n", strings.Join(tags, ", ")))
		}
	}

	p.printBox("HARVEST RESULTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTerms outputs a numbered list of search terms.
func (p *Printer) PrintTerms(title string, terms []string) {
	var sb strings.Builder
	for i, t := range terms {
		sb.WriteString(fmt.Sprintf("%2d. %s\n", i+1, t))
	}
	if len(terms) == 0 {
		sb.WriteString("(none)\n")
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}
