package rendering

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/jonathan/lead-hunter/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var tableTemplate = template.Must(template.ParseFS(templateFS, "templates/table.html.tmpl"))

type tableRow struct {
	Rank       int
	Term       string
	TotalLikes int
	Cover      string
	Link       string
	Tags       []types.TagCount
}

type tableData struct {
	Title     string
	Generated string
	Rows      []tableRow
}

// HTMLTable renders ranked categories as an HTML table with rank, term,
// total likes, the top post's image and link, and the top tags.
func HTMLTable(title string, cats []types.AggregatedCategory, prefix string, now time.Time) (Report, error) {
	data := tableData{Title: title, Generated: now.Format("2006-01-02 15:04")}
	for i, c := range cats {
		row := tableRow{Rank: i + 1, Term: c.Term, TotalLikes: c.TotalLikes, Tags: c.TagCloud}
		if c.TopPost != nil {
			row.Cover = c.TopPost.CoverURL
			row.Link = c.TopPost.Link
		}
		data.Rows = append(data.Rows, row)
	}

	var out strings.Builder
	if err := tableTemplate.Execute(&out, data); err != nil {
		return Report{}, &TemplateError{Message: "failed to execute table template", Cause: err}
	}

	return Report{
		Filename: Filename(prefix, "html", now),
		Format:   FormatHTML,
		Sections: []Section{{Body: out.String()}},
	}, nil
}
