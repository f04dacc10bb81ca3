package rendering

import (
	"fmt"
	"strings"
	"time"
)

// Feasibility wraps an LLM-produced markdown table in a document.
func Feasibility(title, table string, now time.Time) (Report, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return Report{}, &RenderError{Message: "feasibility table is empty"}
	}

	return Report{
		Filename: Filename("feasibility_table", "md", now),
		Format:   FormatMarkdown,
		Sections: []Section{
			{
				Heading: EscapeInline(title),
				Body:    fmt.Sprintf("Generated %s.", now.Format("2006-01-02 15:04")),
			},
			{Body: table},
		},
	}, nil
}
