package rendering

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Format is the serialization of a report.
type Format string

const (
	// FormatMarp is a Marp slide deck: front matter plus "---" separated pages
	FormatMarp Format = "marp"
	// FormatMarkdown is a plain markdown document
	FormatMarkdown Format = "markdown"
	// FormatHTML is a standalone HTML document
	FormatHTML Format = "html"
)

// Section is one page of a slide deck or one block of a document.
type Section struct {
	Heading string
	Level   int // heading depth; 0 means 1
	Body    string
}

func (s Section) render() string {
	if s.Heading == "" {
		return s.Body
	}
	level := s.Level
	if level < 1 {
		level = 1
	}
	head := strings.Repeat("#", level) + " " + s.Heading
	if s.Body == "" {
		return head
	}
	return head + "\n\n" + s.Body
}

// Report is an ordered list of sections ready to be written.
type Report struct {
	Filename    string
	Format      Format
	FrontMatter string
	Sections    []Section
}

// Content serializes the report.
func (r Report) Content() string {
	parts := make([]string, len(r.Sections))
	for i, s := range r.Sections {
		parts[i] = s.render()
	}

	switch r.Format {
	case FormatMarp:
		return r.FrontMatter + "\n\n" + strings.Join(parts, "\n\n---\n\n") + "\n"
	case FormatHTML:
		return strings.Join(parts, "\n")
	default:
		body := strings.Join(parts, "\n\n") + "\n"
		if r.FrontMatter != "" {
			return r.FrontMatter + "\n\n" + body
		}
		return body
	}
}

// TimestampLayout is the layout embedded in report filenames.
const TimestampLayout = "20060102-150405"

// Filename builds "<prefix>_<YYYYMMDD-HHMMSS>.<ext>".
func Filename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format(TimestampLayout), strings.TrimPrefix(ext, "."))
}

// WriteFile writes the report into dir, creating it if needed, and returns
// the written path.
func WriteFile(dir string, r Report) (string, error) {
	if r.Filename == "" {
		return "", &RenderError{Message: "report has no filename"}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &RenderError{Message: fmt.Sprintf("failed to create output directory %s", dir), Cause: err}
	}

	path := filepath.Join(dir, r.Filename)
	if err := os.WriteFile(path, []byte(r.Content()), 0o644); err != nil {
		return "", &RenderError{Message: fmt.Sprintf("failed to write report %s", path), Cause: err}
	}
	return path, nil
}
