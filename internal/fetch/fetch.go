// Package fetch provides the scrape gateway: URL fetching, HTML-to-text
// processing and the scrape providers behind a paced, typed-result gateway.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/lead-hunter/internal/faults"
	"github.com/jonathan/lead-hunter/internal/types"
)

// DefaultUserAgent is sent with every direct page request.
const DefaultUserAgent = "Mozilla/5.0 (compatible; LeadHunter/1.0)"

// DefaultTimeout bounds a direct page request or a provider scrape call.
const DefaultTimeout = 30 * time.Second

// maxPageBytes bounds how much of a page body is read.
const maxPageBytes = 8 << 20

// boilerplate is removed from every page before text extraction.
var boilerplate = []string{
	"nav", "footer", "header", "script", "style", "noscript",
	".ad", ".advertisement", ".ads", ".sidebar", ".cookie-banner", ".popup",
}

// getPage downloads target and returns its body. Failures come back as
// faults: an unusable URL is Malformed, a network failure is Transport and
// any non-2xx status is Rejected.
func getPage(ctx context.Context, client *http.Client, target string) (string, error) {
	const op = "fetch"

	u, err := url.Parse(target)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", faults.Malformed(op, target, fmt.Errorf("not an absolute http(s) URL"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", faults.Malformed(op, target, err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return "", faults.Transport(op, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", faults.Rejected(op, target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", faults.Transport(op, target, err)
	}
	return string(body), nil
}

// ExtractMainText returns the visible text of the first element matching one
// of contentSelectors, or of body when none match. Boilerplate and the given
// noise selectors are stripped first. Lines are trimmed and blank lines
// dropped.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(strings.Join(boilerplate, ", ")).Remove()
	if noise := strings.Join(noiseSelectors, ", "); noise != "" {
		doc.Find(noise).Remove()
	}

	root := doc.Find("body")
	for _, sel := range contentSelectors {
		if match := doc.Find(sel); match.Length() > 0 {
			root = match.First()
			break
		}
	}

	var lines []string
	for _, line := range strings.Split(root.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// ExtractLinks returns every absolute http(s) link in the document, resolved
// against baseURL, deduplicated in document order. Anchors with visible text
// become annotated links.
func ExtractLinks(html string, baseURL string) ([]types.Link, error) {
	const op = "extract links"

	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, faults.Malformed(op, baseURL, fmt.Errorf("base URL must have scheme and host"))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, faults.Malformed(op, baseURL, err)
	}

	seen := make(map[string]bool)
	links := make([]types.Link, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""
		u := abs.String()
		if seen[u] {
			return
		}
		seen[u] = true

		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			links = append(links, types.Annotated(u, text))
		} else {
			links = append(links, types.PlainURL(u))
		}
	})

	return links, nil
}
