package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jonathan/lead-hunter/internal/faults"
	"github.com/jonathan/lead-hunter/internal/schemas"
	"github.com/jonathan/lead-hunter/internal/types"
)

// Scraper turns a URL into a RawDocument. Implementations return a
// *faults.Error on failure.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, url string) (types.RawDocument, error)
}

// FirecrawlScraper calls a Firecrawl-compatible scrape endpoint. The local
// provider service speaks the same protocol.
type FirecrawlScraper struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

// NewFirecrawlScraper creates a scraper for endpoint.
func NewFirecrawlScraper(endpoint, apiKey string, timeout time.Duration) *FirecrawlScraper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FirecrawlScraper{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Name implements Scraper.
func (s *FirecrawlScraper) Name() string { return "firecrawl" }

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string            `json:"markdown"`
		Content  string            `json:"content"`
		Links    []json.RawMessage `json:"links"`
	} `json:"data"`
}

// Scrape implements Scraper.
func (s *FirecrawlScraper) Scrape(ctx context.Context, url string) (types.RawDocument, error) {
	const op = "scrape"
	doc := types.RawDocument{SourceURL: url}

	payload, err := json.Marshal(scrapeRequest{URL: url, Formats: []string{"markdown", "links"}})
	if err != nil {
		return doc, faults.Malformed(op, url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return doc, faults.Transport(op, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return doc, faults.Transport(op, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return doc, faults.Transport(op, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return doc, faults.Rejected(op, url, resp.StatusCode)
	}

	if err := schemas.Validate(schemas.ScrapeResponse, body); err != nil {
		return doc, faults.Malformed(op, url, err)
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return doc, faults.Malformed(op, url, err)
	}

	doc.Content = parsed.Data.Markdown
	if doc.Content == "" {
		doc.Content = parsed.Data.Content
	}
	doc.Links = NormalizeLinks(parsed.Data.Links)
	return doc, nil
}

// NormalizeLinks converts the two wire shapes a provider may use for an
// embedded link (a bare string or a {url,text} object) into types.Link.
// Entries without a URL are dropped.
func NormalizeLinks(raw []json.RawMessage) []types.Link {
	links := make([]types.Link, 0, len(raw))
	for _, item := range raw {
		var plain string
		if err := json.Unmarshal(item, &plain); err == nil {
			if plain = strings.TrimSpace(plain); plain != "" {
				links = append(links, types.PlainURL(plain))
			}
			continue
		}

		var annotated struct {
			URL  string `json:"url"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(item, &annotated); err != nil {
			continue
		}
		u := strings.TrimSpace(annotated.URL)
		if u == "" {
			continue
		}
		links = append(links, types.Annotated(u, strings.TrimSpace(annotated.Text)))
	}
	return links
}

// DirectScraper fetches pages itself and extracts text with goquery. When the
// static text is too thin and UseBrowser is set, the page is re-rendered in
// a headless browser.
type DirectScraper struct {
	Client     *http.Client
	UseBrowser bool
	Timeout    time.Duration
	Logger     *log.Logger

	// render is swapped in tests.
	render func(ctx context.Context, url string, timeout time.Duration, logger *log.Logger) (string, error)
}

// NewDirectScraper creates a direct scraper.
func NewDirectScraper(timeout time.Duration, useBrowser bool, logger *log.Logger) *DirectScraper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DirectScraper{
		Client:     &http.Client{Timeout: timeout},
		UseBrowser: useBrowser,
		Timeout:    timeout,
		Logger:     logger,
		render:     RenderHTML,
	}
}

// Name implements Scraper.
func (s *DirectScraper) Name() string { return "direct" }

// Scrape implements Scraper.
func (s *DirectScraper) Scrape(ctx context.Context, url string) (types.RawDocument, error) {
	const op = "scrape"
	doc := types.RawDocument{SourceURL: url}

	html, err := getPage(ctx, s.Client, url)
	if err != nil {
		return doc, err
	}

	platform := DetectPlatform(url)
	text, err := ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
	if err != nil {
		return doc, faults.Malformed(op, url, err)
	}

	if s.UseBrowser && ShouldUseBrowser(text) && s.render != nil {
		rendered, rerr := s.render(ctx, url, s.Timeout, s.Logger)
		if rerr == nil {
			if rtext, terr := ExtractMainText(rendered, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...); terr == nil && len(rtext) > len(text) {
				html, text = rendered, rtext
			}
		} else if s.Logger != nil {
			s.Logger.Debug("browser fallback failed", "url", url, "err", rerr)
		}
	}

	links, err := ExtractLinks(html, url)
	if err != nil {
		links = nil
	}

	doc.Content = text
	doc.Links = links
	return doc, nil
}
