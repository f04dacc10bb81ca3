package search

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/lead-hunter/internal/faults"
	"github.com/jonathan/lead-hunter/internal/schemas"
	"github.com/jonathan/lead-hunter/internal/types"
)

// DefaultSerperEndpoint is the Serper search API.
const DefaultSerperEndpoint = "https://google.serper.dev/search"

// serperSections are read in this order; each link records its section.
var serperSections = []string{"organic", "news", "videos"}

// Serper is the default search provider.
type Serper struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

// NewSerper creates a Serper provider.
func NewSerper(endpoint, apiKey string, timeout time.Duration) *Serper {
	if endpoint == "" {
		endpoint = DefaultSerperEndpoint
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Serper{Endpoint: endpoint, APIKey: apiKey, Client: &http.Client{Timeout: timeout}}
}

// Name implements Provider.
func (s *Serper) Name() string { return "serper" }

type serperItem struct {
	Link  string `json:"link"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Search implements Provider.
func (s *Serper) Search(ctx context.Context, query string, n int) ([]types.CandidateLink, error) {
	const op = "search"

	payload, err := json.Marshal(map[string]interface{}{"q": query, "num": n})
	if err != nil {
		return nil, faults.Malformed(op, s.Endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, faults.Transport(op, s.Endpoint, err)
	}
	req.Header.Set("X-API-KEY", s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, faults.Transport(op, s.Endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.Transport(op, s.Endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, faults.Rejected(op, s.Endpoint, resp.StatusCode)
	}

	if err := schemas.Validate(schemas.SearchResponse, body); err != nil {
		return nil, faults.Malformed(op, s.Endpoint, err)
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(body, &sections); err != nil {
		return nil, faults.Malformed(op, s.Endpoint, err)
	}

	links := make([]types.CandidateLink, 0)
	for _, section := range serperSections {
		raw, ok := sections[section]
		if !ok {
			continue
		}
		var items []serperItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, faults.Malformed(op, s.Endpoint, err)
		}
		for _, it := range items {
			link := strings.TrimSpace(it.Link)
			if link == "" {
				link = strings.TrimSpace(it.URL)
			}
			if link == "" {
				continue
			}
			links = append(links, types.CandidateLink{
				URL:     link,
				Title:   it.Title,
				Section: section,
				Order:   len(links),
			})
		}
	}
	return links, nil
}
