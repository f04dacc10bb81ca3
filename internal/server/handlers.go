package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonathan/lead-hunter/internal/fetch"
	"github.com/jonathan/lead-hunter/internal/schemas"
)

// maxRequestBody bounds the /scrape request body.
const maxRequestBody = 64 << 10

// ScrapeRequest represents the request body for /scrape
type ScrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats,omitempty"`
}

// ScrapeLink is one link of the rendered page.
type ScrapeLink struct {
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
}

// ScrapeData is the payload of a successful scrape.
type ScrapeData struct {
	Markdown string       `json:"markdown"`
	Links    []ScrapeLink `json:"links"`
}

// ScrapeResponse represents the response for /scrape
type ScrapeResponse struct {
	Success bool        `json:"success"`
	Data    *ScrapeData `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// handleScrape renders the requested page and returns its main text and links.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	req, err := decodeScrapeRequest(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	data, err := s.scrape(r.Context(), req.URL)
	if err != nil {
		s.logger.Warn("scrape failed", "url", req.URL, "err", err)
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ScrapeResponse{Success: true, Data: data})
}

func decodeScrapeRequest(r *http.Request) (ScrapeRequest, error) {
	var req ScrapeRequest

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return req, &ErrValidation{Field: "body", Message: err.Error()}
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := schemas.Validate(schemas.ScrapeRequest, body); err != nil {
		return req, &ErrValidation{Field: "url", Message: err.Error()}
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return req, &ErrValidation{Field: "url", Message: "url is required"}
	}
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return req, &ErrValidation{Field: "url", Message: "url must be an absolute http(s) URL"}
	}
	return req, nil
}

// scrape waits for a render slot, renders pageURL and extracts its content.
func (s *Server) scrape(ctx context.Context, pageURL string) (*ScrapeData, error) {
	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	html, err := s.render(ctx, pageURL, s.renderTimeout, s.logger)
	if err != nil {
		return nil, &ErrRender{URL: pageURL, Cause: err}
	}

	platform := fetch.DetectPlatform(pageURL)
	text, err := fetch.ExtractMainText(html, fetch.PlatformContentSelectors(platform), fetch.PlatformNoiseSelectors(platform)...)
	if err != nil {
		return nil, &ErrRender{URL: pageURL, Cause: err}
	}

	data := &ScrapeData{Markdown: text, Links: []ScrapeLink{}}
	links, err := fetch.ExtractLinks(html, pageURL)
	if err != nil {
		s.logger.Debug("link extraction failed", "url", pageURL, "err", err)
		return data, nil
	}
	for _, l := range links {
		data.Links = append(data.Links, ScrapeLink{URL: l.URL, Text: l.Text})
	}
	return data, nil
}
