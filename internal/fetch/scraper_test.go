package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-hunter/internal/faults"
	"github.com/jonathan/lead-hunter/internal/types"
)

func TestFirecrawlScraper_Success(t *testing.T) {
	var gotAuth string
	var gotBody scrapeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"markdown": "# Fish-Speech\nclone a voice",
				"links": [
					"https://github.com/fishaudio/fish-speech",
					{"url": "https://huggingface.co/spaces/fishaudio/fish-speech", "text": "Live demo"},
					{"text": "no url"},
					""
				]
			}
		}`))
	}))
	defer server.Close()

	s := NewFirecrawlScraper(server.URL, "fc-key", time.Second)
	doc, err := s.Scrape(context.Background(), "https://www.v2ex.com/t/1")
	require.NoError(t, err)

	assert.Equal(t, "Bearer fc-key", gotAuth)
	assert.Equal(t, "https://www.v2ex.com/t/1", gotBody.URL)
	assert.Equal(t, []string{"markdown", "links"}, gotBody.Formats)

	assert.Equal(t, "https://www.v2ex.com/t/1", doc.SourceURL)
	assert.Equal(t, "# Fish-Speech\nclone a voice", doc.Content)
	assert.Equal(t, []types.Link{
		types.PlainURL("https://github.com/fishaudio/fish-speech"),
		types.Annotated("https://huggingface.co/spaces/fishaudio/fish-speech", "Live demo"),
	}, doc.Links)
}

func TestFirecrawlScraper_ContentFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"markdown": null, "content": "plain text body", "links": null}}`))
	}))
	defer server.Close()

	doc, err := NewFirecrawlScraper(server.URL, "", time.Second).Scrape(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "plain text body", doc.Content)
	assert.Empty(t, doc.Links)
}

func TestFirecrawlScraper_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind faults.Kind
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantKind: faults.UpstreamRejected},
		{name: "server error", status: http.StatusBadGateway, body: `oops`, wantKind: faults.UpstreamRejected},
		{name: "missing data", status: http.StatusOK, body: `{"success": false}`, wantKind: faults.MalformedResponse},
		{name: "not json", status: http.StatusOK, body: `<html></html>`, wantKind: faults.MalformedResponse},
		{name: "wrong link shape", status: http.StatusOK, body: `{"data": {"links": [42]}}`, wantKind: faults.MalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			doc, err := NewFirecrawlScraper(server.URL, "", time.Second).Scrape(context.Background(), "https://example.com/a")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, faults.KindOf(err))
			assert.True(t, doc.Empty())
			assert.Equal(t, "https://example.com/a", doc.SourceURL)
		})
	}
}

func TestFirecrawlScraper_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	endpoint := server.URL
	server.Close()

	_, err := NewFirecrawlScraper(endpoint, "", time.Second).Scrape(context.Background(), "https://example.com")
	assert.True(t, faults.Is(err, faults.TransportError))
}

func TestScraperTimeouts(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{name: "unset uses default", timeout: 0, want: DefaultTimeout},
		{name: "negative uses default", timeout: -time.Second, want: DefaultTimeout},
		{name: "explicit", timeout: 5 * time.Second, want: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFirecrawlScraper("http://provider.test/scrape", "", tt.timeout).Client.Timeout)
			assert.Equal(t, tt.want, NewDirectScraper(tt.timeout, false, nil).Client.Timeout)
		})
	}
}

func TestNormalizeLinks(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`" https://a.example "`),
		json.RawMessage(`{"url": "https://b.example", "text": " Try it "}`),
		json.RawMessage(`{"url": "https://c.example"}`),
		json.RawMessage(`{"url": ""}`),
		json.RawMessage(`[1, 2]`),
	}

	assert.Equal(t, []types.Link{
		types.PlainURL("https://a.example"),
		types.Annotated("https://b.example", "Try it"),
		types.Annotated("https://c.example", ""),
	}, NormalizeLinks(raw))
}

func TestDirectScraper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><nav>menu</nav><main>
			<p>GPT-SoVITS review</p>
			<a href="https://github.com/RVC-Boss/GPT-SoVITS">Repo</a>
		</main></body></html>`))
	}))
	defer server.Close()

	s := NewDirectScraper(time.Second, false, nil)
	doc, err := s.Scrape(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "GPT-SoVITS review")
	assert.NotContains(t, doc.Content, "menu")
	assert.Equal(t, []types.Link{types.Annotated("https://github.com/RVC-Boss/GPT-SoVITS", "Repo")}, doc.Links)
}

func TestDirectScraper_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	doc, err := NewDirectScraper(time.Second, false, nil).Scrape(context.Background(), server.URL)
	require.Error(t, err)

	var fe *faults.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, faults.UpstreamRejected, fe.Kind)
	assert.Equal(t, http.StatusNotFound, fe.Status)
	assert.True(t, doc.Empty())
}

func TestDirectScraper_BrowserFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root"></div></body></html>`))
	}))
	defer server.Close()

	rendered := "<html><body><main>" + strings.Repeat("rendered text ", 50) + "</main></body></html>"
	calls := 0
	s := NewDirectScraper(time.Second, true, nil)
	s.render = func(_ context.Context, _ string, _ time.Duration, _ *log.Logger) (string, error) {
		calls++
		return rendered, nil
	}

	doc, err := s.Scrape(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, doc.Content, "rendered text")
}
