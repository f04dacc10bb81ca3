package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// selectionElement reads a goquery selection. It backs both the snapshot
// page and the DOM samples taken by the chromedp page.
type selectionElement struct {
	sel *goquery.Selection
}

func (e selectionElement) find(selector string) *goquery.Selection {
	if selector == "" {
		return e.sel
	}
	return e.sel.Find(selector)
}

func (e selectionElement) Text(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	match := e.find(selector).First()
	if match.Length() == 0 {
		return "", ErrNoMatch
	}
	return strings.TrimSpace(match.Text()), nil
}

func (e selectionElement) Texts(ctx context.Context, selector string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var texts []string
	e.find(selector).Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			texts = append(texts, t)
		}
	})
	return texts, nil
}

func (e selectionElement) Attr(ctx context.Context, selector, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, ok := e.find(selector).First().Attr(name)
	if !ok {
		return "", ErrNoMatch
	}
	return strings.TrimSpace(v), nil
}

func elementsOf(doc *goquery.Document, selector string) []Element {
	var out []Element
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, selectionElement{sel: s})
	})
	return out
}

// SnapshotPage replays recorded HTML frames. Navigate shows the first
// frame and each scroll moves one frame forward, staying on the last one.
type SnapshotPage struct {
	mu           sync.Mutex
	frames       []*goquery.Document
	interstitial *goquery.Document
	cursor       int
	scrolls      int
	closeAfter   int
	closed       bool
	navigations  []string
}

// NewSnapshotPage parses frames into a replayable page.
func NewSnapshotPage(frames ...string) (*SnapshotPage, error) {
	if len(frames) == 0 {
		return nil, errors.New("snapshot page needs at least one frame")
	}
	p := &SnapshotPage{}
	for i, html := range frames {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, fmt.Errorf("failed to parse frame %d: %w", i, err)
		}
		p.frames = append(p.frames, doc)
	}
	return p, nil
}

// SetInterstitial shows html in place of the frames until it is cleared
// with an empty string. It models a login wall.
func (p *SnapshotPage) SetInterstitial(html string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if html == "" {
		p.interstitial = nil
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse interstitial: %w", err)
	}
	p.interstitial = doc
	return nil
}

// CloseAfter makes the session report closed once n scrolls have happened.
func (p *SnapshotPage) CloseAfter(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeAfter = n
}

// Navigations returns every URL passed to Navigate.
func (p *SnapshotPage) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

func (p *SnapshotPage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return sessionClosed("snapshot.navigate", nil)
	}
	p.navigations = append(p.navigations, url)
	p.cursor = 0
	return ctx.Err()
}

func (p *SnapshotPage) Scroll(ctx context.Context, dy int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return sessionClosed("snapshot.scroll", nil)
	}
	p.scrolls++
	if p.cursor < len(p.frames)-1 {
		p.cursor++
	}
	if p.closeAfter > 0 && p.scrolls >= p.closeAfter {
		p.closed = true
	}
	return ctx.Err()
}

func (p *SnapshotPage) Query(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, sessionClosed("snapshot.query", nil)
	}
	doc := p.frames[p.cursor]
	if p.interstitial != nil {
		doc = p.interstitial
	}
	return elementsOf(doc, selector), nil
}

func (p *SnapshotPage) Alive(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return sessionClosed("snapshot.alive", nil)
	}
	return nil
}

func (p *SnapshotPage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
