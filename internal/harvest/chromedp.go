package harvest

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/lead-hunter/internal/fetch"
)

// BrowserOptions configure a live browser session.
type BrowserOptions struct {
	Headless    bool
	UserDataDir string // persistent profile so a manual login survives restarts
}

// ChromedpPage is a live Chrome tab. Queries sample the DOM once via
// OuterHTML and read it through goquery, so element reads never round-trip
// to the browser.
type ChromedpPage struct {
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewChromedpPage launches Chrome and opens one tab.
func NewChromedpPage(opts BrowserOptions) (*ChromedpPage, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(),
		fetch.AllocatorOptions(opts.Headless, opts.UserDataDir)...)
	tab, cancelTab := chromedp.NewContext(allocCtx)

	// The first Run starts the browser.
	if err := chromedp.Run(tab); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return &ChromedpPage{tab: tab, cancelTab: cancelTab, cancelAlloc: cancelAlloc}, nil
}

// run executes actions on the tab while honouring ctx's deadline and
// cancellation.
func (p *ChromedpPage) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.tab.Err() != nil {
		return sessionClosed(op, p.tab.Err())
	}

	runCtx, cancel := context.WithCancel(p.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if p.tab.Err() != nil || strings.Contains(err.Error(), "target closed") {
		return sessionClosed(op, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (p *ChromedpPage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, "chromedp.navigate", chromedp.Navigate(url), chromedp.WaitReady("body"))
}

func (p *ChromedpPage) Scroll(ctx context.Context, dy int) error {
	return p.run(ctx, "chromedp.scroll", chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", dy), nil))
}

func (p *ChromedpPage) Query(ctx context.Context, selector string) ([]Element, error) {
	var html string
	if err := p.run(ctx, "chromedp.query", chromedp.OuterHTML("html", &html)); err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse DOM sample: %w", err)
	}
	return elementsOf(doc, selector), nil
}

func (p *ChromedpPage) Alive(ctx context.Context) error {
	var n int
	if err := p.run(ctx, "chromedp.alive", chromedp.Evaluate("1+1", &n)); err != nil {
		if isClosed(err) {
			return err
		}
		return sessionClosed("chromedp.alive", err)
	}
	return nil
}

func (p *ChromedpPage) Close() error {
	p.cancelTab()
	p.cancelAlloc()
	return nil
}
