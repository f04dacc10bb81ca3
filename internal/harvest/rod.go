package harvest

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodPage is a live browser tab driven by rod. Element reads go to the
// browser and are bounded by the caller's context.
type RodPage struct {
	browser *rod.Browser
	page    *rod.Page
}

// NewRodPage launches a browser and opens a blank tab.
func NewRodPage(ctx context.Context, opts BrowserOptions) (*RodPage, error) {
	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled")
	if opts.UserDataDir != "" {
		l = l.UserDataDir(opts.UserDataDir)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return &RodPage{browser: browser, page: page}, nil
}

func classify(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	msg := err.Error()
	if strings.Contains(msg, "target closed") || strings.Contains(msg, "No target with given id") ||
		strings.Contains(msg, "use of closed network connection") {
		return sessionClosed(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (p *RodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return classify(ctx, "rod.navigate", err)
	}
	return classify(ctx, "rod.navigate", page.WaitLoad())
}

func (p *RodPage) Scroll(ctx context.Context, dy int) error {
	_, err := p.page.Context(ctx).Eval(`(dy) => window.scrollBy(0, dy)`, dy)
	return classify(ctx, "rod.scroll", err)
}

func (p *RodPage) Query(ctx context.Context, selector string) ([]Element, error) {
	found, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, classify(ctx, "rod.query", err)
	}
	out := make([]Element, 0, len(found))
	for _, el := range found {
		out = append(out, rodElement{el: el})
	}
	return out, nil
}

func (p *RodPage) Alive(ctx context.Context) error {
	if _, err := p.page.Context(ctx).Eval(`() => 1 + 1`); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return sessionClosed("rod.alive", err)
	}
	return nil
}

func (p *RodPage) Close() error {
	return p.browser.Close()
}

type rodElement struct {
	el *rod.Element
}

func (e rodElement) matches(ctx context.Context, selector string) (rod.Elements, error) {
	if selector == "" {
		return rod.Elements{e.el}, nil
	}
	found, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, classify(ctx, "rod.element", err)
	}
	return found, nil
}

func (e rodElement) Text(ctx context.Context, selector string) (string, error) {
	found, err := e.matches(ctx, selector)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", ErrNoMatch
	}
	text, err := found[0].Context(ctx).Text()
	if err != nil {
		return "", classify(ctx, "rod.text", err)
	}
	return strings.TrimSpace(text), nil
}

func (e rodElement) Texts(ctx context.Context, selector string) ([]string, error) {
	found, err := e.matches(ctx, selector)
	if err != nil {
		return nil, err
	}
	var texts []string
	for _, el := range found {
		text, err := el.Context(ctx).Text()
		if err != nil {
			return texts, classify(ctx, "rod.text", err)
		}
		if t := strings.TrimSpace(text); t != "" {
			texts = append(texts, t)
		}
	}
	return texts, nil
}

func (e rodElement) Attr(ctx context.Context, selector, name string) (string, error) {
	found, err := e.matches(ctx, selector)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", ErrNoMatch
	}
	v, err := found[0].Context(ctx).Attribute(name)
	if err != nil {
		return "", classify(ctx, "rod.attr", err)
	}
	if v == nil {
		return "", ErrNoMatch
	}
	return strings.TrimSpace(*v), nil
}
