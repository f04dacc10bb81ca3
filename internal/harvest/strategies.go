package harvest

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/lead-hunter/internal/types"
)

// Field names recorded in PostRecord.Partial.
const (
	FieldTitle = "title"
	FieldLikes = "likes"
	FieldCover = "cover"
	FieldLink  = "link"
)

// strategy reads one candidate value from a container.
type strategy func(ctx context.Context, el Element) (string, error)

// textOf reads the text of the first match.
func textOf(selector string) strategy {
	return func(ctx context.Context, el Element) (string, error) {
		return el.Text(ctx, selector)
	}
}

// attrOf reads an attribute of the first match.
func attrOf(selector, name string) strategy {
	return func(ctx context.Context, el Element) (string, error) {
		return el.Attr(ctx, selector, name)
	}
}

// digitsIn returns the first match whose text contains a digit.
func digitsIn(selector string) strategy {
	return func(ctx context.Context, el Element) (string, error) {
		texts, err := el.Texts(ctx, selector)
		if err != nil {
			return "", err
		}
		for _, t := range texts {
			if hasDigit(t) {
				return t, nil
			}
		}
		return "", ErrNoMatch
	}
}

var (
	titleChain = []strategy{textOf("span.title"), textOf(".footer .title")}
	likesChain = []strategy{
		digitsIn(".count"),
		digitsIn("svg + *"),
		digitsIn("[class*='like'], [class*='heart']"),
	}
	coverChain = []strategy{attrOf("img.cover", "src"), attrOf("img", "src")}
	linkChain  = []strategy{attrOf("a", "href")}
)

// tagSelector matches explicit tag chips on a card.
const tagSelector = ".tag, a.tag"

// firstOf runs the strategies in order, each under its own deadline, and
// returns the first non-empty value. An error from a closed session is
// returned so the caller can stop.
func firstOf(ctx context.Context, timeout time.Duration, el Element, chain []strategy) (string, error) {
	for _, s := range chain {
		v, err := runBounded(ctx, timeout, el, s)
		if err != nil {
			if isClosed(err) || ctx.Err() != nil {
				return "", err
			}
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return "", nil
}

func runBounded(ctx context.Context, timeout time.Duration, el Element, s strategy) (string, error) {
	if timeout <= 0 {
		return s(ctx, el)
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s(sctx, el)
}

// readRecord applies every fallback chain to one container. Fields that fall
// back to their zero value are listed in Partial.
func (h *Harvester) readRecord(ctx context.Context, el Element) (types.PostRecord, error) {
	var rec types.PostRecord
	timeout := h.opts.StrategyTimeout

	title, err := firstOf(ctx, timeout, el, titleChain)
	if err != nil {
		return rec, err
	}
	rec.Title = title

	likes, err := firstOf(ctx, timeout, el, likesChain)
	if err != nil {
		return rec, err
	}
	rec.Likes = NormalizeCount(likes)

	cover, err := firstOf(ctx, timeout, el, coverChain)
	if err != nil {
		return rec, err
	}
	rec.CoverURL = cover

	link, err := firstOf(ctx, timeout, el, linkChain)
	if err != nil {
		return rec, err
	}
	rec.Link = h.absolute(link)

	rec.Tags = h.readTags(ctx, el, rec.Title)

	if rec.Title == "" {
		rec.Partial = append(rec.Partial, FieldTitle)
	}
	if likes == "" {
		rec.Partial = append(rec.Partial, FieldLikes)
	}
	if rec.CoverURL == "" {
		rec.Partial = append(rec.Partial, FieldCover)
	}
	if rec.Link == "" {
		rec.Partial = append(rec.Partial, FieldLink)
	}
	return rec, nil
}

func (h *Harvester) readTags(ctx context.Context, el Element, title string) []string {
	var tags []string
	seen := make(map[string]bool)
	add := func(tag string) {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	tctx := ctx
	if h.opts.StrategyTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, h.opts.StrategyTimeout)
		defer cancel()
	}
	if chips, err := el.Texts(tctx, tagSelector); err == nil {
		for _, c := range chips {
			add(c)
		}
	}
	for _, t := range Hashtags(title) {
		add(t)
	}
	return tags
}

// absolute prefixes a relative link with the site origin.
func (h *Harvester) absolute(link string) string {
	switch {
	case link == "":
		return ""
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	case strings.HasPrefix(link, "//"):
		return "https:" + link
	}
	base := strings.TrimRight(h.opts.BaseURL, "/")
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return base + link
}
