package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/lead-hunter/internal/config"
	"github.com/jonathan/lead-hunter/internal/llm"
	"github.com/jonathan/lead-hunter/internal/prompts"
	"github.com/jonathan/lead-hunter/internal/types"
)

// FeasibilityError reports a feasibility run that produced no table.
type FeasibilityError struct {
	Message string
	Cause   error
}

func (e *FeasibilityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("feasibility: %s: %v", e.Message, e.Cause)
	}
	return "feasibility: " + e.Message
}

func (e *FeasibilityError) Unwrap() error {
	return e.Cause
}

// GatherLinks runs every query on the worker pool and merges the links in
// query order, dropping repeats, up to limit.
func (h *Hunter) GatherLinks(ctx context.Context, queries []types.Query, budget, limit int) []string {
	perQuery := make([][]types.CandidateLink, len(queries))
	var g errgroup.Group
	g.SetLimit(h.deps.Policy.Workers)
	for i, q := range queries {
		g.Go(func() error {
			perQuery[i] = h.deps.Search.Search(ctx, q, budget).Links
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool)
	links := make([]string, 0, limit)
	for _, batch := range perQuery {
		for _, l := range batch {
			if len(links) >= limit {
				return links
			}
			if seen[l.URL] {
				continue
			}
			seen[l.URL] = true
			links = append(links, l.URL)
		}
	}
	return links
}

// FilterSites keeps links whose host is one of sites or a subdomain of one.
func FilterSites(links []string, sites []string) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		parsed, err := url.Parse(l)
		if err != nil {
			continue
		}
		host := strings.ToLower(parsed.Hostname())
		for _, s := range sites {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" && (host == s || strings.HasSuffix(host, "."+s)) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// GatherDocuments scrapes urls on the worker pool and returns the documents
// with content, in input order.
func (h *Hunter) GatherDocuments(ctx context.Context, urls []string) []types.RawDocument {
	docs := make([]types.RawDocument, len(urls))
	var g errgroup.Group
	g.SetLimit(h.deps.Policy.Workers)
	for i, u := range urls {
		g.Go(func() error {
			if res := h.deps.Scrape.Scrape(ctx, u); res.Err == nil {
				docs[i] = res.Doc
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]types.RawDocument, 0, len(docs))
	for _, d := range docs {
		if !d.Empty() {
			out = append(out, d)
		}
	}
	return out
}

// JoinMaterial concatenates up to maxDocs documents, each truncated to
// perDoc runes and headed by its source URL.
func JoinMaterial(docs []types.RawDocument, perDoc, maxDocs int) string {
	parts := make([]string, 0, maxDocs)
	for _, d := range docs {
		if len(parts) >= maxDocs {
			break
		}
		parts = append(parts, fmt.Sprintf("URL: %s\n\n%s", d.SourceURL, llm.Truncate(d.Content, perDoc)))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// Feasibility gathers site-filtered material for queries and asks the LLM
// for a markdown comparison table.
func (h *Hunter) Feasibility(ctx context.Context, queries []types.Query, cfg config.FeasibilityConfig, protocol string) (string, error) {
	if h.deps.Completer == nil {
		return "", &FeasibilityError{Message: "no LLM client configured"}
	}

	links := h.GatherLinks(ctx, queries, h.deps.Policy.InitialBudget, cfg.LinkLimit)
	h.logger.Info("gathered links", "count", len(links))
	if len(links) == 0 {
		return "", &FeasibilityError{Message: "no links found"}
	}

	filtered := FilterSites(links, cfg.Sites)
	if len(filtered) == 0 {
		return "", &FeasibilityError{Message: "no links on " + strings.Join(cfg.Sites, ", ")}
	}

	docs := h.GatherDocuments(ctx, filtered)
	h.logger.Info("gathered documents", "count", len(docs))
	if len(docs) == 0 {
		return "", &FeasibilityError{Message: "no page content retrieved"}
	}

	table, err := h.deps.Completer.Complete(ctx, llm.Request{
		System: prompts.Hunter("feasibility-system", map[string]string{"Protocol": protocol}),
		User:   JoinMaterial(docs, cfg.PerDoc, cfg.MaxDocs),
		Tier:   llm.TierAdvanced,
	})
	if err != nil {
		return "", &FeasibilityError{Message: "table generation failed", Cause: err}
	}
	table = llm.StripCodeFence(table)
	if table == "" {
		return "", &FeasibilityError{Message: "empty table"}
	}
	return table, nil
}
