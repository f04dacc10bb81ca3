// Package extract turns a validated document into a Lead: it picks the best
// preview link and asks the LLM for the problem, metric and audit fields.
package extract

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/lead-hunter/internal/fetch"
	"github.com/jonathan/lead-hunter/internal/llm"
	"github.com/jonathan/lead-hunter/internal/observability"
	"github.com/jonathan/lead-hunter/internal/prompts"
	"github.com/jonathan/lead-hunter/internal/types"
)

// Content budgets, in runes, for each summarization call.
const (
	ProblemRunes = 6000
	MetricRunes  = 4000
	AuditRunes   = 8000
)

// Outcome reports what Extract did with a document.
type Outcome string

const (
	// OutcomeExtracted means a lead was produced
	OutcomeExtracted Outcome = "extracted"
	// OutcomeDiscarded means the document was a listing page without a preview
	OutcomeDiscarded Outcome = "discarded"
)

// previewKeywords mark anchor text that points at something runnable.
var previewKeywords = []string{"demo", "try", "live", "playground", "example"}

// listingTerms mark aggregator pages.
var listingTerms = []string{"awesome", "资源列表", "合集", "目录", "列表"}

// ScorePreview rates how likely a link leads to a runnable preview.
func ScorePreview(link types.Link) int {
	score := 0
	text := strings.ToLower(link.Text)
	for _, k := range previewKeywords {
		if strings.Contains(text, k) {
			score += 5
			break
		}
	}

	u := strings.ToLower(link.URL)
	if strings.Contains(u, "huggingface.co/spaces") {
		score += 4
	}
	if strings.Contains(u, "github.com") && strings.Count(link.URL, "/") >= 4 {
		score += 3
	}
	if strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be") {
		score += 2
	}
	return score
}

// PickPreview returns the highest-scoring link URL. Ties go to the first
// seen; no positive score gives "".
func PickPreview(links []types.Link) string {
	best, bestScore := "", 0
	for _, l := range links {
		if s := ScorePreview(l); s > bestScore {
			best, bestScore = l.URL, s
		}
	}
	return best
}

// IsListing reports whether content looks like an aggregator page.
func IsListing(content string) bool {
	lower := strings.ToLower(content)
	for _, term := range listingTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Extractor builds leads from validated documents.
type Extractor struct {
	client   llm.Client
	protocol string
	logger   *log.Logger
}

// New creates an extractor. protocol is the audit protocol text used as the
// system instruction for the problem and audit calls.
func New(client llm.Client, protocol string, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Extractor{client: client, protocol: protocol, logger: logger.WithPrefix("extract")}
}

// Extract builds a lead from doc. The three summarization calls run
// concurrently and a failed call leaves its field empty.
func (e *Extractor) Extract(ctx context.Context, doc types.RawDocument) (*types.Lead, Outcome) {
	preview := PickPreview(doc.Links)
	if preview == "" {
		if IsListing(doc.Content) {
			e.logger.Debug("discarding listing page", "url", doc.SourceURL)
			return nil, OutcomeDiscarded
		}
		if fetch.IsDemoOrCodeHost(doc.SourceURL) {
			preview = doc.SourceURL
		}
	}

	lead := &types.Lead{
		ID:         uuid.NewString(),
		SourceURL:  doc.SourceURL,
		PreviewURL: preview,
	}

	protocol := map[string]string{"Protocol": e.protocol}
	var g errgroup.Group
	g.Go(func() error {
		lead.Problem = e.complete(ctx, "problem", llm.Request{
			System: prompts.Hunter("problem-system", protocol),
			User:   llm.Truncate(doc.Content, ProblemRunes),
			Tier:   llm.TierStandard,
		})
		return nil
	})
	g.Go(func() error {
		lead.Metric = e.complete(ctx, "metric", llm.Request{
			System: prompts.Hunter("metric-system", nil),
			User:   llm.Truncate(doc.Content, MetricRunes),
			Tier:   llm.TierStandard,
		})
		return nil
	})
	g.Go(func() error {
		lead.Audit = e.complete(ctx, "audit", llm.Request{
			System: prompts.Hunter("audit-system", protocol),
			User: prompts.Hunter("audit-user", map[string]string{
				"SourceURL": doc.SourceURL,
				"Content":   llm.Truncate(doc.Content, AuditRunes),
			}),
			Tier: llm.TierAdvanced,
		})
		return nil
	})
	_ = g.Wait()

	return lead, OutcomeExtracted
}

func (e *Extractor) complete(ctx context.Context, field string, req llm.Request) string {
	text, err := e.client.Complete(ctx, req)
	if err != nil {
		e.logger.Warn("summarization failed", "field", field, "err", err)
		return ""
	}
	return strings.TrimSpace(text)
}
