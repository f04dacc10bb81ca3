// Package verdict classifies scraped documents as relevant or not.
package verdict

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jonathan/lead-hunter/internal/llm"
	"github.com/jonathan/lead-hunter/internal/metrics"
	"github.com/jonathan/lead-hunter/internal/observability"
	"github.com/jonathan/lead-hunter/internal/prompts"
	"github.com/jonathan/lead-hunter/internal/types"
)

// MaxContentRunes bounds the material sent to the classifier.
const MaxContentRunes = 4000

// DefaultPositiveToken is the classifier reply that marks a document valid.
const DefaultPositiveToken = "VALID_LEAD"

// Validator is a fail-closed binary classifier. Anything other than the
// positive token, including a classifier error, is Invalid.
type Validator struct {
	client  llm.Client
	token   string
	metrics *metrics.Metrics
	logger  *log.Logger
}

// New creates a validator. An empty token uses DefaultPositiveToken.
func New(client llm.Client, token string, m *metrics.Metrics, logger *log.Logger) *Validator {
	if token == "" {
		token = DefaultPositiveToken
	}
	if logger == nil {
		logger = observability.Discard()
	}
	return &Validator{client: client, token: token, metrics: m, logger: logger.WithPrefix("verdict")}
}

// Validate classifies doc for category. Empty content is Invalid without a
// classifier call.
func (v *Validator) Validate(ctx context.Context, category string, doc types.RawDocument) types.Verdict {
	verdict := v.classify(ctx, category, doc)
	v.metrics.ObserveVerdict(string(verdict))
	return verdict
}

func (v *Validator) classify(ctx context.Context, category string, doc types.RawDocument) types.Verdict {
	if doc.Empty() {
		return types.VerdictInvalid
	}

	system := prompts.Hunter("validate-system", map[string]string{
		"Category": category,
		"Token":    v.token,
	})
	reply, err := v.client.Complete(ctx, llm.Request{
		System: system,
		User:   llm.Truncate(doc.Content, MaxContentRunes),
		Tier:   llm.TierLite,
	})
	if err != nil {
		v.logger.Warn("classifier failed, rejecting", "url", doc.SourceURL, "err", err)
		return types.VerdictInvalid
	}

	if strings.EqualFold(strings.TrimSpace(reply), v.token) {
		return types.VerdictValid
	}
	v.logger.Debug("rejected", "url", doc.SourceURL, "reply", llm.Truncate(reply, 40))
	return types.VerdictInvalid
}
