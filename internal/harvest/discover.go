package harvest

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DiscoverTerms samples titles from the seed keyword's results and returns
// the most frequent words as search terms, padded with the configured
// fallback terms. The terms are surfaced to confirmer in the
// AwaitingConfirmation state before they are returned; a collection failure
// falls back to the configured terms.
func (h *Harvester) DiscoverTerms(ctx context.Context, seedKeyword string, confirmer Confirmer) ([]string, error) {
	if confirmer == nil {
		confirmer = AutoConfirm
	}

	run := h.Start(seedKeyword)
	run.mode = collectTitles
	err := h.drive(ctx, run, confirmer)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	var terms []string
	if err != nil {
		h.logger.Warn("title sampling failed, using fallback terms", "error", err)
		terms = padTerms(nil, h.opts.FallbackTerms, h.opts.TermCount)
	} else {
		h.logger.Info("sampled titles", "keyword", seedKeyword, "titles", len(run.titles))
		terms = RankTerms(run.titles, h.opts.Stopwords, h.opts.TermCount)
		terms = padTerms(terms, h.opts.FallbackTerms, h.opts.TermCount)
	}

	prompt := Prompt{State: AwaitingConfirmation, Term: seedKeyword, Terms: terms}
	if err := confirmer.Confirm(ctx, prompt); err != nil {
		return nil, err
	}
	return terms, nil
}

// RankTerms splits titles on whitespace, keeps letters and digits, drops
// stopwords and single-rune words, and returns up to n words by descending
// frequency. Ties keep first-seen order.
func RankTerms(titles, stopwords []string, n int) []string {
	stop := make(map[string]bool, len(stopwords))
	for _, w := range stopwords {
		stop[w] = true
	}

	counts := make(map[string]int)
	var order []string
	for _, title := range titles {
		for _, word := range strings.Fields(title) {
			cleaned := strings.Map(func(r rune) rune {
				if unicode.IsLetter(r) || unicode.IsDigit(r) {
					return r
				}
				return -1
			}, word)
			if utf8.RuneCountInString(cleaned) < 2 || stop[cleaned] {
				continue
			}
			if counts[cleaned] == 0 {
				order = append(order, cleaned)
			}
			counts[cleaned]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// padTerms appends fallback terms not already present until n terms exist.
func padTerms(terms, fallback []string, n int) []string {
	have := make(map[string]bool, len(terms))
	for _, t := range terms {
		have[t] = true
	}
	for _, t := range fallback {
		if len(terms) >= n {
			break
		}
		if !have[t] {
			have[t] = true
			terms = append(terms, t)
		}
	}
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
