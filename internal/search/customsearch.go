package search

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jonathan/lead-hunter/internal/faults"
	"github.com/jonathan/lead-hunter/internal/types"
)

// customSearchPage is the largest page Programmable Search returns.
const customSearchPage = 10

// CustomSearch queries Google Programmable Search.
type CustomSearch struct {
	svc *customsearch.Service
	cx  string
}

// NewCustomSearch creates a Programmable Search provider. Extra client
// options are passed through to the service.
func NewCustomSearch(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*CustomSearch, error) {
	if cx == "" {
		return nil, fmt.Errorf("search engine id (cx) is required")
	}
	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &CustomSearch{svc: svc, cx: cx}, nil
}

// Name implements Provider.
func (c *CustomSearch) Name() string { return "google" }

// Search implements Provider. Pages of ten are requested until n links are
// collected or a short page signals the end of the results.
func (c *CustomSearch) Search(ctx context.Context, query string, n int) ([]types.CandidateLink, error) {
	links := make([]types.CandidateLink, 0, n)
	for start := int64(1); len(links) < n; start += customSearchPage {
		num := int64(n - len(links))
		if num > customSearchPage {
			num = customSearchPage
		}

		resp, err := c.svc.Cse.List().Cx(c.cx).Q(query).Num(num).Start(start).Context(ctx).Do()
		if err != nil {
			var gerr *googleapi.Error
			if errors.As(err, &gerr) {
				return nil, faults.Rejected("search", "customsearch", gerr.Code)
			}
			return nil, faults.Transport("search", "customsearch", err)
		}

		for _, item := range resp.Items {
			if item.Link == "" {
				continue
			}
			links = append(links, types.CandidateLink{
				URL:     item.Link,
				Title:   item.Title,
				Section: "organic",
				Order:   len(links),
			})
		}
		if int64(len(resp.Items)) < num {
			break
		}
	}
	return links, nil
}
