// Package harvest collects structured post records from a scroll-loaded
// listing page. A Run is a resumable cursor over a small state machine so a
// login barrier can suspend collection until a human has dealt with it.
package harvest

import (
	"context"
	"errors"
	"strings"

	"github.com/jonathan/lead-hunter/internal/faults"
)

// ErrNoMatch is returned by Element reads when the selector matches nothing
// or the attribute is absent.
var ErrNoMatch = errors.New("no matching element")

// Page is an interactive page session.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Scroll(ctx context.Context, dy int) error
	Query(ctx context.Context, selector string) ([]Element, error)
	// Alive returns a SessionClosed fault once the session is gone.
	Alive(ctx context.Context) error
	Close() error
}

// Element is one node inside a Page. An empty selector addresses the
// element itself.
type Element interface {
	Text(ctx context.Context, selector string) (string, error)
	Texts(ctx context.Context, selector string) ([]string, error)
	Attr(ctx context.Context, selector, name string) (string, error)
}

// DefaultAuthMarkers are selectors whose presence means a login wall is showing.
func DefaultAuthMarkers() []string {
	return []string{
		".login-modal",
		".login-container",
		"[class*='login-container']",
		"img[src*='qr-code']",
	}
}

// authButtonText is the label of the login call to action.
const authButtonText = "立即登录"

// authRequired reports whether page currently shows a login barrier.
func authRequired(ctx context.Context, page Page, markers []string) (bool, error) {
	for _, marker := range markers {
		found, err := page.Query(ctx, marker)
		if err != nil {
			return false, err
		}
		if len(found) > 0 {
			return true, nil
		}
	}

	buttons, err := page.Query(ctx, "button")
	if err != nil {
		return false, err
	}
	for _, b := range buttons {
		text, err := b.Text(ctx, "")
		if err == nil && strings.Contains(text, authButtonText) {
			return true, nil
		}
	}
	return false, nil
}

func sessionClosed(op string, cause error) *faults.Error {
	return faults.New(faults.SessionClosed, op, cause)
}
