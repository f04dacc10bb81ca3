package faults

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "status",
			err:  Rejected("search", "https://api.test", 503),
			want: "search: upstream_rejected for https://api.test (status 503)",
		},
		{
			name: "cause",
			err:  Transport("scrape", "https://x.test", errors.New("dial tcp: refused")),
			want: "scrape: transport_error for https://x.test: dial tcp: refused",
		},
		{
			name: "bare",
			err:  New(SessionClosed, "harvest", nil),
			want: "harvest: session_closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("round failed: %w", Malformed("search", "", errors.New("bad json")))

	assert.Equal(t, MalformedResponse, KindOf(wrapped))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.True(t, Is(wrapped, MalformedResponse))
	assert.False(t, Is(nil, MalformedResponse))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := Transport("scrape", "u", cause)
	assert.ErrorIs(t, err, cause)
}
