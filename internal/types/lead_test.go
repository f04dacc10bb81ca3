package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkConstructors(t *testing.T) {
	plain := PlainURL("https://example.com")
	assert.Equal(t, LinkPlain, plain.Kind)
	assert.Empty(t, plain.Text)

	ann := Annotated("https://example.com/demo", "Try the demo")
	assert.Equal(t, LinkAnnotated, ann.Kind)
	assert.Equal(t, "Try the demo", ann.Text)
}

func TestLeadStatus_Reportable(t *testing.T) {
	tests := []struct {
		status LeadStatus
		want   bool
	}{
		{StatusValid, true},
		{StatusFallback, true},
		{StatusInvalid, false},
		{LeadStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Reportable())
		})
	}
}

func TestRawDocument_Empty(t *testing.T) {
	assert.True(t, RawDocument{SourceURL: "https://x"}.Empty())
	assert.False(t, RawDocument{Content: "body"}.Empty())
}
