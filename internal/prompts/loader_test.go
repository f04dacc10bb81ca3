package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_HunterContracts(t *testing.T) {
	set, err := Load(HunterFile)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"audit-system",
		"audit-user",
		"feasibility-system",
		"metric-system",
		"problem-system",
		"validate-system",
	}, set.Keys())

	gate, err := set.Lookup("validate-system")
	require.NoError(t, err)
	assert.Contains(t, gate, "{{.Token}}")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("nonexistent.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")

	set, err := Load(HunterFile)
	require.NoError(t, err)
	_, err = set.Lookup("nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		want     string
	}{
		{
			name:     "fills every placeholder",
			template: "Gate for {{.Category}}: reply {{.Token}}",
			data:     map[string]string{"Category": "GPT-SoVITS", "Token": "VALID_LEAD"},
			want:     "Gate for GPT-SoVITS: reply VALID_LEAD",
		},
		{
			name:     "missing key left in place",
			template: "{{.Protocol}}\nrules",
			data:     map[string]string{},
			want:     "{{.Protocol}}\nrules",
		},
		{
			name:     "values are not re-expanded",
			template: "{{.A}} {{.B}}",
			data:     map[string]string{"A": "{{.B}}", "B": "b"},
			want:     "{{.B}} b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.template, tt.data))
		})
	}
}

func TestHunter_EmptyProtocolCollapses(t *testing.T) {
	prompt := Hunter("problem-system", map[string]string{"Protocol": ""})
	assert.NotContains(t, prompt, "{{.Protocol}}")
	assert.Equal(t, "Output", prompt[:6])
}

func TestHunter_UnknownKeyPanics(t *testing.T) {
	assert.Panics(t, func() { Hunter("nonexistent-key", nil) })
}
