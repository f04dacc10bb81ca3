package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-hunter/internal/config"
	"github.com/jonathan/lead-hunter/internal/fetch"
	"github.com/jonathan/lead-hunter/internal/harvest"
	"github.com/jonathan/lead-hunter/internal/llm"
	"github.com/jonathan/lead-hunter/internal/observability"
	"github.com/jonathan/lead-hunter/internal/pipeline"
	"github.com/jonathan/lead-hunter/internal/search"
	"github.com/jonathan/lead-hunter/internal/types"
)

func TestSelectCategories(t *testing.T) {
	all := []config.Category{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	}

	tests := []struct {
		name    string
		ids     []string
		want    []string
		wantErr string
	}{
		{name: "empty selects all", ids: nil, want: []string{"a", "b", "c"}},
		{name: "keeps config order", ids: []string{"c", "a"}, want: []string{"a", "c"}},
		{name: "duplicates collapse", ids: []string{"b", "b"}, want: []string{"b"}},
		{name: "unknown id", ids: []string{"a", "zzz"}, wantErr: `unknown category "zzz"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectCategories(all, tt.ids)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, c := range got {
				ids[i] = c.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestLLMConfig(t *testing.T) {
	t.Run("deepseek keeps endpoint and applies model", func(t *testing.T) {
		c, err := llmConfig(config.LLMConfig{
			Provider: "deepseek",
			Endpoint: "https://llm.example.test",
			Model:    "custom-model",
			APIKey:   "k",
			Timeout:  7 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, llm.ProviderDeepSeek, c.Provider)
		assert.Equal(t, "https://llm.example.test", c.Endpoint)
		assert.Equal(t, 7*time.Second, c.Timeout)
		assert.Equal(t, "k", c.APIKey)
		for _, tier := range []llm.ModelTier{llm.TierLite, llm.TierStandard, llm.TierAdvanced} {
			assert.Equal(t, "custom-model", c.GetModel(tier))
		}
	})

	t.Run("gemini ignores endpoint", func(t *testing.T) {
		c, err := llmConfig(config.LLMConfig{
			Provider: "gemini",
			Endpoint: "https://api.deepseek.com",
			APIKey:   "k",
		})
		require.NoError(t, err)
		assert.Equal(t, llm.ProviderGemini, c.Provider)
		assert.NotEqual(t, "https://api.deepseek.com", c.Endpoint)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := llmConfig(config.LLMConfig{Provider: "deepseek"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DEEPSEEK_API_KEY")
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := llmConfig(config.LLMConfig{Provider: "other", APIKey: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported LLM provider")
	})
}

func TestNewSearchProvider(t *testing.T) {
	ctx := context.Background()

	p, err := newSearchProvider(ctx, config.SearchConfig{Provider: "serper", APIKey: "k", Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &search.Serper{}, p)

	_, err = newSearchProvider(ctx, config.SearchConfig{Provider: "serper"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERPER_API_KEY")

	_, err = newSearchProvider(ctx, config.SearchConfig{Provider: "google", CX: "cx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SEARCH_API_KEY")
}

func TestNewScraper(t *testing.T) {
	logger := observability.Discard()

	assert.IsType(t, &fetch.DirectScraper{}, newScraper(config.ScrapeConfig{Provider: "direct", Timeout: time.Second}, logger))
	assert.IsType(t, &fetch.FirecrawlScraper{}, newScraper(config.ScrapeConfig{Provider: "firecrawl", Endpoint: "http://127.0.0.1:8080/scrape"}, logger))
}

func TestConsoleConfirmer(t *testing.T) {
	confirmPrompt := harvest.Prompt{State: harvest.AwaitingConfirmation, Terms: []string{"film look", "matte"}}
	authPrompt := harvest.Prompt{State: harvest.AwaitingManualAuth, Term: "matte", Attempt: 2}

	tests := []struct {
		name       string
		input      string
		yes        bool
		prompt     harvest.Prompt
		wantErr    bool
		wantOutput []string
	}{
		{
			name:       "enter accepts terms",
			input:      "\n",
			prompt:     confirmPrompt,
			wantOutput: []string{"Discovered terms", "1. film look", "2. matte", "Press Enter"},
		},
		{
			name:    "n aborts",
			input:   "n\n",
			prompt:  confirmPrompt,
			wantErr: true,
		},
		{
			name:       "yes skips the question",
			input:      "",
			yes:        true,
			prompt:     confirmPrompt,
			wantOutput: []string{"Discovered terms"},
		},
		{
			name:       "auth waits for enter",
			input:      "\n",
			prompt:     authPrompt,
			wantOutput: []string{`Login required while harvesting "matte" (attempt 2)`},
		},
		{
			name:    "auth ignores yes",
			input:   "",
			yes:     true,
			prompt:  authPrompt,
			wantErr: true,
		},
		{
			name:   "other states pass through",
			input:  "",
			prompt: harvest.Prompt{State: harvest.Scrolling},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := newConsoleConfirmer(strings.NewReader(tt.input), &out, observability.NewPrinter(&out), tt.yes)

			err := c.Confirm(context.Background(), tt.prompt)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			for _, s := range tt.wantOutput {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestConsoleConfirmer_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	c := newConsoleConfirmer(pr, io.Discard, observability.NewPrinter(io.Discard), false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Confirm(ctx, harvest.Prompt{State: harvest.AwaitingManualAuth, Term: "x", Attempt: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cats := []types.AggregatedCategory{{Term: "matte", TotalLikes: 12000}}

	path, err := writeJSON(dir, "harvest.json", cats)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "harvest.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []types.AggregatedCategory
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "matte", got[0].Term)
	assert.Equal(t, 12000, got[0].TotalLikes)
}

func TestRenderMarkdown(t *testing.T) {
	out, err := renderMarkdown("# Leads\n\nSome **verified** text.\n", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Leads")
	assert.Contains(t, out, "verified")
}

func TestProgress_NonTerminalIsNoop(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf)
	assert.Nil(t, p.s)

	p.update("working")
	p.onProgress(pipeline.ProgressEvent{Category: "fish-speech", Message: "scraping"})
	p.stop()
	assert.Empty(t, buf.String())
}

func TestPlanCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := `search:
  sites: ["reddit.com"]
dimensions:
  - id: cost
    title: cost control
  - id: access
    title: payment options
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"plan", "--config", cfgPath, "--json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var queries []types.Query
	require.NoError(t, json.Unmarshal(out.Bytes(), &queries))
	require.Len(t, queries, 2)
	assert.Equal(t, "cost", queries[0].DimensionID)
	assert.Equal(t, search.WithSites("cost control", []string{"reddit.com"}), queries[0].Text)
	assert.Equal(t, "access", queries[1].DimensionID)
}
