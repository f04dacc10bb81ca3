// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full lead-hunter configuration. It is constructed once at
// process start and passed by reference to every component.
type Config struct {
	Search      SearchConfig      `yaml:"search"`
	Scrape      ScrapeConfig      `yaml:"scrape"`
	LLM         LLMConfig         `yaml:"llm"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Dimensions  []Dimension       `yaml:"dimensions" validate:"dive"`
	Categories  []Category        `yaml:"categories" validate:"dive"`
	Harvest     HarvestConfig     `yaml:"harvest"`
	Feasibility FeasibilityConfig `yaml:"feasibility"`
	Report      ReportConfig      `yaml:"report"`
	Log         LogConfig         `yaml:"log"`
}

// SearchConfig configures the search capability and link scoring.
type SearchConfig struct {
	Provider  string        `yaml:"provider" validate:"oneof=serper google"`
	Endpoint  string        `yaml:"endpoint" validate:"omitempty,url"`
	APIKey    string        `yaml:"api_key"`
	CX        string        `yaml:"cx"` // Programmable Search engine ID
	Sites     []string      `yaml:"sites"`
	Blacklist []string      `yaml:"blacklist"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ScrapeConfig configures the scrape capability.
type ScrapeConfig struct {
	Provider   string        `yaml:"provider" validate:"oneof=firecrawl direct"`
	Endpoint   string        `yaml:"endpoint" validate:"omitempty,url"`
	APIKey     string        `yaml:"api_key"`
	Interval   time.Duration `yaml:"interval"` // pacing interval per worker
	Timeout    time.Duration `yaml:"timeout"`
	UseBrowser bool          `yaml:"use_browser"`
}

// LLMConfig configures the classification and summarization capability.
type LLMConfig struct {
	Provider      string        `yaml:"provider" validate:"oneof=gemini deepseek"`
	Endpoint      string        `yaml:"endpoint" validate:"omitempty,url"`
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"api_key"`
	PositiveToken string        `yaml:"positive_token" validate:"required"`
	ProtocolFile  string        `yaml:"protocol_file"`
	Timeout       time.Duration `yaml:"timeout"`

	// Protocol holds the audit protocol text read from ProtocolFile.
	Protocol string `yaml:"-"`
}

// PipelineConfig configures fan-out and adaptive widening.
type PipelineConfig struct {
	Workers        int `yaml:"workers" validate:"min=2,max=8"`
	InitialBudget  int `yaml:"initial_budget" validate:"min=1"`
	WidenedBudget  int `yaml:"widened_budget" validate:"gtefield=InitialBudget"`
	WidenInvalid   int `yaml:"widen_invalid" validate:"min=1"`
	WidenValid     int `yaml:"widen_valid" validate:"min=1"`
	PerCategoryCap int `yaml:"per_category_cap" validate:"min=0"`
}

// Dimension is a topic dimension for the query planner.
type Dimension struct {
	ID    string `yaml:"id" validate:"required"`
	Title string `yaml:"title" validate:"required"`
}

// Category is a hunt category with optional fallback seeds.
type Category struct {
	ID    string   `yaml:"id" validate:"required"`
	Name  string   `yaml:"name" validate:"required"`
	Query string   `yaml:"query" validate:"required"`
	Seeds []string `yaml:"seeds" validate:"dive,url"`
}

// HarvestConfig configures the scroll-driven harvester.
type HarvestConfig struct {
	Driver          string        `yaml:"driver" validate:"oneof=chromedp rod"`
	BaseURL         string        `yaml:"base_url" validate:"url"`
	SearchURL       string        `yaml:"search_url" validate:"required,contains=%s"`
	UserDataDir     string        `yaml:"user_data_dir"`
	Headless        bool          `yaml:"headless"`
	Containers      string        `yaml:"containers" validate:"required"`
	ScrollOffset    int           `yaml:"scroll_offset" validate:"min=1"`
	Settle          time.Duration `yaml:"settle"`
	MaxIterations   int           `yaml:"max_iterations" validate:"min=1"`
	Target          int           `yaml:"target" validate:"min=1"`
	MinLikes        int           `yaml:"min_likes" validate:"min=0"`
	StrategyTimeout time.Duration `yaml:"strategy_timeout"`
	MaxAuthPrompts  int           `yaml:"max_auth_prompts" validate:"min=1"`
	Terms           []string      `yaml:"terms"`
	SeedKeyword     string        `yaml:"seed_keyword"`
	DiscoverTerms   bool          `yaml:"discover_terms"`
	TermCount       int           `yaml:"term_count" validate:"min=1"`
	TitleSample     int           `yaml:"title_sample" validate:"min=1"`
	FallbackTerms   []string      `yaml:"fallback_terms"`
	Stopwords       []string      `yaml:"stopwords"`
	RecordsPerTerm  int           `yaml:"records_per_term" validate:"min=0"`
}

// FeasibilityConfig configures the feasibility table run. Only links on
// Sites are scraped; the material sent to the LLM is bounded per document
// and in document count.
type FeasibilityConfig struct {
	Sites     []string `yaml:"sites"`
	LinkLimit int      `yaml:"link_limit" validate:"min=1"`
	PerDoc    int      `yaml:"per_doc" validate:"min=1"`
	MaxDocs   int      `yaml:"max_docs" validate:"min=1"`
}

// ReportConfig configures report assembly.
type ReportConfig struct {
	OutDir        string `yaml:"out_dir" validate:"required"`
	Title         string `yaml:"title"`
	AuditChunk    int    `yaml:"audit_chunk" validate:"min=1"`
	TopCategories int    `yaml:"top_categories" validate:"min=1,max=5"`
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// ConfigError represents an invalid or unreadable configuration.
//
//nolint:revive // ConfigError reads better than Error at call sites
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// LoadConfig reads a YAML configuration file. Missing values are left zero;
// call MergeWithDefaults to fill them.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decodeFile decodes the YAML file at path onto cfg. Keys absent from the
// file leave the existing field values untouched.
func decodeFile(path string, cfg *Config) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

// Load builds a ready-to-use configuration: the file at path (if any)
// decoded over Defaults, secrets from the environment, and the audit
// protocol text. A value the file sets explicitly wins, zero included.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, &ConfigError{Message: "load failed", Cause: err}
		}
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.LoadProtocol(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return &ConfigError{Message: "invalid fields: " + strings.Join(fields, ", "), Cause: err}
		}
		return &ConfigError{Message: "validation failed", Cause: err}
	}

	if c.Search.Provider == "google" && c.Search.CX == "" {
		return &ConfigError{Message: "search.cx is required for the google provider"}
	}

	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if seen[cat.ID] {
			return &ConfigError{Message: fmt.Sprintf("duplicate category id %q", cat.ID)}
		}
		seen[cat.ID] = true
	}

	return nil
}

// LoadProtocol reads the audit protocol file into LLM.Protocol.
func (c *Config) LoadProtocol() error {
	if c.LLM.ProtocolFile == "" || c.LLM.Protocol != "" {
		return nil
	}
	data, err := os.ReadFile(c.LLM.ProtocolFile)
	if err != nil {
		return &ConfigError{Message: "failed to read audit protocol " + c.LLM.ProtocolFile, Cause: err}
	}
	c.LLM.Protocol = strings.TrimSpace(string(data))
	return nil
}

// ApplyEnv fills empty secrets from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	fill := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	switch c.Search.Provider {
	case "google":
		fill(&c.Search.APIKey, "GOOGLE_SEARCH_API_KEY")
		fill(&c.Search.CX, "GOOGLE_SEARCH_CX")
	default:
		fill(&c.Search.APIKey, "SERPER_API_KEY")
	}
	fill(&c.Scrape.APIKey, "FIRECRAWL_API_KEY")

	switch c.LLM.Provider {
	case "deepseek":
		fill(&c.LLM.APIKey, "DEEPSEEK_API_KEY")
	default:
		fill(&c.LLM.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// Bool fields cannot distinguish unset from false, so they are not merged.
// Numeric zeros are treated as unset here; Load keeps explicit zeros.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	str := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	num := func(dst *int, def int) {
		if *dst == 0 {
			*dst = def
		}
	}
	dur := func(dst *time.Duration, def time.Duration) {
		if *dst == 0 {
			*dst = def
		}
	}
	list := func(dst *[]string, def []string) {
		if len(*dst) == 0 {
			*dst = append([]string(nil), def...)
		}
	}

	str(&result.Search.Provider, defaults.Search.Provider)
	str(&result.Search.Endpoint, defaults.Search.Endpoint)
	list(&result.Search.Sites, defaults.Search.Sites)
	list(&result.Search.Blacklist, defaults.Search.Blacklist)
	dur(&result.Search.Timeout, defaults.Search.Timeout)

	str(&result.Scrape.Provider, defaults.Scrape.Provider)
	str(&result.Scrape.Endpoint, defaults.Scrape.Endpoint)
	dur(&result.Scrape.Interval, defaults.Scrape.Interval)
	dur(&result.Scrape.Timeout, defaults.Scrape.Timeout)

	str(&result.LLM.Provider, defaults.LLM.Provider)
	str(&result.LLM.Endpoint, defaults.LLM.Endpoint)
	str(&result.LLM.Model, defaults.LLM.Model)
	str(&result.LLM.PositiveToken, defaults.LLM.PositiveToken)
	dur(&result.LLM.Timeout, defaults.LLM.Timeout)

	num(&result.Pipeline.Workers, defaults.Pipeline.Workers)
	num(&result.Pipeline.InitialBudget, defaults.Pipeline.InitialBudget)
	num(&result.Pipeline.WidenedBudget, defaults.Pipeline.WidenedBudget)
	num(&result.Pipeline.WidenInvalid, defaults.Pipeline.WidenInvalid)
	num(&result.Pipeline.WidenValid, defaults.Pipeline.WidenValid)

	if len(result.Dimensions) == 0 {
		result.Dimensions = append([]Dimension(nil), defaults.Dimensions...)
	}
	if len(result.Categories) == 0 {
		result.Categories = append([]Category(nil), defaults.Categories...)
	}

	h, d := &result.Harvest, defaults.Harvest
	str(&h.Driver, d.Driver)
	str(&h.BaseURL, d.BaseURL)
	str(&h.SearchURL, d.SearchURL)
	str(&h.Containers, d.Containers)
	num(&h.ScrollOffset, d.ScrollOffset)
	dur(&h.Settle, d.Settle)
	num(&h.MaxIterations, d.MaxIterations)
	num(&h.Target, d.Target)
	num(&h.MinLikes, d.MinLikes)
	dur(&h.StrategyTimeout, d.StrategyTimeout)
	num(&h.MaxAuthPrompts, d.MaxAuthPrompts)
	str(&h.SeedKeyword, d.SeedKeyword)
	num(&h.TermCount, d.TermCount)
	num(&h.TitleSample, d.TitleSample)
	list(&h.FallbackTerms, d.FallbackTerms)
	list(&h.Stopwords, d.Stopwords)
	num(&h.RecordsPerTerm, d.RecordsPerTerm)

	list(&result.Feasibility.Sites, defaults.Feasibility.Sites)
	num(&result.Feasibility.LinkLimit, defaults.Feasibility.LinkLimit)
	num(&result.Feasibility.PerDoc, defaults.Feasibility.PerDoc)
	num(&result.Feasibility.MaxDocs, defaults.Feasibility.MaxDocs)

	str(&result.Report.OutDir, defaults.Report.OutDir)
	str(&result.Report.Title, defaults.Report.Title)
	num(&result.Report.AuditChunk, defaults.Report.AuditChunk)
	num(&result.Report.TopCategories, defaults.Report.TopCategories)

	str(&result.Log.Level, defaults.Log.Level)

	return result
}
