// Package config provides configuration loading and structs for the
// regeneration pipeline.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	WordPress WordPressConfig `yaml:"wordpress"`
	LLM       LLMConfig       `yaml:"llm"`
	Amazon    AmazonConfig    `yaml:"amazon"`
	Serper    SerperConfig    `yaml:"serper"`
	Cache     CacheConfig     `yaml:"cache"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Output    OutputConfig    `yaml:"output"`
}

// WordPressConfig holds content store connection settings.
type WordPressConfig struct {
	SiteURL     string `yaml:"site_url"`
	Username    string `yaml:"username"`
	AppPassword string `yaml:"app_password"`
	PerPage     int    `yaml:"per_page"`
	RenderJS    bool   `yaml:"render_js"`
}

// LLMConfig selects the generation provider and its parameters.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "openai" or "gemini"
	APIKey      string  `yaml:"api_key"`
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// AmazonConfig holds marketplace lookup settings.
type AmazonConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	APIKey       string        `yaml:"api_key"`
	AffiliateTag string        `yaml:"affiliate_tag"`
	Simulate     bool          `yaml:"simulate"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// SerperConfig holds the competitor-snippet search settings.
type SerperConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
}

// CacheConfig selects the lookup cache backend.
type CacheConfig struct {
	RedisAddr string `yaml:"redis_addr"` // empty selects the in-process cache
	RedisDB   int    `yaml:"redis_db"`
}

// ScoringConfig exposes every decay-scoring threshold as a tunable policy
// constant. The entity-density heuristic is a weak proxy for information
// density and the defaults reflect that; treat changes as product decisions.
type ScoringConfig struct {
	StaleDays           int     `yaml:"stale_days"`
	StalePenalty        int     `yaml:"stale_penalty"`
	WordCountFloor      int     `yaml:"word_count_floor"`
	WordCountPenalty    int     `yaml:"word_count_penalty"`
	MinInternalLinks    int     `yaml:"min_internal_links"`
	InternalLinkPenalty int     `yaml:"internal_link_penalty"`
	MinExternalLinks    int     `yaml:"min_external_links"`
	ExternalLinkPenalty int     `yaml:"external_link_penalty"`
	SchemaPenaltySEO    int     `yaml:"schema_penalty_seo"`
	VerdictPenalty      int     `yaml:"verdict_penalty"`
	TablePenalty        int     `yaml:"table_penalty"`
	ListPenalty         int     `yaml:"list_penalty"`
	EntityDensityFloor  float64 `yaml:"entity_density_floor"`
	EntityPenalty       int     `yaml:"entity_penalty"`
	SchemaPenaltyAEO    int     `yaml:"schema_penalty_aeo"`
	OpportunityMinWords int     `yaml:"opportunity_min_words"`
	OpportunityScale    int     `yaml:"opportunity_scale"`
}

// PipelineConfig holds orchestration settings.
type PipelineConfig struct {
	Workers     int           `yaml:"workers"`
	JobTimeout  time.Duration `yaml:"job_timeout"`
	MeshSize    int           `yaml:"mesh_size"`
	MaxPageText int           `yaml:"max_page_text"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads and parses the config file at path and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Validate reports configuration the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.WordPress.SiteURL == "" {
		return fmt.Errorf("wordpress.site_url is required")
	}
	if c.LLM.Provider != "openai" && c.LLM.Provider != "gemini" {
		return fmt.Errorf("llm.provider must be %q or %q, got %q", "openai", "gemini", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" && c.LLM.Endpoint == "" {
		return fmt.Errorf("llm.api_key or a local llm.endpoint is required")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1")
	}
	return nil
}
