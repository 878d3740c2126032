package config

import "time"

// ApplyDefaults fills in zero values with the documented default policy.
// The scoring constants pick one consistent set from the thresholds that
// drifted across earlier rewrites of this pipeline: word-count floor 900,
// entity-density floor 2%.
func ApplyDefaults(cfg *Config) {
	if cfg.WordPress.PerPage == 0 {
		cfg.WordPress.PerPage = 100
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 8192
	}

	if cfg.Amazon.CacheTTL == 0 {
		cfg.Amazon.CacheTTL = 24 * time.Hour
	}
	if cfg.Serper.Endpoint == "" {
		cfg.Serper.Endpoint = "https://google.serper.dev/search"
	}

	s := &cfg.Scoring
	if s.StaleDays == 0 {
		s.StaleDays = 365
	}
	if s.StalePenalty == 0 {
		s.StalePenalty = 20
	}
	if s.WordCountFloor == 0 {
		s.WordCountFloor = 900
	}
	if s.WordCountPenalty == 0 {
		s.WordCountPenalty = 12
	}
	if s.MinInternalLinks == 0 {
		s.MinInternalLinks = 3
	}
	if s.InternalLinkPenalty == 0 {
		s.InternalLinkPenalty = 15
	}
	if s.MinExternalLinks == 0 {
		s.MinExternalLinks = 2
	}
	if s.ExternalLinkPenalty == 0 {
		s.ExternalLinkPenalty = 10
	}
	if s.SchemaPenaltySEO == 0 {
		s.SchemaPenaltySEO = 10
	}
	if s.VerdictPenalty == 0 {
		s.VerdictPenalty = 25
	}
	if s.TablePenalty == 0 {
		s.TablePenalty = 12
	}
	if s.ListPenalty == 0 {
		s.ListPenalty = 10
	}
	if s.EntityDensityFloor == 0 {
		s.EntityDensityFloor = 0.02
	}
	if s.EntityPenalty == 0 {
		s.EntityPenalty = 18
	}
	if s.SchemaPenaltyAEO == 0 {
		s.SchemaPenaltyAEO = 25
	}
	if s.OpportunityMinWords == 0 {
		s.OpportunityMinWords = 500
	}
	if s.OpportunityScale == 0 {
		s.OpportunityScale = 1500
	}

	p := &cfg.Pipeline
	if p.Workers == 0 {
		p.Workers = 3
	}
	if p.JobTimeout == 0 {
		p.JobTimeout = 15 * time.Minute
	}
	if p.MeshSize == 0 {
		p.MeshSize = 50
	}
	if p.MaxPageText == 0 {
		p.MaxPageText = 12000
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}
}
