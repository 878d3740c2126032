package health

import "github.com/Papalexios/amz-neuralmesh/internal/config"

// Scores are the derived 0-100 decay ratings. Opportunity rewards long
// content that has decayed over short content that has decayed.
type Scores struct {
	SEO         int `json:"seo"`
	AEO         int `json:"aeo"`
	Opportunity int `json:"opportunity"`
}

// Scorer applies the penalty policy in config.ScoringConfig. Both scores
// start at 100 and are floored at 0.
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer creates a Scorer with the given policy.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes SEO, AEO, and opportunity from the raw metrics.
func (s *Scorer) Score(m Metrics) Scores {
	seo := 100
	if m.DaysSinceModified > s.cfg.StaleDays {
		seo -= s.cfg.StalePenalty
	}
	if m.WordCount < s.cfg.WordCountFloor {
		seo -= s.cfg.WordCountPenalty
	}
	if m.InternalLinks < s.cfg.MinInternalLinks {
		seo -= s.cfg.InternalLinkPenalty
	}
	if m.ExternalLinks < s.cfg.MinExternalLinks {
		seo -= s.cfg.ExternalLinkPenalty
	}
	if !m.HasSchema {
		seo -= s.cfg.SchemaPenaltySEO
	}

	aeo := 100
	if !m.HasVerdict {
		aeo -= s.cfg.VerdictPenalty
	}
	if !m.HasTable {
		aeo -= s.cfg.TablePenalty
	}
	if !m.HasList {
		aeo -= s.cfg.ListPenalty
	}
	if m.EntityDensity < s.cfg.EntityDensityFloor {
		aeo -= s.cfg.EntityPenalty
	}
	if !m.HasSchema {
		aeo -= s.cfg.SchemaPenaltyAEO
	}

	if seo < 0 {
		seo = 0
	}
	if aeo < 0 {
		aeo = 0
	}

	opportunity := 0
	if m.WordCount > s.cfg.OpportunityMinWords {
		opportunity = int(float64(m.WordCount) / float64(s.cfg.OpportunityScale) * float64(100-seo))
		if opportunity > 100 {
			opportunity = 100
		}
	}

	return Scores{SEO: seo, AEO: aeo, Opportunity: opportunity}
}
