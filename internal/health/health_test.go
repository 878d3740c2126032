package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Papalexios/amz-neuralmesh/internal/config"
)

func testScoring() config.ScoringConfig {
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	return cfg.Scoring
}

func TestExtract(t *testing.T) {
	html := `<html><body>
		<h2>Our Verdict</h2>
		<p>The Ninja Foodi beats the Philips Airfryer on price.</p>
		<ul><li>Crispy</li><li>Fast</li></ul>
		<table><tr><td>spec</td></tr></table>
		<a href="/related-post">related</a>
		<a href="https://example.com/other">same site</a>
		<a href="https://amazon.com/dp/B01">buy</a>
		<script type="application/ld+json">{}</script>
	</body></html>`

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	modified := now.AddDate(0, 0, -400)

	m := Extract(html, "example.com", modified, now)

	assert.True(t, m.HasSchema)
	assert.True(t, m.HasVerdict)
	assert.True(t, m.HasTable)
	assert.True(t, m.HasList)
	assert.Equal(t, 2, m.InternalLinks)
	assert.Equal(t, 1, m.ExternalLinks)
	assert.Equal(t, 400, m.DaysSinceModified)
	assert.Greater(t, m.WordCount, 10)
	assert.Greater(t, m.EntityDensity, 0.0)
}

func TestScoreStalenessMonotonic(t *testing.T) {
	s := NewScorer(testScoring())
	base := Metrics{WordCount: 1200, InternalLinks: 5, ExternalLinks: 3, HasSchema: true}

	fresh := base
	fresh.DaysSinceModified = 100
	stale := base
	stale.DaysSinceModified = 800

	assert.GreaterOrEqual(t, s.Score(fresh).SEO, s.Score(stale).SEO,
		"crossing the staleness threshold must never raise seo")
}

func TestScoreOpportunityGatedByWordCount(t *testing.T) {
	s := NewScorer(testScoring())
	for _, wc := range []int{0, 100, 500} {
		m := Metrics{WordCount: wc, DaysSinceModified: 900}
		assert.Equal(t, 0, s.Score(m).Opportunity, "wordCount=%d", wc)
	}
}

func TestScoreNeverNegative(t *testing.T) {
	s := NewScorer(testScoring())
	got := s.Score(Metrics{DaysSinceModified: 9999})
	assert.GreaterOrEqual(t, got.SEO, 0)
	assert.GreaterOrEqual(t, got.AEO, 0)
}

// Long, clearly decayed page: both health scores well below 50 and a high
// opportunity score.
func TestScoreDecayedLongPageScenario(t *testing.T) {
	s := NewScorer(testScoring())
	m := Metrics{
		WordCount:         2000,
		DaysSinceModified: 800,
		InternalLinks:     1,
		ExternalLinks:     0,
		HasSchema:         false,
		HasVerdict:        false,
		EntityDensity:     0.01,
	}

	got := s.Score(m)
	assert.Less(t, got.SEO, 50)
	assert.Less(t, got.AEO, 50)
	assert.Greater(t, got.Opportunity, 50)
}
