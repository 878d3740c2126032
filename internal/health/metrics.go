// Package health measures a page's decay: how stale its freshness and
// answer-engine signals have become.
package health

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Metrics are the raw per-page signals the scorer consumes. They are a
// pure function of page content and the current time; nothing here is
// persisted authoritatively.
type Metrics struct {
	WordCount         int
	InternalLinks     int
	ExternalLinks     int
	HasSchema         bool
	HasVerdict        bool
	HasTable          bool
	HasList           bool
	EntityDensity     float64
	DaysSinceModified int
}

var verdictRe = regexp.MustCompile(`(?i)\b(verdict|conclusion|summary|pros and cons|bottom line)\b`)

// capitalized-word heuristic for entity density: a weak, explicitly
// approximate proxy for how entity-rich the copy is.
var entityRe = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]+`)

// Extract derives Metrics from raw page HTML. siteHost decides which links
// count as internal; now anchors the staleness clock.
func Extract(html, siteHost string, modified, now time.Time) Metrics {
	m := Metrics{
		HasSchema:  strings.Contains(html, "application/ld+json"),
		HasVerdict: verdictRe.MatchString(html),
	}

	if !modified.IsZero() {
		m.DaysSinceModified = int(now.Sub(modified).Hours() / 24)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable HTML still gets the substring-based signals above.
		return m
	}

	text := doc.Text()
	words := strings.Fields(text)
	m.WordCount = len(words)

	entities := 0
	for _, w := range words {
		if entityRe.MatchString(w) {
			entities++
		}
	}
	if len(words) > 0 {
		m.EntityDensity = float64(entities) / float64(len(words))
	}

	m.HasTable = doc.Find("table").Length() > 0
	m.HasList = doc.Find("ul, ol").Length() > 0

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if isInternalHref(href, siteHost) {
			m.InternalLinks++
		} else if strings.HasPrefix(href, "http") {
			m.ExternalLinks++
		}
	})

	return m
}

func isInternalHref(href, siteHost string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	if strings.HasPrefix(href, "/") {
		return true
	}
	return siteHost != "" && strings.Contains(href, siteHost)
}
