// Package sanitize rewrites anchors in generated HTML so nothing ships
// that the model hallucinated: internal links must resolve against the
// real mesh inventory, affiliate links get tracking attributes.
package sanitize

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/Papalexios/amz-neuralmesh/internal/mesh"
)

// affiliateDomains are the commercial hosts that get rel and tracking
// attributes. Matched on host suffix.
var affiliateDomains = []string{
	"amazon.com", "amazon.co.uk", "amazon.de", "amazon.ca",
	"amzn.to", "ebay.com", "walmart.com", "bestbuy.com",
}

// Sanitizer validates anchors against a mesh inventory.
type Sanitizer struct {
	siteHost string
	byPath   map[string]mesh.Node
}

// New builds a Sanitizer for siteHost over the inventory.
func New(siteHost string, inventory []mesh.Node) *Sanitizer {
	byPath := make(map[string]mesh.Node, len(inventory))
	for _, n := range inventory {
		byPath[NormalizePath(n.URL)] = n
	}
	return &Sanitizer{siteHost: strings.TrimPrefix(siteHost, "www."), byPath: byPath}
}

// Apply rewrites every anchor in bodyHTML:
//   - internal hrefs resolving to an inventory entry are canonicalized and
//     tagged with a semantic class and title
//   - internal hrefs with no inventory match are flattened to their text
//   - affiliate hrefs get rel="nofollow sponsored" and a tracking class
//   - other external links pass through unmodified
func (s *Sanitizer) Apply(bodyHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(bodyHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse generated body: %w", err)
	}

	stripped := 0
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")

		switch {
		case s.isInternal(href):
			if node, ok := s.byPath[NormalizePath(href)]; ok {
				a.SetAttr("href", node.URL)
				a.SetAttr("class", "nm-internal-link")
				a.SetAttr("title", node.Title)
				return
			}
			// Hallucinated internal link: keep the visible text, drop the
			// 404-prone anchor.
			a.ReplaceWithHtml(a.Text())
			stripped++

		case isAffiliate(href):
			a.SetAttr("rel", "nofollow sponsored")
			a.SetAttr("class", "nm-affiliate-link")
		}
	})

	if stripped > 0 {
		log.Debug("stripped hallucinated internal links", "count", stripped)
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize sanitized body: %w", err)
	}
	return out, nil
}

// isInternal reports whether href is relative or points at the site's own
// domain.
func (s *Sanitizer) isInternal(href string) bool {
	if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return true
	}
	return strings.TrimPrefix(u.Host, "www.") == s.siteHost
}

func isAffiliate(href string) bool {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(u.Host, "www.")
	for _, d := range affiliateDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// NormalizePath reduces a URL or path to a comparable form: no scheme or
// host, leading slash, no trailing slash.
func NormalizePath(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		path = u.Path
	} else if u != nil {
		path = u.Path
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
