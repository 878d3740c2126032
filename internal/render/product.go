// Package render turns a stored content template plus detected products
// and reviewer overrides into publishable HTML. Render is pure: preview
// and publish call the same function over the same template, so an
// override edit is always a full deterministic re-render, never a patch
// of previously rendered output.
package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/Papalexios/amz-neuralmesh/internal/amazon"
	"github.com/Papalexios/amz-neuralmesh/internal/mesh"
)

// Detection is one product identified by the strategy, optionally enriched
// with live marketplace data. Never mutated by rendering; overrides are
// merged at render time only.
type Detection struct {
	Name          string
	Context       string
	Recommended   bool
	FallbackPrice string
	Data          *amazon.Product
}

// Override is a reviewer-supplied correction, keyed by product name or
// product URL in the Overrides map.
type Override struct {
	ASIN  string
	Image string
	Price string
	Title string
}

// Overrides maps a product's name (or its URL) to its correction.
type Overrides map[string]Override

func (o Overrides) lookup(d Detection) Override {
	if ov, ok := o[d.Name]; ok {
		return ov
	}
	if d.Data != nil {
		if ov, ok := o[d.Data.URL]; ok {
			return ov
		}
	}
	return Override{}
}

var productBoxRe = regexp.MustCompile(`\[\[PRODUCT_BOX:(\d+)\]\]`)

// Render resolves every [[PRODUCT_BOX:n]] placeholder in template against
// products[n]. Display fields resolve override > live data > strategy
// fallback; the outbound link resolves override ASIN > live ASIN > live
// URL > marketplace search. Missing placeholders fall back to insertion
// after a heading containing the product name, or, for the first product
// only, to the top of the document.
func Render(template string, products []Detection, overrides Overrides, affiliateTag string) string {
	out := template
	inserted := false

	for i, d := range products {
		card := buildCard(d, overrides.lookup(d), affiliateTag)
		placeholder := fmt.Sprintf("[[PRODUCT_BOX:%d]]", i)

		if strings.Contains(out, placeholder) {
			out = strings.ReplaceAll(out, placeholder, card)
			inserted = true
			continue
		}

		if next, ok := insertAfterHeading(out, d.Name, card); ok {
			out = next
			inserted = true
			continue
		}

		// Model emitted neither placeholder nor a matching heading. Only
		// the first card may lead the document, and only when nothing has
		// been placed yet; otherwise the card is dropped rather than
		// stacked at the top.
		if i == 0 && !inserted {
			out = card + out
			inserted = true
		}
	}

	// Placeholders with no corresponding product must not ship.
	out = productBoxRe.ReplaceAllString(out, "")

	return out
}

// buildCard renders the fixed-shape product card fragment.
func buildCard(d Detection, ov Override, affiliateTag string) string {
	title := first(ov.Title, dataTitle(d), d.Name)
	image := first(ov.Image, dataImage(d))
	price := first(ov.Price, dataPrice(d), d.FallbackPrice)
	link := resolveLink(d, ov, affiliateTag)

	var b strings.Builder
	b.WriteString(`<div class="nm-product-box">`)
	if image != "" {
		b.WriteString(fmt.Sprintf(`<img src="%s" alt="%s" loading="lazy"/>`,
			html.EscapeString(image), html.EscapeString(title)))
	}
	b.WriteString(fmt.Sprintf(`<h3 class="nm-product-title">%s</h3>`, html.EscapeString(title)))
	if price != "" {
		b.WriteString(fmt.Sprintf(`<span class="nm-product-price">%s</span>`, html.EscapeString(price)))
	}
	if d.Data != nil && d.Data.Rating > 0 {
		b.WriteString(fmt.Sprintf(`<span class="nm-product-rating">%.1f/5 (%d reviews)</span>`,
			d.Data.Rating, d.Data.ReviewCount))
	}
	b.WriteString(fmt.Sprintf(
		`<a href="%s" class="nm-product-cta" rel="nofollow sponsored" target="_blank">Check Price</a>`,
		html.EscapeString(link)))
	b.WriteString(`</div>`)
	return b.String()
}

func resolveLink(d Detection, ov Override, affiliateTag string) string {
	switch {
	case ov.ASIN != "":
		return amazon.ProductURL(ov.ASIN, affiliateTag)
	case d.Data != nil && d.Data.ASIN != "":
		return amazon.ProductURL(d.Data.ASIN, affiliateTag)
	case d.Data != nil && d.Data.URL != "":
		return d.Data.URL
	default:
		return amazon.SearchURL(d.Name, affiliateTag)
	}
}

// insertAfterHeading places fragment immediately after the first h1-h4
// whose text contains the leading words of name, case-insensitively.
func insertAfterHeading(doc, name, fragment string) (string, bool) {
	needle := strings.ToLower(leadingWords(name, 3))
	if needle == "" {
		return doc, false
	}

	headingRe := regexp.MustCompile(`(?is)<h[1-4][^>]*>.*?</h[1-4]>`)
	locs := headingRe.FindAllStringIndex(doc, -1)
	for _, loc := range locs {
		heading := doc[loc[0]:loc[1]]
		if strings.Contains(strings.ToLower(heading), needle) {
			return doc[:loc[1]] + fragment + doc[loc[1]:], true
		}
	}
	return doc, false
}

func leadingWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func dataTitle(d Detection) string {
	if d.Data == nil {
		return ""
	}
	return d.Data.Title
}

func dataImage(d Detection) string {
	if d.Data == nil {
		return ""
	}
	return d.Data.ImageURL
}

func dataPrice(d Detection) string {
	if d.Data == nil {
		return ""
	}
	return d.Data.Price
}

var linkPlaceholderRe = regexp.MustCompile(`\[\[LINK:(\d+)\]\]`)

// ResolveLinkPlaceholders replaces [[LINK:id]] markers with anchors to the
// matching inventory page. Unknown IDs are removed outright; the sanitizer
// would strip them anyway, but this keeps markers out of stored templates.
func ResolveLinkPlaceholders(body string, inventory []mesh.Node) string {
	return linkPlaceholderRe.ReplaceAllStringFunc(body, func(m string) string {
		sub := linkPlaceholderRe.FindStringSubmatch(m)
		var id int
		fmt.Sscanf(sub[1], "%d", &id)
		if node, ok := mesh.FindByID(inventory, id); ok {
			return fmt.Sprintf(`<a href="%s" class="nm-internal-link" title="%s">%s</a>`,
				node.URL, html.EscapeString(node.Title), html.EscapeString(node.Title))
		}
		return ""
	})
}
