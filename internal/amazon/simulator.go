package amazon

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
)

// Simulator is the deterministic stand-in for the live marketplace: the
// same query always yields the same plausible product, so preview and
// publish stay byte-consistent without API credentials.
type Simulator struct{}

// NewSimulator creates a Simulator.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Lookup derives stable pseudo-data from the query hash.
func (s *Simulator) Lookup(_ context.Context, productQuery string) (*Product, error) {
	q := strings.TrimSpace(productQuery)
	if q == "" {
		return nil, nil
	}

	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(q)))
	sum := h.Sum64()

	asin := fmt.Sprintf("B0%08X", uint32(sum))
	price := fmt.Sprintf("$%d.%02d", 20+sum%480, sum%100)
	rating := 3.5 + float64(sum%15)/10.0
	reviews := int(100 + sum%25000)

	return &Product{
		Title:       q,
		ImageURL:    fmt.Sprintf("https://m.media-amazon.com/images/I/%s.jpg", asin),
		Price:       price,
		URL:         fmt.Sprintf("https://www.amazon.com/dp/%s", asin),
		ASIN:        asin,
		Rating:      rating,
		ReviewCount: reviews,
		Features:    []string{"Simulated listing", "Pricing not live"},
	}, nil
}

// SearchURL builds the marketplace search fallback link used when no ASIN
// or direct URL is known.
func SearchURL(query, affiliateTag string) string {
	u := "https://www.amazon.com/s?k=" + url.QueryEscape(query)
	if affiliateTag != "" {
		u += "&tag=" + url.QueryEscape(affiliateTag)
	}
	return u
}

// ProductURL builds a direct detail-page link for an ASIN.
func ProductURL(asin, affiliateTag string) string {
	u := "https://www.amazon.com/dp/" + url.PathEscape(asin)
	if affiliateTag != "" {
		u += "?tag=" + url.QueryEscape(affiliateTag)
	}
	return u
}
