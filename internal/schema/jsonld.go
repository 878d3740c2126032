// Package schema assembles the JSON-LD block appended to regenerated
// pages so answer engines can quote them directly.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Papalexios/amz-neuralmesh/internal/rescue"
)

type productLD struct {
	Context         string             `json:"@context"`
	Type            string             `json:"@type"`
	Name            string             `json:"name"`
	Description     string             `json:"description,omitempty"`
	Image           string             `json:"image,omitempty"`
	Review          *reviewLD          `json:"review,omitempty"`
	AggregateRating *aggregateRatingLD `json:"aggregateRating,omitempty"`
}

type reviewLD struct {
	Type         string   `json:"@type"`
	ReviewBody   string   `json:"reviewBody,omitempty"`
	ReviewRating ratingLD `json:"reviewRating"`
	Author       authorLD `json:"author"`
}

type ratingLD struct {
	Type        string  `json:"@type"`
	RatingValue float64 `json:"ratingValue"`
	BestRating  int     `json:"bestRating"`
}

type authorLD struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type aggregateRatingLD struct {
	Type        string  `json:"@type"`
	RatingValue float64 `json:"ratingValue"`
	ReviewCount int     `json:"reviewCount"`
}

type faqPageLD struct {
	Context    string       `json:"@context"`
	Type       string       `json:"@type"`
	MainEntity []questionLD `json:"mainEntity"`
}

type questionLD struct {
	Type           string   `json:"@type"`
	Name           string   `json:"name"`
	AcceptedAnswer answerLD `json:"acceptedAnswer"`
}

type answerLD struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// Build serializes the Product and FAQPage graphs for one regenerated
// page into a trailing script block. Returns "" when there is nothing
// worth emitting.
func Build(strategy *rescue.Strategy, faqs []rescue.FAQ, siteName, imageURL string, liveRating float64, reviewCount int) string {
	var blocks []string

	if strategy != nil && strategy.NewProduct != "" {
		p := productLD{
			Context:     "https://schema.org",
			Type:        "Product",
			Name:        strategy.NewProduct,
			Description: strategy.Verdict.Summary,
			Image:       imageURL,
		}
		if strategy.Verdict.Score > 0 {
			p.Review = &reviewLD{
				Type:         "Review",
				ReviewBody:   strategy.Verdict.Summary,
				ReviewRating: ratingLD{Type: "Rating", RatingValue: strategy.Verdict.Score, BestRating: 10},
				Author:       authorLD{Type: "Organization", Name: siteName},
			}
		}
		if liveRating > 0 && reviewCount > 0 {
			p.AggregateRating = &aggregateRatingLD{
				Type:        "AggregateRating",
				RatingValue: liveRating,
				ReviewCount: reviewCount,
			}
		}
		if data, err := json.Marshal(p); err == nil {
			blocks = append(blocks, string(data))
		}
	}

	if len(faqs) > 0 {
		f := faqPageLD{Context: "https://schema.org", Type: "FAQPage"}
		for _, q := range faqs {
			f.MainEntity = append(f.MainEntity, questionLD{
				Type:           "Question",
				Name:           q.Question,
				AcceptedAnswer: answerLD{Type: "Answer", Text: q.Answer},
			})
		}
		if data, err := json.Marshal(f); err == nil {
			blocks = append(blocks, string(data))
		}
	}

	if len(blocks) == 0 {
		return ""
	}

	var b strings.Builder
	for _, block := range blocks {
		b.WriteString(fmt.Sprintf("\n<script type=\"application/ld+json\">%s</script>", block))
	}
	return b.String()
}
