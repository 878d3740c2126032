package rescue

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStrategy() Strategy {
	return Strategy{
		OldProduct:        "Widget 2000",
		NewProduct:        "Widget 3000",
		PrimaryKeywords:   []string{"widget review", "best widget"},
		SecondaryKeywords: []string{"widget 3000 vs 2000"},
		TargetAudience:    "home users",
		Verdict: Verdict{
			Score:   8.5,
			Pros:    []string{"fast", "quiet"},
			Cons:    []string{"pricey"},
			Summary: "A solid upgrade.",
		},
		Specs:            Specs{Price: "$199", Rating: 4.5, ReviewCount: 1200},
		InternalLinkIDs:  []int{12, 34, 56, 78, 90, 11},
		Outline:          []string{"Intro", "Specs", "Verdict"},
		BLUF:             "The Widget 3000 is the one to buy.",
		CommercialIntent: true,
		Products: []StrategyProduct{
			{Name: "Widget 3000", Context: "main pick", Recommended: true},
		},
	}
}

func TestParseStrategyRoundTrip(t *testing.T) {
	data, err := json.Marshal(sampleStrategy())
	require.NoError(t, err)

	got, err := ParseStrategy(string(data))
	require.NoError(t, err)
	assert.Equal(t, sampleStrategy(), *got)
}

func TestParseStrategyStripsFencesAndChatter(t *testing.T) {
	data, err := json.Marshal(sampleStrategy())
	require.NoError(t, err)

	raw := "Sure! Here is the strategy you asked for:\n```json\n" + string(data) + "\n```\nLet me know if you need changes."
	got, err := ParseStrategy(raw)
	require.NoError(t, err)
	assert.Equal(t, "Widget 3000", got.NewProduct)
	assert.Len(t, got.InternalLinkIDs, 6)
}

// Regression test for the control-character defense: literal newlines and
// tabs inside string values must not kill the strict parse.
func TestParseStrategyControlCharacters(t *testing.T) {
	raw := "{\"oldProduct\":\"Widget\t2000\",\"newProduct\":\"Widget\n3000\",\"verdict\":{\"score\":8,\"summary\":\"ok\"},\"products\":[{\"name\":\"Widget 3000\"}]}"

	got, err := ParseStrategy(raw)
	require.NoError(t, err)
	assert.Equal(t, "Widget\t2000", got.OldProduct)
	assert.Equal(t, "Widget\n3000", got.NewProduct)
}

func TestParseStrategyFieldRescue(t *testing.T) {
	// Trailing comma makes this invalid JSON; the per-field stage must
	// still recover the essentials.
	raw := `{
		"oldProduct": "Acme Blender Pro",
		"newProduct": "Acme Blender Max",
		"primaryKeywords": ["blender review", "acme blender"],
		"internalLinkIds": [3, 17, 22, 41, 55, 60],
		"verdict": {"score": 9.1, "pros": ["powerful"], "cons": ["loud"], "summary": "Great."},
		"products": [{"name": "Acme Blender Max", "context": "top pick", "recommended": true}],
		"bluf": "Buy the Max.",
	}`

	got, err := ParseStrategy(raw)
	require.NoError(t, err)
	assert.Equal(t, "Acme Blender Max", got.NewProduct)
	assert.Equal(t, []int{3, 17, 22, 41, 55, 60}, got.InternalLinkIDs)
	assert.InDelta(t, 9.1, got.Verdict.Score, 0.001)
	assert.Equal(t, []string{"powerful"}, got.Verdict.Pros)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Acme Blender Max", got.Products[0].Name)
	assert.True(t, got.CommercialIntent, "rescue default")
}

func TestParseStrategyUnusable(t *testing.T) {
	_, err := ParseStrategy("I could not generate a strategy, sorry.")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnusableResponse))
}

func TestParseContentRoundTrip(t *testing.T) {
	draft := ContentDraft{
		SGESummary:          "The Widget 3000 is the best widget for most people.",
		BodyHTML:            "<h2>Why upgrade</h2><p>" + strings.Repeat("Plenty of detail here. ", 10) + "</p>[[PRODUCT_BOX:0]]",
		FAQs:                []FAQ{{Question: "Is it loud?", Answer: "No."}},
		ComparisonTableHTML: "<table><tr><td>a</td></tr></table>",
	}
	data, err := json.Marshal(draft)
	require.NoError(t, err)

	got, err := ParseContent(string(data))
	require.NoError(t, err)
	assert.Equal(t, draft, *got)
}

func TestParseContentFieldRescue(t *testing.T) {
	body := "<p>" + strings.Repeat("Recovered body text. ", 10) + "</p>"
	raw := `garbage before {"sgeSummary": "Short answer.", "bodyHtml": "` + body + `",
		"faqs": [{"question": "Q1?", "answer": "A1."}], oops` + "}"

	got, err := ParseContent(raw)
	require.NoError(t, err)
	assert.Equal(t, body, got.BodyHTML)
	require.Len(t, got.FAQs, 1)
	assert.Equal(t, "Q1?", got.FAQs[0].Question)
}

func TestParseContentTooShortIsFatal(t *testing.T) {
	_, err := ParseContent(`{"sgeSummary": "x", "bodyHtml": "<p>tiny</p>"}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnusableResponse))
}
