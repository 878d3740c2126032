package mesh

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "Best Air Fryers, Reviewed!",
			want:  []string{"air", "fryers", "reviewed"},
		},
		{
			name:  "drops stop words and short tokens",
			input: "The best of an era is now",
			want:  []string{"era", "now"},
		},
		{
			name:  "keeps digits",
			input: "iPhone 15 Pro Max review 2024",
			want:  []string{"iphone", "pro", "max", "review", "2024"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.input)
			assert.Len(t, got, len(tc.want))
			for _, tok := range tc.want {
				assert.Contains(t, got, tok)
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	inputs := []string{"Best Air Fryers 2024", "", "   ", "a b c the and"}
	for _, in := range inputs {
		assert.Equal(t, Tokenize(in), Tokenize(in))
	}
}

func TestTokenizeNeverYieldsStopWordsOrShortTokens(t *testing.T) {
	got := Tokenize("it is the top and best a an to of in on up")
	for tok := range got {
		assert.Greater(t, len(tok), 2)
		assert.NotContains(t, stopWords, tok)
	}
}

func TestRelevanceBounds(t *testing.T) {
	a := Tokenize("wireless noise cancelling headphones")
	b := Tokenize("wired gaming headphones review")

	r := Relevance(a, b)
	assert.GreaterOrEqual(t, r, 0.0)
	assert.LessOrEqual(t, r, 1.0)

	assert.Equal(t, 1.0, Relevance(a, a), "identical non-empty sets")
	assert.Equal(t, 0.0, Relevance(nil, nil), "two empty sets must not divide by zero")
	assert.Equal(t, 0.0, Relevance(a, nil))
}

func TestNeighborsRankingAndExclusion(t *testing.T) {
	pages := []Page{
		{ID: 1, Title: "Best Air Fryer Review", URL: "/air-fryer-review"},
		{ID: 2, Title: "Air Fryer Buying Guide", URL: "/air-fryer-guide"},
		{ID: 3, Title: "Slow Cooker Recipes", URL: "/slow-cooker"},
		{ID: 4, Title: "Air Fryer vs Oven", URL: "/air-fryer-vs-oven"},
	}
	nodes := Build(pages)

	got := Neighbors(nodes, 1, "Best Air Fryer Review", 3)
	require.Len(t, got, 3)

	for _, n := range got {
		assert.NotEqual(t, 1, n.ID, "target must be excluded")
	}
	// Both air-fryer pages must outrank the slow cooker page.
	assert.Equal(t, 3, got[2].ID)
	assert.GreaterOrEqual(t, got[0].Relevance, got[1].Relevance)
}

func TestNeighborsBackfillsToK(t *testing.T) {
	pages := []Page{
		{ID: 1, Title: "Espresso Machines"},
		{ID: 2, Title: "Completely Unrelated Gardening Post"},
		{ID: 3, Title: "Another Unrelated Post About Kayaks"},
	}
	nodes := Build(pages)

	got := Neighbors(nodes, 1, "Espresso Machines", 50)
	assert.Len(t, got, 2, "everything except the target, even at zero relevance")
}

func TestWorkerBuildAsync(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	w := NewWorker(ctx)

	pages := make([]Page, 0, 200)
	for i := 0; i < 200; i++ {
		pages = append(pages, Page{ID: i, Title: fmt.Sprintf("Post number %d about widgets", i)})
	}

	nodes, err := w.BuildAsync(ctx, pages)
	require.NoError(t, err)
	assert.Len(t, nodes, 200)
}

func TestWorkerBuildAsyncCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(ctx)
	cancel()

	_, err := w.BuildAsync(ctx, []Page{{ID: 1, Title: "x"}})
	assert.Error(t, err)
}
