package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/Papalexios/amz-neuralmesh/internal/mesh"
)

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{
			name:  "under limit unchanged",
			input: "short page text",
			limit: 100,
			want:  "short page text",
		},
		{
			name:  "ascii cut at limit",
			input: "abcdef",
			limit: 3,
			want:  "abc...",
		},
		{
			name:  "multibyte rune not split",
			input: "abécédaire",
			limit: 3, // lands inside the two-byte é
			want:  "ab...",
		},
		{
			name:  "four byte rune not split",
			input: "ab\U0001F600cd",
			limit: 4, // lands inside the emoji
			want:  "ab...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateText(tt.input, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestStrategyUserPromptListsInventory(t *testing.T) {
	neighbors := []mesh.Node{
		{ID: 2, Title: "Best Widget Accessories"},
		{ID: 3, Title: "Widget X vs Widget Y"},
	}

	prompt := buildStrategyUserPrompt("Widget X Review", strings.Repeat("word ", 50), neighbors, nil, 12000)

	assert.Contains(t, prompt, "PAGE TITLE: Widget X Review")
	assert.Contains(t, prompt, "2 | Best Widget Accessories")
	assert.Contains(t, prompt, "3 | Widget X vs Widget Y")
	assert.NotContains(t, prompt, "COMPETITOR SNIPPETS")
}
