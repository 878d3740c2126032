package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Papalexios/amz-neuralmesh/internal/mesh"
)

func testInventory() []mesh.Node {
	return []mesh.Node{
		{ID: 1, Title: "Air Fryer Guide", URL: "https://example.com/air-fryer-guide/"},
		{ID: 2, Title: "Oven Reviews", URL: "https://example.com/oven-reviews"},
	}
}

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"https://example.com/air-fryer-guide/", "/air-fryer-guide"},
		{"http://www.example.com/air-fryer-guide", "/air-fryer-guide"},
		{"/air-fryer-guide/", "/air-fryer-guide"},
		{"air-fryer-guide", "/air-fryer-guide"},
		{"/", "/"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, NormalizePath(tc.in), "input %q", tc.in)
	}
}

func TestApplyRewritesMatchingInternalLink(t *testing.T) {
	s := New("example.com", testInventory())

	// Protocol and trailing-slash differences must still match.
	in := `<p>See the <a href="/air-fryer-guide">guide</a> and <a href="http://example.com/oven-reviews/">ovens</a>.</p>`
	out, err := s.Apply(in)
	require.NoError(t, err)

	assert.Contains(t, out, `href="https://example.com/air-fryer-guide/"`)
	assert.Contains(t, out, `href="https://example.com/oven-reviews"`)
	assert.Contains(t, out, `class="nm-internal-link"`)
	assert.Contains(t, out, `title="Air Fryer Guide"`)
}

func TestApplyStripsHallucinatedInternalLink(t *testing.T) {
	s := New("example.com", testInventory())

	in := `<p>Read our <a href="/totally-made-up-post">in-depth teardown</a> today.</p>`
	out, err := s.Apply(in)
	require.NoError(t, err)

	assert.NotContains(t, out, "totally-made-up-post")
	assert.NotContains(t, out, "<a")
	assert.Contains(t, out, "in-depth teardown", "visible text survives")
}

func TestApplyTagsAffiliateLinks(t *testing.T) {
	s := New("example.com", testInventory())

	in := `<p><a href="https://www.amazon.com/dp/B000TEST00">Check price</a></p>`
	out, err := s.Apply(in)
	require.NoError(t, err)

	assert.Contains(t, out, `rel="nofollow sponsored"`)
	assert.Contains(t, out, `class="nm-affiliate-link"`)
	assert.Contains(t, out, `https://www.amazon.com/dp/B000TEST00`, "target unchanged")
}

func TestApplyPassesOtherExternalLinks(t *testing.T) {
	s := New("example.com", testInventory())

	in := `<p><a href="https://en.wikipedia.org/wiki/Air_fryer">background</a></p>`
	out, err := s.Apply(in)
	require.NoError(t, err)

	assert.Contains(t, out, `href="https://en.wikipedia.org/wiki/Air_fryer"`)
	assert.NotContains(t, out, "nofollow")
}
