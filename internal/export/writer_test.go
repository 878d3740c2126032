package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePage(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "out"))
	require.NoError(t, err)

	path, err := w.WritePage("https://example.com/air-fryer-review/", "<p>final</p>")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>final</p>", string(content))
	assert.Contains(t, filepath.Base(path), "example_com_air-fryer-review")
}
