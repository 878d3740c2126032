// Package export writes published HTML artifacts to disk so a run leaves
// an auditable copy outside the content store.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer persists one HTML file per published page.
type Writer struct {
	outputDir string
}

// New creates a Writer, creating outputDir if needed.
func New(outputDir string) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{outputDir: outputDir}, nil
}

// WritePage stores the final HTML for a page under a URL-derived filename.
func (w *Writer) WritePage(pageURL, html string) (string, error) {
	path := filepath.Join(w.outputDir, sanitizeFilename(pageURL)+".html")

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.WriteString(html); err != nil {
		return "", fmt.Errorf("failed to write to file %s: %w", path, err)
	}
	return path, nil
}

// sanitizeFilename creates a safe, flat filename from a URL.
func sanitizeFilename(url string) string {
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "www.")

	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " ", "&", "=", "#"}
	for _, char := range unsafe {
		url = strings.ReplaceAll(url, char, "_")
	}

	if len(url) > 200 {
		url = url[:200]
	}
	return strings.Trim(url, "_")
}
