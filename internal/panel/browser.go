package panel

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/browser"
)

const htmlFileName = "testable-methods.html"

// WriteHTML writes the panel body to dir and returns the file path. The same
// file is overwritten on every call so the browser tab shows the latest list.
func WriteHTML(p *Panel, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create panel directory: %w", err)
	}
	path := filepath.Join(dir, htmlFileName)
	if err := os.WriteFile(path, []byte(p.Body()), 0644); err != nil {
		return "", fmt.Errorf("failed to write panel html: %w", err)
	}
	return path, nil
}

// OpenInBrowser opens a written panel file in the system browser.
func OpenInBrowser(path string) error {
	if err := browser.OpenFile(path); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
