package document

import (
	"fmt"
	"sync"
)

// Workspace opens documents by reference and hands out fresh snapshots.
// Each open re-reads the file so callers always see the current text.
type Workspace struct {
	mu       sync.Mutex
	versions map[string]int
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{versions: map[string]int{}}
}

// Open loads the document identified by a file URI or path.
func (w *Workspace) Open(uri string) (*Document, error) {
	path, err := URIToPath(uri)
	if err != nil {
		return nil, err
	}

	doc, err := Load(path, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", uri, err)
	}

	w.mu.Lock()
	w.versions[doc.Path]++
	doc.Version = w.versions[doc.Path]
	w.mu.Unlock()

	return doc, nil
}
