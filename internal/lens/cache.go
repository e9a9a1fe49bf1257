package lens

import (
	"fmt"
	"os"
	"time"

	"github.com/maypok86/otter"

	"github.com/mesdx/classlens/internal/document"
)

type cachedSnapshot struct {
	modTime time.Time
	size    int64
	snap    Snapshot
}

// SnapshotCache memoizes Compute per file. An entry is reused only while the
// file's size and modification time are unchanged.
type SnapshotCache struct {
	opts  Options
	cache otter.Cache[string, cachedSnapshot]
}

// NewSnapshotCache creates a cache holding up to capacity files.
func NewSnapshotCache(capacity int, opts Options) (*SnapshotCache, error) {
	c, err := otter.MustBuilder[string, cachedSnapshot](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot cache: %w", err)
	}
	return &SnapshotCache{opts: opts.withDefaults(), cache: c}, nil
}

// Load returns the markers of the file at path, computing them when the file
// changed since the last call.
func (c *SnapshotCache) Load(path string) (Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if e, ok := c.cache.Get(path); ok && e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
		return e.snap, nil
	}

	doc, err := document.Load(path, 1)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Compute(doc, c.opts)
	c.cache.Set(path, cachedSnapshot{modTime: info.ModTime(), size: info.Size(), snap: snap})
	return snap, nil
}

// Close releases the cache.
func (c *SnapshotCache) Close() {
	c.cache.Close()
}
