package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mesdx/classlens/internal/document"
)

// excludedDirs are never descended into.
var excludedDirs = map[string]bool{
	".git":         true,
	stateDirName:   true,
	"node_modules": true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
}

// Matcher reports whether a slash-separated relative path is excluded.
type Matcher struct {
	globs []glob.Glob
}

// NewMatcher compiles exclude patterns such as "**/build/**".
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Excluded reports whether rel matches any pattern. Paths are also tested
// with a leading "/" so "**/x/**" excludes a top-level "x" directory.
func (m *Matcher) Excluded(rel string) bool {
	if m == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range m.globs {
		if g.Match(rel) || g.Match("/"+rel) {
			return true
		}
	}
	return false
}

// DiscoverSourceFiles expands paths into the decorated source files they
// contain. Files are returned as given; directories are walked recursively,
// skipping hidden and excluded directories. Results are sorted and unique.
func DiscoverSourceFiles(paths []string, m *Matcher) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil && !seen[abs] {
			seen[abs] = true
			files = append(files, abs)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to access %q: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil || rel == "." {
				return nil
			}
			if d.IsDir() {
				name := d.Name()
				if excludedDirs[name] || strings.HasPrefix(name, ".") || m.Excluded(rel+"/") {
					return filepath.SkipDir
				}
				return nil
			}
			if document.DetectLang(path) == document.LangUnknown || m.Excluded(rel) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory tree: %w", err)
		}
	}

	sort.Strings(files)
	return files, nil
}
