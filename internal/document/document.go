// Package document holds immutable text snapshots of source files and the
// offset/position conversions the lens layer needs.
package document

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Position is a 0-based line and rune column.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// Before reports whether p sorts before o.
func (p Position) Before(o Position) bool {
	return p.Line < o.Line || (p.Line == o.Line && p.Character < o.Character)
}

// Range is a half-open [Start, End) position range.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Document is a snapshot of one file's content.
type Document struct {
	URI     string
	Path    string
	Lang    Lang
	Version int
	Text    string

	lineStarts []int
}

// New builds a document snapshot from an absolute path and its text.
func New(path, text string, version int) *Document {
	return &Document{
		URI:        PathToURI(path),
		Path:       path,
		Lang:       DetectLang(path),
		Version:    version,
		Text:       text,
		lineStarts: computeLineStarts(text),
	}
}

// Load reads a document from disk.
func Load(path string, version int) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return New(abs, string(data), version), nil
}

func computeLineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	return len(d.lineStarts)
}

// PositionAt converts a byte offset to a position. Offsets are clamped to
// the document.
func (d *Document) PositionAt(offset int) Position {
	offset = min(max(offset, 0), len(d.Text))
	line := 0
	lo, hi := 0, len(d.lineStarts)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		if d.lineStarts[mid] <= offset {
			line = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	col := utf8.RuneCountInString(d.Text[d.lineStarts[line]:offset])
	return Position{Line: line, Character: col}
}

// OffsetAt converts a position back to a byte offset. Positions past the end
// of a line land on the line end; positions past the last line land on the
// end of the document.
func (d *Document) OffsetAt(p Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(d.lineStarts) {
		return len(d.Text)
	}
	start := d.lineStarts[p.Line]
	end := len(d.Text)
	if p.Line+1 < len(d.lineStarts) {
		end = d.lineStarts[p.Line+1] - 1
	}
	offset := start
	for n := 0; n < p.Character && offset < end; n++ {
		_, size := utf8.DecodeRuneInString(d.Text[offset:])
		offset += size
	}
	return offset
}

// RangeOf converts a byte span into a range.
func (d *Document) RangeOf(start, end int) Range {
	return Range{Start: d.PositionAt(start), End: d.PositionAt(end)}
}

// Slice returns the text covered by r.
func (d *Document) Slice(r Range) string {
	start, end := d.OffsetAt(r.Start), d.OffsetAt(r.End)
	if end < start {
		return ""
	}
	return d.Text[start:end]
}

// PathToURI converts an absolute path into a file:// URI.
func PathToURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// URIToPath converts a file:// URI (or a plain path) back to a path.
func URIToPath(uri string) (string, error) {
	if !strings.HasPrefix(uri, "file:") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid document uri %q: %w", uri, err)
	}
	return filepath.FromSlash(u.Path), nil
}
