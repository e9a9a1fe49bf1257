// Package report writes "Show Testable Methods" results as markdown files
// with YAML frontmatter.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Meta is the classlens metadata stored in the frontmatter.
type Meta struct {
	ID        string `yaml:"id" json:"id"`
	Document  string `yaml:"document" json:"document"`
	Class     string `yaml:"class" json:"class"`
	Offset    int    `yaml:"offset" json:"offset"`
	BodyEnd   int    `yaml:"bodyEnd" json:"bodyEnd"`
	CreatedAt string `yaml:"createdAt" json:"createdAt"`
}

// Report is a parsed report file.
type Report struct {
	Meta    Meta
	Methods []string
}

type frontmatterWrapper struct {
	Classlens Meta `yaml:"classlens"`
}

// NewID generates a report ID.
func NewID() string {
	return uuid.New().String()
}

// New builds a report with a fresh ID and timestamp.
func New(document, class string, offset, bodyEnd int, methods []string, at time.Time) *Report {
	return &Report{
		Meta: Meta{
			ID:        NewID(),
			Document:  document,
			Class:     class,
			Offset:    offset,
			BodyEnd:   bodyEnd,
			CreatedAt: at.UTC().Format(time.RFC3339),
		},
		Methods: methods,
	}
}

// Marshal renders the report as markdown with frontmatter.
func Marshal(r *Report) ([]byte, error) {
	fmBytes, err := yaml.Marshal(&frontmatterWrapper{Classlens: r.Meta})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fmBytes)
	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, "# Testable Methods: %s\n\n", r.Meta.Class)
	for _, m := range r.Methods {
		fmt.Fprintf(&buf, "- %s\n", m)
	}
	return buf.Bytes(), nil
}

// Parse reads a report produced by Marshal.
func Parse(data []byte) (*Report, error) {
	fmRaw, body, ok := splitFrontmatter(string(data))
	if !ok {
		return nil, fmt.Errorf("no frontmatter found")
	}

	var wrapper frontmatterWrapper
	if err := yaml.Unmarshal([]byte(fmRaw), &wrapper); err != nil {
		return nil, fmt.Errorf("invalid YAML frontmatter: %w", err)
	}
	if wrapper.Classlens.ID == "" {
		return nil, fmt.Errorf("missing classlens.id in frontmatter")
	}

	r := &Report{Meta: wrapper.Classlens}
	for _, line := range strings.Split(body, "\n") {
		if name, ok := strings.CutPrefix(strings.TrimSpace(line), "- "); ok {
			r.Methods = append(r.Methods, name)
		}
	}
	return r, nil
}

// WriteFile writes the report to path, creating parent directories.
func WriteFile(path string, r *Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func splitFrontmatter(content string) (fmRaw string, body string, hasFM bool) {
	const sep = "---"

	lines := strings.Split(content, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != sep {
		return "", content, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == sep {
			fmRaw = strings.Join(lines[1:i], "\n")
			body = strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n")
			return fmRaw, body, true
		}
	}

	return "", content, false
}
