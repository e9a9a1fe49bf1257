package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// AssistantKind is a coding assistant that can be pointed at the MCP server.
type AssistantKind string

const (
	AssistantClaude AssistantKind = "claude"
	AssistantCursor AssistantKind = "cursor"
)

const (
	guidanceBeginMarker = "<!-- classlens:begin -->"
	guidanceEndMarker   = "<!-- classlens:end -->"
)

// AssistantInfo holds detection results for one assistant.
type AssistantInfo struct {
	Kind        AssistantKind
	DisplayName string
	TargetPath  string // relative to repo root
	Detected    bool
}

var assistantRegistry = []struct {
	Kind        AssistantKind
	DisplayName string
	TargetPath  string
}{
	{AssistantClaude, "Claude Code", "CLAUDE.md"},
	{AssistantCursor, "Cursor", filepath.Join(".cursor", "rules", "classlens.mdc")},
}

func detectAssistants(repoRoot string) []AssistantInfo {
	exists := func(rel string) bool {
		_, err := os.Stat(filepath.Join(repoRoot, rel))
		return err == nil
	}
	result := make([]AssistantInfo, 0, len(assistantRegistry))
	for _, a := range assistantRegistry {
		detected := false
		switch a.Kind {
		case AssistantClaude:
			detected = exists("CLAUDE.md")
		case AssistantCursor:
			detected = exists(".cursor") || exists(".cursorrules")
		}
		result = append(result, AssistantInfo{
			Kind:        a.Kind,
			DisplayName: a.DisplayName,
			TargetPath:  a.TargetPath,
			Detected:    detected,
		})
	}
	return result
}

// promptAndUpdateAssistantGuidance offers to write MCP setup notes for the
// detected assistants. Nothing is asked when none is detected.
func promptAndUpdateAssistantGuidance(cmd *cobra.Command, repoRoot string) error {
	var detected []AssistantInfo
	for _, a := range detectAssistants(repoRoot) {
		if a.Detected {
			detected = append(detected, a)
		}
	}
	if len(detected) == 0 {
		return nil
	}

	var options []huh.Option[string]
	var selected []string
	for _, a := range detected {
		options = append(options, huh.NewOption(a.DisplayName+" ("+a.TargetPath+")", string(a.Kind)).Selected(true))
		selected = append(selected, string(a.Kind))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Write classlens MCP guidance for which assistants?").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}

	for _, s := range selected {
		kind := AssistantKind(s)
		path, err := writeAssistantGuidance(repoRoot, kind)
		if err != nil {
			cmd.Printf("%s Warning: failed to write %s guidance: %v\n", warnStyle.Render("!"), kind, err)
			continue
		}
		cmd.Printf("%s Written classlens guidance to %s\n", successStyle.Render("✓"), path)
	}
	return nil
}

// writeAssistantGuidance writes or updates the guidance file for kind and
// returns its repo-relative path.
func writeAssistantGuidance(repoRoot string, kind AssistantKind) (string, error) {
	switch kind {
	case AssistantClaude:
		return "CLAUDE.md", updateGuidanceFile(filepath.Join(repoRoot, "CLAUDE.md"), generateGuidance("claude mcp add classlens --transport stdio -- classlens mcp --cwd <REPO_ROOT>"))
	case AssistantCursor:
		rel := filepath.Join(".cursor", "rules", "classlens.mdc")
		abs := filepath.Join(repoRoot, rel)
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return "", err
		}
		content := "---\ndescription: \"classlens - Java class markers and testable methods via MCP\"\nalwaysApply: true\n---\n\n" +
			generateGuidance(`{"mcpServers": {"classlens": {"command": "classlens", "args": ["mcp", "--cwd", "<REPO_ROOT>"]}}}`)
		return rel, os.WriteFile(abs, []byte(content), 0644)
	}
	return "", fmt.Errorf("unknown assistant kind: %s", kind)
}

// updateGuidanceFile creates path with only the managed section, or replaces
// the managed section of an existing file.
func updateGuidanceFile(path, managedContent string) error {
	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		content := guidanceBeginMarker + "\n" + managedContent + "\n" + guidanceEndMarker + "\n"
		return os.WriteFile(path, []byte(content), 0644)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(updateManagedSection(string(existing), managedContent)), 0644)
}

// updateManagedSection replaces or appends the managed section in existing content.
func updateManagedSection(existing string, managedContent string) string {
	beginIdx := strings.Index(existing, guidanceBeginMarker)
	endIdx := strings.Index(existing, guidanceEndMarker)

	if beginIdx >= 0 && endIdx > beginIdx {
		before := existing[:beginIdx]
		after := existing[endIdx+len(guidanceEndMarker):]
		return before + guidanceBeginMarker + "\n" + managedContent + "\n" + guidanceEndMarker + after
	}

	var buf bytes.Buffer
	buf.WriteString(existing)
	if !strings.HasSuffix(existing, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
	buf.WriteString(guidanceBeginMarker)
	buf.WriteString("\n")
	buf.WriteString(managedContent)
	buf.WriteString("\n")
	buf.WriteString(guidanceEndMarker)
	buf.WriteString("\n")
	return buf.String()
}

func bt(s string) string { return "`" + s + "`" }

func generateGuidance(setup string) string {
	return `## classlens

classlens lists the class declarations of Java files and the testable methods of each class.

### Setup

` + "```" + `
` + setup + `
` + "```" + `

Replace ` + bt("<REPO_ROOT>") + ` with the absolute path to this repository.

### Available Tools

- ` + bt(toolFindClasses) + ` - class markers of a file (name, line, column)
- ` + bt(toolTestableMethods) + ` - method names declared in one class body
- ` + bt(toolHistory) + ` - recent Show Testable Methods runs`
}
