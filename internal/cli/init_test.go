package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mesdx/classlens/internal/config"
)

func TestUpdateGuidanceFile(t *testing.T) {
	tmpDir := t.TempDir()
	claudeMdPath := filepath.Join(tmpDir, "CLAUDE.md")
	managed := generateGuidance("claude mcp add classlens --transport stdio -- classlens mcp --cwd <REPO_ROOT>")

	t.Run("CreateNew", func(t *testing.T) {
		if err := updateGuidanceFile(claudeMdPath, managed); err != nil {
			t.Fatalf("failed to create CLAUDE.md: %v", err)
		}

		content, err := os.ReadFile(claudeMdPath)
		if err != nil {
			t.Fatalf("failed to read CLAUDE.md: %v", err)
		}
		contentStr := string(content)
		if !strings.HasPrefix(contentStr, guidanceBeginMarker) {
			t.Error("CLAUDE.md should start with begin marker when created new")
		}
		if !strings.Contains(contentStr, guidanceEndMarker) {
			t.Error("CLAUDE.md missing end marker")
		}
		if !strings.Contains(contentStr, toolTestableMethods) {
			t.Error("CLAUDE.md missing tool reference")
		}
		if !strings.Contains(contentStr, "claude mcp add classlens") {
			t.Error("CLAUDE.md missing setup command")
		}
	})

	t.Run("UpdateExistingWithMarkers", func(t *testing.T) {
		initialContent := "# My Project\n\n" + guidanceBeginMarker + "\nOld classlens content.\n" + guidanceEndMarker + "\n\nMore content.\n"
		if err := os.WriteFile(claudeMdPath, []byte(initialContent), 0644); err != nil {
			t.Fatalf("failed to write initial CLAUDE.md: %v", err)
		}
		if err := updateGuidanceFile(claudeMdPath, managed); err != nil {
			t.Fatalf("failed to update CLAUDE.md: %v", err)
		}

		content, err := os.ReadFile(claudeMdPath)
		if err != nil {
			t.Fatalf("failed to read updated CLAUDE.md: %v", err)
		}
		contentStr := string(content)
		for _, want := range []string{"My Project", "More content", toolFindClasses} {
			if !strings.Contains(contentStr, want) {
				t.Errorf("CLAUDE.md missing %q", want)
			}
		}
		if strings.Contains(contentStr, "Old classlens content") {
			t.Error("CLAUDE.md still contains old content between markers")
		}
	})
}

func TestUpdateManagedSection(t *testing.T) {
	tests := []struct {
		name            string
		existing        string
		managedContent  string
		wantContains    []string
		wantNotContains []string
	}{
		{
			name:           "NoMarkers",
			existing:       "# Title\n\nContent",
			managedContent: "New managed content",
			wantContains: []string{
				"# Title",
				"Content",
				guidanceBeginMarker,
				"New managed content",
				guidanceEndMarker,
			},
		},
		{
			name: "ExistingMarkers",
			existing: "# Title\n" +
				guidanceBeginMarker + "\nOld content\n" + guidanceEndMarker + "\nAfter",
			managedContent: "New managed content",
			wantContains: []string{
				"# Title",
				"New managed content",
				"After",
			},
			wantNotContains: []string{
				"Old content",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := updateManagedSection(tt.existing, tt.managedContent)

			for _, want := range tt.wantContains {
				if !strings.Contains(result, want) {
					t.Errorf("result missing expected content: %q", want)
				}
			}
			for _, notWant := range tt.wantNotContains {
				if strings.Contains(result, notWant) {
					t.Errorf("result contains unwanted content: %q", notWant)
				}
			}
		})
	}
}

func TestDetectAssistants(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".cursor"), 0755); err != nil {
		t.Fatal(err)
	}

	got := map[AssistantKind]bool{}
	for _, a := range detectAssistants(root) {
		got[a.Kind] = a.Detected
	}
	if got[AssistantClaude] {
		t.Error("claude should not be detected without CLAUDE.md")
	}
	if !got[AssistantCursor] {
		t.Error("cursor should be detected from .cursor/")
	}

	rel, err := writeAssistantGuidance(root, AssistantCursor)
	if err != nil {
		t.Fatalf("writeAssistantGuidance: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(content), "---\n") {
		t.Error("cursor rule should start with frontmatter")
	}
}

func TestInitStateDir(t *testing.T) {
	stateDir := filepath.Join(t.TempDir(), ".classlens")

	wrote, err := initStateDir(stateDir, false)
	if err != nil {
		t.Fatalf("initStateDir: %v", err)
	}
	if !wrote {
		t.Fatal("expected config to be written on first run")
	}

	// A customised config survives a second init.
	cfg := config.Default()
	cfg.DebounceMS = 50
	if err := config.Save(cfg, stateDir); err != nil {
		t.Fatal(err)
	}
	wrote, err = initStateDir(stateDir, false)
	if err != nil {
		t.Fatal(err)
	}
	if wrote {
		t.Error("existing config should be kept without force")
	}
	loaded, err := config.Load(stateDir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DebounceMS != 50 {
		t.Errorf("DebounceMS = %d, want 50", loaded.DebounceMS)
	}

	wrote, err = initStateDir(stateDir, true)
	if err != nil {
		t.Fatal(err)
	}
	if !wrote {
		t.Error("force should rewrite the config")
	}
	loaded, err = config.Load(stateDir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DebounceMS != config.Default().DebounceMS {
		t.Errorf("DebounceMS = %d, want default", loaded.DebounceMS)
	}
}
