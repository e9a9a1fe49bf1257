package ignore

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeIgnore(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".gitignore")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIsIgnored(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{".classlens/\n", true},
		{".classlens\n", true},
		{"/.classlens/\n", true},
		{"**/.classlens\n", true},
		{".*\n", true},
		{"# .classlens/\n", false},
		{"cmd/.classlens\n", false},
		{"classlens\n", false},
		{"node_modules/\n", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := IsIgnored(writeIgnore(t, tt.content))
		if err != nil {
			t.Fatalf("IsIgnored(%q): %v", tt.content, err)
		}
		if got != tt.want {
			t.Errorf("IsIgnored(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestAddEntryIsIdempotent(t *testing.T) {
	path := writeIgnore(t, "bin/")
	if err := AddEntry(path); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if err := AddEntry(path); err != nil {
		t.Fatalf("second AddEntry: %v", err)
	}
	data, _ := os.ReadFile(path)
	if got := strings.Count(string(data), ignorePattern); got != 1 {
		t.Errorf("pattern appears %d times:\n%s", got, data)
	}
	if !strings.HasPrefix(string(data), "bin/\n\n# classlens\n") {
		t.Errorf("unexpected content:\n%s", data)
	}
}

func TestHandleIgnoreFiles(t *testing.T) {
	root := t.TempDir()
	gitignore := filepath.Join(root, ".gitignore")
	if err := os.WriteFile(gitignore, []byte("bin/\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var asked []string
	confirm := func(title, _ string) (bool, error) {
		asked = append(asked, title)
		return true, nil
	}
	var out bytes.Buffer
	if err := HandleIgnoreFiles(root, confirm, &out); err != nil {
		t.Fatalf("HandleIgnoreFiles: %v", err)
	}

	if len(asked) != 1 {
		t.Errorf("expected one prompt (no .dockerignore), got %v", asked)
	}
	if ok, _ := IsIgnored(gitignore); !ok {
		t.Error("expected .gitignore to be updated")
	}
	if !strings.Contains(out.String(), "Added .classlens/ to Git") {
		t.Errorf("output = %q", out.String())
	}

	asked = nil
	if err := HandleIgnoreFiles(root, confirm, &out); err != nil {
		t.Fatal(err)
	}
	if len(asked) != 0 {
		t.Errorf("expected no prompt once ignored, got %v", asked)
	}
}

func TestHandleIgnoreFilesDeclined(t *testing.T) {
	root := t.TempDir()
	dockerignore := filepath.Join(root, ".dockerignore")
	if err := os.WriteFile(dockerignore, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	err := HandleIgnoreFiles(root, func(string, string) (bool, error) { return false, nil }, &out)
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := IsIgnored(dockerignore); ok {
		t.Error("declined prompt must not modify the file")
	}
	if !strings.Contains(out.String(), "Skipped adding to Docker") {
		t.Errorf("output = %q", out.String())
	}
}
