package ignore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/gobwas/glob"
)

const (
	gitignoreFile    = ".gitignore"
	dockerignoreFile = ".dockerignore"
	ignorePattern    = ".classlens/"
	commentMarker    = "# classlens"
)

// Confirm asks a yes/no question.
type Confirm func(title, description string) (bool, error)

// HuhConfirm prompts on the terminal.
func HuhConfirm(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("interactive prompt failed: %w", err)
	}
	return ok, nil
}

// HandleIgnoreFiles offers to add .classlens/ to existing .gitignore and
// .dockerignore files. Progress lines are written to out.
func HandleIgnoreFiles(repoRoot string, confirm Confirm, out io.Writer) error {
	if err := handleIgnoreFile(filepath.Join(repoRoot, gitignoreFile), "Git", "keeps the local history database and session out of version control", confirm, out); err != nil {
		return fmt.Errorf("failed to handle .gitignore: %w", err)
	}
	if err := handleIgnoreFile(filepath.Join(repoRoot, dockerignoreFile), "Docker", "keeps local classlens state out of the build context", confirm, out); err != nil {
		return fmt.Errorf("failed to handle .dockerignore: %w", err)
	}
	return nil
}

func handleIgnoreFile(filePath, toolName, impact string, confirm Confirm, out io.Writer) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	ignored, err := IsIgnored(filePath)
	if err != nil {
		return fmt.Errorf("failed to check ignore file: %w", err)
	}
	if ignored {
		return nil
	}

	add, err := confirm(fmt.Sprintf("Add %s to %s?", ignorePattern, toolName), "This "+impact)
	if err != nil {
		return err
	}
	if !add {
		fmt.Fprintf(out, "→ Skipped adding to %s\n", toolName)
		return nil
	}

	if err := AddEntry(filePath); err != nil {
		return fmt.Errorf("failed to add ignore entry: %w", err)
	}
	fmt.Fprintf(out, "✓ Added %s to %s\n", ignorePattern, toolName)
	return nil
}

// IsIgnored reports whether a line of the ignore file already covers the
// top-level .classlens/ directory.
func IsIgnored(filePath string) (bool, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return false, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		pattern := strings.TrimPrefix(strings.TrimSuffix(line, "/"), "/")
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			continue
		}
		if g.Match(".classlens") || g.Match("/.classlens") {
			return true, nil
		}
	}
	return false, nil
}

// AddEntry appends .classlens/ to the ignore file unless it is already
// covered.
func AddEntry(filePath string) error {
	ignored, err := IsIgnored(filePath)
	if err != nil {
		return fmt.Errorf("failed to re-check ignore file: %w", err)
	}
	if ignored {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.Write(data)
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s\n%s\n", commentMarker, ignorePattern)

	return os.WriteFile(filePath, []byte(b.String()), 0644)
}
