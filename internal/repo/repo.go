package repo

import (
	"fmt"
	"os"
	"path/filepath"
)

const stateDirName = ".classlens"

// FindRoot finds the repository root directory.
// It first checks if .git exists in the current directory or any parent.
// If not found, it uses the current working directory as the repo root.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	return FindRootFrom(cwd), nil
}

// FindRootFrom walks up from dir looking for .git and returns dir itself
// when none is found.
func FindRootFrom(dir string) string {
	start := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return start
}

// StateDir returns the path to the .classlens directory for a given repo root.
func StateDir(repoRoot string) string {
	return filepath.Join(repoRoot, stateDirName)
}

// StateDirName is the name of the per-repository state directory.
func StateDirName() string {
	return stateDirName
}
