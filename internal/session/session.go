// Package session records which document a running `classlens watch` is
// following, so other commands can act on the active document.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

const stateFileName = "session.json"

// State is the content of the session file.
type State struct {
	PID            int       `json:"pid"`
	StartedAt      time.Time `json:"startedAt"`
	ActiveDocument string    `json:"activeDocument,omitempty"`
}

// StatePath returns the path to the session file.
func StatePath(stateDir string) string {
	return filepath.Join(stateDir, stateFileName)
}

// Begin writes a session file for the current process.
func Begin(stateDir, activeDocument string) (*State, error) {
	state := &State{
		PID:            os.Getpid(),
		StartedAt:      time.Now().UTC(),
		ActiveDocument: activeDocument,
	}
	if err := write(stateDir, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SetActive updates the active document of the session owned by this process.
func SetActive(stateDir string, state *State, activeDocument string) error {
	state.ActiveDocument = activeDocument
	return write(stateDir, state)
}

// End removes the session file.
func End(stateDir string) error {
	if err := os.Remove(StatePath(stateDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Active returns the live session, or nil when no watch is running. Stale or
// corrupted session files are removed.
func Active(stateDir string) (*State, error) {
	statePath := StatePath(stateDir)

	data, err := os.ReadFile(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		_ = os.Remove(statePath)
		return nil, nil
	}

	process, err := os.FindProcess(state.PID)
	if err != nil {
		_ = os.Remove(statePath)
		return nil, nil
	}
	// Signal 0 probes for liveness without delivering a signal.
	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = os.Remove(statePath)
		return nil, nil
	}

	return &state, nil
}

func write(stateDir string, state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(StatePath(stateDir), data, 0644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
