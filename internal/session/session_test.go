package session

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	dir := t.TempDir()

	state, err := Active(dir)
	if err != nil {
		t.Fatalf("Active should not error on missing file: %v", err)
	}
	if state != nil {
		t.Fatal("expected no session")
	}

	own, err := Begin(dir, "/src/A.java")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	state, err = Active(dir)
	if err != nil || state == nil {
		t.Fatalf("Active = %v, %v", state, err)
	}
	if state.PID != os.Getpid() || state.ActiveDocument != "/src/A.java" {
		t.Errorf("unexpected state %+v", state)
	}

	if err := SetActive(dir, own, "/src/B.java"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	state, _ = Active(dir)
	if state.ActiveDocument != "/src/B.java" {
		t.Errorf("active document = %q", state.ActiveDocument)
	}

	if err := End(dir); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := End(dir); err != nil {
		t.Fatalf("second End: %v", err)
	}
	if state, _ := Active(dir); state != nil {
		t.Error("expected no session after End")
	}
}

func TestActiveRemovesCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(StatePath(dir), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	state, err := Active(dir)
	if err != nil || state != nil {
		t.Errorf("Active = %v, %v", state, err)
	}
	if _, err := os.Stat(StatePath(dir)); !os.IsNotExist(err) {
		t.Error("expected corrupted session file to be removed")
	}
}

func TestActiveRemovesStaleSession(t *testing.T) {
	dir := t.TempDir()
	data, _ := json.Marshal(State{PID: 999999999, StartedAt: time.Now()})
	if err := os.WriteFile(StatePath(dir), data, 0644); err != nil {
		t.Fatal(err)
	}
	state, err := Active(dir)
	if err != nil || state != nil {
		t.Errorf("Active = %v, %v", state, err)
	}
	if _, err := os.Stat(StatePath(dir)); !os.IsNotExist(err) {
		t.Error("expected stale session file to be removed")
	}
}
