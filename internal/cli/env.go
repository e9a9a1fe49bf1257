package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/mesdx/classlens/internal/config"
	"github.com/mesdx/classlens/internal/db"
	"github.com/mesdx/classlens/internal/document"
	"github.com/mesdx/classlens/internal/lens"
	"github.com/mesdx/classlens/internal/panel"
	"github.com/mesdx/classlens/internal/repo"
	"github.com/mesdx/classlens/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	pathStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// env is the per-invocation context shared by all commands.
type env struct {
	RepoRoot string
	StateDir string
	Config   *config.Config
}

func changeDir(cmd *cobra.Command) error {
	cwd, err := cmd.Flags().GetString("cwd")
	if err != nil {
		return fmt.Errorf("failed to get cwd flag: %w", err)
	}
	if cwd == "" {
		return nil
	}
	info, err := os.Stat(cwd)
	if err != nil {
		return fmt.Errorf("failed to access cwd directory %q: %w", cwd, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cwd path %q is not a directory", cwd)
	}
	if err := os.Chdir(cwd); err != nil {
		return fmt.Errorf("failed to change to directory %q: %w", cwd, err)
	}
	return nil
}

func loadEnv() (*env, error) {
	repoRoot, err := repo.FindRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find repo root: %w", err)
	}
	stateDir := repo.StateDir(repoRoot)
	cfg, err := config.Load(stateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &env{RepoRoot: repoRoot, StateDir: stateDir, Config: cfg}, nil
}

func (e *env) lensOptions() lens.Options {
	return lens.Options{
		HoverMessage: e.Config.Lens.Hover,
		LensTitle:    e.Config.Lens.Title,
		GutterIcon:   e.Config.GutterIcon,
		PanelTitle:   e.Config.Panel.Title,
	}
}

// openStore opens and migrates the history database.
func (e *env) openStore() (*db.Store, func(), error) {
	dbPath := db.DatabasePath(e.StateDir)
	if err := db.Initialize(dbPath); err != nil {
		return nil, nil, err
	}
	d, err := db.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return db.NewStore(d), func() { _ = d.Close() }, nil
}

// openHistory opens the history store when history is enabled. A missing or
// broken database disables recording instead of failing the command.
func (e *env) openHistory() (*db.Store, func()) {
	if !e.Config.History.Enabled {
		return nil, func() {}
	}
	store, closeStore, err := e.openStore()
	if err != nil {
		log.Printf("history disabled: %v", err)
		return nil, func() {}
	}
	return store, closeStore
}

// newController wires a lens controller for the CLI. The recorder is only
// attached when history is available.
func (e *env) newController(picker lens.Picker, renderer panel.Renderer) (*lens.Controller, func()) {
	store, closeStore := e.openHistory()
	var rec lens.Recorder
	if store != nil {
		rec = store
	}
	c := lens.NewController(e.lensOptions(), document.NewWorkspace(), picker, panel.NewManager(renderer), rec)
	return c, closeStore
}

// resolveDocument returns the path argument, or the active document of a
// running watch session. An empty result means there is nothing to scan.
func (e *env) resolveDocument(args []string) (string, error) {
	if len(args) > 0 {
		return filepath.Abs(args[0])
	}
	st, err := session.Active(e.StateDir)
	if err != nil {
		return "", err
	}
	if st == nil {
		return "", nil
	}
	return st.ActiveDocument, nil
}

func (e *env) relPath(path string) string {
	if rel, err := filepath.Rel(e.RepoRoot, path); err == nil && !filepath.IsAbs(rel) && rel != "" && rel[0] != '.' {
		return rel
	}
	return path
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func requireTTY() error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return fmt.Errorf("this command is interactive and needs a terminal; use 'classlens methods' instead")
	}
	return nil
}

// initLog redirects the standard logger to <stateDir>/<name>.log so nothing
// leaks into the terminal or stdio transport. The file is truncated on each
// start.
func initLog(stateDir, name string) (func(), error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, err
	}
	logPath := filepath.Join(stateDir, name+".log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Printf("%s starting (log: %s)", name, logPath)
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

// quietLog silences the standard logger for short-lived commands.
func quietLog() func() {
	prev := log.Writer()
	log.SetOutput(io.Discard)
	return func() { log.SetOutput(prev) }
}
