package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mesdx/classlens/internal/document"
	"github.com/mesdx/classlens/internal/lens"
	"github.com/mesdx/classlens/internal/panel"
	"github.com/mesdx/classlens/internal/session"
	"github.com/mesdx/classlens/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Redraw class markers whenever a file changes",
		Long: `Track one Java file and print its class markers after every change.
Type another path on stdin to switch the tracked file. While watch runs,
'classlens show' and 'classlens methods' default to the tracked file.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	closeLog, err := initLog(e.StateDir, "watch")
	if err != nil {
		return fmt.Errorf("failed to initialize watch log: %w", err)
	}
	defer closeLog()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, closeStore := e.newController(nil, panel.TerminalRenderer{})
	defer closeStore()

	out := cmd.OutOrStdout()
	c.Subscribe(func(s lens.Snapshot) {
		printMarkers(out, e, s)
	})

	ws := document.NewWorkspace()
	w, err := watch.New(e.Config.Debounce(), func(changed string) {
		doc, err := ws.Open(changed)
		if err != nil {
			log.Printf("watch: %v", err)
			return
		}
		c.OnDocumentChanged(doc)
	})
	if err != nil {
		return err
	}

	st, err := session.Begin(e.StateDir, "")
	if err != nil {
		return err
	}
	defer func() {
		if err := session.End(e.StateDir); err != nil {
			log.Printf("watch: %v", err)
		}
	}()

	activateFile := func(p string) error {
		doc, err := ws.Open(p)
		if err != nil {
			return err
		}
		if err := w.SetActive(doc.Path); err != nil {
			return err
		}
		if err := session.SetActive(e.StateDir, st, doc.Path); err != nil {
			log.Printf("watch: %v", err)
		}
		c.OnActiveDocumentChanged(doc)
		return nil
	}
	if err := activateFile(path); err != nil {
		return err
	}

	go readActiveSwitches(ctx, cmd.InOrStdin(), func(p string) {
		if err := activateFile(p); err != nil {
			fmt.Fprintf(out, "%s %v\n", warnStyle.Render("!"), err)
		}
	})

	fmt.Fprintf(out, "%s Watching %s (Ctrl+C to stop)\n", infoStyle.Render("→"), e.relPath(path))
	return w.Run(ctx)
}

// readActiveSwitches calls onPath for every non-empty line of in until ctx
// is done or in is exhausted.
func readActiveSwitches(ctx context.Context, in io.Reader, onPath func(string)) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		abs, err := filepath.Abs(line)
		if err != nil {
			log.Printf("watch: %v", err)
			continue
		}
		onPath(abs)
	}
}

// printMarkers writes one line per class marker of s.
func printMarkers(out io.Writer, e *env, s lens.Snapshot) {
	fmt.Fprintf(out, "%s %s (v%d)\n", pathStyle.Render(e.relPath(s.Path)), dimStyle.Render("updated"), s.Version)
	if len(s.Lenses) == 0 {
		fmt.Fprintf(out, "  %s\n", dimStyle.Render("no class declarations"))
		return
	}
	for i, d := range s.Decorations {
		fmt.Fprintf(out, "  %s %s %s\n",
			dimStyle.Render(fmt.Sprintf("%d:%d", d.Range.Start.Line+1, d.Range.Start.Character+1)),
			d.Class.Name,
			infoStyle.Render("["+s.Lenses[i].Command.Title+"]"))
	}
}
