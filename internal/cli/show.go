package cli

import (
	"github.com/mesdx/classlens/internal/document"
	"github.com/mesdx/classlens/internal/panel"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Pick a class marker and show its testable methods",
		Long: `Interactive mode: pick a class marker, choose "Show Testable Methods" from the
options menu and view the results panel. The panel is reused for every pick.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShow,
	}
	cmd.Flags().Bool("browser", false, "Render the panel as HTML and open it in the browser")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	useBrowser, _ := cmd.Flags().GetBool("browser")

	if err := requireTTY(); err != nil {
		return err
	}
	e, err := loadEnv()
	if err != nil {
		return err
	}
	closeLog, err := initLog(e.StateDir, "show")
	if err != nil {
		return err
	}
	defer closeLog()

	path, err := e.resolveDocument(args)
	if err != nil {
		return err
	}
	if path == "" {
		cmd.Printf("%s Nothing to scan: pass a file or start 'classlens watch'\n", warnStyle.Render("!"))
		return nil
	}

	var renderer panel.Renderer = panel.TerminalRenderer{}
	if useBrowser {
		renderer = panel.HTMLRenderer{}
	}
	picker := huhPicker{}
	c, closeStore := e.newController(picker, renderer)
	defer closeStore()
	defer c.Panels().Close()

	ctx := cmd.Context()
	browserOpened := false
	for {
		// Re-read on every round so edits made between picks show up.
		doc, err := document.Load(path, 1)
		if err != nil {
			return err
		}
		c.OnActiveDocumentChanged(doc)
		snap := c.Current()
		if len(snap.Lenses) == 0 {
			cmd.Printf("%s No class declarations in %s\n", warnStyle.Render("!"), e.relPath(path))
			return nil
		}

		l, ok, err := pickClass(ctx, picker, snap)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		a, err := c.ShowOptions(ctx, l.Command.Arguments)
		if err != nil {
			return err
		}
		if a == nil {
			continue
		}

		p := c.Panels().Current()
		if !useBrowser {
			cmd.Println(p.Body())
			continue
		}
		htmlPath, err := panel.WriteHTML(p, e.StateDir)
		if err != nil {
			return err
		}
		if !browserOpened {
			if err := panel.OpenInBrowser(htmlPath); err != nil {
				cmd.Printf("%s %v; open %s manually\n", warnStyle.Render("!"), err, htmlPath)
			}
			browserOpened = true
		} else {
			cmd.Printf("%s Panel updated: reload %s\n", infoStyle.Render("→"), htmlPath)
		}
	}
}
