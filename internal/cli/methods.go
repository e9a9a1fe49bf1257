package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesdx/classlens/internal/document"
	"github.com/mesdx/classlens/internal/lens"
	"github.com/mesdx/classlens/internal/panel"
	"github.com/mesdx/classlens/internal/report"
	"github.com/spf13/cobra"
)

func newMethodsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "methods [file]",
		Short: "Show the testable methods of a class",
		Long: `Run "Show Testable Methods" for one class marker without prompts.
Select the class with --class or --line. When the file holds a single class no
selector is needed. Without a file the active document of a running
'classlens watch' is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runMethods,
	}
	cmd.Flags().String("class", "", "Class name to activate")
	cmd.Flags().Int("line", 0, "1-based line of the class declaration")
	cmd.Flags().String("out", "", "Write a markdown report to this path")
	cmd.Flags().Bool("html", false, "Write the panel as HTML into the state directory")
	cmd.Flags().Bool("json", false, "Print the activation as JSON")
	return cmd
}

func runMethods(cmd *cobra.Command, args []string) error {
	className, _ := cmd.Flags().GetString("class")
	line, _ := cmd.Flags().GetInt("line")
	out, _ := cmd.Flags().GetString("out")
	asHTML, _ := cmd.Flags().GetBool("html")
	asJSON, _ := cmd.Flags().GetBool("json")
	defer quietLog()()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	path, err := e.resolveDocument(args)
	if err != nil {
		return err
	}
	if path == "" {
		cmd.Printf("%s Nothing to scan: pass a file or start 'classlens watch'\n", warnStyle.Render("!"))
		return nil
	}

	var renderer panel.Renderer = panel.TerminalRenderer{Plain: asJSON || !isTerminal(os.Stdout)}
	if asHTML {
		renderer = panel.HTMLRenderer{}
	}
	c, closeStore := e.newController(nil, renderer)
	defer closeStore()

	a, err := activate(cmd.Context(), c, path, className, line)
	if err != nil {
		return err
	}

	if out != "" {
		r := report.New(e.relPath(a.Path), a.Class, a.Offset, a.BodyEnd, a.Methods, a.CreatedAt)
		if err := report.WriteFile(out, r); err != nil {
			return err
		}
	}

	p := c.Panels().Current()
	switch {
	case asJSON:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(a); err != nil {
			return err
		}
	case asHTML:
		htmlPath, err := panel.WriteHTML(p, e.StateDir)
		if err != nil {
			return err
		}
		cmd.Printf("%s Panel written to %s\n", successStyle.Render("✓"), htmlPath)
	default:
		cmd.Println(p.Body())
	}
	if out != "" && !asJSON {
		cmd.Printf("%s Report written to %s\n", successStyle.Render("✓"), out)
	}
	return nil
}

// activate opens path, selects one class marker and runs Show Testable
// Methods on it.
func activate(ctx context.Context, c *lens.Controller, path, className string, line int) (*lens.Activation, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	doc, err := document.Load(abs, 1)
	if err != nil {
		return nil, err
	}
	if doc.Lang != document.LangJava {
		return nil, fmt.Errorf("%s is not a Java file", path)
	}
	c.OnActiveDocumentChanged(doc)

	l, err := c.Current().Select(className, line)
	if err != nil {
		return nil, err
	}
	return c.ShowTestableMethods(ctx, l.Command.Arguments)
}
