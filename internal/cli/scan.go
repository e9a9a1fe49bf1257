package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/mesdx/classlens/internal/document"
	"github.com/mesdx/classlens/internal/lens"
	"github.com/mesdx/classlens/internal/repo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// progressThreshold is the file count from which scan shows a progress bar.
const progressThreshold = 50

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path...]",
		Short: "List class markers in Java files",
		Long:  "Scan files or directories for class declarations and print one marker per class.",
		RunE:  runScan,
	}
	cmd.Flags().Bool("json", false, "Print markers as JSON")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	defer quietLog()()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	m, err := repo.NewMatcher(e.Config.Exclude)
	if err != nil {
		return err
	}
	files, err := repo.DiscoverSourceFiles(args, m)
	if err != nil {
		return err
	}

	snaps, err := scanFiles(files, e.lensOptions(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}
	printSnapshots(cmd, e, snaps)
	return nil
}

// scanFiles computes the markers of every file independently. Unreadable
// files are logged and skipped.
func scanFiles(files []string, opts lens.Options, progressOut io.Writer) ([]lens.Snapshot, error) {
	var bar *progressbar.ProgressBar
	if len(files) >= progressThreshold {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(progressOut),
			progressbar.OptionSetDescription("scanning"),
			progressbar.OptionClearOnFinish(),
		)
	}

	snaps := make([]lens.Snapshot, 0, len(files))
	for _, f := range files {
		doc, err := document.Load(f, 1)
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			log.Printf("scan: %v", err)
			continue
		}
		snaps = append(snaps, lens.Compute(doc, opts))
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return snaps, nil
}

func printSnapshots(cmd *cobra.Command, e *env, snaps []lens.Snapshot) {
	total := 0
	for _, s := range snaps {
		if len(s.Lenses) == 0 {
			continue
		}
		cmd.Println(pathStyle.Render(e.relPath(s.Path)))
		for i, d := range s.Decorations {
			cmd.Printf("  %s %-30s %s\n",
				dimStyle.Render(fmt.Sprintf("%d:%d", d.Range.Start.Line+1, d.Range.Start.Character+1)),
				d.Class.Name,
				infoStyle.Render("["+s.Lenses[i].Command.Title+"]"))
			total++
		}
	}
	if total == 0 {
		cmd.Printf("%s No class declarations found\n", warnStyle.Render("!"))
		return
	}
	cmd.Printf("%s %d classes in %d files\n", successStyle.Render("✓"), total, countNonEmpty(snaps))
}

func countNonEmpty(snaps []lens.Snapshot) int {
	n := 0
	for _, s := range snaps {
		if len(s.Lenses) > 0 {
			n++
		}
	}
	return n
}

