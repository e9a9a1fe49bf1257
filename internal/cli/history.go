package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/mesdx/classlens/internal/db"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent Show Testable Methods runs",
		RunE:  runHistory,
	}
	cmd.Flags().Int("limit", 20, "Maximum number of entries")
	cmd.Flags().String("document", "", "Only show entries for this file")
	cmd.Flags().Bool("json", false, "Print entries as JSON")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	docPath, _ := cmd.Flags().GetString("document")
	asJSON, _ := cmd.Flags().GetBool("json")
	defer quietLog()()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	store, closeStore, err := e.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	var entries []db.Entry
	if docPath != "" {
		abs, err := filepath.Abs(docPath)
		if err != nil {
			return err
		}
		entries, err = store.ForDocument(cmd.Context(), abs)
		if err != nil {
			return err
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
	} else {
		entries, err = store.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
	}

	if asJSON {
		if entries == nil {
			entries = []db.Entry{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		cmd.Printf("%s No history yet\n", infoStyle.Render("→"))
		return nil
	}
	for _, en := range entries {
		cmd.Printf("%s %s:%d %s\n",
			dimStyle.Render(en.CreatedAt.Local().Format("2006-01-02 15:04:05")),
			pathStyle.Render(e.relPath(en.Document)), en.Line+1, en.Class)
		if len(en.Methods) == 0 {
			cmd.Printf("    %s\n", dimStyle.Render("(no methods)"))
			continue
		}
		cmd.Printf("    %s\n", strings.Join(en.Methods, ", "))
	}
	return nil
}
