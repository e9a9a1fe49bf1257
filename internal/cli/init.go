package cli

import (
	"fmt"
	"os"

	"github.com/mesdx/classlens/internal/config"
	"github.com/mesdx/classlens/internal/db"
	"github.com/mesdx/classlens/internal/ignore"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize classlens in the current repository",
		Long:  "Create the .classlens state directory with a default config and the history database.",
		RunE:  runInit,
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing config with the defaults")
	cmd.Flags().Bool("yes", false, "Skip prompts")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	skipPrompts, _ := cmd.Flags().GetBool("yes")
	defer quietLog()()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	cmd.Printf("%s Initializing classlens in: %s\n", infoStyle.Render("→"), e.RepoRoot)

	wrote, err := initStateDir(e.StateDir, force)
	if err != nil {
		return err
	}
	if wrote {
		cmd.Printf("%s Configuration saved to: %s\n", successStyle.Render("✓"), config.ConfigPath(e.StateDir))
	} else {
		cmd.Printf("%s Keeping existing configuration: %s\n", infoStyle.Render("→"), config.ConfigPath(e.StateDir))
	}

	dbPath := db.DatabasePath(e.StateDir)
	if err := db.Initialize(dbPath); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	cmd.Printf("%s Database initialized at: %s\n", successStyle.Render("✓"), dbPath)

	if !skipPrompts && isTerminal(os.Stdin) {
		if err := ignore.HandleIgnoreFiles(e.RepoRoot, ignore.HuhConfirm, cmd.OutOrStdout()); err != nil {
			cmd.Printf("%s Warning: failed to update ignore files: %v\n", warnStyle.Render("!"), err)
		}
		if err := promptAndUpdateAssistantGuidance(cmd, e.RepoRoot); err != nil {
			cmd.Printf("%s Warning: failed to update assistant guidance: %v\n", warnStyle.Render("!"), err)
		}
	}

	cmd.Printf("\n%s Initialization complete!\n", successStyle.Render("✓"))
	cmd.Println("Next steps:")
	cmd.Println("  - Run 'classlens scan' to list class markers")
	cmd.Println("  - Run 'classlens show <file>' to browse testable methods")
	return nil
}

// initStateDir creates stateDir and writes the default config unless one
// exists and force is false. It reports whether the config was written.
func initStateDir(stateDir string, force bool) (bool, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return false, fmt.Errorf("failed to create state directory: %w", err)
	}
	if _, err := os.Stat(config.ConfigPath(stateDir)); err == nil && !force {
		return false, nil
	}
	if err := config.Save(config.Default(), stateDir); err != nil {
		return false, fmt.Errorf("failed to save config: %w", err)
	}
	return true, nil
}
