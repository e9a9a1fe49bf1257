package cli

import (
	"github.com/spf13/cobra"
)

// Version is the version of the classlens CLI.
// Update this constant manually on every release.
const Version = "v0.1.0"

// NewRootCmd creates the root command for classlens
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "classlens",
		Short:   "Class markers and testable-method listings for Java sources",
		Long:    "Classlens finds class declarations in Java files, marks them, and lists the testable methods of a chosen class.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return changeDir(cmd)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("cwd", "", "Working directory (defaults to current directory)")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newMcpCmd())

	return rootCmd
}
