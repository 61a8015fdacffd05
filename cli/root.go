package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version info set from main
	version = "dev"

	// Global flags
	configPath string
)

// SetVersion sets version information from build flags
func SetVersion(v string) {
	version = v
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "leadscore",
	Short: "Real-estate lead scoring service",
	Long: `leadscore scores real-estate sales leads by combining a trained
classifier probability with a deterministic phrase-based re-ranking
of free-text comments.

Commands:
  serve     run the scoring HTTP API
  generate  create a synthetic training dataset
  train     fit the classifier and write the model artifact
  leads     list scored leads from a running server`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml",
		"path to the yaml config file")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("leadscore %s\n", version)
	},
}
