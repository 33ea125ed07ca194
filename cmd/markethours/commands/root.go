package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "markethours",
	Short: "US stock market hours service",
	Long: `US Market Hours Service

NYSE/NASDAQ trading-hours API with a self-refreshing exchange calendar.

Usage:
  go run ./cmd/markethours [command]

Examples:
  go run ./cmd/markethours serve
  go run ./cmd/markethours refresh
  go run ./cmd/markethours status`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
