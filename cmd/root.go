package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rulesPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&rulesPath, "rules", "r", "config/ingestion_rules.yaml", "Path to the ingestion rule config (.yaml or .hcl)")
}

var rootCmd = &cobra.Command{
	Use:   "projectnav",
	Short: "ProjectNavigator: controlled retrieval-augmented chat over project documents",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
