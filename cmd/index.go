package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Rachit-Gandhi/ProjectNavigator/internal/index"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
	"github.com/spf13/cobra"
)

var indexProjects []string

var indexCmd = &cobra.Command{
	Use:   "index [data-root] [output.db]",
	Short: "Plan ingestion and persist the document index to SQLite",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataRoot, output := args[0], args[1]

		rules, err := ingest.LoadRules(rulesPath)
		if err != nil {
			return err
		}
		plans, err := ingest.PlanAllProjects(dataRoot, rules, nil, indexProjects)
		if err != nil {
			return err
		}

		_ = os.Remove(output) // Overwrite
		writer, err := index.NewWriter(output)
		if err != nil {
			return err
		}

		start := time.Now()
		fmt.Printf("Indexing %d project(s) from %s into %s...\n", len(plans), dataRoot, output)
		for _, plan := range plans {
			if err := writer.AddPlan(plan); err != nil {
				_ = writer.Close()
				return err
			}
			fmt.Printf("  %s: %d file(s)\n", plan.ProjectID, plan.FileCount())
		}
		if err := writer.Close(); err != nil {
			return err
		}
		fmt.Printf("Done in %v.\n", time.Since(start))
		return nil
	},
}

func init() {
	indexCmd.Flags().StringSliceVarP(&indexProjects, "projects", "p", nil, "Subset of project IDs to index")
	rootCmd.AddCommand(indexCmd)
}
