package cmd

import (
	"fmt"
	"os"

	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var planProjects []string

var planCmd = &cobra.Command{
	Use:   "plan [data-root]",
	Short: "Plan ingestion for every project under a data root and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := ingest.LoadRules(rulesPath)
		if err != nil {
			return err
		}
		plans, err := ingest.PlanAllProjects(args[0], rules, nil, planProjects)
		if err != nil {
			return err
		}

		type filePreview struct {
			Path string   `json:"path"`
			Tags []string `json:"tags"`
		}
		type planPreview struct {
			ProjectID   string        `json:"project_id"`
			Description string        `json:"description"`
			FileCount   int           `json:"file_count"`
			Files       []filePreview `json:"files"`
		}

		previews := make([]planPreview, 0, len(plans))
		for _, plan := range plans {
			p := planPreview{
				ProjectID:   plan.ProjectID,
				Description: plan.Description,
				FileCount:   plan.FileCount(),
			}
			for _, rec := range plan.Files {
				p.Files = append(p.Files, filePreview{Path: rec.RelativePath, Tags: rec.Tags.Sorted()})
			}
			previews = append(previews, p)
		}

		fmt.Fprintln(os.Stdout, oj.JSON(previews, 2))
		return nil
	},
}

func init() {
	planCmd.Flags().StringSliceVarP(&planProjects, "projects", "p", nil, "Subset of project IDs to plan")
	rootCmd.AddCommand(planCmd)
}
