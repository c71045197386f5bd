// Package ingest discovers and prepares project documents for retrieval.
//
// The planner is a deterministic pass over a project directory tree: it
// resolves the project description, walks the tree, and assigns tags to
// each file from glob and forced-path rules. Downstream collaborators
// (the HTTP preview, the document index, the retrieval pipeline) consume
// the resulting plans; no embedding or vector work happens here.
package ingest

import (
	"fmt"
	"path/filepath"
)

// FileRecord is one candidate file for ingestion along with its tags.
// RelativePath keeps the original casing and uses POSIX separators.
type FileRecord struct {
	AbsolutePath string
	RelativePath string
	Tags         TagSet
}

// ProjectPlan is the immutable output of planning one project: its
// description plus its tagged file inventory. Replanning produces a new
// plan; nothing mutates a plan after it is returned.
type ProjectPlan struct {
	ProjectID   string
	Root        string
	Description string
	Files       []FileRecord
}

func (p *ProjectPlan) FileCount() int { return len(p.Files) }

// PlanProject builds the ingestion plan for a single project directory.
// The project ID is the directory name. A description failure aborts the
// plan; classification never fails, files with no matching rule simply
// carry an empty tag set.
func PlanProject(projectDir string, rules *RuleSet, provider DescriptionProvider) (*ProjectPlan, error) {
	description, err := EnsureDescription(projectDir, provider)
	if err != nil {
		return nil, err
	}
	plan := &ProjectPlan{
		ProjectID:   filepath.Base(projectDir),
		Root:        projectDir,
		Description: description,
	}
	err = walkFiles(projectDir, func(path string) error {
		rel, err := filepath.Rel(projectDir, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)
		plan.Files = append(plan.Files, FileRecord{
			AbsolutePath: path,
			RelativePath: rel,
			Tags:         CollectTags(rel, rules),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk project %s: %w", projectDir, err)
	}
	return plan, nil
}

// PlanAllProjects plans every project under dataRoot. When selected is
// non-empty, only directories named in it are processed; selected names
// with no directory on disk are silently ignored. An empty result is not
// an error. The first failing project aborts the whole batch; there is
// no per-project error isolation.
func PlanAllProjects(dataRoot string, rules *RuleSet, provider DescriptionProvider, selected []string) ([]*ProjectPlan, error) {
	projects, err := DiscoverProjects(dataRoot)
	if err != nil {
		return nil, err
	}
	subset := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		subset[name] = struct{}{}
	}
	var plans []*ProjectPlan
	for _, projectDir := range projects {
		if len(subset) > 0 {
			if _, ok := subset[filepath.Base(projectDir)]; !ok {
				continue
			}
		}
		plan, err := PlanProject(projectDir, rules, provider)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
