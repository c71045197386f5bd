package rag

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
)

const describeSystemPrompt = "You summarize document collections. " +
	"Given a project name and its file listing, write a two-sentence description of what the collection contains."

// maxListedFiles bounds the prompt size for large projects.
const maxListedFiles = 200

// NewDescriptionProvider returns an ingest.DescriptionProvider that asks
// the model to summarize a project from its directory listing. It is an
// alternative to caller-supplied description text; the planner persists
// the result, so each project is summarized at most once.
func NewDescriptionProvider(ctx context.Context, model Model) ingest.DescriptionProvider {
	return func(projectDir string) (string, error) {
		listing, err := projectListing(projectDir)
		if err != nil {
			return "", err
		}
		user := fmt.Sprintf("Project: %s\nFiles:\n%s", filepath.Base(projectDir), listing)
		return model.Complete(ctx, describeSystemPrompt, user)
	}
}

func projectListing(projectDir string) (string, error) {
	var names []string
	err := filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(projectDir, path)
		if relErr != nil {
			return relErr
		}
		names = append(names, filepath.ToSlash(rel))
		if len(names) >= maxListedFiles {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("list %s: %w", projectDir, err)
	}
	return strings.Join(names, "\n"), nil
}
