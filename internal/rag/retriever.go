package rag

import (
	"context"
	"fmt"
	"os"

	"github.com/Rachit-Gandhi/ProjectNavigator/internal/index"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/registry"
)

// maxDocumentBytes caps how much of a file is read into the prompt.
const maxDocumentBytes = 8 * 1024

// PlanRetriever serves context straight from the plans in the registry:
// a file qualifies when it carries every requested filter tag (or all
// files, with no filters). Content is read from disk at answer time.
type PlanRetriever struct {
	Registry *registry.Registry
	MaxDocs  int // 0 means no limit
}

func (r *PlanRetriever) Retrieve(ctx context.Context, projectID, query string, filters []string) ([]Document, error) {
	plan := r.Registry.Get(projectID)
	if plan == nil {
		return nil, fmt.Errorf("project %q is not ingested", projectID)
	}
	var docs []Document
	for _, rec := range plan.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !hasAllTags(rec.Tags, filters) {
			continue
		}
		content, err := readCapped(rec.AbsolutePath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rec.AbsolutePath, err)
		}
		docs = append(docs, Document{Source: rec.RelativePath, Content: content})
		if r.MaxDocs > 0 && len(docs) >= r.MaxDocs {
			break
		}
	}
	return docs, nil
}

// IndexRetriever serves context from a built SQLite index instead of the
// in-memory registry. Useful when the service restarts between ingestion
// and chat.
type IndexRetriever struct {
	Index   *index.Index
	MaxDocs int // 0 means no limit
}

func (r *IndexRetriever) Retrieve(ctx context.Context, projectID, query string, filters []string) ([]Document, error) {
	if _, err := r.Index.Project(projectID); err != nil {
		return nil, err
	}
	var docs []Document
	for _, entry := range r.Index.Search(projectID, filters) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := readCapped(entry.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.AbsPath, err)
		}
		docs = append(docs, Document{Source: entry.RelPath, Content: content})
		if r.MaxDocs > 0 && len(docs) >= r.MaxDocs {
			break
		}
	}
	return docs, nil
}

func hasAllTags(tags ingest.TagSet, filters []string) bool {
	for _, f := range filters {
		if !tags.Has(f) {
			return false
		}
	}
	return true
}

func readCapped(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(data) > maxDocumentBytes {
		data = data[:maxDocumentBytes]
	}
	return string(data), nil
}
