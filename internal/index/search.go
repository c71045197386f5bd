package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/RoaringBitmap/roaring"
	_ "modernc.org/sqlite"
)

// Entry is one indexed document.
type Entry struct {
	RelPath string
	AbsPath string
	Tags    []string
}

// ProjectInfo is the stored project header.
type ProjectInfo struct {
	ProjectID   string
	Root        string
	Description string
	FileCount   int
}

// Index answers tag-filtered lookups over a built SQLite index. Per
// project it keeps a roaring bitmap per tag over document ordinals, so a
// multi-tag query is a bitmap intersection.
type Index struct {
	db      *sql.DB
	docs    map[string][]Entry                    // project -> documents
	tagSets map[string]map[string]*roaring.Bitmap // project -> tag -> doc ordinals
}

// Open loads an index database built by Writer.
func Open(dbPath string) (*Index, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open index %s: %w", dbPath, err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	idx := &Index{
		db:      db,
		docs:    make(map[string][]Entry),
		tagSets: make(map[string]map[string]*roaring.Bitmap),
	}
	if err := idx.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) load() error {
	rows, err := idx.db.Query(`SELECT project_id, rel_path, abs_path, tags FROM documents ORDER BY project_id, rel_path`)
	if err != nil {
		return fmt.Errorf("query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var project, relPath, absPath, rawTags string
		if err := rows.Scan(&project, &relPath, &absPath, &rawTags); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		var tags []string
		if err := json.Unmarshal([]byte(rawTags), &tags); err != nil {
			return fmt.Errorf("parse tags for %s/%s: %w", project, relPath, err)
		}

		ordinal := uint32(len(idx.docs[project]))
		idx.docs[project] = append(idx.docs[project], Entry{RelPath: relPath, AbsPath: absPath, Tags: tags})

		bitmaps := idx.tagSets[project]
		if bitmaps == nil {
			bitmaps = make(map[string]*roaring.Bitmap)
			idx.tagSets[project] = bitmaps
		}
		for _, tag := range tags {
			bm := bitmaps[tag]
			if bm == nil {
				bm = roaring.New()
				bitmaps[tag] = bm
			}
			bm.Add(ordinal)
		}
	}
	return rows.Err()
}

// Project returns the stored header for a project ID.
func (idx *Index) Project(projectID string) (*ProjectInfo, error) {
	var info ProjectInfo
	err := idx.db.QueryRow(`
		SELECT project_id, root, description, file_count FROM projects WHERE project_id = ?
	`, projectID).Scan(&info.ProjectID, &info.Root, &info.Description, &info.FileCount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %q not indexed", projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("query project %s: %w", projectID, err)
	}
	return &info, nil
}

// Search returns the documents of a project carrying every requested tag.
// With no tags, every document qualifies.
func (idx *Index) Search(projectID string, tags []string) []Entry {
	docs := idx.docs[projectID]
	if len(tags) == 0 {
		out := make([]Entry, len(docs))
		copy(out, docs)
		return out
	}
	bitmaps := idx.tagSets[projectID]
	var matched *roaring.Bitmap
	for _, tag := range tags {
		bm := bitmaps[tag]
		if bm == nil {
			return nil
		}
		if matched == nil {
			matched = bm.Clone()
		} else {
			matched.And(bm)
		}
	}
	var out []Entry
	it := matched.Iterator()
	for it.HasNext() {
		out = append(out, docs[it.Next()])
	}
	return out
}

func (idx *Index) Close() error {
	return idx.db.Close()
}
