package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Filenames excluded from discovery. The description file is project
// metadata, not content; README files tend to duplicate it.
const (
	DescriptionFilename = "description.txt"
	readmeFilename      = "readme.md"
)

func reservedName(name string) bool {
	switch strings.ToLower(name) {
	case DescriptionFilename, readmeFilename:
		return true
	}
	return false
}

// DiscoverProjects returns the immediate subdirectories of dataRoot,
// skipping hidden ones. Each subdirectory is one project. A missing data
// root is reported as ErrNotFound.
func DiscoverProjects(dataRoot string) ([]string, error) {
	entries, err := os.ReadDir(dataRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: data directory %s", ErrNotFound, dataRoot)
		}
		return nil, fmt.Errorf("read data directory %s: %w", dataRoot, err)
	}
	var projects []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		projects = append(projects, filepath.Join(dataRoot, entry.Name()))
	}
	return projects, nil
}

// walkFiles yields every non-reserved file under projectDir, recursively.
// Paths are absolute; WalkDir visits entries in lexical order, but callers
// must not rely on ordering for correctness.
func walkFiles(projectDir string, fn func(path string) error) error {
	return filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || reservedName(d.Name()) {
			return nil
		}
		return fn(path)
	})
}
