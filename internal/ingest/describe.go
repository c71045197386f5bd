package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyDescription is returned when a description provider produces
// blank text for a project.
var ErrEmptyDescription = errors.New("empty description")

// DescriptionProvider generates description text for a project directory.
// Supplied by the caller (typically the API layer) when auto-generation is
// requested; never consulted when a description file already exists.
type DescriptionProvider func(projectDir string) (string, error)

// EnsureDescription reads or creates the project description.
//
// If description.txt exists its trimmed contents are returned. Otherwise
// the provider is invoked and the result persisted, so a second call
// short-circuits to the read branch. With no provider, a missing file is
// ErrNotFound: the caller has to supply text or create the file.
func EnsureDescription(projectDir string, provider DescriptionProvider) (string, error) {
	descPath := filepath.Join(projectDir, DescriptionFilename)
	if data, err := os.ReadFile(descPath); err == nil {
		return strings.TrimSpace(string(data)), nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read %s: %w", descPath, err)
	}
	if provider == nil {
		return "", fmt.Errorf("%w: missing %s for project %q; provide a description via the API or create the file manually",
			ErrNotFound, DescriptionFilename, filepath.Base(projectDir))
	}
	generated, err := provider(projectDir)
	if err != nil {
		return "", err
	}
	generated = strings.TrimSpace(generated)
	if generated == "" {
		return "", fmt.Errorf("%w: provider returned no text for project %q", ErrEmptyDescription, filepath.Base(projectDir))
	}
	if err := os.WriteFile(descPath, []byte(generated), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", descPath, err)
	}
	return generated, nil
}
