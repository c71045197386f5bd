package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDescription_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DescriptionFilename), []byte("  A demo project.\n"), 0o644))

	var providerCalls int
	text, err := EnsureDescription(dir, func(string) (string, error) {
		providerCalls++
		return "generated", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "A demo project.", text)
	assert.Zero(t, providerCalls, "provider must not run when the file exists")
}

func TestEnsureDescription_MissingNoProvider(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "alpha")
	require.NoError(t, os.Mkdir(dir, 0o755))

	_, err := EnsureDescription(dir, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "alpha")
	assert.Contains(t, err.Error(), DescriptionFilename)
}

func TestEnsureDescription_GeneratesAndPersists(t *testing.T) {
	dir := t.TempDir()

	var providerCalls int
	provider := func(projectDir string) (string, error) {
		providerCalls++
		assert.Equal(t, dir, projectDir)
		return "  Generated summary.  ", nil
	}

	text, err := EnsureDescription(dir, provider)
	require.NoError(t, err)
	assert.Equal(t, "Generated summary.", text)

	data, err := os.ReadFile(filepath.Join(dir, DescriptionFilename))
	require.NoError(t, err)
	assert.Equal(t, "Generated summary.", string(data))

	// Idempotent: the second resolution reads the persisted file.
	again, err := EnsureDescription(dir, provider)
	require.NoError(t, err)
	assert.Equal(t, "Generated summary.", again)
	assert.Equal(t, 1, providerCalls)
}

func TestEnsureDescription_EmptyProviderText(t *testing.T) {
	dir := t.TempDir()
	_, err := EnsureDescription(dir, func(string) (string, error) {
		return "   \n", nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyDescription)

	// Nothing persisted on failure.
	_, statErr := os.Stat(filepath.Join(dir, DescriptionFilename))
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnsureDescription_ProviderError(t *testing.T) {
	boom := errors.New("no text available")
	_, err := EnsureDescription(t.TempDir(), func(string) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
}
