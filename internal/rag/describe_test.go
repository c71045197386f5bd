package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptionProvider(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "alpha")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.py"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("y"), 0o644))

	model := &fakeModel{reply: "A small Python project."}
	provider := NewDescriptionProvider(context.Background(), model)

	text, err := provider(dir)
	require.NoError(t, err)
	assert.Equal(t, "A small Python project.", text)

	assert.Contains(t, model.user, "Project: alpha")
	assert.Contains(t, model.user, "src/main.py")
	assert.Contains(t, model.user, "notes.txt")
}
