package index

import (
	"path/filepath"
	"testing"

	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIndex(t *testing.T, plans ...*ingest.ProjectPlan) *Index {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "index.db")
	w, err := NewWriter(dbPath)
	require.NoError(t, err)
	for _, plan := range plans {
		require.NoError(t, w.AddPlan(plan))
	}
	require.NoError(t, w.Close())

	idx, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func alphaPlan() *ingest.ProjectPlan {
	return &ingest.ProjectPlan{
		ProjectID:   "alpha",
		Root:        "/data/alpha",
		Description: "alpha project",
		Files: []ingest.FileRecord{
			{AbsolutePath: "/data/alpha/a.py", RelativePath: "a.py", Tags: ingest.TagSet{"code": {}}},
			{AbsolutePath: "/data/alpha/docs/g.md", RelativePath: "docs/g.md", Tags: ingest.TagSet{"docs": {}, "important": {}}},
			{AbsolutePath: "/data/alpha/b.txt", RelativePath: "b.txt", Tags: ingest.TagSet{}},
		},
	}
}

func TestIndex_RoundTrip(t *testing.T) {
	idx := buildIndex(t, alphaPlan())

	info, err := idx.Project("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha project", info.Description)
	assert.Equal(t, 3, info.FileCount)

	_, err = idx.Project("ghost")
	assert.Error(t, err)
}

func TestIndex_SearchByTags(t *testing.T) {
	idx := buildIndex(t, alphaPlan())

	all := idx.Search("alpha", nil)
	assert.Len(t, all, 3)

	docs := idx.Search("alpha", []string{"docs"})
	require.Len(t, docs, 1)
	assert.Equal(t, "docs/g.md", docs[0].RelPath)
	assert.ElementsMatch(t, []string{"docs", "important"}, docs[0].Tags)

	// Multi-tag queries intersect.
	assert.Len(t, idx.Search("alpha", []string{"docs", "important"}), 1)
	assert.Empty(t, idx.Search("alpha", []string{"docs", "code"}))
	assert.Empty(t, idx.Search("alpha", []string{"missing"}))
}

func TestIndex_RebuildOverwrites(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")

	for _, desc := range []string{"first", "second"} {
		w, err := NewWriter(dbPath)
		require.NoError(t, err)
		require.NoError(t, w.AddPlan(&ingest.ProjectPlan{
			ProjectID:   "alpha",
			Root:        "/data/alpha",
			Description: desc,
			Files: []ingest.FileRecord{
				{AbsolutePath: "/data/alpha/a.py", RelativePath: "a.py", Tags: ingest.TagSet{}},
			},
		}))
		require.NoError(t, w.Close())
	}

	idx, err := Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	info, err := idx.Project("alpha")
	require.NoError(t, err)
	assert.Equal(t, "second", info.Description)
	assert.Len(t, idx.Search("alpha", nil), 1)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"))
	assert.Error(t, err)
}
