package registry

import (
	"testing"

	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_UpdateOverwrites(t *testing.T) {
	r := New()
	r.Update([]*ingest.ProjectPlan{
		{ProjectID: "alpha", Description: "first"},
		{ProjectID: "beta", Description: "beta"},
	})
	r.Update([]*ingest.ProjectPlan{{ProjectID: "alpha", Description: "second"}})

	plan := r.Get("alpha")
	require.NotNil(t, plan)
	assert.Equal(t, "second", plan.Description)
	assert.Len(t, r.List(), 2)
}

func TestRegistry_GetUnknown(t *testing.T) {
	assert.Nil(t, New().Get("nope"))
}

func TestRegistry_ListIsSnapshot(t *testing.T) {
	r := New()
	r.Update([]*ingest.ProjectPlan{{ProjectID: "alpha"}})

	plans := r.List()
	plans[0] = nil // mutating the snapshot must not affect the registry
	require.NotNil(t, r.Get("alpha"))
}
