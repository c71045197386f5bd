// Package registry holds the plans produced by the last ingestion run.
package registry

import (
	"sync"

	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
)

// Registry indexes project plans by project ID behind a single lock.
// Update replaces entries wholesale; concurrent ingestion runs serialize
// here, and the last writer wins. There is no merge.
type Registry struct {
	mu       sync.RWMutex
	projects map[string]*ingest.ProjectPlan
}

func New() *Registry {
	return &Registry{projects: make(map[string]*ingest.ProjectPlan)}
}

// Update stores every plan, overwriting prior entries with the same ID.
func (r *Registry) Update(plans []*ingest.ProjectPlan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, plan := range plans {
		r.projects[plan.ProjectID] = plan
	}
}

// Get returns the plan for a project ID, or nil when unknown.
func (r *Registry) Get(projectID string) *ingest.ProjectPlan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.projects[projectID]
}

// List returns a snapshot of the current plans.
func (r *Registry) List() []*ingest.ProjectPlan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plans := make([]*ingest.ProjectPlan, 0, len(r.projects))
	for _, plan := range r.projects {
		plans = append(plans, plan)
	}
	return plans
}
