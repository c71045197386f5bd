// Package router picks a project for an unlocked chat session.
package router

import (
	"errors"

	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
)

// ErrNotImplemented is returned by routers that have no selection
// strategy. The API layer surfaces it as 501.
var ErrNotImplemented = errors.New("project router not implemented")

// Router selects the project a query should be answered against.
type Router interface {
	SelectProject(query string, projects []*ingest.ProjectPlan) (string, error)
}

// Unrouted is the default Router: it always fails. Routing heuristics are
// an open integration point, not part of the backend.
type Unrouted struct{}

func (Unrouted) SelectProject(string, []*ingest.ProjectPlan) (string, error) {
	return "", ErrNotImplemented
}
