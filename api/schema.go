// Package api defines the wire types shared by the HTTP and MCP surfaces.
package api

// IngestRequest triggers a planning run over the data root.
type IngestRequest struct {
	// DataPath is the root directory containing project folders.
	DataPath string `json:"data_path,omitempty"`
	// Projects restricts ingestion to a subset of project IDs.
	Projects []string `json:"projects,omitempty"`
	// EnsureDescriptions creates missing description files from the
	// Descriptions mapping.
	EnsureDescriptions bool `json:"ensure_descriptions,omitempty"`
	// Descriptions maps project ID to description text.
	Descriptions map[string]string `json:"descriptions,omitempty"`
}

// FilePreview is one planned file with its tags.
type FilePreview struct {
	Path string   `json:"path"`
	Tags []string `json:"tags"`
}

// ProjectPreview summarizes one project plan.
type ProjectPreview struct {
	ProjectID   string        `json:"project_id"`
	Description string        `json:"description"`
	FileCount   int           `json:"file_count"`
	Files       []FilePreview `json:"files"`
}

// IngestResponse lists the plans produced by one ingestion run.
type IngestResponse struct {
	Projects []ProjectPreview `json:"projects"`
}

// LockRequest pins a session to a project.
type LockRequest struct {
	SessionID string `json:"session_id"`
	ProjectID string `json:"project_id"`
}

// ChatRequest carries one chat turn.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	// ProjectID explicitly locks the session to this project.
	ProjectID string `json:"project_id,omitempty"`
	// AutoLock asks the router to lock the session when no project is set.
	AutoLock bool `json:"auto_lock,omitempty"`
}

// ChatResponse is the reply to a chat turn or a session command.
type ChatResponse struct {
	SessionID string   `json:"session_id"`
	ProjectID string   `json:"project_id,omitempty"`
	Filters   []string `json:"filters"`
	Response  string   `json:"response"`
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
