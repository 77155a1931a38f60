// Package project tracks the set of files belonging to a chat project and
// resolves edit targets against it.
package project

import "time"

// Provenance values for Artifact.CreatedBy.
const (
	CreatedByUser = "user"
	CreatedByAI   = "ai"
)

// Source values for Artifact.Source (informational only).
const (
	SourceParsed = "parsed"
	SourceInline = "inline"
	SourceImport = "import"
	SourceManual = "manual"
)

// Artifact is a single project file. Path is the unique key within a project.
type Artifact struct {
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	CreatedBy string    `json:"created_by"`
	Source    string    `json:"source,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
