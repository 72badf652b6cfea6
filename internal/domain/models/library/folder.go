package library

import (
	"time"
)

// FolderNode is one node of a project's embedded folder forest.
// Children is only populated on nodes that have descendants.
type FolderNode struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	ParentID    *string      `json:"parent_id,omitempty"` // nil = root level
	Children    []FolderNode `json:"children,omitempty"`
	ScriptCount int          `json:"script_count"` // Cached, never negative
	CreatedAt   time.Time    `json:"created_at"`
}
