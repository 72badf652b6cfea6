package library

import (
	"context"

	models "scriptdesk/internal/domain/models/library"
)

// ScriptService handles script business logic
type ScriptService interface {
	// CreateScript creates a script with version 1 and bumps the folder counter
	CreateScript(ctx context.Context, req *CreateScriptRequest) (*models.Script, error)

	// GetScript retrieves a script with its versions
	GetScript(ctx context.Context, id, userID string) (*models.Script, error)

	// ListScripts lists a project's scripts without versions
	ListScripts(ctx context.Context, projectID, userID string, filter models.ScriptFilter) ([]models.Script, error)

	// UpdateScript updates title and metadata
	UpdateScript(ctx context.Context, id, userID string, req *UpdateScriptRequest) (*models.Script, error)

	// UpdateContent appends a new version and makes it the live content
	UpdateContent(ctx context.Context, id, userID, content string) (*models.Script, error)

	// RevertScript appends a copy of an earlier version
	RevertScript(ctx context.Context, id, userID string, version int) (*models.Script, error)

	// ListVersions returns the version ledger, oldest first
	ListVersions(ctx context.Context, id, userID string) ([]models.ScriptVersion, error)

	// MoveScript files the script under another folder, possibly in another project
	MoveScript(ctx context.Context, id, userID string, req *MoveScriptRequest) (*models.Script, error)

	// DeleteScript removes the script and decrements its folder counter
	DeleteScript(ctx context.Context, id, userID string) error
}

// CreateScriptRequest represents a script creation request
type CreateScriptRequest struct {
	UserID    string         `json:"-"`
	ProjectID string         `json:"-"`
	FolderID  string         `json:"folder_id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Metadata  *MetadataInput `json:"metadata,omitempty"`
}

// UpdateScriptRequest represents a partial title/metadata update
type UpdateScriptRequest struct {
	Title    *string        `json:"title,omitempty"`
	Metadata *MetadataInput `json:"metadata,omitempty"`
}

// MetadataInput carries raw metadata fields. Absent fields keep their current
// value (or the project default on create).
type MetadataInput struct {
	ContentType *string   `json:"content_type,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Duration    *int      `json:"duration,omitempty"`
}

// MoveScriptRequest names the destination of a move. An empty ProjectID keeps
// the script's current project.
type MoveScriptRequest struct {
	ProjectID string `json:"project_id,omitempty"`
	FolderID  string `json:"folder_id"`
}

// ContentAnalyzer derives counts from script content
type ContentAnalyzer interface {
	// CountWords counts spoken or readable words, ignoring markup
	CountWords(content string) int

	// EstimateDuration returns the reading time in minutes for spoken content
	// without an explicit duration, nil otherwise
	EstimateDuration(script *models.Script) *int
}
