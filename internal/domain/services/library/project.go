package library

import (
	"context"

	models "scriptdesk/internal/domain/models/library"
)

// ProjectService handles project business logic
type ProjectService interface {
	// CreateProject creates a project with the default "Scripts" root folder
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)

	// GetProject retrieves a project owned by userID
	GetProject(ctx context.Context, id, userID string) (*models.Project, error)

	// ListProjects retrieves all projects for a user, newest first
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)

	// UpdateProject updates title, description, settings, or replaces the folder forest
	UpdateProject(ctx context.Context, id, userID string, req *UpdateProjectRequest) (*models.Project, error)

	// DeleteProject removes the project and then its scripts
	DeleteProject(ctx context.Context, id, userID string) (*ProjectDeletion, error)
}

// CreateProjectRequest represents a project creation request
type CreateProjectRequest struct {
	UserID      string                  `json:"-"`
	Title       string                  `json:"title"`
	Description *string                 `json:"description,omitempty"`
	Settings    *models.ProjectSettings `json:"settings,omitempty"` // nil = defaults
}

// UpdateProjectRequest represents a partial project update.
// Folders, when present, replaces the whole forest and must pass hierarchy validation.
// Known ids keep their stored script counts; unknown ids become new folders;
// scripts in dropped folders are deleted.
type UpdateProjectRequest struct {
	Title       *string
	Description OptionalDescription
	Settings    *models.ProjectSettings
	Folders     *[]models.FolderNode
}

// OptionalDescription tracks tri-state PATCH semantics for the description.
// Transport-agnostic; the handler maps it from httputil.OptionalString.
//   - Present=false: leave unchanged
//   - Present=true, Value=nil: clear
//   - Present=true, Value=&"text": set
type OptionalDescription struct {
	Present bool
	Value   *string
}

// ProjectDeletion reports the outcome of a project cascade
type ProjectDeletion struct {
	ProjectID      string `json:"project_id"`
	DeletedScripts int    `json:"deleted_scripts"`
}
