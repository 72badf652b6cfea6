package library

import (
	"context"

	"scriptdesk/internal/domain/models/library"
)

// ProjectRepository defines data access operations for project documents
type ProjectRepository interface {
	// Create inserts a new project including its embedded folder forest
	Create(ctx context.Context, project *library.Project) error

	// GetByID retrieves a project by ID
	GetByID(ctx context.Context, id string) (*library.Project, error)

	// GetByIDForUpdate retrieves a project and locks it until the surrounding
	// transaction ends (plain GetByID outside a transaction)
	GetByIDForUpdate(ctx context.Context, id string) (*library.Project, error)

	// List retrieves all projects for a user, ordered by updated_at DESC
	List(ctx context.Context, userID string) ([]library.Project, error)

	// Update writes title, description and settings
	Update(ctx context.Context, project *library.Project) error

	// SaveTree replaces the whole folders field and the stats sub-document.
	// The write only applies if the stored revision still equals project.Revision;
	// on success project.Revision is incremented. A stale revision yields a ConflictError.
	SaveTree(ctx context.Context, project *library.Project) error

	// Delete removes the project document
	Delete(ctx context.Context, id string) error
}
