package memory

import (
	"context"
	"fmt"
	"slices"

	"scriptdesk/internal/domain"
	models "scriptdesk/internal/domain/models/library"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
)

// ProjectRepository implements libraryRepo.ProjectRepository on a Store
type ProjectRepository struct {
	store *Store
}

// NewProjectRepository creates a project repository backed by store
func NewProjectRepository(store *Store) libraryRepo.ProjectRepository {
	return &ProjectRepository{store: store}
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if project.ID == "" {
		project.ID = r.store.newID()
	}
	if _, exists := r.store.projects[project.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("project %s already exists", project.ID),
			ResourceType: "project",
			ResourceID:   project.ID,
		}
	}
	project.Revision = 1
	r.store.projects[project.ID] = cloneProject(project)
	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.projects[id]
	if !ok {
		return nil, domain.NewNotFoundError("project", id)
	}
	return cloneProject(p), nil
}

// GetByIDForUpdate is GetByID; ExecTx already serializes transactions
func (r *ProjectRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Project, error) {
	return r.GetByID(ctx, id)
}

// List retrieves all projects for a user, ordered by updated_at DESC
func (r *ProjectRepository) List(ctx context.Context, userID string) ([]models.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	projects := []models.Project{}
	for _, p := range r.store.projects {
		if p.UserID == userID {
			projects = append(projects, *cloneProject(p))
		}
	}
	slices.SortFunc(projects, func(a, b models.Project) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return projects, nil
}

// Update writes title, description and settings
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.projects[project.ID]
	if !ok {
		return domain.NewNotFoundError("project", project.ID)
	}
	updated := cloneProject(project)
	stored.Title = updated.Title
	stored.Description = updated.Description
	stored.Settings = updated.Settings
	stored.UpdatedAt = updated.UpdatedAt
	return nil
}

// SaveTree replaces folders and stats when the revision still matches
func (r *ProjectRepository) SaveTree(ctx context.Context, project *models.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.projects[project.ID]
	if !ok {
		return domain.NewNotFoundError("project", project.ID)
	}
	if stored.Revision != project.Revision {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("project %s was modified concurrently, reload and retry", project.ID),
			ResourceType: "project",
			ResourceID:   project.ID,
		}
	}

	stored.Folders = cloneFolders(project.Folders)
	if stored.Folders == nil {
		stored.Folders = []models.FolderNode{}
	}
	stored.Stats = project.Stats
	stored.UpdatedAt = project.UpdatedAt
	stored.Revision++
	project.Revision = stored.Revision
	return nil
}

// Delete removes the project document
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.projects[id]; !ok {
		return domain.NewNotFoundError("project", id)
	}
	delete(r.store.projects, id)
	return nil
}
