package library

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scriptdesk/internal/domain"
	models "scriptdesk/internal/domain/models/library"
	"scriptdesk/internal/domain/repositories"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	"scriptdesk/internal/repository/postgres"
)

const projectColumns = `id, user_id, title, description, folders, settings, stats, revision, created_at, updated_at`

// PostgresProjectRepository stores project documents with the folder forest
// and stats embedded as JSONB columns
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *postgres.RepositoryConfig) libraryRepo.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	folders, settings, stats, err := encodeProjectDocs(project)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, description, folders, settings, stats, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6::jsonb, 1, $7, $8)
		RETURNING id, revision, created_at, updated_at
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		project.UserID,
		project.Title,
		project.Description,
		folders,
		settings,
		stats,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&project.ID, &project.Revision, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return domain.WrapDatabase("create project", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate locks the project row when called inside a transaction
func (r *PostgresProjectRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Project, error) {
	if !repositories.InTx(ctx) {
		return r.get(ctx, id, "")
	}
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *PostgresProjectRepository) get(ctx context.Context, id, lock string) (*models.Project, error) {
	if !postgres.IsUUID(id) {
		return nil, domain.NewNotFoundError("project", id)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
		%s
	`, projectColumns, r.tables.Projects, lock)

	executor := postgres.GetExecutor(ctx, r.pool)
	project, err := scanProject(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NewNotFoundError("project", id)
		}
		return nil, domain.WrapDatabase("get project", err)
	}

	return project, nil
}

// List retrieves all projects for a user, ordered by updated_at DESC
func (r *PostgresProjectRepository) List(ctx context.Context, userID string) ([]models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, projectColumns, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, domain.WrapDatabase("list projects", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, domain.WrapDatabase("scan project", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.WrapDatabase("iterate projects", err)
	}

	return projects, nil
}

// Update writes title, description and settings
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	if !postgres.IsUUID(project.ID) {
		return domain.NewNotFoundError("project", project.ID)
	}
	settings, err := json.Marshal(project.Settings)
	if err != nil {
		return fmt.Errorf("encode project settings: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, settings = $3::jsonb, updated_at = $4
		WHERE id = $5
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		project.Title,
		project.Description,
		settings,
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		return domain.WrapDatabase("update project", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("project", project.ID)
	}

	return nil
}

// SaveTree replaces the folders field and the stats sub-document in one
// statement, guarded by the revision the caller loaded
func (r *PostgresProjectRepository) SaveTree(ctx context.Context, project *models.Project) error {
	if !postgres.IsUUID(project.ID) {
		return domain.NewNotFoundError("project", project.ID)
	}
	folders, _, stats, err := encodeProjectDocs(project)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET folders = $1::jsonb, stats = $2::jsonb, revision = revision + 1, updated_at = $3
		WHERE id = $4 AND revision = $5
		RETURNING revision
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	var revision int64
	err = executor.QueryRow(ctx, query,
		folders,
		stats,
		project.UpdatedAt,
		project.ID,
		project.Revision,
	).Scan(&revision)
	if err == nil {
		project.Revision = revision
		return nil
	}
	if !postgres.IsPgNoRowsError(err) {
		return domain.WrapDatabase("save project tree", err)
	}

	// No row matched: either the project is gone or another writer got there first
	if _, getErr := r.GetByID(ctx, project.ID); getErr != nil {
		return getErr
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("project %s was modified concurrently, reload and retry", project.ID),
		ResourceType: "project",
		ResourceID:   project.ID,
	}
}

// Delete removes the project document
func (r *PostgresProjectRepository) Delete(ctx context.Context, id string) error {
	if !postgres.IsUUID(id) {
		return domain.NewNotFoundError("project", id)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return domain.WrapDatabase("delete project", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("project", id)
	}

	return nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var (
		project                  models.Project
		folders, settings, stats []byte
	)
	err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.Title,
		&project.Description,
		&folders,
		&settings,
		&stats,
		&project.Revision,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(folders, &project.Folders); err != nil {
		return nil, fmt.Errorf("decode folders: %w", err)
	}
	if err := json.Unmarshal(settings, &project.Settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := json.Unmarshal(stats, &project.Stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	if project.Folders == nil {
		project.Folders = []models.FolderNode{}
	}

	return &project, nil
}

func encodeProjectDocs(project *models.Project) (folders, settings, stats []byte, err error) {
	forest := project.Folders
	if forest == nil {
		forest = []models.FolderNode{}
	}
	if folders, err = json.Marshal(forest); err != nil {
		return nil, nil, nil, fmt.Errorf("encode folders: %w", err)
	}
	if settings, err = json.Marshal(project.Settings); err != nil {
		return nil, nil, nil, fmt.Errorf("encode settings: %w", err)
	}
	if stats, err = json.Marshal(project.Stats); err != nil {
		return nil, nil, nil, fmt.Errorf("encode stats: %w", err)
	}
	return folders, settings, stats, nil
}
