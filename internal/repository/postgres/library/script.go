package library

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scriptdesk/internal/domain"
	models "scriptdesk/internal/domain/models/library"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	"scriptdesk/internal/repository/postgres"
)

const scriptColumns = `id, user_id, project_id, folder_id, title, content, metadata, versions, word_count, created_at, updated_at`

// Listing skips the ledger, it can be large and the list view never shows it
const scriptListColumns = `id, user_id, project_id, folder_id, title, content, metadata, '[]'::jsonb, word_count, created_at, updated_at`

// PostgresScriptRepository implements ScriptRepository
type PostgresScriptRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	now    func() time.Time
}

// NewScriptRepository creates a new script repository
func NewScriptRepository(config *postgres.RepositoryConfig) libraryRepo.ScriptRepository {
	return &PostgresScriptRepository{
		pool:   config.Pool,
		tables: config.Tables,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a script with its initial version ledger
func (r *PostgresScriptRepository) Create(ctx context.Context, script *models.Script) error {
	if !postgres.IsUUID(script.ProjectID) {
		return domain.NewNotFoundError("project", script.ProjectID)
	}
	metadata, err := encodeMetadata(script.Metadata)
	if err != nil {
		return err
	}
	versions, err := json.Marshal(script.Versions)
	if err != nil {
		return fmt.Errorf("encode versions: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, project_id, folder_id, title, content, metadata, versions, word_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, r.tables.Scripts)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		script.UserID,
		script.ProjectID,
		script.FolderID,
		script.Title,
		script.Content,
		metadata,
		versions,
		script.WordCount,
		script.CreatedAt,
		script.UpdatedAt,
	).Scan(&script.ID, &script.CreatedAt, &script.UpdatedAt)
	if err != nil {
		return domain.WrapDatabase("create script", err)
	}

	return nil
}

// GetByID retrieves a script including its versions
func (r *PostgresScriptRepository) GetByID(ctx context.Context, id string) (*models.Script, error) {
	if !postgres.IsUUID(id) {
		return nil, domain.NewNotFoundError("script", id)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, scriptColumns, r.tables.Scripts)

	executor := postgres.GetExecutor(ctx, r.pool)
	script, err := scanScript(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NewNotFoundError("script", id)
		}
		return nil, domain.WrapDatabase("get script", err)
	}

	return script, nil
}

// List retrieves scripts of a project, newest activity first
func (r *PostgresScriptRepository) List(ctx context.Context, projectID string, filter models.ScriptFilter) ([]models.Script, error) {
	if !postgres.IsUUID(projectID) {
		return []models.Script{}, nil
	}

	conditions := []string{"project_id = $1"}
	args := []any{projectID}

	if filter.FolderID != nil {
		args = append(args, *filter.FolderID)
		conditions = append(conditions, fmt.Sprintf("folder_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("metadata->>'status' = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, q)
		conditions = append(conditions, fmt.Sprintf(
			"to_tsvector('simple', title || ' ' || content) @@ websearch_to_tsquery('simple', $%d)", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY updated_at DESC
	`, scriptListColumns, r.tables.Scripts, strings.Join(conditions, " AND "))

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapDatabase("list scripts", err)
	}
	defer rows.Close()

	scripts := []models.Script{}
	for rows.Next() {
		script, err := scanScript(rows)
		if err != nil {
			return nil, domain.WrapDatabase("scan script", err)
		}
		script.Versions = nil
		scripts = append(scripts, *script)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.WrapDatabase("iterate scripts", err)
	}

	return scripts, nil
}

// UpdateMetadata writes title and metadata only
func (r *PostgresScriptRepository) UpdateMetadata(ctx context.Context, script *models.Script) error {
	if !postgres.IsUUID(script.ID) {
		return domain.NewNotFoundError("script", script.ID)
	}
	metadata, err := encodeMetadata(script.Metadata)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, metadata = $2::jsonb, updated_at = $3
		WHERE id = $4
	`, r.tables.Scripts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, script.Title, metadata, script.UpdatedAt, script.ID)
	if err != nil {
		return domain.WrapDatabase("update script metadata", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("script", script.ID)
	}

	return nil
}

// AppendVersion numbers the new entry from the stored ledger inside the
// UPDATE itself, so concurrent appends serialize on the row lock and never
// reuse a version number.
func (r *PostgresScriptRepository) AppendVersion(ctx context.Context, id, content string, wordCount int) (*models.Script, error) {
	if !postgres.IsUUID(id) {
		return nil, domain.NewNotFoundError("script", id)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET versions = versions || jsonb_build_array(jsonb_build_object(
				'version', (SELECT COALESCE(MAX((v->>'version')::int), 0) + 1 FROM jsonb_array_elements(versions) v),
				'content', $2::text,
				'created_at', to_jsonb($3::timestamptz)
			)),
			content = $2,
			word_count = $4,
			updated_at = $3
		WHERE id = $1
		RETURNING %s
	`, r.tables.Scripts, scriptColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	script, err := scanScript(executor.QueryRow(ctx, query, id, content, r.now(), wordCount))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NewNotFoundError("script", id)
		}
		return nil, domain.WrapDatabase("append script version", err)
	}

	return script, nil
}

// Relocate sets project_id and folder_id in a single write
func (r *PostgresScriptRepository) Relocate(ctx context.Context, id, projectID, folderID string) error {
	if !postgres.IsUUID(id) {
		return domain.NewNotFoundError("script", id)
	}
	if !postgres.IsUUID(projectID) {
		return domain.NewNotFoundError("project", projectID)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET project_id = $1, folder_id = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Scripts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, projectID, folderID, r.now(), id)
	if err != nil {
		return domain.WrapDatabase("relocate script", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("script", id)
	}

	return nil
}

// Delete removes one script
func (r *PostgresScriptRepository) Delete(ctx context.Context, id string) error {
	if !postgres.IsUUID(id) {
		return domain.NewNotFoundError("script", id)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Scripts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return domain.WrapDatabase("delete script", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("script", id)
	}

	return nil
}

// DeleteByFolders removes the project's scripts filed under any of folderIDs
func (r *PostgresScriptRepository) DeleteByFolders(ctx context.Context, projectID string, folderIDs []string) (int, error) {
	if !postgres.IsUUID(projectID) {
		return 0, nil
	}
	if len(folderIDs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE project_id = $1 AND folder_id = ANY($2)
	`, r.tables.Scripts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, projectID, folderIDs)
	if err != nil {
		return 0, domain.WrapDatabase("delete scripts by folders", err)
	}

	return int(result.RowsAffected()), nil
}

// DeleteByProject removes every script of the project
func (r *PostgresScriptRepository) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	if !postgres.IsUUID(projectID) {
		return 0, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1`, r.tables.Scripts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, projectID)
	if err != nil {
		return 0, domain.WrapDatabase("delete scripts by project", err)
	}

	return int(result.RowsAffected()), nil
}

// DeleteWithoutProject removes scripts left behind by an interrupted project delete
func (r *PostgresScriptRepository) DeleteWithoutProject(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s s
		WHERE NOT EXISTS (SELECT 1 FROM %s p WHERE p.id = s.project_id)
	`, r.tables.Scripts, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query)
	if err != nil {
		return 0, domain.WrapDatabase("delete scripts without project", err)
	}

	return int(result.RowsAffected()), nil
}

// CountByFolder aggregates live script counts per folder id
func (r *PostgresScriptRepository) CountByFolder(ctx context.Context, projectID string) (map[string]int, error) {
	if !postgres.IsUUID(projectID) {
		return map[string]int{}, nil
	}

	query := fmt.Sprintf(`
		SELECT folder_id, COUNT(*)
		FROM %s
		WHERE project_id = $1
		GROUP BY folder_id
	`, r.tables.Scripts)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, domain.WrapDatabase("count scripts by folder", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			folderID string
			count    int
		)
		if err := rows.Scan(&folderID, &count); err != nil {
			return nil, domain.WrapDatabase("scan folder count", err)
		}
		counts[folderID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, domain.WrapDatabase("iterate folder counts", err)
	}

	return counts, nil
}

func scanScript(row pgx.Row) (*models.Script, error) {
	var (
		script             models.Script
		metadata, versions []byte
	)
	err := row.Scan(
		&script.ID,
		&script.UserID,
		&script.ProjectID,
		&script.FolderID,
		&script.Title,
		&script.Content,
		&metadata,
		&versions,
		&script.WordCount,
		&script.CreatedAt,
		&script.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metadata, &script.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if err := json.Unmarshal(versions, &script.Versions); err != nil {
		return nil, fmt.Errorf("decode versions: %w", err)
	}
	if script.Metadata.Tags == nil {
		script.Metadata.Tags = []string{}
	}

	return &script, nil
}

func encodeMetadata(metadata models.ScriptMetadata) ([]byte, error) {
	if metadata.Tags == nil {
		metadata.Tags = []string{}
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return b, nil
}
