package library

import (
	"context"

	"scriptdesk/internal/domain/models/library"
)

// ScriptRepository defines data access operations for script documents
type ScriptRepository interface {
	// Create inserts a script with its initial version ledger
	Create(ctx context.Context, script *library.Script) error

	// GetByID retrieves a script including its versions
	GetByID(ctx context.Context, id string) (*library.Script, error)

	// List retrieves scripts of a project without their version ledgers
	List(ctx context.Context, projectID string, filter library.ScriptFilter) ([]library.Script, error)

	// UpdateMetadata writes title and metadata only
	UpdateMetadata(ctx context.Context, script *library.Script) error

	// AppendVersion atomically appends a ledger entry numbered one past the stored
	// maximum and sets the live content. Returns the updated script.
	AppendVersion(ctx context.Context, id, content string, wordCount int) (*library.Script, error)

	// Relocate sets project_id and folder_id in a single write
	Relocate(ctx context.Context, id, projectID, folderID string) error

	// Delete removes one script
	Delete(ctx context.Context, id string) error

	// DeleteByFolders removes every script of the project whose folder_id is in folderIDs.
	// Idempotent; returns the number of deleted scripts.
	DeleteByFolders(ctx context.Context, projectID string, folderIDs []string) (int, error)

	// DeleteByProject removes every script of the project. Idempotent.
	DeleteByProject(ctx context.Context, projectID string) (int, error)

	// DeleteWithoutProject removes scripts whose project document no longer exists
	DeleteWithoutProject(ctx context.Context) (int, error)

	// CountByFolder aggregates live script counts per folder id for a project
	CountByFolder(ctx context.Context, projectID string) (map[string]int, error)
}
