package library

import (
	"context"

	models "scriptdesk/internal/domain/models/library"
)

// FolderService exposes the folder forest of a project to callers that are
// scoped to a user
type FolderService interface {
	// ListFolders returns the nested forest
	ListFolders(ctx context.Context, projectID, userID string) ([]models.FolderNode, error)

	// CreateFolder inserts a folder under req.ParentID (root when nil)
	CreateFolder(ctx context.Context, userID string, req *CreateFolderRequest) (*models.FolderNode, error)

	// RenameFolder changes a folder's name
	RenameFolder(ctx context.Context, userID string, req *RenameFolderRequest) (*models.FolderNode, error)

	// DeleteFolder removes a folder, its descendants and their scripts
	DeleteFolder(ctx context.Context, projectID, folderID, userID string) (*FolderDeletion, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	ProjectID string  `json:"-"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id,omitempty"` // nil = root level
}

// RenameFolderRequest represents a folder rename
type RenameFolderRequest struct {
	ProjectID string `json:"-"`
	FolderID  string `json:"-"`
	Name      string `json:"name"`
}

// FolderDeletion reports the outcome of a folder cascade
type FolderDeletion struct {
	ProjectID        string   `json:"project_id"`
	RemovedFolderIDs []string `json:"removed_folder_ids"`
	DeletedScripts   int      `json:"deleted_scripts"`
}
