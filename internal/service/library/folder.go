package library

import (
	"context"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"scriptdesk/internal/config"
	models "scriptdesk/internal/domain/models/library"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	librarySvc "scriptdesk/internal/domain/services/library"
)

// folderService scopes coordinator folder operations to the project owner
type folderService struct {
	projectRepo libraryRepo.ProjectRepository
	coordinator *Coordinator
	logger      *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	projectRepo libraryRepo.ProjectRepository,
	coordinator *Coordinator,
	logger *slog.Logger,
) librarySvc.FolderService {
	return &folderService{
		projectRepo: projectRepo,
		coordinator: coordinator,
		logger:      logger,
	}
}

// ListFolders returns the nested forest
func (s *folderService) ListFolders(ctx context.Context, projectID, userID string) ([]models.FolderNode, error) {
	project, err := ownedProject(ctx, s.projectRepo, projectID, userID)
	if err != nil {
		return nil, err
	}
	return project.Folders, nil
}

// CreateFolder creates a new folder
func (s *folderService) CreateFolder(ctx context.Context, userID string, req *librarySvc.CreateFolderRequest) (*models.FolderNode, error) {
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.By(notBlank),
		),
	); err != nil {
		return nil, validationFailed(err)
	}

	if _, err := ownedProject(ctx, s.projectRepo, req.ProjectID, userID); err != nil {
		return nil, err
	}
	return s.coordinator.CreateFolder(ctx, req.ProjectID, req.Name, req.ParentID)
}

// RenameFolder renames a folder
func (s *folderService) RenameFolder(ctx context.Context, userID string, req *librarySvc.RenameFolderRequest) (*models.FolderNode, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.By(notBlank),
		),
	); err != nil {
		return nil, validationFailed(err)
	}

	if _, err := ownedProject(ctx, s.projectRepo, req.ProjectID, userID); err != nil {
		return nil, err
	}
	return s.coordinator.RenameFolder(ctx, req.ProjectID, req.FolderID, req.Name)
}

// DeleteFolder deletes a folder with its descendants and scripts
func (s *folderService) DeleteFolder(ctx context.Context, projectID, folderID, userID string) (*librarySvc.FolderDeletion, error) {
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}
	return s.coordinator.DeleteFolder(ctx, projectID, folderID)
}
