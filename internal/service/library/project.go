package library

import (
	"context"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"scriptdesk/internal/config"
	models "scriptdesk/internal/domain/models/library"
	"scriptdesk/internal/domain/repositories"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	librarySvc "scriptdesk/internal/domain/services/library"
	"scriptdesk/internal/foldertree"
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo libraryRepo.ProjectRepository
	txManager   repositories.TransactionManager
	coordinator *Coordinator
	logger      *slog.Logger
	now         func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo libraryRepo.ProjectRepository,
	txManager repositories.TransactionManager,
	coordinator *Coordinator,
	logger *slog.Logger,
) librarySvc.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		txManager:   txManager,
		coordinator: coordinator,
		logger:      logger,
		now:         coordinator.now,
	}
}

// CreateProject creates a project whose forest holds a single "Scripts" root
func (s *projectService) CreateProject(ctx context.Context, req *librarySvc.CreateProjectRequest) (*models.Project, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, validationFailed(err)
	}

	forest := s.coordinator.NewForest()
	if _, err := forest.Insert(models.DefaultFolderName, nil); err != nil {
		return nil, err
	}

	settings := models.DefaultProjectSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}

	now := s.now()
	project := &models.Project{
		UserID:      req.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: trimmedOrNil(req.Description),
		Folders:     forest.Nested(),
		Settings:    settings,
		Stats:       models.ProjectStats{LastActivity: now},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"id", project.ID,
		"title", project.Title,
		"user_id", req.UserID,
	)

	return project, nil
}

// GetProject retrieves a project by ID
func (s *projectService) GetProject(ctx context.Context, id, userID string) (*models.Project, error) {
	return ownedProject(ctx, s.projectRepo, id, userID)
}

// ListProjects retrieves all projects for a user
func (s *projectService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projectRepo.List(ctx, userID)
}

// UpdateProject applies a partial update. Every field is validated before
// anything is written; the field update and a folder replacement share one
// transaction.
func (s *projectService) UpdateProject(ctx context.Context, id, userID string, req *librarySvc.UpdateProjectRequest) (*models.Project, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, validationFailed(err)
	}
	if req.Folders != nil {
		if err := foldertree.Validate(*req.Folders); err != nil {
			return nil, err
		}
	}

	project, err := ownedProject(ctx, s.projectRepo, id, userID)
	if err != nil {
		return nil, err
	}

	fieldsChanged := false
	if req.Title != nil {
		project.Title = strings.TrimSpace(*req.Title)
		fieldsChanged = true
	}
	if req.Description.Present {
		project.Description = trimmedOrNil(req.Description.Value)
		fieldsChanged = true
	}
	if req.Settings != nil {
		project.Settings = *req.Settings
		fieldsChanged = true
	}
	project.UpdatedAt = s.now()

	var replaced *librarySvc.FolderDeletion
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if fieldsChanged {
			if err := s.projectRepo.Update(ctx, project); err != nil {
				return err
			}
		}
		if req.Folders == nil {
			return nil
		}

		saved, deletion, err := s.coordinator.ReplaceFolders(ctx, project.ID, *req.Folders)
		if err != nil {
			return err
		}
		project.Folders = saved.Folders
		project.Stats = saved.Stats
		project.Revision = saved.Revision
		project.UpdatedAt = saved.UpdatedAt
		replaced = deletion
		return nil
	})
	if err != nil {
		return nil, err
	}

	attrs := []any{
		"id", project.ID,
		"title", project.Title,
		"user_id", userID,
		"folders_replaced", replaced != nil,
	}
	if replaced != nil {
		attrs = append(attrs,
			"dropped_folders", len(replaced.RemovedFolderIDs),
			"deleted_scripts", replaced.DeletedScripts,
		)
	}
	s.logger.Info("project updated", attrs...)

	return project, nil
}

// DeleteProject deletes a project and its scripts
func (s *projectService) DeleteProject(ctx context.Context, id, userID string) (*librarySvc.ProjectDeletion, error) {
	if _, err := ownedProject(ctx, s.projectRepo, id, userID); err != nil {
		return nil, err
	}
	return s.coordinator.DeleteProject(ctx, id)
}

// validateCreateRequest validates a create project request
func (s *projectService) validateCreateRequest(req *librarySvc.CreateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxProjectTitleLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxProjectDescriptionLength)),
		validation.Field(&req.Settings, validation.By(validSettings)),
	)
}

// validateUpdateRequest validates an update project request
func (s *projectService) validateUpdateRequest(req *librarySvc.UpdateProjectRequest) error {
	var description *string
	if req.Description.Present {
		description = req.Description.Value
	}
	if err := validation.Validate(description, validation.Length(0, config.MaxProjectDescriptionLength)); err != nil {
		return validation.Errors{"description": err}
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxProjectTitleLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Settings, validation.By(validSettings)),
	)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
