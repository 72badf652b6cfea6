package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"scriptdesk/internal/config"
	"scriptdesk/internal/domain"
	models "scriptdesk/internal/domain/models/library"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	librarySvc "scriptdesk/internal/domain/services/library"
	"scriptdesk/internal/foldertree"
	"scriptdesk/internal/versionledger"
)

// scriptService implements the ScriptService interface
type scriptService struct {
	projectRepo     libraryRepo.ProjectRepository
	scriptRepo      libraryRepo.ScriptRepository
	coordinator     *Coordinator
	contentAnalyzer librarySvc.ContentAnalyzer
	logger          *slog.Logger
	now             func() time.Time
}

// NewScriptService creates a new script service
func NewScriptService(
	projectRepo libraryRepo.ProjectRepository,
	scriptRepo libraryRepo.ScriptRepository,
	coordinator *Coordinator,
	contentAnalyzer librarySvc.ContentAnalyzer,
	logger *slog.Logger,
) librarySvc.ScriptService {
	return &scriptService{
		projectRepo:     projectRepo,
		scriptRepo:      scriptRepo,
		coordinator:     coordinator,
		contentAnalyzer: contentAnalyzer,
		logger:          logger,
		now:             coordinator.now,
	}
}

// CreateScript inserts the script with a one-entry ledger, then records it in
// the folder counters
func (s *scriptService) CreateScript(ctx context.Context, req *librarySvc.CreateScriptRequest) (*models.Script, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, validationFailed(err)
	}

	project, err := ownedProject(ctx, s.projectRepo, req.ProjectID, req.UserID)
	if err != nil {
		return nil, err
	}
	if _, ok := foldertree.FindByID(project.Folders, req.FolderID); !ok {
		return nil, domain.NewNotFoundError("folder", req.FolderID)
	}

	now := s.now()
	script := &models.Script{
		UserID:    req.UserID,
		ProjectID: project.ID,
		FolderID:  req.FolderID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Metadata:  mergeMetadata(defaultMetadata(project.Settings), req.Metadata),
		Versions:  versionledger.Initialize(req.Content, now),
		WordCount: s.contentAnalyzer.CountWords(req.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.scriptRepo.Create(ctx, script); err != nil {
		return nil, err
	}

	if err := s.coordinator.RecordScriptCreated(ctx, script.ProjectID, script.FolderID); err != nil {
		s.logger.Error("script created but folder count not updated",
			"id", script.ID,
			"project_id", script.ProjectID,
			"folder_id", script.FolderID,
			"error", err,
		)
		return nil, fmt.Errorf("record script in folder: %w", err)
	}

	s.logger.Info("script created",
		"id", script.ID,
		"title", script.Title,
		"project_id", script.ProjectID,
		"folder_id", script.FolderID,
	)

	return s.decorate(script), nil
}

// GetScript retrieves a script with its versions
func (s *scriptService) GetScript(ctx context.Context, id, userID string) (*models.Script, error) {
	script, err := ownedScript(ctx, s.scriptRepo, id, userID)
	if err != nil {
		return nil, err
	}
	return s.decorate(script), nil
}

// ListScripts lists a project's scripts
func (s *scriptService) ListScripts(ctx context.Context, projectID, userID string, filter models.ScriptFilter) ([]models.Script, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.NewValidationError("unknown script status %q", *filter.Status)
	}
	if _, err := ownedProject(ctx, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}

	scripts, err := s.scriptRepo.List(ctx, projectID, filter)
	if err != nil {
		return nil, err
	}
	for i := range scripts {
		scripts[i].EstimatedDuration = s.contentAnalyzer.EstimateDuration(&scripts[i])
	}
	return scripts, nil
}

// UpdateScript updates title and metadata
func (s *scriptService) UpdateScript(ctx context.Context, id, userID string, req *librarySvc.UpdateScriptRequest) (*models.Script, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, validationFailed(err)
	}

	script, err := ownedScript(ctx, s.scriptRepo, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		script.Title = strings.TrimSpace(*req.Title)
	}
	script.Metadata = mergeMetadata(script.Metadata, req.Metadata)
	script.UpdatedAt = s.now()

	if err := s.scriptRepo.UpdateMetadata(ctx, script); err != nil {
		return nil, err
	}

	s.logger.Info("script updated",
		"id", script.ID,
		"title", script.Title,
		"status", script.Metadata.Status,
	)

	return s.decorate(script), nil
}

// UpdateContent appends the content as a new version
func (s *scriptService) UpdateContent(ctx context.Context, id, userID, content string) (*models.Script, error) {
	if _, err := ownedScript(ctx, s.scriptRepo, id, userID); err != nil {
		return nil, err
	}

	script, err := s.scriptRepo.AppendVersion(ctx, id, content, s.contentAnalyzer.CountWords(content))
	if err != nil {
		return nil, err
	}

	s.logger.Info("script content updated",
		"id", id,
		"version", versionledger.Latest(script.Versions),
		"word_count", script.WordCount,
	)

	return s.decorate(script), nil
}

// RevertScript checks the target against the stored ledger, then appends a
// copy of its content as the newest version
func (s *scriptService) RevertScript(ctx context.Context, id, userID string, version int) (*models.Script, error) {
	current, err := ownedScript(ctx, s.scriptRepo, id, userID)
	if err != nil {
		return nil, err
	}

	_, content, err := versionledger.Revert(current.Versions, version, s.now())
	if err != nil {
		return nil, err
	}

	script, err := s.scriptRepo.AppendVersion(ctx, id, content, s.contentAnalyzer.CountWords(content))
	if err != nil {
		return nil, err
	}

	s.logger.Info("script reverted",
		"id", id,
		"restored_version", version,
		"version", versionledger.Latest(script.Versions),
	)

	return s.decorate(script), nil
}

// ListVersions returns the ledger oldest first
func (s *scriptService) ListVersions(ctx context.Context, id, userID string) ([]models.ScriptVersion, error) {
	script, err := ownedScript(ctx, s.scriptRepo, id, userID)
	if err != nil {
		return nil, err
	}
	if script.Versions == nil {
		return []models.ScriptVersion{}, nil
	}
	return script.Versions, nil
}

// MoveScript moves a script to another folder, possibly in another project of the same user
func (s *scriptService) MoveScript(ctx context.Context, id, userID string, req *librarySvc.MoveScriptRequest) (*models.Script, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required),
	); err != nil {
		return nil, validationFailed(err)
	}

	script, err := ownedScript(ctx, s.scriptRepo, id, userID)
	if err != nil {
		return nil, err
	}

	toProjectID := req.ProjectID
	if toProjectID == "" {
		toProjectID = script.ProjectID
	}
	if toProjectID != script.ProjectID {
		if _, err := ownedProject(ctx, s.projectRepo, toProjectID, userID); err != nil {
			return nil, err
		}
	}

	moved, err := s.coordinator.MoveScript(ctx, id, toProjectID, req.FolderID)
	if err != nil {
		return nil, err
	}
	return s.decorate(moved), nil
}

// DeleteScript deletes the script, then releases its folder count
func (s *scriptService) DeleteScript(ctx context.Context, id, userID string) error {
	script, err := ownedScript(ctx, s.scriptRepo, id, userID)
	if err != nil {
		return err
	}

	if err := s.scriptRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.coordinator.RecordScriptRemoved(ctx, script.ProjectID, script.FolderID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("release folder count: %w", err)
		}
		s.logger.Warn("deleted script had no folder to decrement",
			"id", id,
			"project_id", script.ProjectID,
			"folder_id", script.FolderID,
		)
	}

	s.logger.Info("script deleted",
		"id", id,
		"project_id", script.ProjectID,
		"folder_id", script.FolderID,
	)

	return nil
}

func (s *scriptService) decorate(script *models.Script) *models.Script {
	script.EstimatedDuration = s.contentAnalyzer.EstimateDuration(script)
	return script
}

// validateCreateRequest validates a create script request
func (s *scriptService) validateCreateRequest(req *librarySvc.CreateScriptRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxScriptTitleLength),
			validation.By(notBlank),
		),
	); err != nil {
		return err
	}
	return validateMetadataInput(req.Metadata)
}

// validateUpdateRequest validates an update script request
func (s *scriptService) validateUpdateRequest(req *librarySvc.UpdateScriptRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxScriptTitleLength),
			validation.By(notBlank),
		),
	); err != nil {
		return err
	}
	return validateMetadataInput(req.Metadata)
}
