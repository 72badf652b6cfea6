package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scriptdesk/internal/domain"
	models "scriptdesk/internal/domain/models/library"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	librarySvc "scriptdesk/internal/domain/services/library"
	"scriptdesk/internal/foldertree"
	"scriptdesk/internal/metrics"
)

// Coordinator is the only writer that touches more than one document. It keeps
// folder script counts and project stats in step with the scripts collection.
//
// Tree changes are load, mutate, save of the whole folders field. Cascades are
// two steps (project document first, then scripts) with no transaction around
// them; a failure between the steps leaves orphaned scripts for the audit
// service to find and remove.
type Coordinator struct {
	projectRepo libraryRepo.ProjectRepository
	scriptRepo  libraryRepo.ScriptRepository
	cache       librarySvc.ReportCache
	logger      *slog.Logger
	now         func() time.Time
	treeOpts    []foldertree.Option
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption func(*Coordinator)

// WithClock overrides the clock used for timestamps
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

// WithFolderIDs overrides the folder id generator
func WithFolderIDs(fn foldertree.IDFunc) CoordinatorOption {
	return func(c *Coordinator) { c.treeOpts = append(c.treeOpts, foldertree.WithIDFunc(fn)) }
}

// NewCoordinator creates a new coordinator
func NewCoordinator(
	projectRepo libraryRepo.ProjectRepository,
	scriptRepo libraryRepo.ScriptRepository,
	cache librarySvc.ReportCache,
	logger *slog.Logger,
	opts ...CoordinatorOption,
) *Coordinator {
	c := &Coordinator{
		projectRepo: projectRepo,
		scriptRepo:  scriptRepo,
		cache:       cache,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateFolder inserts a folder and persists the whole forest
func (c *Coordinator) CreateFolder(ctx context.Context, projectID, name string, parentID *string) (_ *models.FolderNode, err error) {
	defer func() { metrics.ObserveOperation("create_folder", err) }()

	project, forest, err := c.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	node, err := forest.Insert(name, parentID)
	if err != nil {
		return nil, err
	}

	if err := c.save(ctx, project, forest); err != nil {
		return nil, err
	}

	c.logger.Info("folder created",
		"id", node.ID,
		"name", node.Name,
		"project_id", projectID,
		"parent_id", node.ParentID,
	)

	return &node, nil
}

// RenameFolder changes a folder's name
func (c *Coordinator) RenameFolder(ctx context.Context, projectID, folderID, name string) (_ *models.FolderNode, err error) {
	defer func() { metrics.ObserveOperation("rename_folder", err) }()

	project, forest, err := c.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	node, err := forest.Rename(folderID, name)
	if err != nil {
		return nil, err
	}

	if err := c.save(ctx, project, forest); err != nil {
		return nil, err
	}

	c.logger.Info("folder renamed",
		"id", node.ID,
		"name", node.Name,
		"project_id", projectID,
	)

	return &node, nil
}

// DeleteFolder prunes a folder subtree, subtracts its cached counts from the
// project total, then deletes every script filed under a removed folder.
func (c *Coordinator) DeleteFolder(ctx context.Context, projectID, folderID string) (_ *librarySvc.FolderDeletion, err error) {
	defer func() { metrics.ObserveOperation("delete_folder", err) }()

	project, forest, err := c.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	cached, err := forest.SubtreeScriptCount(folderID)
	if err != nil {
		return nil, err
	}
	removed, err := forest.DeleteSubtree(folderID)
	if err != nil {
		return nil, err
	}

	project.Stats.TotalScripts = max(0, project.Stats.TotalScripts-cached)
	project.Stats.LastActivity = c.now()
	if err := c.save(ctx, project, forest); err != nil {
		return nil, err
	}

	deleted, err := c.scriptRepo.DeleteByFolders(ctx, projectID, removed)
	if err != nil {
		c.logger.Error("folder cascade incomplete, scripts left orphaned",
			"project_id", projectID,
			"folder_ids", removed,
			"error", err,
		)
		return nil, fmt.Errorf("delete scripts of removed folders: %w", err)
	}
	metrics.CascadeDeletedScripts.Add(float64(deleted))

	c.logger.Info("folder deleted",
		"id", folderID,
		"project_id", projectID,
		"removed_folders", len(removed),
		"deleted_scripts", deleted,
	)

	return &librarySvc.FolderDeletion{
		ProjectID:        projectID,
		RemovedFolderIDs: removed,
		DeletedScripts:   deleted,
	}, nil
}

// ReplaceFolders swaps the project's whole forest for a caller-supplied one.
// Surviving folders keep their stored counts, unknown ids become new folders
// with fresh ids, and dropped folders go through the same cascade as
// DeleteFolder: their counts leave the project total and their scripts are
// deleted.
func (c *Coordinator) ReplaceFolders(ctx context.Context, projectID string, folders []models.FolderNode) (_ *models.Project, _ *librarySvc.FolderDeletion, err error) {
	defer func() { metrics.ObserveOperation("replace_folders", err) }()

	project, forest, err := c.load(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	next, dropped, err := forest.Replace(folders)
	if err != nil {
		return nil, nil, err
	}

	released := 0
	for _, id := range dropped {
		node, _ := forest.Find(id)
		released += node.ScriptCount
	}
	project.Stats.TotalScripts = max(0, project.Stats.TotalScripts-released)
	project.Stats.LastActivity = c.now()
	if err := c.save(ctx, project, next); err != nil {
		return nil, nil, err
	}

	deleted := 0
	if len(dropped) > 0 {
		deleted, err = c.scriptRepo.DeleteByFolders(ctx, projectID, dropped)
		if err != nil {
			c.logger.Error("folder replacement incomplete, scripts left orphaned",
				"project_id", projectID,
				"folder_ids", dropped,
				"error", err,
			)
			return nil, nil, fmt.Errorf("delete scripts of dropped folders: %w", err)
		}
		metrics.CascadeDeletedScripts.Add(float64(deleted))
	}

	c.logger.Info("folders replaced",
		"project_id", projectID,
		"folders", next.Len(),
		"dropped_folders", len(dropped),
		"deleted_scripts", deleted,
	)

	return project, &librarySvc.FolderDeletion{
		ProjectID:        projectID,
		RemovedFolderIDs: dropped,
		DeletedScripts:   deleted,
	}, nil
}

// DeleteProject removes the project document (and with it the whole tree),
// then every script of the project.
func (c *Coordinator) DeleteProject(ctx context.Context, projectID string) (_ *librarySvc.ProjectDeletion, err error) {
	defer func() { metrics.ObserveOperation("delete_project", err) }()

	if err := c.projectRepo.Delete(ctx, projectID); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ctx, projectID)

	deleted, err := c.scriptRepo.DeleteByProject(ctx, projectID)
	if err != nil {
		c.logger.Error("project cascade incomplete, scripts left without project",
			"project_id", projectID,
			"error", err,
		)
		return nil, fmt.Errorf("delete scripts of project: %w", err)
	}
	metrics.CascadeDeletedScripts.Add(float64(deleted))

	c.logger.Info("project deleted",
		"id", projectID,
		"deleted_scripts", deleted,
	)

	return &librarySvc.ProjectDeletion{
		ProjectID:      projectID,
		DeletedScripts: deleted,
	}, nil
}

// RecordScriptCreated increments the folder counter and the project total
func (c *Coordinator) RecordScriptCreated(ctx context.Context, projectID, folderID string) (err error) {
	defer func() { metrics.ObserveOperation("record_script_created", err) }()
	return c.adjustCounts(ctx, projectID, folderID, 1)
}

// RecordScriptRemoved decrements the folder counter and the project total,
// both clamped at zero
func (c *Coordinator) RecordScriptRemoved(ctx context.Context, projectID, folderID string) (err error) {
	defer func() { metrics.ObserveOperation("record_script_removed", err) }()
	return c.adjustCounts(ctx, projectID, folderID, -1)
}

// counterAttempts bounds how often a counter update is retried after losing a
// race with another tree write on the same project
const counterAttempts = 5

// adjustCounts applies delta to one folder and the project total. The script
// write it accounts for has already happened, so a stale revision is retried
// against a fresh copy of the tree instead of being reported to the caller.
func (c *Coordinator) adjustCounts(ctx context.Context, projectID, folderID string, delta int) error {
	var err error
	for attempt := 1; attempt <= counterAttempts; attempt++ {
		err = c.tryAdjustCounts(ctx, projectID, folderID, delta)
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Debug("counter update lost a race, retrying",
			"project_id", projectID,
			"folder_id", folderID,
			"attempt", attempt,
		)
	}
	return err
}

func (c *Coordinator) tryAdjustCounts(ctx context.Context, projectID, folderID string, delta int) error {
	project, forest, err := c.load(ctx, projectID)
	if err != nil {
		return err
	}

	if _, err := forest.AdjustScriptCount(folderID, delta); err != nil {
		return err
	}
	project.Stats.TotalScripts = max(0, project.Stats.TotalScripts+delta)
	project.Stats.LastActivity = c.now()

	return c.save(ctx, project, forest)
}

// MoveScript refiles a script, then moves one count from the source folder to
// the destination. Moving to the folder it is already in changes nothing.
func (c *Coordinator) MoveScript(ctx context.Context, scriptID, toProjectID, toFolderID string) (_ *models.Script, err error) {
	defer func() { metrics.ObserveOperation("move_script", err) }()

	script, err := c.scriptRepo.GetByID(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	if script.ProjectID == toProjectID && script.FolderID == toFolderID {
		return script, nil
	}

	dest, err := c.projectRepo.GetByID(ctx, toProjectID)
	if err != nil {
		return nil, err
	}
	if _, ok := foldertree.FindByID(dest.Folders, toFolderID); !ok {
		return nil, domain.NewNotFoundError("folder", toFolderID)
	}

	if err := c.scriptRepo.Relocate(ctx, scriptID, toProjectID, toFolderID); err != nil {
		return nil, err
	}
	fromProjectID, fromFolderID := script.ProjectID, script.FolderID
	script.ProjectID, script.FolderID = toProjectID, toFolderID

	if err := c.RecordScriptRemoved(ctx, fromProjectID, fromFolderID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("decrement source folder: %w", err)
		}
		// The source folder or project is already gone, nothing to decrement
		c.logger.Warn("moved script had no source folder",
			"script_id", scriptID,
			"project_id", fromProjectID,
			"folder_id", fromFolderID,
		)
	}
	if err := c.RecordScriptCreated(ctx, toProjectID, toFolderID); err != nil {
		return nil, fmt.Errorf("increment destination folder: %w", err)
	}

	c.logger.Info("script moved",
		"id", scriptID,
		"from_project_id", fromProjectID,
		"from_folder_id", fromFolderID,
		"to_project_id", toProjectID,
		"to_folder_id", toFolderID,
	)

	return script, nil
}

// NewForest returns an empty forest using the coordinator's clock and id generator
func (c *Coordinator) NewForest() *foldertree.Forest {
	return foldertree.New(c.forestOptions()...)
}

func (c *Coordinator) load(ctx context.Context, projectID string) (*models.Project, *foldertree.Forest, error) {
	project, err := c.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	forest, err := foldertree.FromNested(project.Folders, c.forestOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("load folder tree of project %s: %w", projectID, err)
	}

	return project, forest, nil
}

func (c *Coordinator) save(ctx context.Context, project *models.Project, forest *foldertree.Forest) error {
	project.Folders = forest.Nested()
	project.UpdatedAt = c.now()

	if err := c.projectRepo.SaveTree(ctx, project); err != nil {
		return err
	}
	c.cache.Invalidate(ctx, project.ID)
	return nil
}

func (c *Coordinator) forestOptions() []foldertree.Option {
	return append([]foldertree.Option{foldertree.WithClock(c.now)}, c.treeOpts...)
}
