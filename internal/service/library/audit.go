package library

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	models "scriptdesk/internal/domain/models/library"
	"scriptdesk/internal/domain/repositories"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	librarySvc "scriptdesk/internal/domain/services/library"
	"scriptdesk/internal/folderstats"
	"scriptdesk/internal/foldertree"
	"scriptdesk/internal/metrics"
)

// auditService implements the AuditService interface
type auditService struct {
	projectRepo libraryRepo.ProjectRepository
	scriptRepo  libraryRepo.ScriptRepository
	txManager   repositories.TransactionManager
	coordinator *Coordinator
	cache       librarySvc.ReportCache
	logger      *slog.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(
	projectRepo libraryRepo.ProjectRepository,
	scriptRepo libraryRepo.ScriptRepository,
	txManager repositories.TransactionManager,
	coordinator *Coordinator,
	cache librarySvc.ReportCache,
	logger *slog.Logger,
) librarySvc.AuditService {
	return &auditService{
		projectRepo: projectRepo,
		scriptRepo:  scriptRepo,
		txManager:   txManager,
		coordinator: coordinator,
		cache:       cache,
		logger:      logger,
	}
}

// AuditProject loads the forest and the live counts concurrently and analyzes them.
// Reports are cached until the next tree write of the project.
func (s *auditService) AuditProject(ctx context.Context, projectID string) (_ *folderstats.Report, err error) {
	if report, ok := s.cache.Get(ctx, projectID); ok {
		return report, nil
	}
	defer func() { metrics.ObserveOperation("audit", err) }()

	var (
		project *models.Project
		counts  map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.projectRepo.GetByID(gctx, projectID)
		project = p
		return err
	})
	g.Go(func() error {
		c, err := s.scriptRepo.CountByFolder(gctx, projectID)
		counts = c
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := folderstats.Analyze(project.Folders, counts)
	drifted := len(report.Drift())
	metrics.FolderCountDrift.Set(float64(drifted))
	s.cache.Put(ctx, projectID, report)

	if !report.Consistent() {
		s.logger.Warn("folder counts drifted",
			"project_id", projectID,
			"drifted_folders", drifted,
			"orphaned_scripts", report.OrphanedScripts,
		)
	}

	return report, nil
}

// Reconcile recounts live scripts per folder with the project row locked and
// overwrites the cached counters and total
func (s *auditService) Reconcile(ctx context.Context, projectID string, opts librarySvc.ReconcileOptions) (_ *librarySvc.ReconcileResult, err error) {
	defer func() { metrics.ObserveOperation("reconcile", err) }()

	result := &librarySvc.ReconcileResult{ProjectID: projectID}
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		project, err := s.projectRepo.GetByIDForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		forest, err := foldertree.FromNested(project.Folders, s.coordinator.forestOptions()...)
		if err != nil {
			return fmt.Errorf("load folder tree of project %s: %w", projectID, err)
		}
		counts, err := s.scriptRepo.CountByFolder(ctx, projectID)
		if err != nil {
			return err
		}

		total := 0
		for _, id := range forest.IDs() {
			node, _ := forest.Find(id)
			live := counts[id]
			if node.ScriptCount != live {
				result.FoldersCorrected++
				if err := forest.SetScriptCount(id, live); err != nil {
					return err
				}
			}
			total += live
		}

		if opts.PurgeOrphans {
			var orphaned []string
			for id, n := range counts {
				if _, ok := forest.Find(id); !ok && n > 0 {
					orphaned = append(orphaned, id)
				}
			}
			slices.Sort(orphaned)
			purged, err := s.scriptRepo.DeleteByFolders(ctx, projectID, orphaned)
			if err != nil {
				return err
			}
			result.OrphansPurged = purged
			metrics.CascadeDeletedScripts.Add(float64(purged))
		}

		result.PreviousTotal = project.Stats.TotalScripts
		result.TotalScripts = total
		project.Stats.TotalScripts = total
		project.Folders = forest.Nested()
		project.UpdatedAt = s.coordinator.now()
		return s.projectRepo.SaveTree(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, projectID)

	s.logger.Info("project counts reconciled",
		"project_id", projectID,
		"folders_corrected", result.FoldersCorrected,
		"previous_total", result.PreviousTotal,
		"total_scripts", result.TotalScripts,
		"orphans_purged", result.OrphansPurged,
	)

	return result, nil
}

// PurgeDeletedProjects removes scripts left behind by interrupted project deletes
func (s *auditService) PurgeDeletedProjects(ctx context.Context) (_ int, err error) {
	defer func() { metrics.ObserveOperation("purge_deleted_projects", err) }()

	purged, err := s.scriptRepo.DeleteWithoutProject(ctx)
	if err != nil {
		return 0, err
	}
	metrics.CascadeDeletedScripts.Add(float64(purged))

	s.logger.Info("scripts of deleted projects purged", "count", purged)
	return purged, nil
}
