package library

import (
	"context"

	"scriptdesk/internal/folderstats"
)

// AuditService compares cached folder counters with the script collection and
// repairs them on request
type AuditService interface {
	// AuditProject builds a statistics report from live script counts
	AuditProject(ctx context.Context, projectID string) (*folderstats.Report, error)

	// Reconcile overwrites cached counters with live counts under a row lock
	Reconcile(ctx context.Context, projectID string, opts ReconcileOptions) (*ReconcileResult, error)

	// PurgeDeletedProjects removes scripts whose project no longer exists
	PurgeDeletedProjects(ctx context.Context) (int, error)
}

// ReconcileOptions tunes a reconcile pass
type ReconcileOptions struct {
	// PurgeOrphans deletes scripts filed under folders that are no longer in the tree
	PurgeOrphans bool `json:"purge_orphans"`
}

// ReconcileResult reports what a reconcile pass changed
type ReconcileResult struct {
	ProjectID        string `json:"project_id"`
	FoldersCorrected int    `json:"folders_corrected"`
	PreviousTotal    int    `json:"previous_total"`
	TotalScripts     int    `json:"total_scripts"`
	OrphansPurged    int    `json:"orphans_purged"`
}

// ReportCache stores audit reports between mutations
type ReportCache interface {
	// Get returns the cached report, ok=false on a miss
	Get(ctx context.Context, projectID string) (*folderstats.Report, bool)

	// Put stores a report
	Put(ctx context.Context, projectID string, report *folderstats.Report)

	// Invalidate drops the cached report for a project
	Invalidate(ctx context.Context, projectID string)
}
