package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptdesk/internal/domain"
	models "scriptdesk/internal/domain/models/library"
	librarySvc "scriptdesk/internal/domain/services/library"
)

func TestAuditService_DetectsAndReconcilesDrift(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, "u", "Drifty")
	rootID := project.Folders[0].ID
	env.createScript(t, "u", project.ID, rootID, "A", "a")
	env.createScript(t, "u", project.ID, rootID, "B", "b")

	// Counters written behind the coordinator's back
	stored, err := env.projectRepo.GetByID(env.ctx, project.ID)
	require.NoError(t, err)
	stored.Folders[0].ScriptCount = 7
	stored.Folders = append(stored.Folders, models.FolderNode{ID: "empty", Name: "Empty", ScriptCount: 3})
	require.NoError(t, env.projectRepo.SaveTree(env.ctx, stored))

	report, err := env.audit.AuditProject(env.ctx, project.ID)
	require.NoError(t, err)
	assert.False(t, report.Consistent())
	assert.Len(t, report.Drift(), 2)
	assert.Equal(t, 2, report.LiveScriptTotal)
	assert.Equal(t, 10, report.CachedScriptTotal)
	require.Len(t, report.EmptyFolders, 1)
	assert.Equal(t, "empty", report.EmptyFolders[0].FolderID)

	result, err := env.audit.Reconcile(env.ctx, project.ID, librarySvc.ReconcileOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.FoldersCorrected)
	assert.Equal(t, 2, result.PreviousTotal)
	assert.Equal(t, 2, result.TotalScripts)
	assert.Equal(t, 0, result.OrphansPurged)

	assert.Equal(t, 2, env.folderCount(t, project.ID, rootID))
	assert.Equal(t, 0, env.folderCount(t, project.ID, "empty"))

	report, err = env.audit.AuditProject(env.ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

func TestAuditService_PurgeOrphans(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, "u", "Orphans")
	rootID := project.Folders[0].ID
	env.createScript(t, "u", project.ID, rootID, "Keeper", "k")
	stray := env.createScript(t, "u", project.ID, rootID, "Stray", "s")

	// Simulate an interrupted cascade: the script points at a folder that is gone
	require.NoError(t, env.scriptRepo.Relocate(env.ctx, stray.ID, project.ID, "ghost"))

	report, err := env.audit.AuditProject(env.ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, report.OrphanedFolderIDs)
	assert.Equal(t, 1, report.OrphanedScripts)

	// Without the flag orphans are only counted out of the total
	result, err := env.audit.Reconcile(env.ctx, project.ID, librarySvc.ReconcileOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalScripts)
	assert.Equal(t, 0, result.OrphansPurged)
	_, err = env.scripts.GetScript(env.ctx, stray.ID, "u")
	require.NoError(t, err)

	result, err = env.audit.Reconcile(env.ctx, project.ID, librarySvc.ReconcileOptions{PurgeOrphans: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.OrphansPurged)
	_, err = env.scripts.GetScript(env.ctx, stray.ID, "u")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuditService_PurgeDeletedProjects(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, "u", "Gone")
	env.createScript(t, "u", project.ID, project.Folders[0].ID, "Left behind", "x")
	alive := env.createProject(t, "u", "Alive")
	env.createScript(t, "u", alive.ID, alive.Folders[0].ID, "Fine", "y")

	// Project row removed without the script cascade
	require.NoError(t, env.projectRepo.Delete(env.ctx, project.ID))

	purged, err := env.audit.PurgeDeletedProjects(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	counts, err := env.scriptRepo.CountByFolder(env.ctx, alive.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[alive.Folders[0].ID])
}

func TestAuditService_ReportCache(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, "u", "Cached")

	first, err := env.audit.AuditProject(env.ctx, project.ID)
	require.NoError(t, err)
	second, err := env.audit.AuditProject(env.ctx, project.ID)
	require.NoError(t, err)
	assert.Same(t, first, second, "second audit should come from the cache")

	// Any tree write drops the cached report
	env.createFolder(t, "u", project.ID, "New", nil)
	third, err := env.audit.AuditProject(env.ctx, project.ID)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, third.TotalFolders)
}

func TestAuditService_MissingProject(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.audit.AuditProject(env.ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.audit.Reconcile(env.ctx, "missing", librarySvc.ReconcileOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
