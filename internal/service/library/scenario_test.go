package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptdesk/internal/domain"
	models "scriptdesk/internal/domain/models/library"
)

func TestLibraryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	const user = "user-1"

	// New project starts with the default folder
	project := env.createProject(t, user, "Pilot")
	require.Len(t, project.Folders, 1)
	root := project.Folders[0]
	assert.Equal(t, models.DefaultFolderName, root.Name)
	assert.Equal(t, 0, root.ScriptCount)
	assert.Nil(t, root.ParentID)

	// Child folder under the default one
	child := env.createFolder(t, user, project.ID, "Child", &root.ID)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)

	folders, err := env.folders.ListFolders(env.ctx, project.ID, user)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	require.Len(t, folders[0].Children, 1)
	assert.Equal(t, "Child", folders[0].Children[0].Name)

	// Script creation bumps the folder counter and the project total
	script := env.createScript(t, user, project.ID, child.ID, "Cold Open", "INT. KITCHEN - NIGHT")
	assert.Equal(t, 1, env.folderCount(t, project.ID, child.ID))
	assert.Equal(t, 1, env.totalScripts(t, project.ID))
	require.Len(t, script.Versions, 1)

	// Two content updates then a revert to version 1
	_, err = env.scripts.UpdateContent(env.ctx, script.ID, user, "INT. KITCHEN - DAY")
	require.NoError(t, err)
	updated, err := env.scripts.UpdateContent(env.ctx, script.ID, user, "EXT. YARD - DAY")
	require.NoError(t, err)
	require.Len(t, updated.Versions, 3)
	for i, v := range updated.Versions {
		assert.Equal(t, i+1, v.Version)
	}

	reverted, err := env.scripts.RevertScript(env.ctx, script.ID, user, 1)
	require.NoError(t, err)
	require.Len(t, reverted.Versions, 4)
	assert.Equal(t, "INT. KITCHEN - NIGHT", reverted.Content)
	assert.Equal(t, reverted.Versions[0].Content, reverted.Versions[3].Content)

	versions, err := env.scripts.ListVersions(env.ctx, script.ID, user)
	require.NoError(t, err)
	assert.Len(t, versions, 4)

	// Counters agree with the live collection
	report, err := env.audit.AuditProject(env.ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, 2, report.TotalFolders)
	assert.Equal(t, 1, report.FolderDepth)

	// Deleting the ancestor removes both folders and cascades to the script
	deletion, err := env.folders.DeleteFolder(env.ctx, project.ID, root.ID, user)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root.ID, child.ID}, deletion.RemovedFolderIDs)
	assert.Equal(t, 1, deletion.DeletedScripts)

	_, err = env.scripts.GetScript(env.ctx, script.ID, user)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := env.projects.GetProject(env.ctx, project.ID, user)
	require.NoError(t, err)
	assert.Empty(t, stored.Folders)
	assert.Equal(t, 0, stored.Stats.TotalScripts)
}

func TestDeleteProjectCascades(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, "u", "Doomed")
	rootID := project.Folders[0].ID
	env.createScript(t, "u", project.ID, rootID, "One", "a")
	env.createScript(t, "u", project.ID, rootID, "Two", "b")

	other := env.createProject(t, "u", "Survivor")
	kept := env.createScript(t, "u", other.ID, other.Folders[0].ID, "Kept", "c")

	deletion, err := env.projects.DeleteProject(env.ctx, project.ID, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, deletion.DeletedScripts)

	_, err = env.projects.GetProject(env.ctx, project.ID, "u")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.scripts.GetScript(env.ctx, kept.ID, "u")
	assert.NoError(t, err)
	assert.Positive(t, env.cache.invalidations[project.ID])
}
