package library

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptdesk/internal/config"
	"scriptdesk/internal/domain"
	models "scriptdesk/internal/domain/models/library"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	librarySvc "scriptdesk/internal/domain/services/library"
)

func TestProjectService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  librarySvc.CreateProjectRequest
	}{
		{"missing user", librarySvc.CreateProjectRequest{Title: "T"}},
		{"blank title", librarySvc.CreateProjectRequest{UserID: "u", Title: "   "}},
		{"title too long", librarySvc.CreateProjectRequest{UserID: "u", Title: strings.Repeat("x", config.MaxProjectTitleLength+1)}},
		{
			"bad settings",
			librarySvc.CreateProjectRequest{UserID: "u", Title: "T", Settings: &models.ProjectSettings{
				DefaultContentType: "opera",
				DefaultStatus:      models.StatusDraft,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := tt.req
			_, err := env.projects.CreateProject(env.ctx, &req)
			assert.ErrorIs(t, err, domain.ErrValidation)

			projects, err := env.projects.ListProjects(env.ctx, "u")
			require.NoError(t, err)
			assert.Empty(t, projects)
		})
	}
}

func TestProjectService_Ownership(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, "owner", "Mine")

	_, err := env.projects.GetProject(env.ctx, project.ID, "intruder")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.projects.DeleteProject(env.ctx, project.ID, "intruder")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.folders.ListFolders(env.ctx, project.ID, "intruder")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := env.projects.ListProjects(env.ctx, "intruder")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjectService_UpdateFields(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, "u", "Draft Title")

	updated, err := env.projects.UpdateProject(env.ctx, project.ID, "u", &librarySvc.UpdateProjectRequest{
		Title:       ptr("  Final Title "),
		Description: librarySvc.OptionalDescription{Present: true, Value: ptr("A story")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Final Title", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "A story", *updated.Description)

	// Explicit null clears the description
	cleared, err := env.projects.UpdateProject(env.ctx, project.ID, "u", &librarySvc.UpdateProjectRequest{
		Description: librarySvc.OptionalDescription{Present: true},
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	assert.Equal(t, "Final Title", cleared.Title)
}

func TestProjectService_ReplaceFolders(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, "u", "Bulk")
	scriptsID := project.Folders[0].ID
	script := env.createScript(t, "u", project.ID, scriptsID, "Pilot", "FADE IN:")

	// The surviving folder keeps its stored count whatever the caller sends;
	// ids the project has never seen become new folders with fresh ids
	replacement := []models.FolderNode{
		{ID: scriptsID, Name: "Drafts", ScriptCount: 99, Children: []models.FolderNode{
			{ID: "a", Name: "Act I", ParentID: ptr(scriptsID), ScriptCount: 7},
		}},
		{ID: "b", Name: "Notes"},
	}
	updated, err := env.projects.UpdateProject(env.ctx, project.ID, "u", &librarySvc.UpdateProjectRequest{Folders: &replacement})
	require.NoError(t, err)

	require.Len(t, updated.Folders, 2)
	assert.Equal(t, scriptsID, updated.Folders[0].ID)
	assert.Equal(t, "Drafts", updated.Folders[0].Name)
	assert.Equal(t, 1, updated.Folders[0].ScriptCount)
	require.Len(t, updated.Folders[0].Children, 1)
	child := updated.Folders[0].Children[0]
	assert.NotEqual(t, "a", child.ID)
	assert.Zero(t, child.ScriptCount)
	assert.NotEqual(t, "b", updated.Folders[1].ID)
	assert.Equal(t, 1, updated.Stats.TotalScripts)

	_, err = env.scripts.GetScript(env.ctx, script.ID, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, env.totalScripts(t, project.ID))
}

func TestProjectService_ReplaceFoldersDropsScripts(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, "u", "Bulk")
	scriptsID := project.Folders[0].ID
	script := env.createScript(t, "u", project.ID, scriptsID, "Pilot", "FADE IN:")

	replacement := []models.FolderNode{{ID: "new-root", Name: "Fresh"}}
	updated, err := env.projects.UpdateProject(env.ctx, project.ID, "u", &librarySvc.UpdateProjectRequest{Folders: &replacement})
	require.NoError(t, err)
	require.Len(t, updated.Folders, 1)
	assert.Zero(t, updated.Stats.TotalScripts)

	_, err = env.scripts.GetScript(env.ctx, script.ID, "u")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	report, err := env.audit.AuditProject(env.ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Empty(t, report.OrphanedFolderIDs)

	// A dropped id sent again is a new folder, not the old one revived
	revive := []models.FolderNode{{ID: scriptsID, Name: "Scripts"}}
	updated, err = env.projects.UpdateProject(env.ctx, project.ID, "u", &librarySvc.UpdateProjectRequest{Folders: &revive})
	require.NoError(t, err)
	require.Len(t, updated.Folders, 1)
	assert.NotEqual(t, scriptsID, updated.Folders[0].ID)
}

func TestProjectService_ReplaceFoldersValidation(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, "u", "Bulk")
	before := env.folderIDs(t, project.ID)

	invalids := map[string][]models.FolderNode{
		"duplicate ids": {
			{ID: "x", Name: "X", Children: []models.FolderNode{{ID: "x", Name: "Y", ParentID: ptr("x")}}},
		},
		"wrong parent id": {
			{ID: "x", Name: "X", Children: []models.FolderNode{{ID: "y", Name: "Y", ParentID: ptr("z")}}},
		},
		"blank name": {{ID: "x", Name: " "}},
	}
	for name, folders := range invalids {
		t.Run(name, func(t *testing.T) {
			_, err := env.projects.UpdateProject(env.ctx, project.ID, "u", &librarySvc.UpdateProjectRequest{
				Title:   ptr("Should Not Stick"),
				Folders: &folders,
			})
			assert.ErrorIs(t, err, domain.ErrValidation)

			stored, err := env.projects.GetProject(env.ctx, project.ID, "u")
			require.NoError(t, err)
			assert.Equal(t, "Bulk", stored.Title)
			assert.Equal(t, before, env.folderIDs(t, project.ID))
		})
	}
}

// failingFolderDeletes fails every DeleteByFolders call
type failingFolderDeletes struct {
	libraryRepo.ScriptRepository
}

func (failingFolderDeletes) DeleteByFolders(context.Context, string, []string) (int, error) {
	return 0, domain.WrapDatabase("delete scripts by folder", errors.New("connection reset"))
}

func TestProjectService_UpdateIsAtomic(t *testing.T) {
	env := newTestEnv(t, withScripts(func(r libraryRepo.ScriptRepository) libraryRepo.ScriptRepository {
		return failingFolderDeletes{r}
	}))
	project := env.createProject(t, "u", "Before")
	before := env.folderIDs(t, project.ID)

	replacement := []models.FolderNode{{ID: "new-root", Name: "Fresh"}}
	_, err := env.projects.UpdateProject(env.ctx, project.ID, "u", &librarySvc.UpdateProjectRequest{
		Title:   ptr("After"),
		Folders: &replacement,
	})
	require.ErrorIs(t, err, domain.ErrDatabase)

	stored, err := env.projects.GetProject(env.ctx, project.ID, "u")
	require.NoError(t, err)
	assert.Equal(t, "Before", stored.Title)
	assert.Equal(t, before, env.folderIDs(t, project.ID))
}

func TestProjectService_StaleTreeWriteConflicts(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, "u", "Race")

	stale, err := env.projectRepo.GetByID(env.ctx, project.ID)
	require.NoError(t, err)

	env.createFolder(t, "u", project.ID, "Winner", nil)

	stale.Folders = nil
	err = env.projectRepo.SaveTree(env.ctx, stale)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "project", conflict.ResourceType)

	stored, err := env.projects.GetProject(env.ctx, project.ID, "u")
	require.NoError(t, err)
	assert.Len(t, stored.Folders, 2)
}
