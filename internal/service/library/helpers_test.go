package library

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	models "scriptdesk/internal/domain/models/library"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	librarySvc "scriptdesk/internal/domain/services/library"
	"scriptdesk/internal/folderstats"
	"scriptdesk/internal/foldertree"
	"scriptdesk/internal/repository/memory"
)

// testClock advances one second per call so timestamps are strictly ordered
type testClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

// recordingCache is an in-memory ReportCache that counts invalidations
type recordingCache struct {
	mu            sync.Mutex
	reports       map[string]*folderstats.Report
	invalidations map[string]int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		reports:       make(map[string]*folderstats.Report),
		invalidations: make(map[string]int),
	}
}

func (c *recordingCache) Get(_ context.Context, projectID string) (*folderstats.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.reports[projectID]
	return r, ok
}

func (c *recordingCache) Put(_ context.Context, projectID string, report *folderstats.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[projectID] = report
}

func (c *recordingCache) Invalidate(_ context.Context, projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reports, projectID)
	c.invalidations[projectID]++
}

type testEnv struct {
	ctx         context.Context
	projectRepo libraryRepo.ProjectRepository
	scriptRepo  libraryRepo.ScriptRepository
	cache       *recordingCache
	coordinator *Coordinator
	projects    librarySvc.ProjectService
	folders     librarySvc.FolderService
	scripts     librarySvc.ScriptService
	audit       librarySvc.AuditService
}

// envOption swaps in a repository wrapper. coordinatorProjects only affects
// the coordinator's view of the projects collection.
type envOption func(*envConfig)

type envConfig struct {
	coordinatorProjects func(libraryRepo.ProjectRepository) libraryRepo.ProjectRepository
	scripts             func(libraryRepo.ScriptRepository) libraryRepo.ScriptRepository
}

func withCoordinatorProjects(wrap func(libraryRepo.ProjectRepository) libraryRepo.ProjectRepository) envOption {
	return func(c *envConfig) { c.coordinatorProjects = wrap }
}

func withScripts(wrap func(libraryRepo.ScriptRepository) libraryRepo.ScriptRepository) envOption {
	return func(c *envConfig) { c.scripts = wrap }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := envConfig{
		coordinatorProjects: func(r libraryRepo.ProjectRepository) libraryRepo.ProjectRepository { return r },
		scripts:             func(r libraryRepo.ScriptRepository) libraryRepo.ScriptRepository { return r },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	clock := &testClock{cur: time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewStore(memory.WithClock(clock.Now))
	projectRepo := memory.NewProjectRepository(store)
	scriptRepo := cfg.scripts(memory.NewScriptRepository(store))
	txManager := memory.NewTransactionManager(store)
	cache := newRecordingCache()

	coordinator := NewCoordinator(cfg.coordinatorProjects(projectRepo), scriptRepo, cache, logger, WithClock(clock.Now))

	return &testEnv{
		ctx:         context.Background(),
		projectRepo: projectRepo,
		scriptRepo:  scriptRepo,
		cache:       cache,
		coordinator: coordinator,
		projects:    NewProjectService(projectRepo, txManager, coordinator, logger),
		folders:     NewFolderService(projectRepo, coordinator, logger),
		scripts:     NewScriptService(projectRepo, scriptRepo, coordinator, NewContentAnalyzer(), logger),
		audit:       NewAuditService(projectRepo, scriptRepo, txManager, coordinator, cache, logger),
	}
}

func (e *testEnv) createProject(t *testing.T, userID, title string) *models.Project {
	t.Helper()
	project, err := e.projects.CreateProject(e.ctx, &librarySvc.CreateProjectRequest{
		UserID: userID,
		Title:  title,
	})
	require.NoError(t, err)
	return project
}

func (e *testEnv) createFolder(t *testing.T, userID, projectID, name string, parentID *string) *models.FolderNode {
	t.Helper()
	folder, err := e.folders.CreateFolder(e.ctx, userID, &librarySvc.CreateFolderRequest{
		ProjectID: projectID,
		Name:      name,
		ParentID:  parentID,
	})
	require.NoError(t, err)
	return folder
}

func (e *testEnv) createScript(t *testing.T, userID, projectID, folderID, title, content string) *models.Script {
	t.Helper()
	script, err := e.scripts.CreateScript(e.ctx, &librarySvc.CreateScriptRequest{
		UserID:    userID,
		ProjectID: projectID,
		FolderID:  folderID,
		Title:     title,
		Content:   content,
	})
	require.NoError(t, err)
	return script
}

// folderCount returns the cached script count of a folder in the stored project
func (e *testEnv) folderCount(t *testing.T, projectID, folderID string) int {
	t.Helper()
	project, err := e.projectRepo.GetByID(e.ctx, projectID)
	require.NoError(t, err)
	node, ok := foldertree.FindByID(project.Folders, folderID)
	require.True(t, ok, "folder %s not in tree", folderID)
	return node.ScriptCount
}

func (e *testEnv) totalScripts(t *testing.T, projectID string) int {
	t.Helper()
	project, err := e.projectRepo.GetByID(e.ctx, projectID)
	require.NoError(t, err)
	return project.Stats.TotalScripts
}

func ptr[T any](v T) *T { return &v }

// folderIDs returns every folder id of the stored project in pre-order
func (e *testEnv) folderIDs(t *testing.T, projectID string) []string {
	t.Helper()
	project, err := e.projectRepo.GetByID(e.ctx, projectID)
	require.NoError(t, err)
	forest, err := foldertree.FromNested(project.Folders)
	require.NoError(t, err)
	return forest.IDs()
}
