package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"scriptdesk/internal/domain"
	models "scriptdesk/internal/domain/models/library"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	"scriptdesk/internal/versionledger"
)

// ScriptRepository implements libraryRepo.ScriptRepository on a Store
type ScriptRepository struct {
	store *Store
}

// NewScriptRepository creates a script repository backed by store
func NewScriptRepository(store *Store) libraryRepo.ScriptRepository {
	return &ScriptRepository{store: store}
}

// Create inserts a script with its initial version ledger
func (r *ScriptRepository) Create(ctx context.Context, script *models.Script) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if script.ID == "" {
		script.ID = r.store.newID()
	}
	if _, exists := r.store.scripts[script.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("script %s already exists", script.ID),
			ResourceType: "script",
			ResourceID:   script.ID,
		}
	}
	r.store.scripts[script.ID] = cloneScript(script)
	return nil
}

// GetByID retrieves a script including its versions
func (r *ScriptRepository) GetByID(ctx context.Context, id string) (*models.Script, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.scripts[id]
	if !ok {
		return nil, domain.NewNotFoundError("script", id)
	}
	return cloneScript(s), nil
}

// List retrieves scripts of a project without their version ledgers.
// Query matches when every whitespace-separated term occurs in the title or
// content, case-insensitively.
func (r *ScriptRepository) List(ctx context.Context, projectID string, filter models.ScriptFilter) ([]models.Script, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(filter.Query))
	scripts := []models.Script{}
	for _, s := range r.store.scripts {
		if s.ProjectID != projectID {
			continue
		}
		if filter.FolderID != nil && s.FolderID != *filter.FolderID {
			continue
		}
		if filter.Status != nil && s.Metadata.Status != *filter.Status {
			continue
		}
		if !matchesTerms(s, terms) {
			continue
		}
		out := cloneScript(s)
		out.Versions = nil
		scripts = append(scripts, *out)
	}
	slices.SortFunc(scripts, func(a, b models.Script) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return scripts, nil
}

func matchesTerms(s *models.Script, terms []string) bool {
	haystack := strings.ToLower(s.Title + " " + s.Content)
	for _, t := range terms {
		if !strings.Contains(haystack, t) {
			return false
		}
	}
	return true
}

// UpdateMetadata writes title and metadata only
func (r *ScriptRepository) UpdateMetadata(ctx context.Context, script *models.Script) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.scripts[script.ID]
	if !ok {
		return domain.NewNotFoundError("script", script.ID)
	}
	updated := cloneScript(script)
	stored.Title = updated.Title
	stored.Metadata = updated.Metadata
	stored.UpdatedAt = updated.UpdatedAt
	return nil
}

// AppendVersion appends a ledger entry under the store lock
func (r *ScriptRepository) AppendVersion(ctx context.Context, id, content string, wordCount int) (*models.Script, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.scripts[id]
	if !ok {
		return nil, domain.NewNotFoundError("script", id)
	}
	now := r.store.now()
	stored.Versions = versionledger.Append(stored.Versions, content, now)
	stored.Content = content
	stored.WordCount = wordCount
	stored.UpdatedAt = now
	return cloneScript(stored), nil
}

// Relocate sets project and folder in a single write
func (r *ScriptRepository) Relocate(ctx context.Context, id, projectID, folderID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.scripts[id]
	if !ok {
		return domain.NewNotFoundError("script", id)
	}
	stored.ProjectID = projectID
	stored.FolderID = folderID
	stored.UpdatedAt = r.store.now()
	return nil
}

// Delete removes one script
func (r *ScriptRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.scripts[id]; !ok {
		return domain.NewNotFoundError("script", id)
	}
	delete(r.store.scripts, id)
	return nil
}

// DeleteByFolders removes the project's scripts filed under any of folderIDs
func (r *ScriptRepository) DeleteByFolders(ctx context.Context, projectID string, folderIDs []string) (int, error) {
	return r.deleteWhere(func(s *models.Script) bool {
		return s.ProjectID == projectID && slices.Contains(folderIDs, s.FolderID)
	}), nil
}

// DeleteByProject removes every script of the project
func (r *ScriptRepository) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	return r.deleteWhere(func(s *models.Script) bool {
		return s.ProjectID == projectID
	}), nil
}

// DeleteWithoutProject removes scripts whose project no longer exists
func (r *ScriptRepository) DeleteWithoutProject(ctx context.Context) (int, error) {
	return r.deleteWhere(func(s *models.Script) bool {
		_, ok := r.store.projects[s.ProjectID]
		return !ok
	}), nil
}

func (r *ScriptRepository) deleteWhere(match func(*models.Script) bool) int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	deleted := 0
	for id, s := range r.store.scripts {
		if match(s) {
			delete(r.store.scripts, id)
			deleted++
		}
	}
	return deleted
}

// CountByFolder aggregates live script counts per folder id
func (r *ScriptRepository) CountByFolder(ctx context.Context, projectID string) (map[string]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	counts := make(map[string]int)
	for _, s := range r.store.scripts {
		if s.ProjectID == projectID {
			counts[s.FolderID]++
		}
	}
	return counts, nil
}
