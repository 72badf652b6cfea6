// Package memory is an in-process implementation of the library repositories.
// It backs STORAGE_BACKEND=memory and the service tests. Every value crossing
// the package boundary is deep-copied so callers never share state with the
// store.
package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	models "scriptdesk/internal/domain/models/library"
)

// Store holds both collections behind one lock
type Store struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	projects map[string]*models.Project
	scripts  map[string]*models.Script
	now      func() time.Time
	newID    func() string
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used for version timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides the id generator for projects and scripts
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		projects: make(map[string]*models.Project),
		scripts:  make(map[string]*models.Script),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cloneProject(p *models.Project) *models.Project {
	out := *p
	out.Folders = cloneFolders(p.Folders)
	if out.Folders == nil {
		out.Folders = []models.FolderNode{}
	}
	if p.Description != nil {
		d := *p.Description
		out.Description = &d
	}
	return &out
}

func cloneFolders(nodes []models.FolderNode) []models.FolderNode {
	if nodes == nil {
		return nil
	}
	out := make([]models.FolderNode, len(nodes))
	for i, n := range nodes {
		out[i] = n
		if n.ParentID != nil {
			pid := *n.ParentID
			out[i].ParentID = &pid
		}
		out[i].Children = cloneFolders(n.Children)
	}
	return out
}

func cloneScript(s *models.Script) *models.Script {
	out := *s
	out.Metadata.Tags = slices.Clone(s.Metadata.Tags)
	if out.Metadata.Tags == nil {
		out.Metadata.Tags = []string{}
	}
	if s.Metadata.Duration != nil {
		d := *s.Metadata.Duration
		out.Metadata.Duration = &d
	}
	out.Versions = slices.Clone(s.Versions)
	out.EstimatedDuration = nil
	return &out
}
