package memory

import (
	"context"

	models "scriptdesk/internal/domain/models/library"
	"scriptdesk/internal/domain/repositories"
)

// TransactionManager serializes transactional callbacks and restores both
// collections to their state at the start of fn when fn fails. Writes made
// outside a transaction while fn runs are rolled back with it.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

type txKey struct{}

// ExecTx runs fn while holding the store's transaction lock. Nested calls run
// inside the outer transaction.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	projects, scripts := tm.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, tm)); err != nil {
		tm.store.restore(projects, scripts)
		return err
	}
	return nil
}

func (s *Store) snapshot() (map[string]*models.Project, map[string]*models.Script) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make(map[string]*models.Project, len(s.projects))
	for id, p := range s.projects {
		projects[id] = cloneProject(p)
	}
	scripts := make(map[string]*models.Script, len(s.scripts))
	for id, sc := range s.scripts {
		scripts[id] = cloneScript(sc)
	}
	return projects, scripts
}

func (s *Store) restore(projects map[string]*models.Project, scripts map[string]*models.Script) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = projects
	s.scripts = scripts
}
