// Package memory is a process-local store used in development and tests.
// All data is lost when the process exits.
package memory

import (
	"context"
	"maps"
	"sync"

	"devspace/internal/domain"
	"devspace/internal/domain/models"
	"devspace/internal/domain/repositories"
)

type folderRecord struct {
	folder models.Folder
	seq    uint64
}

type resourceRecord struct {
	resource models.Resource
	seq      uint64
}

// Store holds folders and resources behind one lock. The folder, resource and
// transaction views returned by its methods all share that state.
type Store struct {
	mu        sync.RWMutex
	folders   map[string]folderRecord
	resources map[string]resourceRecord
	seq       uint64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		folders:   make(map[string]folderRecord),
		resources: make(map[string]resourceRecord),
	}
}

type txContextKey struct{}

// inTx reports whether ctx belongs to a transaction opened on this store
func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txContextKey{}).(*Store)
	return owner == s
}

func (s *Store) read(ctx context.Context, fn func()) {
	if !s.inTx(ctx) {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn()
}

func (s *Store) write(ctx context.Context, fn func()) {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// TransactionManager runs functions while holding the store's write lock and
// restores the previous state if the function fails.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx executes a function within a transaction
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	s := tm.store
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("begin transaction", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	folders := maps.Clone(s.folders)
	resources := maps.Clone(s.resources)
	seq := s.seq

	txCtx := context.WithValue(context.WithoutCancel(ctx), txContextKey{}, s)
	if err := fn(txCtx); err != nil {
		s.folders, s.resources, s.seq = folders, resources, seq
		return err
	}
	return nil
}

func cloneRef(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// Reset drops every folder and resource
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders = make(map[string]folderRecord)
	s.resources = make(map[string]resourceRecord)
}
