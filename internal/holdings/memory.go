package holdings

import (
	"context"
	"sync"

	"github.com/minji/book-fairy/internal/types"
)

// MemoryStore is an in-process Finder with the same matching semantics as
// the PostgreSQL store. It backs unit tests and database-less runs of the
// CLI (the pipeline then annotates against whatever was loaded).
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// ReplaceAll swaps the full record set, dropping identifier duplicates
// first-wins like the database store.
func (m *MemoryStore) ReplaceAll(_ context.Context, records []Record) (int, error) {
	deduped := dedupeByISBN(records)
	m.mu.Lock()
	m.records = deduped
	m.mu.Unlock()
	return len(deduped), nil
}

// Count returns the number of stored records.
func (m *MemoryStore) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// FindByISBN mirrors Store.FindByISBN.
func (m *MemoryStore) FindByISBN(_ context.Context, query string) (*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, err := matchByISBN(m.records, query)
	if err != nil {
		return nil, err
	}
	return &Result{Record: *match, Match: types.MatchISBN}, nil
}

// FindByTitleAuthor mirrors Store.FindByTitleAuthor.
func (m *MemoryStore) FindByTitleAuthor(_ context.Context, title, author string) (*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, err := matchByTitleAuthor(m.records, title, author)
	if err != nil {
		return nil, err
	}
	return &Result{Record: *match, Match: types.MatchTitleAuthor}, nil
}
