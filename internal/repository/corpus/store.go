// Package corpus holds the in-memory screenplay corpus and its loaders.
package corpus

import (
	"fmt"
	"sync"

	"github.com/kailas-cloud/scriptforge/internal/domain"
	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
	"github.com/kailas-cloud/scriptforge/internal/metrics"
)

// Store is the process-lifetime corpus. It only grows.
type Store struct {
	mu   sync.RWMutex
	docs []domcorpus.Document
	ids  map[string]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// Load appends a batch of documents, typically the startup directory scan.
// Documents whose ID is already present are skipped. Returns the number added.
func (s *Store) Load(docs []domcorpus.Document) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, d := range docs {
		if _, dup := s.ids[d.ID]; dup {
			continue
		}
		s.appendLocked(d)
		added++
	}
	metrics.CorpusDocuments.Set(float64(len(s.docs)))
	return added
}

// Append adds one document and returns the new corpus size.
func (s *Store) Append(doc domcorpus.Document) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[doc.ID]; dup {
		return len(s.docs), fmt.Errorf("script %q: %w", doc.ID, domain.ErrAlreadyExists)
	}
	s.appendLocked(doc)
	metrics.CorpusDocuments.Set(float64(len(s.docs)))
	return len(s.docs), nil
}

func (s *Store) appendLocked(doc domcorpus.Document) {
	s.docs = append(s.docs, doc)
	s.ids[doc.ID] = struct{}{}
}

// All returns a snapshot of the corpus in insertion order.
func (s *Store) All() []domcorpus.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domcorpus.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Get returns the document with the given ID.
func (s *Store) Get(id string) (domcorpus.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return domcorpus.Document{}, fmt.Errorf("script %q: %w", id, domain.ErrNotFound)
}

// Has reports whether a document with the given ID is stored.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.ids[id]
	return ok
}

// Count returns the number of stored documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.docs)
}
