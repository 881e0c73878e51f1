package backend

import (
	"fmt"
	"sync"

	"github.com/signadot/spdb/entry"
)

// MemStore keeps named snapshots for the mem backend. Loading a locator
// yields a copy of what was last saved under it.
type MemStore struct {
	mu   sync.Mutex
	docs map[string]*entry.Entry
}

func NewMemStore() *MemStore {
	return &MemStore{docs: map[string]*entry.Entry{}}
}

// Factory returns an ObjectFactory for Mem objects sharing s.
func (s *MemStore) Factory() ObjectFactory {
	return func(self *entry.Entry) (Backend, error) {
		return &Mem{MemObject: entry.NewObject(self), store: s}, nil
	}
}

func (s *MemStore) get(locator string) (*entry.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[locator]
	return doc, ok
}

func (s *MemStore) put(locator string, doc *entry.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[locator] = doc
}

// Mem is the in-memory backend. An empty locator loads nothing and saves
// nowhere.
type Mem struct {
	*entry.MemObject
	store *MemStore
}

func (m *Mem) Load(locator string) error {
	m.Clear()
	if locator == "" {
		return nil
	}
	doc, ok := m.store.get(locator)
	if !ok {
		return fmt.Errorf("%w: mem document %q", entry.ErrNotFound, locator)
	}
	return m.Self().CopyFrom(doc)
}

func (m *Mem) Save(locator string) error {
	if locator == "" {
		return nil
	}
	doc := entry.New()
	if err := doc.CopyFrom(m.Self()); err != nil {
		return fmt.Errorf("save mem document %q: %w", locator, err)
	}
	m.store.put(locator, doc)
	return nil
}
