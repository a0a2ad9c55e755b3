package folio

import "sync"

// Content is a loaded project fragment.
type Content struct {
	ProjectID ProjectID
	HTML      string // Markup ready for the modal content slot
	Title     string // Text of the first <h1>, empty if none
	Path      string // Path the fragment was fetched from
}

// Store holds loaded content for the lifetime of its owner. Entries are
// never evicted or invalidated. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	items map[ProjectID]*Content
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{items: make(map[ProjectID]*Content)}
}

// Get returns the stored content for id.
func (s *Store) Get(id ProjectID) (*Content, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	return c, ok
}

// Put stores c under id, replacing any previous entry.
func (s *Store) Put(id ProjectID, c *Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = c
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Reset drops every entry.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[ProjectID]*Content)
}
