package catalog

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hyperjump/fandex/internal/models"
)

// Snapshot is an immutable view of one domain's catalog.
type Snapshot struct {
	Items    []models.CatalogItem
	byID     map[string]models.CatalogItem
	Source   string
	LoadedAt time.Time
}

func newSnapshot(items []models.CatalogItem, source string) *Snapshot {
	s := &Snapshot{
		Items:    make([]models.CatalogItem, 0, len(items)),
		byID:     make(map[string]models.CatalogItem, len(items)),
		Source:   source,
		LoadedAt: time.Now(),
	}
	for _, item := range items {
		if models.IsNil(item) {
			continue
		}
		s.Items = append(s.Items, item)
		if _, dup := s.byID[item.ItemID()]; !dup {
			s.byID[item.ItemID()] = item
		}
	}
	return s
}

// Store holds the current snapshot of each domain. Readers never block:
// a reload builds a new snapshot and swaps the pointer.
type Store struct {
	mu        sync.Mutex // guards the map, not the snapshots
	snapshots map[models.Domain]*atomic.Pointer[Snapshot]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{snapshots: make(map[models.Domain]*atomic.Pointer[Snapshot])}
}

func (s *Store) slot(d models.Domain) *atomic.Pointer[Snapshot] {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.snapshots[d]
	if !ok {
		p = &atomic.Pointer[Snapshot]{}
		s.snapshots[d] = p
	}
	return p
}

// Set replaces the snapshot of domain d. Nil items are dropped.
func (s *Store) Set(d models.Domain, items []models.CatalogItem, source string) *Snapshot {
	snap := newSnapshot(items, source)
	s.slot(d).Store(snap)
	return snap
}

// Snapshot returns the current snapshot of d, or nil before the first load.
func (s *Store) Snapshot(d models.Domain) *Snapshot {
	return s.slot(d).Load()
}

// Items returns the current items of d in catalog order. Callers must not
// modify the returned slice.
func (s *Store) Items(d models.Domain) []models.CatalogItem {
	if snap := s.Snapshot(d); snap != nil {
		return snap.Items
	}
	return nil
}

// Item returns the item of d with the given id.
func (s *Store) Item(d models.Domain, id string) (models.CatalogItem, bool) {
	snap := s.Snapshot(d)
	if snap == nil {
		return nil, false
	}
	item, ok := snap.byID[id]
	return item, ok
}

// Len returns the number of items of d.
func (s *Store) Len(d models.Domain) int {
	return len(s.Items(d))
}
