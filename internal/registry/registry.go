package registry

import (
	"fmt"
	"sync"
	"time"

	"pyth_index/internal/domain"
)

// Options controls registry invariants.
type Options struct {
	// UniqueNames rejects Create when an entry with the same name exists.
	UniqueNames bool
}

// State is the persisted form of a registry.
type State struct {
	Entries []domain.IndexEntry
	NextID  uint64
}

// Registry is an ordered collection of index entries addressed by id.
// Ids come from a counter that only moves forward, so a deleted id is never reassigned.
type Registry struct {
	mu      sync.RWMutex
	opts    Options
	entries []domain.IndexEntry
	nextID  uint64
	now     func() time.Time
}

// New creates an empty registry. The first id handed out is 1.
func New(opts Options) *Registry {
	return &Registry{
		opts:   opts,
		nextID: 1,
		now:    time.Now,
	}
}

// Create appends an entry and returns its id.
func (r *Registry) Create(name string, keys []string) (uint64, error) {
	if name == "" {
		return 0, domain.ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opts.UniqueNames && r.indexByName(name) >= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrDuplicateName, name)
	}

	id := r.nextID
	r.nextID++
	now := r.now()
	r.entries = append(r.entries, domain.IndexEntry{
		ID:        id,
		Name:      name,
		Keys:      append([]string(nil), keys...),
		CreatedAt: now,
		UpdatedAt: now,
	})
	return id, nil
}

// Delete removes the entry with id.
func (r *Registry) Delete(id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return fmt.Errorf("%w: index id %d", domain.ErrNotFound, id)
	}
	r.remove(i)
	return nil
}

// DeleteByName removes the first entry named name and returns its id.
func (r *Registry) DeleteByName(name string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByName(name)
	if i < 0 {
		return 0, fmt.Errorf("%w: index %q", domain.ErrNotFound, name)
	}
	id := r.entries[i].ID
	r.remove(i)
	return id, nil
}

// Get returns a copy of the entry with id.
func (r *Registry) Get(id uint64) (domain.IndexEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexByID(id)
	if i < 0 {
		return domain.IndexEntry{}, fmt.Errorf("%w: index id %d", domain.ErrNotFound, id)
	}
	return r.entries[i].Clone(), nil
}

// Lookup returns a copy of the first entry named name.
func (r *Registry) Lookup(name string) (domain.IndexEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexByName(name)
	if i < 0 {
		return domain.IndexEntry{}, fmt.Errorf("%w: index %q", domain.ErrNotFound, name)
	}
	return r.entries[i].Clone(), nil
}

// List returns copies of all entries in creation order.
func (r *Registry) List() []domain.IndexEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.IndexEntry, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// AddSnapshot appends a validated price snapshot to entry id.
func (r *Registry) AddSnapshot(id uint64, snap domain.PriceSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return fmt.Errorf("%w: index id %d", domain.ErrNotFound, id)
	}
	snap.EntryID = id
	e := &r.entries[i]
	e.Snapshots = append(e.Snapshots, snap)
	e.UpdatedAt = r.now()
	return nil
}

// State returns a copy of the registry contents and counter.
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]domain.IndexEntry, len(r.entries))
	for i, e := range r.entries {
		entries[i] = e.Clone()
	}
	return State{Entries: entries, NextID: r.nextID}
}

// Restore replaces the registry contents. The counter never moves below
// one past the highest restored id.
func (r *Registry) Restore(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make([]domain.IndexEntry, len(s.Entries))
	next := max(s.NextID, 1)
	for i, e := range s.Entries {
		r.entries[i] = e.Clone()
		if e.ID >= next {
			next = e.ID + 1
		}
	}
	r.nextID = next
}

// must be called with lock held
func (r *Registry) indexByID(id uint64) int {
	for i := range r.entries {
		if r.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// must be called with lock held
func (r *Registry) indexByName(name string) int {
	for i := range r.entries {
		if r.entries[i].Name == name {
			return i
		}
	}
	return -1
}

func (r *Registry) remove(i int) {
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
}
