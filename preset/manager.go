package preset

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"status-viewer/catalog"
	"status-viewer/storage"
)

// Manager handles loading, saving and deleting saved filters. Every mutation
// rewrites the whole list to storage before it becomes visible in memory.
type Manager struct {
	mu       sync.RWMutex
	store    storage.Store
	presets  []Preset
	revision uint64
	log      *zap.Logger
}

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	log            *zap.Logger
	resetMalformed bool
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *managerOptions) { o.log = l }
}

// WithResetMalformed makes NewManager start from an empty list instead of
// failing when the stored list cannot be decoded.
func WithResetMalformed(reset bool) Option {
	return func(o *managerOptions) { o.resetMalformed = reset }
}

// NewManager loads the saved filters from store. A missing key yields an
// empty list.
func NewManager(ctx context.Context, store storage.Store, opts ...Option) (*Manager, error) {
	o := managerOptions{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	m := &Manager{store: store, log: o.log, presets: []Preset{}}

	var loaded []Preset
	if _, err := storage.LoadJSON(ctx, store, StorageKey, &loaded); err != nil {
		if !errors.Is(err, storage.ErrMalformed) || !o.resetMalformed {
			return nil, fmt.Errorf("loading saved filters: %w", err)
		}
		m.log.Warn("discarding malformed saved filters", zap.Error(err))
		loaded = nil
	}
	if loaded != nil {
		m.presets = loaded
	}
	m.log.Debug("saved filters loaded", zap.Int("count", len(m.presets)))
	return m, nil
}

// List returns a copy of the saved filters for display.
func (m *Manager) List() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{Revision: m.revision, Presets: copyPresets(m.presets)}
}

// Revision identifies the current state of the list; it changes on every
// save or delete.
func (m *Manager) Revision() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revision
}

// Save appends a copy of filter under name and returns its index.
func (m *Manager) Save(ctx context.Context, name string, filter catalog.FilterState) (int, error) {
	if name == "" {
		return -1, ErrEmptyName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]Preset, len(m.presets), len(m.presets)+1)
	copy(next, m.presets)
	next = append(next, Preset{Name: name, Filter: filter})
	if err := m.persist(ctx, next); err != nil {
		return -1, err
	}
	m.presets = next
	m.revision++
	m.log.Info("filter saved", zap.String("name", name), zap.Int("index", len(next)-1))
	return len(next) - 1, nil
}

// RefOption qualifies an index lookup.
type RefOption func(*ref)

type ref struct {
	revision    uint64
	hasRevision bool
}

// AtRevision rejects the lookup with ErrStale when the list has changed since
// the snapshot with revision rev was taken.
func AtRevision(rev uint64) RefOption {
	return func(r *ref) {
		r.revision = rev
		r.hasRevision = true
	}
}

// Apply returns a copy of the filter stored at index.
func (m *Manager) Apply(index int, opts ...RefOption) (catalog.FilterState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(index, opts); err != nil {
		return catalog.FilterState{}, err
	}
	return m.presets[index].Filter, nil
}

// Delete removes the preset at index once the caller has confirmed it.
// Later presets shift down by one.
func (m *Manager) Delete(ctx context.Context, index int, d Decision, opts ...RefOption) error {
	if d != Confirmed {
		return ErrNotConfirmed
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(index, opts); err != nil {
		return err
	}

	removed := m.presets[index]
	next := make([]Preset, 0, len(m.presets)-1)
	next = append(next, m.presets[:index]...)
	next = append(next, m.presets[index+1:]...)
	if err := m.persist(ctx, next); err != nil {
		return err
	}
	m.presets = next
	m.revision++
	m.log.Info("filter deleted", zap.String("name", removed.Name), zap.Int("index", index))
	return nil
}

// check validates index against the list. Caller must hold m.mu.
func (m *Manager) check(index int, opts []RefOption) error {
	var r ref
	for _, opt := range opts {
		opt(&r)
	}
	if r.hasRevision && r.revision != m.revision {
		return ErrStale
	}
	if index < 0 || index >= len(m.presets) {
		return fmt.Errorf("%w: index %d", ErrNotFound, index)
	}
	return nil
}

// persist rewrites the full list. Caller must hold m.mu.
func (m *Manager) persist(ctx context.Context, presets []Preset) error {
	if err := storage.SaveJSON(ctx, m.store, StorageKey, presets); err != nil {
		return fmt.Errorf("persisting saved filters: %w", err)
	}
	return nil
}

func copyPresets(in []Preset) []Preset {
	out := make([]Preset, len(in))
	copy(out, in)
	return out
}
