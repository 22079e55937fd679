package preset

import (
	"errors"

	"status-viewer/catalog"
)

// StorageKey is the key the saved filter list is persisted under.
const StorageKey = "savedFilters"

// Preset is a named snapshot of a filter. Presets are identified by their
// position in the list; names may repeat.
type Preset struct {
	Name   string              `json:"name"`
	Filter catalog.FilterState `json:"filter"`
}

// Snapshot is a copy of the list together with the revision it was taken at.
type Snapshot struct {
	Revision uint64   `json:"revision"`
	Presets  []Preset `json:"presets"`
}

// Decision is the outcome of a confirmation step.
type Decision int

const (
	Cancelled Decision = iota
	Confirmed
)

var (
	ErrNotFound     = errors.New("preset not found")
	ErrEmptyName    = errors.New("preset name is required")
	ErrNotConfirmed = errors.New("delete not confirmed")
	ErrStale        = errors.New("preset list changed since it was displayed")
)
