package section

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Snapshot is the persisted form of a registry's live state: the full
// ordered section list plus sync metadata. It is stored as a single blob so
// promotion and persistence stay one operation.
type Snapshot struct {
	BatchID  string               `json:"batch_id,omitempty"`
	SyncedAt time.Time            `json:"synced_at"`
	Sections []*SectionDefinition `json:"sections"`
}

// Registry holds the live section configuration. It is populated wholesale
// by LoadSnapshot (replace, not merge) and serves lock-free-of-I/O reads on
// the content-rendering hot path. Validation always runs against the
// registry's current live sections, so it doubles as the collision baseline
// for incoming documents.
type Registry struct {
	mu       sync.RWMutex
	sections map[string]*SectionDefinition
	ordered  []string
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sections: make(map[string]*SectionDefinition),
		logger:   logger,
	}
}

// LoadSnapshot replaces the registry's entire live state with defs. Sections
// are ordered by ascending Order; ties keep their position in defs, so an
// authoring process's insertion order is the tiebreak.
func (r *Registry) LoadSnapshot(defs []*SectionDefinition) {
	sorted := make([]*SectionDefinition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	sections := make(map[string]*SectionDefinition, len(sorted))
	ordered := make([]string, 0, len(sorted))
	for _, def := range sorted {
		sections[def.Key] = def
		ordered = append(ordered, def.Key)
	}

	r.mu.Lock()
	r.sections = sections
	r.ordered = ordered
	r.mu.Unlock()

	r.logger.Debug("Section snapshot loaded", slog.Int("sections", len(ordered)))
}

// Sections returns the live sections in display order.
func (r *Registry) Sections() []*SectionDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*SectionDefinition, 0, len(r.ordered))
	for _, key := range r.ordered {
		out = append(out, r.sections[key])
	}
	return out
}

// Section returns the live section with the given key, or nil.
func (r *Registry) Section(key string) *SectionDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sections[key]
}

// Len returns the number of live sections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sections)
}

// FieldOwners maps every live content field key to the section that claims
// it. Field keys are globally unique across the registry; this is the
// baseline collision checks run against.
func (r *Registry) FieldOwners() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fieldOwnersLocked()
}

func (r *Registry) fieldOwnersLocked() map[string]string {
	owners := make(map[string]string)
	for key, def := range r.sections {
		for _, fieldKey := range def.ContentFieldKeys() {
			owners[fieldKey] = key
		}
	}
	return owners
}
