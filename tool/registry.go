package tool

import "sync"

// Registry holds tool metadata and the handler bound to each tool id. It is
// the single shared component across runs: reads vastly outnumber writes, so
// access is guarded by an RWMutex and registration is expected to happen at
// process start, before any batch references the registered ids.
//
// The Registry exclusively owns the handler-to-id mapping; callers receive
// handler values for invocation but never rebind them.
type Registry struct {
	mu       sync.RWMutex
	meta     map[string]Metadata
	handlers map[string]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		meta:     map[string]Metadata{},
		handlers: map[string]Handler{},
	}
}

// Register inserts or replaces the entry for metadata.ToolID. Registering
// with a nil handler is permitted for metadata-only discovery. When
// overwrite is false and an entry with the same version already exists the
// call fails with *DuplicateRegistrationError; a different version replaces
// the entry wholesale.
func (r *Registry) Register(metadata Metadata, handler Handler, overwrite bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.meta[metadata.ToolID]; ok && !overwrite && existing.Version == metadata.Version {
		return &DuplicateRegistrationError{ToolID: metadata.ToolID, Version: metadata.Version}
	}

	r.meta[metadata.ToolID] = metadata
	if handler != nil {
		r.handlers[metadata.ToolID] = handler
	} else {
		delete(r.handlers, metadata.ToolID)
	}

	return nil
}

// Get returns the metadata registered under toolID.
func (r *Registry) Get(toolID string) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meta[toolID]
	return m, ok
}

// GetHandler returns the handler bound to toolID, if any.
func (r *Registry) GetHandler(toolID string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[toolID]
	return h, ok
}

// GetSchema returns the input schema registered for toolID. The boolean is
// false when the tool is unknown or has no schema.
func (r *Registry) GetSchema(toolID string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meta[toolID]
	if !ok || m.InputSchema == nil {
		return nil, false
	}
	return m.InputSchema, true
}

// Has reports whether toolID is registered.
func (r *Registry) Has(toolID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.meta[toolID]
	return ok
}

// List returns all registered metadata. Order is not guaranteed.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0, len(r.meta))
	for _, m := range r.meta {
		out = append(out, m)
	}
	return out
}

// Remove deletes the entry and handler for toolID. Removing an absent id is
// an idempotent no-op.
func (r *Registry) Remove(toolID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.meta, toolID)
	delete(r.handlers, toolID)
}
