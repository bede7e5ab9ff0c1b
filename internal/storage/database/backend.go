package database

import (
	"fmt"
	"sort"
	"sync"
)

// Factory opens a database rooted at path.
type Factory func(path string) (DB, error)

var (
	backendMu        sync.RWMutex
	backendFactories = make(map[string]Factory)
)

// RegisterBackend registers a backend factory with the given name.
func RegisterBackend(name string, factory Factory) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backendFactories[name] = factory
}

// Open opens the named backend at path. Backends register themselves from
// their package init, so the caller must import the backend package.
func Open(backend, path string) (DB, error) {
	backendMu.RLock()
	factory, ok := backendFactories[backend]
	backendMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}

	db, err := factory(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database at %s: %w", backend, path, err)
	}
	return db, nil
}

// AvailableBackends returns the registered backend names in sorted order.
func AvailableBackends() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()

	names := make([]string, 0, len(backendFactories))
	for name := range backendFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBackendAvailable checks if a backend with the given name is registered.
func IsBackendAvailable(name string) bool {
	backendMu.RLock()
	_, ok := backendFactories[name]
	backendMu.RUnlock()
	return ok
}
