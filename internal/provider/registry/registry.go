// File: internal/provider/registry/registry.go
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"stowage/internal/config"
	"stowage/pkg/storage"
)

// Defines the function signature for checking that a backend block carries what its kind needs
type BackendValidator func(cfg config.BackendConfig) error

// Defines the function signature for creating a backend client from its configuration block
type BackendInitializer func(ctx context.Context, name string, cfg config.BackendConfig, logger *slog.Logger) (storage.Storage, error)

// Holds the necessary functions to validate and initialize one backend kind
type BackendRegistration struct {
	Validate    BackendValidator
	Initializer BackendInitializer
}

var (
	// Stores the registrations, keyed by backend kind (lowercase)
	backendRegistry = make(map[string]BackendRegistration)
	registryMu      sync.RWMutex
)

// Allows a backend implementation package to register itself during initialization (init())
func RegisterBackend(kind storage.Kind, registration BackendRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()

	normalizedKind := strings.ToLower(string(kind))
	if _, exists := backendRegistry[normalizedKind]; exists {
		panic(fmt.Sprintf("backend kind %s already registered", normalizedKind))
	}

	if registration.Validate == nil {
		panic(fmt.Sprintf("backend kind %s registration missing Validate", normalizedKind))
	}
	if registration.Initializer == nil {
		panic(fmt.Sprintf("backend kind %s registration missing Initializer", normalizedKind))
	}

	backendRegistry[normalizedKind] = registration
}

// Returns a sorted list of all registered backend kinds
func GetSupportedKinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]string, 0, len(backendRegistry))
	for kind := range backendRegistry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func IsSupported(kind string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, exists := backendRegistry[strings.ToLower(kind)]
	return exists
}

func GetRegistration(kind string) (BackendRegistration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	registration, exists := backendRegistry[strings.ToLower(kind)]
	return registration, exists
}
