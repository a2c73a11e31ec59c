// File: internal/provider/providers.go
package provider

// This file explicitly imports the backend packages that register themselves in init().
// memory and local are registered by the registry package itself.
//
// To add a backend, implement it under pkg/storage/<kind> with an init() that calls
// registry.RegisterBackend, add its kind to config.BackendConfig and import it here.

import (
	_ "stowage/pkg/storage/aws"
	_ "stowage/pkg/storage/gcp"
	_ "stowage/pkg/storage/redis"
)
