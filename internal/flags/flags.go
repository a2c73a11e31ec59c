// File: internal/flags/flags.go
package flags

// Centralized definitions for CLI flags used across the application

const (
	// Config flags point at a configuration file other than ~/.config/stowage/config.yaml
	Config      = "config"
	ConfigShort = "c"

	// EnvFile flags name dotenv files loaded before the configuration
	EnvFile = "env-file"

	// Target flags select what object operations run against: "mirror", "fallback" or a backend name
	Target      = "target"
	TargetShort = "t"

	// ReadOnly flags wrap the target so that writes and deletes are refused
	ReadOnly = "read-only"

	// Prefix flags are used to filter object listings and migrations
	Prefix = "prefix"

	// From and To flags name the source and destination backends of a migration
	From = "from"
	To   = "to"

	// Conflict flags decide what a migration does with objects already at the destination
	Conflict = "conflict"

	// Concurrency flags bound the number of objects a migration moves at once
	Concurrency = "concurrency"

	// DeleteSource flags turn a migration copy into a move
	DeleteSource = "delete-source"

	// Output flags select the rendering of config listings (text or yaml)
	Output      = "output"
	OutputShort = "o"

	// Force flags are used to bypass interactive confirmation prompts for destructive operations
	Force      = "force"
	ForceShort = "f"

	// Debug flags are used to enable verbose logging
	Debug      = "debug"
	DebugShort = "d"
)
