// File: internal/config/config.go
package config

import (
	"maps"
	"slices"
	"time"
)

const (
	ConfigFileName = "config.yaml"
	ConfigDirName  = "stowage"
	EnvPrefix      = "STOWAGE"
)

// BackendConfig describes one named backend. Which fields apply depends on Kind
type BackendConfig struct {
	Kind string `mapstructure:"kind" yaml:"kind" validate:"required,oneof=memory local gcs s3 redis"`

	// gcs, s3
	Bucket       string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	CreateBucket bool   `mapstructure:"create_bucket" yaml:"create_bucket,omitempty"`
	Location     string `mapstructure:"location" yaml:"location,omitempty"`

	// gcs
	Project string `mapstructure:"project" yaml:"project,omitempty"`

	// s3
	Region    string `mapstructure:"region" yaml:"region,omitempty"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty" validate:"omitempty,url"`
	PathStyle bool   `mapstructure:"path_style" yaml:"path_style,omitempty"`

	// local
	Root string `mapstructure:"root" yaml:"root,omitempty"`

	// redis
	Addr      string `mapstructure:"addr" yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
	Password  string `mapstructure:"password" yaml:"password,omitempty"`
	DB        int    `mapstructure:"db" yaml:"db,omitempty" validate:"gte=0"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix,omitempty"`
}

type MirrorConfig struct {
	// Order matters: backend indices in errors and logs follow this list
	Backends       []string      `mapstructure:"backends" yaml:"backends,omitempty" validate:"omitempty,unique,dive,required"`
	Primary        string        `mapstructure:"primary" yaml:"primary,omitempty"`
	Strategy       string        `mapstructure:"strategy" yaml:"strategy,omitempty" validate:"omitempty,write_strategy"`
	Rollback       bool          `mapstructure:"rollback" yaml:"rollback,omitempty"`
	ReturnPolicy   string        `mapstructure:"return_policy" yaml:"return_policy,omitempty" validate:"omitempty,return_policy"`
	BackendTimeout time.Duration `mapstructure:"backend_timeout" yaml:"backend_timeout,omitempty" validate:"gte=0"`
}

func (m MirrorConfig) Enabled() bool {
	return len(m.Backends) > 0
}

type FallbackConfig struct {
	Primary      string `mapstructure:"primary" yaml:"primary,omitempty" validate:"required_with=Secondary"`
	Secondary    string `mapstructure:"secondary" yaml:"secondary,omitempty" validate:"required_with=Primary"`
	WriteThrough bool   `mapstructure:"write_through" yaml:"write_through,omitempty"`
}

func (f FallbackConfig) Enabled() bool {
	return f.Primary != "" && f.Secondary != ""
}

type MigrationConfig struct {
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency" validate:"gte=0,lte=256"`
	Conflict    string `mapstructure:"conflict" yaml:"conflict" validate:"omitempty,conflict"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

type MetricsConfig struct {
	// Path of a node-exporter textfile the CLI writes its counters to on exit
	Textfile string `mapstructure:"textfile" yaml:"textfile,omitempty"`
}

type Config struct {
	Backends  map[string]BackendConfig `mapstructure:"backends" yaml:"backends,omitempty" validate:"dive"`
	Mirror    MirrorConfig             `mapstructure:"mirror" yaml:"mirror,omitempty"`
	Fallback  FallbackConfig           `mapstructure:"fallback" yaml:"fallback,omitempty"`
	Migration MigrationConfig          `mapstructure:"migration" yaml:"migration"`
	Log       LogConfig                `mapstructure:"log" yaml:"log"`
	Metrics   MetricsConfig            `mapstructure:"metrics" yaml:"metrics,omitempty"`
}

// Returns the configured backend names in a stable order
func (c *Config) BackendNames() []string {
	return slices.Sorted(maps.Keys(c.Backends))
}

var defaults = map[string]any{
	"log.level":             "info",
	"log.format":            "text",
	"migration.concurrency": 4,
	"migration.conflict":    "overwrite",
	"mirror.strategy":       "all_or_fail",
	"mirror.return_policy":  "wait_all",
}
