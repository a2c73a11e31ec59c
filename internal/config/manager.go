// File: internal/config/manager.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Keys that can be overridden from the environment, e.g. STOWAGE_MIRROR_RETURN_POLICY
var envKeys = []string{
	"log.level",
	"log.format",
	"metrics.textfile",
	"mirror.backends",
	"mirror.primary",
	"mirror.strategy",
	"mirror.rollback",
	"mirror.return_policy",
	"mirror.backend_timeout",
	"fallback.primary",
	"fallback.secondary",
	"fallback.write_through",
	"migration.concurrency",
	"migration.conflict",
}

// ConfigManager reads the YAML configuration file layered with defaults and
// STOWAGE_* environment variables, and edits the file for the config subcommands
type ConfigManager struct {
	path string
}

// Creates a manager for path, or for the default location when path is empty
func NewConfigManager(path string) (*ConfigManager, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return &ConfigManager{path: path}, nil
}

// Returns ~/.config/stowage/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", ConfigDirName, ConfigFileName), nil
}

// Loads environment variables from the given dotenv files (default .env). Missing files are ignored
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", file, err)
		}
	}
	return nil
}

func (m *ConfigManager) Path() string {
	return m.path
}

// Viper instance layering the file over defaults, with environment overrides
func (m *ConfigManager) runtimeViper() (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}
	if err := m.readFile(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Viper instance holding exactly what is in the file
func (m *ConfigManager) fileViper() (*viper.Viper, error) {
	v := viper.New()
	if err := m.readFile(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (m *ConfigManager) readFile(v *viper.Viper) error {
	v.SetConfigFile(m.path)
	v.SetConfigType("yaml")
	err := v.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err == nil || errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("error reading config file %s: %w", m.path, err)
}

// Load decodes and fully validates the effective configuration
func (m *ConfigManager) Load() (*Config, error) {
	v, err := m.runtimeViper()
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", m.path, err)
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}
	// Backend names are map keys, which viper lowercases, so references must match.
	// "a, b" may come from the command line or environment
	for i, name := range cfg.Mirror.Backends {
		cfg.Mirror.Backends[i] = normalizeName(name)
	}
	cfg.Mirror.Primary = normalizeName(cfg.Mirror.Primary)
	cfg.Fallback.Primary = normalizeName(cfg.Fallback.Primary)
	cfg.Fallback.Secondary = normalizeName(cfg.Fallback.Secondary)
	return &cfg, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Returns the effective value for key, including defaults and environment overrides
func (m *ConfigManager) GetValue(key string) (any, bool) {
	v, err := m.runtimeViper()
	if err != nil || !v.IsSet(key) {
		return nil, false
	}
	return v.Get(key), true
}

func (m *ConfigManager) GetAllSettings() map[string]any {
	v, err := m.runtimeViper()
	if err != nil {
		return map[string]any{}
	}
	return v.AllSettings()
}

// SetValue writes key to the configuration file after checking that the key is known
// and that the resulting file still passes field validation
func (m *ConfigManager) SetValue(key, value string) error {
	key = strings.ToLower(key)
	if err := ValidateKey(key); err != nil {
		return err
	}

	v, err := m.fileViper()
	if err != nil {
		return err
	}
	v.Set(key, value)

	cfg, err := decode(v)
	if err != nil {
		return err
	}
	if err := cfg.validateFields(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return m.write(v.AllSettings())
}

// DeleteValue removes key from the configuration file. It reports false when the key was not set
func (m *ConfigManager) DeleteValue(key string) (bool, error) {
	key = strings.ToLower(key)
	v, err := m.fileViper()
	if err != nil {
		return false, err
	}
	if !v.IsSet(key) {
		return false, nil
	}

	settings := v.AllSettings()
	if !deleteNested(settings, strings.Split(key, ".")) {
		return false, nil
	}
	if err := m.write(settings); err != nil {
		return false, err
	}
	return true, nil
}

func (m *ConfigManager) write(settings map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	out := viper.New()
	out.SetConfigType("yaml")
	if err := out.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("error preparing configuration: %w", err)
	}
	if err := out.WriteConfigAs(m.path); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Removes the value at path and prunes parents left empty
func deleteNested(settings map[string]any, path []string) bool {
	if len(path) == 1 {
		if _, ok := settings[path[0]]; !ok {
			return false
		}
		delete(settings, path[0])
		return true
	}

	child, ok := settings[path[0]].(map[string]any)
	if !ok {
		return false
	}
	if !deleteNested(child, path[1:]) {
		return false
	}
	if len(child) == 0 {
		delete(settings, path[0])
	}
	return true
}

// ValidateKey rejects keys that do not map onto a configuration field,
// e.g. "mirror.stratgy" or "backends.gcs-main.bukcet"
func ValidateKey(key string) error {
	parts := strings.Split(key, ".")
	section := parts[0]

	switch section {
	case "backends":
		if len(parts) != 3 || parts[1] == "" {
			return fmt.Errorf("invalid config key %q: use backends.<name>.<field>", key)
		}
		return checkField(key, parts[2], reflect.TypeFor[BackendConfig]())
	case "mirror", "fallback", "migration", "log", "metrics":
		if len(parts) != 2 {
			return fmt.Errorf("invalid config key %q: use %s.<field>", key, section)
		}
		field, _ := reflect.TypeFor[Config]().FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, section)
		})
		return checkField(key, parts[1], field.Type)
	default:
		return fmt.Errorf("unknown config section in key %q (want backends, mirror, fallback, migration, log or metrics)", key)
	}
}

func checkField(key, name string, t reflect.Type) error {
	fields := fieldNames(t)
	if !slices.Contains(fields, name) {
		return fmt.Errorf("unknown config key %q (valid fields: %s)", key, strings.Join(fields, ", "))
	}
	return nil
}

func fieldNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		if name, _, _ := strings.Cut(t.Field(i).Tag.Get("mapstructure"), ","); name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
