// File: internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"stowage/pkg/multi/migration"
	"stowage/pkg/multi/mirror"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report mapstructure keys so errors match what users type in the file
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		mustRegister("write_strategy", func(fl validator.FieldLevel) bool {
			_, err := mirror.ParseStrategyKind(fl.Field().String())
			return err == nil
		})
		mustRegister("return_policy", func(fl validator.FieldLevel) bool {
			_, err := mirror.ParseReturnPolicy(fl.Field().String())
			return err == nil
		})
		mustRegister("conflict", func(fl validator.FieldLevel) bool {
			_, err := migration.ParseConflict(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

// Validate checks field constraints and that composite targets only reference defined backends
func (c *Config) Validate() error {
	if err := c.validateFields(); err != nil {
		return err
	}

	var errs []error
	for _, name := range c.Mirror.Backends {
		if _, ok := c.Backends[name]; !ok {
			errs = append(errs, fmt.Errorf("mirror.backends: backend %q is not defined", name))
		}
	}
	if c.Mirror.Primary != "" && !slices.Contains(c.Mirror.Backends, c.Mirror.Primary) {
		errs = append(errs, fmt.Errorf("mirror.primary: %q is not one of mirror.backends", c.Mirror.Primary))
	}

	if c.Fallback.Enabled() {
		for _, name := range []string{c.Fallback.Primary, c.Fallback.Secondary} {
			if _, ok := c.Backends[name]; !ok {
				errs = append(errs, fmt.Errorf("fallback: backend %q is not defined", name))
			}
		}
		if c.Fallback.Primary == c.Fallback.Secondary {
			errs = append(errs, errors.New("fallback: primary and secondary must differ"))
		}
	}

	return errors.Join(errs...)
}

// Only checks per-field constraints. Used when editing the file, where references
// may be temporarily dangling between two `config set` calls
func (c *Config) validateFields() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return fmt.Errorf("validating configuration: %w", err)
	}

	errs := make([]error, 0, len(invalid))
	for _, fe := range invalid {
		errs = append(errs, fmt.Errorf("%s: failed %q check (value %v)", trimNamespace(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

// "Config.backends[a].kind" -> "backends.a.kind"
func trimNamespace(ns string) string {
	_, ns, _ = strings.Cut(ns, ".")
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}
