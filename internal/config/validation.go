package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"imesync/internal/ime"
	"imesync/internal/logging"
)

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e ValidationErrors) Unwrap() error {
	return ErrInvalidConfig
}

// ValidateConfig performs comprehensive validation of the configuration.
func ValidateConfig(c *Config) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateIME(&c.IME)...)
	errs = append(errs, validateLogging(&c.Logging)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateIME(i *IMEConfig) ValidationErrors {
	var errs ValidationErrors

	if i.FallbackInputSource == "" {
		errs = append(errs, *RequiredFieldError("ime.fallback_input_source"))
	}

	known := []string{ime.ServiceIBus, ime.ServiceFcitx5}
	if len(i.LinuxServices) == 0 {
		errs = append(errs, ValidationError{
			Field:   "ime.linux_services",
			Message: fmt.Sprintf("must list at least one of %s (set ime.enabled = false to disable)", strings.Join(known, ", ")),
		})
	}
	for idx, s := range i.LinuxServices {
		if !slices.Contains(known, s) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("ime.linux_services[%d]", idx),
				Message: fmt.Sprintf("unknown service %q (expected one of %s)", s, strings.Join(known, ", ")),
			})
		}
	}

	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	if _, err := logging.ParseLevel(l.Level); err != nil {
		errs = append(errs, ValidationError{Field: "logging.level", Message: err.Error()})
	}
	if _, err := logging.ParseFormat(l.Format); err != nil {
		errs = append(errs, ValidationError{Field: "logging.format", Message: err.Error()})
	}

	switch strings.ToLower(l.Output) {
	case "stdout", "stderr":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, *RequiredFieldError("logging.file_path"))
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("unknown output %q (expected stdout, stderr, file or both)", l.Output),
		})
	}

	if l.MaxSizeMB < 0 {
		errs = append(errs, *RangeError("logging.max_size_mb", 0, "unbounded"))
	}
	if l.MaxBackups < 0 {
		errs = append(errs, *RangeError("logging.max_backups", 0, "unbounded"))
	}
	if l.MaxAgeDays < 0 {
		errs = append(errs, *RangeError("logging.max_age_days", 0, "unbounded"))
	}

	return errs
}

//go:embed language.schema.json
var languageSchema string

const languageSchemaURL = "https://imesync.invalid/schema/languages.schema.json"

var (
	compiledLanguageSchema *jsonschema.Schema
	languageSchemaErr      error
	languageSchemaOnce     sync.Once
)

func loadLanguageSchema() (*jsonschema.Schema, error) {
	languageSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(languageSchemaURL, strings.NewReader(languageSchema)); err != nil {
			languageSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledLanguageSchema, languageSchemaErr = compiler.Compile(languageSchemaURL)
	})
	return compiledLanguageSchema, languageSchemaErr
}

// ValidateLanguages checks the language table against the embedded schema
// and for duplicate names.
func ValidateLanguages(lc *LanguageConfig) error {
	var errs ValidationErrors

	seen := make(map[string]int)
	for idx, lang := range lc.Languages {
		if prev, ok := seen[lang.Name]; ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("language[%d].name", idx),
				Message: fmt.Sprintf("duplicate of language[%d]", prev),
			})
			continue
		}
		seen[lang.Name] = idx
	}

	schema, err := loadLanguageSchema()
	if err != nil {
		return fmt.Errorf("language schema: %w", err)
	}

	data, err := json.Marshal(lc)
	if err != nil {
		return fmt.Errorf("encode languages: %w", err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("decode languages: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		errs = append(errs, ValidationError{Field: "language", Message: err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RequiredFieldError creates a validation error for a required field.
func RequiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: "required field is missing",
	}
}

// RangeError creates a validation error for an out-of-range value.
func RangeError(field string, min, max interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("value must be between %v and %v", min, max),
	}
}
