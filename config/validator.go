package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wippyai/keybridge/bridge"
	"github.com/wippyai/keybridge/dom"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "controls[1].mode")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"json", "console"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	errs = append(errs, c.validateModule()...)
	errs = append(errs, c.validateSurface()...)
	errs = append(errs, c.validateControls()...)
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateUI()...)

	return errs
}

func (c *Config) validateModule() []ValidationError {
	var errs []ValidationError
	if strings.TrimSpace(c.Module.Path) == "" {
		errs = append(errs, ValidationError{
			Field:   "module.path",
			Value:   c.Module.Path,
			Message: "must not be empty",
		})
	}
	if strings.TrimSpace(c.Module.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "module.name",
			Value:   c.Module.Name,
			Message: "must not be empty",
		})
	}
	// 65536 pages is the 4GiB ceiling of 32-bit memories
	if c.Module.MemoryLimitPages > 65536 {
		errs = append(errs, ValidationError{
			Field:   "module.memory_limit_pages",
			Value:   c.Module.MemoryLimitPages,
			Message: "must be at most 65536",
		})
	}
	return errs
}

func (c *Config) validateSurface() []ValidationError {
	if strings.TrimSpace(c.Surface.ID) == "" {
		return []ValidationError{{
			Field:   "surface.id",
			Value:   c.Surface.ID,
			Message: "must not be empty",
		}}
	}
	return nil
}

func (c *Config) validateControls() []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(c.Controls))

	for i, ctl := range c.Controls {
		field := fmt.Sprintf("controls[%d]", i)

		switch {
		case ctl.ID == "":
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Value:   ctl.ID,
				Message: "must not be empty",
			})
		case ctl.ID == c.Surface.ID:
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Value:   ctl.ID,
				Message: "must differ from surface.id",
			})
		case seen[ctl.ID]:
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Value:   ctl.ID,
				Message: "duplicate control id",
			})
		}
		seen[ctl.ID] = true

		if _, ok := dom.LookupKey(ctl.Code); !ok {
			errs = append(errs, ValidationError{
				Field:   field + ".code",
				Value:   ctl.Code,
				Message: "unknown key code",
			})
		}
		if _, err := bridge.ParseMode(ctl.Mode); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".mode",
				Value:   ctl.Mode,
				Message: "must be oneShot or momentary",
			})
		}
	}
	return errs
}

func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Logging.Format)) {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}
	return errs
}

func (c *Config) validateUI() []ValidationError {
	if c.UI.KeyLogLines < 1 {
		return []ValidationError{{
			Field:   "ui.key_log_lines",
			Value:   c.UI.KeyLogLines,
			Message: "must be at least 1",
		}}
	}
	return nil
}
