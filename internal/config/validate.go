package config

import (
	"fmt"
	"strings"

	"github.com/hack-pad/palmshim/internal/log"
)

// ValidationError collects every problem found in a config.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

var timeFormats = map[string]bool{"HH12": true, "HH24": true}

// Validate returns a *ValidationError listing all problems, or nil.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	if !log.ParseLevel(cfg.LogLevel).Valid() {
		ve.Add("log_level %q is not one of debug, log, warn, error", cfg.LogLevel)
	}
	if cfg.App.InfoPath == "" {
		ve.Add("app.info is required")
	}
	if cfg.App.ActivityID < 0 {
		ve.Add("app.activity_id must not be negative, got %d", cfg.App.ActivityID)
	}
	if cfg.Properties.Locale == "" {
		ve.Add("properties.locale is required")
	}
	if !timeFormats[cfg.Properties.TimeFormat] {
		ve.Add("properties.time_format %q must be HH12 or HH24", cfg.Properties.TimeFormat)
	}
	if cfg.Resources.CacheEntries <= 0 {
		ve.Add("resources.cache_entries must be positive, got %d", cfg.Resources.CacheEntries)
	}
	if cfg.Resources.ProgressInterval <= 0 {
		ve.Add("resources.progress_interval must be positive")
	}
	if cfg.Services.CallTimeout < 0 {
		ve.Add("services.call_timeout must not be negative")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}
