package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/bnema/upgate/internal/logging"
)

// validateConfig performs comprehensive validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateUpdate(config)...)
	validationErrors = append(validationErrors, validateEngine(config)...)
	validationErrors = append(validationErrors, validateLogging(config)...)
	validationErrors = append(validationErrors, validateHistory(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

func validateUpdate(config *Config) []string {
	if config.Update.CheckIntervalMinutes < 0 {
		return []string{"update.check_interval_minutes must be non-negative"}
	}
	return nil
}

func validateEngine(config *Config) []string {
	var validationErrors []string

	if raw := config.Engine.ManifestURL; raw != "" {
		u, err := url.Parse(raw)
		switch {
		case err != nil:
			validationErrors = append(validationErrors, fmt.Sprintf("engine.manifest_url is not a valid URL: %v", err))
		case u.Scheme != "https" && u.Scheme != "http":
			validationErrors = append(validationErrors, "engine.manifest_url must use http or https")
		case u.Host == "":
			validationErrors = append(validationErrors, "engine.manifest_url must include a host")
		}
	}
	if v := config.Engine.CurrentVersion; v != "" {
		if _, err := version.NewVersion(v); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("engine.current_version %q is not a valid version", v))
		}
	}
	if config.Engine.RequestTimeoutSec < 1 {
		validationErrors = append(validationErrors, "engine.request_timeout_sec must be at least 1")
	}
	if config.Engine.DownloadTimeoutSec < 1 {
		validationErrors = append(validationErrors, "engine.download_timeout_sec must be at least 1")
	}
	return validationErrors
}

func validateLogging(config *Config) []string {
	var validationErrors []string
	if _, ok := logging.ParseLevel(config.Logging.Level); !ok {
		validationErrors = append(validationErrors,
			fmt.Sprintf("logging.level must be one of trace, debug, info, warn, error (got %q)", config.Logging.Level))
	}
	if config.Logging.EnableFileLog && config.Logging.MaxSizeMB < 1 {
		validationErrors = append(validationErrors, "logging.max_size_mb must be at least 1")
	}
	if config.Logging.MaxBackups < 0 {
		validationErrors = append(validationErrors, "logging.max_backups must be non-negative")
	}
	if config.Logging.MaxAgeDays < 0 {
		validationErrors = append(validationErrors, "logging.max_age_days must be non-negative")
	}
	return validationErrors
}

func validateHistory(config *Config) []string {
	if config.History.MaxEntries < 0 {
		return []string{"history.max_entries must be non-negative"}
	}
	return nil
}
