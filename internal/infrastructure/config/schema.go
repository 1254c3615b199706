// Package config loads, validates and watches the upgate configuration file.
package config

// Config represents the complete configuration for upgate.
type Config struct {
	// Update controls when checks run and how the install decision is made.
	Update UpdateConfig `mapstructure:"update" yaml:"update" toml:"update" json:"update"`
	// Engine configures the reference HTTP update engine.
	Engine EngineConfig `mapstructure:"engine" yaml:"engine" toml:"engine" json:"engine"`
	// Logging controls log level, format and the optional rotated log file.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" toml:"logging" json:"logging"`
	// History controls persistence of update outcomes.
	History HistoryConfig `mapstructure:"history" yaml:"history" toml:"history" json:"history"`
}

// UpdateConfig holds automatic update settings.
type UpdateConfig struct {
	// EnableOnStartup runs a check as soon as the watcher starts.
	// Default: true
	EnableOnStartup bool `mapstructure:"enable_on_startup" yaml:"enable_on_startup" toml:"enable_on_startup" json:"enable_on_startup" jsonschema:"description=Check for updates when upgate starts,default=true"`
	// AutoDownload downloads a detected update without asking.
	// When false the UpdateAvailable event is vetoed.
	// Default: true
	AutoDownload bool `mapstructure:"auto_download" yaml:"auto_download" toml:"auto_download" json:"auto_download" jsonschema:"description=Download detected updates automatically,default=true"`
	// ConfirmInstall defers the install until the user confirms it.
	// Default: false
	ConfirmInstall bool `mapstructure:"confirm_install" yaml:"confirm_install" toml:"confirm_install" json:"confirm_install" jsonschema:"description=Ask before installing a downloaded update,default=false"`
	// CheckIntervalMinutes re-runs the check periodically. 0 disables it.
	// Default: 0
	CheckIntervalMinutes int `mapstructure:"check_interval_minutes" yaml:"check_interval_minutes" toml:"check_interval_minutes" json:"check_interval_minutes" jsonschema:"description=Minutes between periodic checks (0 disables),minimum=0,default=0"`
}

// EngineConfig configures the reference update engine.
type EngineConfig struct {
	// ManifestURL is the JSON release manifest location.
	ManifestURL string `mapstructure:"manifest_url" yaml:"manifest_url" toml:"manifest_url" json:"manifest_url" jsonschema:"description=URL of the JSON release manifest"`
	// CurrentVersion overrides the version compiled into the binary.
	CurrentVersion string `mapstructure:"current_version" yaml:"current_version" toml:"current_version" json:"current_version" jsonschema:"description=Installed version; empty uses the build version"`
	// TargetPath is the file replaced on install.
	TargetPath string `mapstructure:"target_path" yaml:"target_path" toml:"target_path" json:"target_path" jsonschema:"description=File replaced by the installer; empty uses the running executable"`
	// DownloadDir holds in-flight and downloaded artifacts.
	DownloadDir string `mapstructure:"download_dir" yaml:"download_dir" toml:"download_dir" json:"download_dir" jsonschema:"description=Directory for downloaded artifacts; empty uses the XDG cache directory"`
	// RequestTimeoutSec bounds manifest requests.
	// Default: 15
	RequestTimeoutSec int `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec" toml:"request_timeout_sec" json:"request_timeout_sec" jsonschema:"description=Manifest request timeout in seconds,minimum=1,default=15"`
	// DownloadTimeoutSec bounds a whole artifact transfer.
	// Default: 600
	DownloadTimeoutSec int `mapstructure:"download_timeout_sec" yaml:"download_timeout_sec" toml:"download_timeout_sec" json:"download_timeout_sec" jsonschema:"description=Artifact download timeout in seconds,minimum=1,default=600"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level" toml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	// Format is "console" or "json".
	Format string `mapstructure:"format" yaml:"format" toml:"format" json:"format" jsonschema:"enum=console,enum=json,default=console"`
	// EnableFileLog writes a JSON copy of every entry to LogDir.
	EnableFileLog bool `mapstructure:"enable_file_log" yaml:"enable_file_log" toml:"enable_file_log" json:"enable_file_log" jsonschema:"default=false"`
	// LogDir defaults to $XDG_STATE_HOME/upgate/logs.
	LogDir string `mapstructure:"log_dir" yaml:"log_dir" toml:"log_dir" json:"log_dir"`
	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb" toml:"max_size_mb" json:"max_size_mb" jsonschema:"minimum=1,default=10"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups" toml:"max_backups" json:"max_backups" jsonschema:"minimum=0,default=3"`
	// MaxAgeDays removes rotated files older than this. 0 keeps them.
	MaxAgeDays int `mapstructure:"max_age_days" yaml:"max_age_days" toml:"max_age_days" json:"max_age_days" jsonschema:"minimum=0,default=30"`
	// Compress gzips rotated files.
	Compress bool `mapstructure:"compress" yaml:"compress" toml:"compress" json:"compress" jsonschema:"default=true"`
}

// HistoryConfig holds update history settings.
type HistoryConfig struct {
	// Enabled records every outcome in the sqlite database.
	Enabled bool `mapstructure:"enabled" yaml:"enabled" toml:"enabled" json:"enabled" jsonschema:"default=true"`
	// DatabasePath defaults to $XDG_DATA_HOME/upgate/upgate.sqlite.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path" toml:"database_path" json:"database_path"`
	// MaxEntries caps the number of stored records. 0 keeps everything.
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries" toml:"max_entries" json:"max_entries" jsonschema:"minimum=0,default=500"`
}

// CheckInterval returns the periodic check interval in minutes, or 0.
func (u UpdateConfig) CheckInterval() int {
	if u.CheckIntervalMinutes < 0 {
		return 0
	}
	return u.CheckIntervalMinutes
}
