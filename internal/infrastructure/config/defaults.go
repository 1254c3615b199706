package config

const (
	dirPerm  = 0o755
	filePerm = 0o644

	defaultRequestTimeoutSec  = 15
	defaultDownloadTimeoutSec = 600
	defaultHistoryMaxEntries  = 500
	defaultLogMaxSizeMB       = 10
	defaultLogMaxBackups      = 3
	defaultLogMaxAgeDays      = 30
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Update: UpdateConfig{
			EnableOnStartup:      true,
			AutoDownload:         true,
			ConfirmInstall:       false,
			CheckIntervalMinutes: 0,
		},
		Engine: EngineConfig{
			RequestTimeoutSec:  defaultRequestTimeoutSec,
			DownloadTimeoutSec: defaultDownloadTimeoutSec,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
			Compress:   true,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: defaultHistoryMaxEntries,
		},
	}
}
