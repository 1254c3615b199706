package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
	}
	v.AddConfigPath(configDir)

	// UPGATE_ENGINE_MANIFEST_URL, UPGATE_UPDATE_CONFIRM_INSTALL, ...
	v.SetEnvPrefix("UPGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The logging variables are shared with logging.NewFromEnv and use shorter names.
	if err := v.BindEnv("logging.level", "UPGATE_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind UPGATE_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "UPGATE_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind UPGATE_LOG_FORMAT: %w", err)
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables.
// A default file is written on first run.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config, err := m.buildConfig()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

func (m *Manager) readConfigFile() error {
	err := m.viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		configFile := m.viper.ConfigFileUsed()
		if configFile == "" {
			configFile, _ = GetConfigFile()
		}
		return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", configFile, err)
	}

	if createErr := m.createDefaultConfig(); createErr != nil {
		configDir, _ := GetConfigDir()
		return fmt.Errorf("failed to create default config at %s: %w", configDir, createErr)
	}
	if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
		return fmt.Errorf("failed to read newly created config file: %w", rereadErr)
	}
	return nil
}

// buildConfig unmarshals, fills derived paths, normalizes and validates.
func (m *Manager) buildConfig() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.viper.ConfigFileUsed(),
			err,
		)
	}
	if err := fillDerivedPaths(config); err != nil {
		return nil, err
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func fillDerivedPaths(config *Config) error {
	if config.History.DatabasePath == "" {
		dbPath, err := GetDatabaseFile()
		if err != nil {
			return fmt.Errorf("failed to get database path: %w", err)
		}
		config.History.DatabasePath = dbPath
	}
	if config.Engine.DownloadDir == "" {
		dir, err := GetDownloadDir()
		if err != nil {
			return fmt.Errorf("failed to get download directory: %w", err)
		}
		config.Engine.DownloadDir = dir
	}
	if config.Logging.LogDir == "" {
		dir, err := GetLogDir()
		if err != nil {
			return fmt.Errorf("failed to get log directory: %w", err)
		}
		config.Logging.LogDir = dir
	}
	return nil
}

func normalizeConfig(config *Config) {
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	if config.Logging.Level == "warning" {
		config.Logging.Level = "warn"
	}

	switch strings.ToLower(strings.TrimSpace(config.Logging.Format)) {
	case "json":
		config.Logging.Format = "json"
	default:
		config.Logging.Format = "console"
	}

	config.Engine.ManifestURL = strings.TrimSpace(config.Engine.ManifestURL)
	config.Engine.CurrentVersion = strings.TrimPrefix(strings.TrimSpace(config.Engine.CurrentVersion), "v")
	if config.Engine.RequestTimeoutSec == 0 {
		config.Engine.RequestTimeoutSec = defaultRequestTimeoutSec
	}
	if config.Engine.DownloadTimeoutSec == 0 {
		config.Engine.DownloadTimeoutSec = defaultDownloadTimeoutSec
	}
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	// Return a copy to prevent external modification
	configCopy := *m.config
	return &configCopy
}

// GetConfigFile returns the path to the configuration file being used.
func (m *Manager) GetConfigFile() string {
	return m.viper.ConfigFileUsed()
}

// createDefaultConfig writes the defaults and the JSON schema next to them.
func (m *Manager) createDefaultConfig() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), dirPerm); err != nil {
		return err
	}

	m.viper.SetConfigType("toml")
	if err := m.viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Created default configuration file: %s\n", configFile)

	if _, err := WriteSchemaFile(filepath.Dir(configFile)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return nil
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.setUpdateDefaults(defaults)
	m.setEngineDefaults(defaults)
	m.setLoggingDefaults(defaults)
	m.setHistoryDefaults(defaults)
}

func (m *Manager) setUpdateDefaults(defaults *Config) {
	m.viper.SetDefault("update.enable_on_startup", defaults.Update.EnableOnStartup)
	m.viper.SetDefault("update.auto_download", defaults.Update.AutoDownload)
	m.viper.SetDefault("update.confirm_install", defaults.Update.ConfirmInstall)
	m.viper.SetDefault("update.check_interval_minutes", defaults.Update.CheckIntervalMinutes)
}

func (m *Manager) setEngineDefaults(defaults *Config) {
	m.viper.SetDefault("engine.manifest_url", defaults.Engine.ManifestURL)
	m.viper.SetDefault("engine.current_version", defaults.Engine.CurrentVersion)
	m.viper.SetDefault("engine.target_path", defaults.Engine.TargetPath)
	m.viper.SetDefault("engine.download_dir", defaults.Engine.DownloadDir)
	m.viper.SetDefault("engine.request_timeout_sec", defaults.Engine.RequestTimeoutSec)
	m.viper.SetDefault("engine.download_timeout_sec", defaults.Engine.DownloadTimeoutSec)
}

func (m *Manager) setLoggingDefaults(defaults *Config) {
	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.enable_file_log", defaults.Logging.EnableFileLog)
	m.viper.SetDefault("logging.log_dir", defaults.Logging.LogDir)
	m.viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)
	m.viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

func (m *Manager) setHistoryDefaults(defaults *Config) {
	m.viper.SetDefault("history.enabled", defaults.History.Enabled)
	m.viper.SetDefault("history.database_path", defaults.History.DatabasePath)
	m.viper.SetDefault("history.max_entries", defaults.History.MaxEntries)
}

var (
	globalManager *Manager
	globalMu      sync.Mutex
)

// Init loads the configuration once for the whole process.
func Init() (*Manager, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	if err := m.Load(); err != nil {
		return nil, err
	}
	globalManager = m
	return m, nil
}
