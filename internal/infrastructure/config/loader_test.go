package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateXDG points every XDG directory at a fresh temp dir.
func isolateXDG(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("ENV", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	return root
}

func writeConfig(t *testing.T, content string) {
	t.Helper()
	file, err := GetConfigFile()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(file), dirPerm))
	require.NoError(t, os.WriteFile(file, []byte(content), filePerm))
}

func TestSetDefaults(t *testing.T) {
	mgr := &Manager{viper: viper.New()}
	mgr.setDefaults()

	assert.True(t, mgr.viper.GetBool("update.enable_on_startup"))
	assert.True(t, mgr.viper.GetBool("update.auto_download"))
	assert.False(t, mgr.viper.GetBool("update.confirm_install"))
	assert.Equal(t, 15, mgr.viper.GetInt("engine.request_timeout_sec"))
	assert.Equal(t, "info", mgr.viper.GetString("logging.level"))
	assert.Equal(t, 500, mgr.viper.GetInt("history.max_entries"))
}

func TestLoad_CreatesDefaultFileAndSchema(t *testing.T) {
	root := isolateXDG(t)

	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	configFile := filepath.Join(root, "config", "upgate", "config.toml")
	assert.FileExists(t, configFile)
	assert.FileExists(t, filepath.Join(root, "config", "upgate", "config.schema.json"))
	assert.Equal(t, configFile, mgr.GetConfigFile())

	cfg := mgr.Get()
	assert.True(t, cfg.Update.EnableOnStartup)
	assert.Equal(t, filepath.Join(root, "data", "upgate", "upgate.sqlite"), cfg.History.DatabasePath)
	assert.Equal(t, filepath.Join(root, "cache", "upgate", "downloads"), cfg.Engine.DownloadDir)
	assert.Equal(t, filepath.Join(root, "state", "upgate", "logs"), cfg.Logging.LogDir)
}

func TestLoad_ReadsFileAndNormalizes(t *testing.T) {
	isolateXDG(t)
	writeConfig(t, `
[update]
confirm_install = true
check_interval_minutes = 30

[engine]
manifest_url = " https://updates.example.com/manifest.json "
current_version = "v1.4.0"

[logging]
level = "WARNING"
format = "JSON"
`)

	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.Get()
	assert.True(t, cfg.Update.ConfirmInstall)
	assert.Equal(t, 30, cfg.Update.CheckInterval())
	assert.Equal(t, "https://updates.example.com/manifest.json", cfg.Engine.ManifestURL)
	assert.Equal(t, "1.4.0", cfg.Engine.CurrentVersion)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Update.AutoDownload, "unset keys keep their defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateXDG(t)
	t.Setenv("UPGATE_UPDATE_AUTO_DOWNLOAD", "false")
	t.Setenv("UPGATE_LOG_LEVEL", "debug")

	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.Get()
	assert.False(t, cfg.Update.AutoDownload)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	isolateXDG(t)
	writeConfig(t, `
[engine]
manifest_url = "ftp://updates.example.com/manifest.json"
`)

	mgr, err := NewManager()
	require.NoError(t, err)
	err = mgr.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.manifest_url")
}

func TestGet_ReturnsCopy(t *testing.T) {
	isolateXDG(t)
	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.Get()
	cfg.Update.ConfirmInstall = true

	assert.False(t, mgr.Get().Update.ConfirmInstall)
}

func TestReload_NotifiesCallbacks(t *testing.T) {
	isolateXDG(t)
	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	changes := make(chan *Config, 1)
	mgr.OnConfigChange(func(cfg *Config) { changes <- cfg })

	writeConfig(t, "[update]\nconfirm_install = true\n")
	require.NoError(t, mgr.Reload())

	select {
	case cfg := <-changes:
		assert.True(t, cfg.Update.ConfirmInstall)
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
	assert.True(t, mgr.Get().Update.ConfirmInstall)
}

func TestReload_InvalidEditKeepsPreviousConfig(t *testing.T) {
	isolateXDG(t)
	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	writeConfig(t, "[history]\nmax_entries = -4\n")
	require.Error(t, mgr.Reload())
	assert.Equal(t, 500, mgr.Get().History.MaxEntries)
}

func TestGet_BeforeLoadReturnsDefaults(t *testing.T) {
	mgr := &Manager{viper: viper.New()}
	assert.Equal(t, DefaultConfig(), mgr.Get())
}
