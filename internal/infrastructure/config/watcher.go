package config

import (
	"github.com/fsnotify/fsnotify"

	"github.com/bnema/upgate/internal/logging"
)

// Watch starts watching the config file for changes and reloads automatically.
// Invalid edits are logged and the previous configuration stays active.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}

	m.viper.OnConfigChange(m.handleChange)
	m.viper.WatchConfig()

	m.watching = true
	return nil
}

func (m *Manager) handleChange(e fsnotify.Event) {
	log := logging.NewFromEnv()
	log.Debug().Str("op", e.Op.String()).Str("file", e.Name).Msg("fsnotify config change detected")

	m.mu.Lock()
	if err := m.reload(); err != nil {
		log.Warn().Err(err).Msg("failed to reload config, keeping previous values")
		m.mu.Unlock()
		return
	}
	m.notifyCallbacksLocked()
}

// notifyCallbacksLocked copies callbacks and config, releases lock, then notifies.
// Must be called with m.mu held for write. Releases the lock before calling callbacks.
func (m *Manager) notifyCallbacksLocked() {
	configCopy := *m.config
	callbacks := make([]func(*Config), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, callback := range callbacks {
		cfg := configCopy
		callback(&cfg)
	}
}

// OnConfigChange registers a callback function to be called when config changes.
func (m *Manager) OnConfigChange(callback func(*Config)) {
	if callback == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
}

// Reload re-reads the file and notifies subscribers.
func (m *Manager) Reload() error {
	m.mu.Lock()
	if err := m.reload(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.notifyCallbacksLocked()
	return nil
}

// reload reloads the configuration (internal method, must be called with lock held for write).
func (m *Manager) reload() error {
	if err := m.viper.ReadInConfig(); err != nil {
		return err
	}
	config, err := m.buildConfig()
	if err != nil {
		return err
	}
	m.config = config
	return nil
}
