package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Files kept under the config directory.
const (
	dbFile      = "larose.db"
	sessionFile = "session.json"
	configFile  = "config.json"

	// ConfigDirEnv overrides the config directory.
	ConfigDirEnv = "LAROSE_CONFIG_DIR"
)

// ConfigDir is $LAROSE_CONFIG_DIR, or ~/.config/larose.
func ConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "larose"), nil
}

func DBPath() (string, error)      { return pathOf(dbFile) }
func SessionPath() (string, error) { return pathOf(sessionFile) }
func ConfigPath() (string, error)  { return pathOf(configFile) }

func pathOf(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ensureConfigDir creates the config directory on first write.
func ensureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}
