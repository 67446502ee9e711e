package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const envDataDir = "STOCKGENIUS_DATA_DIR"

var runtimeDataDir string

func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// SetRuntimeDataDir overrides the data directory, typically from a command-line flag.
func SetRuntimeDataDir(dir string) {
	runtimeDataDir = dir
}

func appDataDir() (string, error) {
	if IsMacOS() {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "StockGenius"), nil
	}
	if IsWindows() {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "StockGenius"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "stockgenius"), nil
	}
	return filepath.Join(configDir, "stockgenius"), nil
}

// GetDataDir resolves and creates the data directory: runtime override, then
// STOCKGENIUS_DATA_DIR, then the per-user application directory.
func GetDataDir() (string, error) {
	dir := runtimeDataDir
	if dir == "" {
		dir = os.Getenv(envDataDir)
	}
	if dir == "" {
		d, err := appDataDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// ResolveLogDir returns the configured log directory, or <data dir>/logs.
func (c *Config) ResolveLogDir(dataDir string) string {
	if c.Log.Dir != "" {
		return c.Log.Dir
	}
	return filepath.Join(dataDir, "logs")
}

// ResolveJournalPath returns the advice journal path, or empty when the journal is disabled.
// Relative and unset paths live under the data directory.
func (c *Config) ResolveJournalPath(dataDir string) string {
	if !c.Journal.Enabled {
		return ""
	}
	p := c.Journal.Path
	if p == "" {
		p = "advice_history.db"
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}
