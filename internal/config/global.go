package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns ~/.planrate/config.yaml. Values there apply to
// every project and are overridden by the project file.
func UserConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".planrate", "config.yaml"), nil
}

// EnsureDataDir creates the directory holding path if it doesn't exist.
func EnsureDataDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
