// Package appdir owns the application data directory layout:
//
//	<base>/
//	├── cache/
//	├── logs/<profile_id>/   # per-profile audit streams
//	└── data/                # generic UI file storage
package appdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvOverride names the environment variable that relocates the base
// directory (used by tests and portable installs).
const EnvOverride = "WORKGRID_HOME"

const baseDirName = ".workgrid-studio"

var subdirs = []string{"cache", "logs", "data"}

// Base returns the application data directory without creating it.
func Base() (string, error) {
	if dir := os.Getenv(EnvOverride); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, baseDirName), nil
}

// Ensure creates the base directory and its subdirectories, returning
// the base path. Safe to call repeatedly.
func Ensure() (string, error) {
	base, err := Base()
	if err != nil {
		return "", err
	}
	for _, sub := range subdirs {
		p := filepath.Join(base, sub)
		if err := os.MkdirAll(p, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", p, err)
		}
	}
	return base, nil
}

// LogDir returns the audit log directory for a profile, creating it on
// first use.
func LogDir(profileID string) (string, error) {
	base, err := Base()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "logs", profileID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	return dir, nil
}

// ReadFile returns the contents of a file in data/. A missing file reads
// as an empty string, not an error.
func ReadFile(filename string) (string, error) {
	base, err := Base()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(base, "data", filename))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return string(data), nil
}

// WriteFile writes a file in data/, creating the directory tree first.
func WriteFile(filename, contents string) error {
	base, err := Ensure()
	if err != nil {
		return err
	}
	path := filepath.Join(base, "data", filename)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// DeleteFile removes a file in data/. Removing a missing file is a no-op.
func DeleteFile(filename string) error {
	base, err := Base()
	if err != nil {
		return err
	}
	path := filepath.Join(base, "data", filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", filename, err)
	}
	return nil
}
