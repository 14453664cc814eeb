// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

var (
	configDir string // Directory for configuration files
	stateDir  string // Directory for sync manager state
)

func init() {
	if os.Geteuid() == 0 {
		configDir = "/etc/cumulus"
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(fmt.Sprintf("failed to get home directory: %v", err))
		}
		configDir = filepath.Join(homeDir, ".cumulus")
	}

	stateDir = filepath.Join(configDir, "state")

	if err := EnsureDirectories(); err != nil {
		panic(fmt.Sprintf("failed to ensure configuration directories: %v", err))
	}
}

// GetConfigDir returns the appropriate configuration directory.
// If running as root, it returns the system config directory;
// otherwise the user config directory.
func GetConfigDir() string {
	return configDir
}

// GetStateDir returns the directory for sync manager state files.
func GetStateDir() string {
	return stateDir
}

// EnsureDirectories creates the configuration directories if missing.
func EnsureDirectories() error {
	for _, dir := range []string{configDir, stateDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
