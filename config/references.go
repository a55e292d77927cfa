// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"

	"github.com/stratastor/strata-csi/internal/constants"
)

const systemConfigDir = "/etc/strata-csi"

// GetConfigDir returns the system config directory when running as root and
// ~/.strata-csi otherwise.
func GetConfigDir() string {
	if os.Geteuid() == 0 {
		return systemConfigDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), constants.DriverPIDFileDir)
	}
	return filepath.Join(home, constants.DriverPIDFileDir)
}

// GetPIDFilePath returns where serve records the running instance.
func GetPIDFilePath() string {
	return filepath.Join(GetConfigDir(), constants.DriverPIDFile)
}

// EnsureDirectories creates the config directory if it does not exist.
func EnsureDirectories() error {
	return os.MkdirAll(GetConfigDir(), 0755)
}
