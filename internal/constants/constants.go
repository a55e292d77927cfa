// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package constants

// Build-time variables set via ldflags
var (
	Version   = "v0.0.1-dev" // Set via -X flag during build
	CommitSHA = "unknown"    // Set via -X flag during build
	BuildTime = "unknown"    // Set via -X flag during build
)

const (
	DriverName       = "block.csi.stratastor.io"
	DriverVersion    = "v0.0.1"
	DriverPIDFileDir = ".strata-csi"
	DriverPIDFile    = "strata-csi.pid"

	// config
	ConfigFileName = "strata-csi.yml"
	ConfigEnvVar   = "STRATACSI_CONFIG"
	ConfigEnvPref  = "STRATACSI"

	// endpoints
	DefaultCSIEndpoint = "unix:///csi/csi.sock"
	DefaultHTTPPort    = 8043

	// routes
	HealthPath  = "/health"
	MetricsPath = "/metrics"

	// headers
	RequestIDHeader = "X-Request-Id"
)
