/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

const (
	DomainConfig     Domain = "CONFIG"
	DomainServer     Domain = "SERVER"
	DomainLifecycle  Domain = "LIFECYCLE"
	DomainController Domain = "CONTROLLER"
	DomainArray      Domain = "ARRAY"
)

// ErrorCode represents unique error identifiers
type ErrorCode int

// Domain represents the subsystem where the error originated
type Domain string

// CSIError is the only error shape array mediators and controller code are
// allowed to return. Vendor errors are wrapped into one of the codes below.
type CSIError struct {
	Code    ErrorCode `json:"code"`
	Domain  Domain    `json:"domain"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`

	// Metadata carries structured context such as the offending object id,
	// pool name or limit value. It is logged, never returned to callers.
	Metadata map[string]string `json:"metadata,omitempty"`

	cause error
}

// Error code ranges:
// 1000-1099: Configuration errors
// 1100-1199: Server errors
// 1500-1599: Lifecycle management
// 2000-2099: Controller request errors
// 2100-2199: Array mediator errors
const (
	// Configuration Errors (1000-1099)
	ConfigNotFound         = 1000 + iota // Config file not found
	ConfigInvalid                        // Invalid config format
	ConfigLoadFailed                     // Failed to load config
	ConfigWriteFailed                    // Failed to write config
	ConfigValidationFailed               // Config validation failed
)

const (
	// Server Errors (1100-1199)
	ServerStart           = 1100 + iota // Failed to start server
	ServerShutdown                      // Error during shutdown
	ServerBind                          // Failed to bind endpoint
	ServerInvalidEndpoint               // Malformed CSI endpoint
	ServerResponseError                 // Response generation error
	ServerInternalError
)

const (
	// Lifecycle Management (1500-1599)
	LifecyclePID      = 1500 + iota // PID file operation failed
	LifecycleDaemon                 // Failed to daemonize
	LifecycleShutdown               // Shutdown hook failed
)

const (
	// Controller Errors (2000-2099)
	ControllerValidation   = 2000 + iota // Malformed request
	ControllerObjectID                   // Object id could not be decomposed
	ControllerUnknownArray               // No mediator registered for array type
)

const (
	// Array Errors (2100-2199)
	ArrayInvalidArgument             = 2100 + iota // Array rejected an argument
	ArrayIllegalObjectName                         // Object name not accepted by array
	ArrayIllegalObjectID                           // Object id not accepted by array
	ArrayPoolParameterMissing                      // Pool parameter absent
	ArrayPoolDoesNotExist                          // Pool does not exist
	ArrayPoolCapabilitiesMismatch                  // Pool does not match capabilities
	ArraySpaceEfficiencyNotSupported               // Space efficiency not supported
	ArrayUnsupportedConnectivity                   // Host connectivity type unsupported
	ArraySnapshotSourcePoolMismatch                // Snapshot and source pool differ
	ArrayObjectNotFound                            // Volume or snapshot not found
	ArrayHostNotFound                              // Host not found
	ArrayNoIscsiTargets                            // No iSCSI targets on array
	ArrayVolumeAlreadyUnmapped                     // Volume not mapped to host
	ArrayPermissionDenied                          // Array rejected credentials
	ArrayObjectInUse                               // Object still in use
	ArrayVolumeMappedToMultipleHosts               // Volume mapped to more than one host
	ArrayNoAvailableLun                            // No free LUN on host
	ArrayLunAlreadyInUse                           // LUN already in use
	ArrayNotEnoughSpace                            // Pool capacity exhausted
	ArrayVolumeAlreadyExists                       // Volume name taken
	ArraySnapshotAlreadyExists                     // Snapshot name taken
	ArraySnapshotNotReady                          // Snapshot still materializing
	ArrayConnectionFailed                          // Management endpoint unreachable
	ArrayMultipleHostsFound                        // Initiators matched several hosts
	ArrayOperationFailed                           // Unexpected array failure
)

var errorDefinitions = map[ErrorCode]struct {
	message string
	domain  Domain
}{
	// Configuration errors
	ConfigNotFound:         {"Configuration file not found", DomainConfig},
	ConfigInvalid:          {"Invalid configuration format", DomainConfig},
	ConfigLoadFailed:       {"Failed to load configuration", DomainConfig},
	ConfigWriteFailed:      {"Failed to write configuration", DomainConfig},
	ConfigValidationFailed: {"Configuration validation failed", DomainConfig},

	// Server errors
	ServerStart:           {"Failed to start server", DomainServer},
	ServerShutdown:        {"Error during server shutdown", DomainServer},
	ServerBind:            {"Failed to bind server endpoint", DomainServer},
	ServerInvalidEndpoint: {"Invalid CSI endpoint", DomainServer},
	ServerResponseError:   {"Error generating response", DomainServer},
	ServerInternalError:   {"Internal server error", DomainServer},

	// Lifecycle errors
	LifecyclePID:      {"PID file operation failed", DomainLifecycle},
	LifecycleDaemon:   {"Failed to daemonize", DomainLifecycle},
	LifecycleShutdown: {"Shutdown hook failed", DomainLifecycle},

	// Controller errors
	ControllerValidation:   {"Validation error", DomainController},
	ControllerObjectID:     {"Wrong object id format", DomainController},
	ControllerUnknownArray: {"Unsupported array type", DomainController},

	// Array errors
	ArrayInvalidArgument:             {"Invalid argument", DomainArray},
	ArrayIllegalObjectName:           {"Illegal object name", DomainArray},
	ArrayIllegalObjectID:             {"Illegal object id", DomainArray},
	ArrayPoolParameterMissing:        {"Pool parameter is missing", DomainArray},
	ArrayPoolDoesNotExist:            {"Pool does not exist", DomainArray},
	ArrayPoolCapabilitiesMismatch:    {"Pool does not match capabilities", DomainArray},
	ArraySpaceEfficiencyNotSupported: {"Space efficiency is not supported", DomainArray},
	ArrayUnsupportedConnectivity:     {"Unsupported connectivity type", DomainArray},
	ArraySnapshotSourcePoolMismatch:  {"Snapshot pool does not match source volume pool", DomainArray},
	ArrayObjectNotFound:              {"Object was not found", DomainArray},
	ArrayHostNotFound:                {"Host was not found", DomainArray},
	ArrayNoIscsiTargets:              {"No iSCSI targets found", DomainArray},
	ArrayVolumeAlreadyUnmapped:       {"Volume is already unmapped", DomainArray},
	ArrayPermissionDenied:            {"Permission denied", DomainArray},
	ArrayObjectInUse:                 {"Object is still in use", DomainArray},
	ArrayVolumeMappedToMultipleHosts: {"Volume is mapped to multiple hosts", DomainArray},
	ArrayNoAvailableLun:              {"No available LUN", DomainArray},
	ArrayLunAlreadyInUse:             {"LUN is already in use", DomainArray},
	ArrayNotEnoughSpace:              {"Not enough space in pool", DomainArray},
	ArrayVolumeAlreadyExists:         {"Volume already exists", DomainArray},
	ArraySnapshotAlreadyExists:       {"Snapshot already exists", DomainArray},
	ArraySnapshotNotReady:            {"Snapshot is not ready", DomainArray},
	ArrayConnectionFailed:            {"Failed to connect to storage array", DomainArray},
	ArrayMultipleHostsFound:          {"Multiple hosts found for initiators", DomainArray},
	ArrayOperationFailed:             {"Storage array operation failed", DomainArray},
}
