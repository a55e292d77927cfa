// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"google.golang.org/grpc/codes"
)

// statusCodes maps exact error codes to gRPC status codes. Related codes are
// listed individually; there is no range or domain based fallback.
// Anything not listed resolves to codes.Internal.
var statusCodes = map[ErrorCode]codes.Code{
	ControllerValidation:             codes.InvalidArgument,
	ArrayInvalidArgument:             codes.InvalidArgument,
	ArrayPoolDoesNotExist:            codes.InvalidArgument,
	ArrayPoolCapabilitiesMismatch:    codes.InvalidArgument,
	ArraySpaceEfficiencyNotSupported: codes.InvalidArgument,
	ArrayIllegalObjectName:           codes.InvalidArgument,
	ArrayIllegalObjectID:             codes.InvalidArgument,
	ArrayPoolParameterMissing:        codes.InvalidArgument,
	ArrayUnsupportedConnectivity:     codes.InvalidArgument,
	ArraySnapshotSourcePoolMismatch:  codes.InvalidArgument,

	ArrayObjectNotFound:        codes.NotFound,
	ArrayHostNotFound:          codes.NotFound,
	ArrayNoIscsiTargets:        codes.NotFound,
	ArrayVolumeAlreadyUnmapped: codes.NotFound,
	ControllerObjectID:         codes.NotFound,

	ArrayPermissionDenied: codes.PermissionDenied,

	ArrayObjectInUse:                 codes.FailedPrecondition,
	ArrayVolumeMappedToMultipleHosts: codes.FailedPrecondition,

	ArrayLunAlreadyInUse: codes.ResourceExhausted,
	ArrayNoAvailableLun:  codes.ResourceExhausted,
	ArrayNotEnoughSpace:  codes.ResourceExhausted,

	ArraySnapshotAlreadyExists: codes.AlreadyExists,
	ArrayVolumeAlreadyExists:   codes.AlreadyExists,
}

// StatusCode resolves an error code to its gRPC status code.
func StatusCode(code ErrorCode) codes.Code {
	if c, ok := statusCodes[code]; ok {
		return c
	}
	return codes.Internal
}

// GRPCCode resolves any error to a gRPC status code using the first CSIError
// in its chain. Errors without one are unexpected and map to codes.Internal.
func GRPCCode(err error) codes.Code {
	ce, ok := As(err)
	if !ok {
		return codes.Internal
	}
	return StatusCode(ce.Code)
}
