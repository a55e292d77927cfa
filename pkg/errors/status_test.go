// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want codes.Code
	}{
		{ControllerValidation, codes.InvalidArgument},
		{ArrayInvalidArgument, codes.InvalidArgument},
		{ArrayIllegalObjectName, codes.InvalidArgument},
		{ArrayIllegalObjectID, codes.InvalidArgument},
		{ArrayPoolParameterMissing, codes.InvalidArgument},
		{ArrayPoolDoesNotExist, codes.InvalidArgument},
		{ArrayPoolCapabilitiesMismatch, codes.InvalidArgument},
		{ArraySpaceEfficiencyNotSupported, codes.InvalidArgument},
		{ArrayUnsupportedConnectivity, codes.InvalidArgument},
		{ArraySnapshotSourcePoolMismatch, codes.InvalidArgument},
		{ArrayObjectNotFound, codes.NotFound},
		{ArrayHostNotFound, codes.NotFound},
		{ArrayNoIscsiTargets, codes.NotFound},
		{ArrayVolumeAlreadyUnmapped, codes.NotFound},
		{ControllerObjectID, codes.NotFound},
		{ArrayPermissionDenied, codes.PermissionDenied},
		{ArrayObjectInUse, codes.FailedPrecondition},
		{ArrayVolumeMappedToMultipleHosts, codes.FailedPrecondition},
		{ArrayNoAvailableLun, codes.ResourceExhausted},
		{ArrayLunAlreadyInUse, codes.ResourceExhausted},
		{ArrayNotEnoughSpace, codes.ResourceExhausted},
		{ArrayVolumeAlreadyExists, codes.AlreadyExists},
		{ArraySnapshotAlreadyExists, codes.AlreadyExists},

		// not in the table
		{ArrayConnectionFailed, codes.Internal},
		{ArraySnapshotNotReady, codes.Internal},
		{ArrayOperationFailed, codes.Internal},
		{ControllerUnknownArray, codes.Internal},
		{ConfigNotFound, codes.Internal},
		{ErrorCode(9999), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.code))
			assert.Equal(t, tt.want, GRPCCode(New(tt.code, "x")))
		})
	}
}

func TestGRPCCodeForeignErrors(t *testing.T) {
	assert.Equal(t, codes.Internal, GRPCCode(stderrors.New("array unreachable")))

	wrapped := fmt.Errorf("mapping volume: %w", New(ArrayNoAvailableLun, "host1"))
	assert.Equal(t, codes.ResourceExhausted, GRPCCode(wrapped))
}

func TestEveryStatusEntryIsDefined(t *testing.T) {
	for code := range statusCodes {
		_, ok := errorDefinitions[code]
		assert.True(t, ok, "code %d has a status but no definition", code)
	}
}

func TestNewAndWrap(t *testing.T) {
	e := New(ArrayPoolDoesNotExist, "gold").WithMetadata("pool", "gold")
	assert.Equal(t, DomainArray, e.Domain)
	assert.Equal(t, "Pool does not exist: gold", e.Error())
	assert.Equal(t, "gold", e.Metadata["pool"])
	assert.Contains(t, e.LogAttrs(), "meta_pool")

	cause := stderrors.New("CMMVC5754E object does not exist")
	w := Wrap(cause, ArrayObjectNotFound)
	assert.ErrorIs(t, w, cause)
	assert.True(t, stderrors.Is(w, New(ArrayObjectNotFound, "")))
	assert.False(t, stderrors.Is(w, New(ArrayHostNotFound, "")))
	assert.True(t, HasCode(fmt.Errorf("ctx: %w", w), ArrayObjectNotFound))

	assert.Nil(t, Wrap(nil, ArrayObjectNotFound))

	unknown := New(ErrorCode(42), "")
	assert.Equal(t, "Unknown error", unknown.Error())
}
