// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package csiconfig holds the fixed vocabulary request parsers consult:
// supported values, parameter and secret keys, delimiters and length limits.
// Nothing here is mutable after init.
package csiconfig

import (
	"regexp"
	"slices"
	"unicode/utf8"

	"github.com/container-storage-interface/spec/lib/go/csi"
)

// Volume capability access types
const (
	AccessTypeMount = "mount"
	AccessTypeBlock = "block"
)

const (
	DefaultFSType = "ext4"

	MaxStringResponseLength = 128
	VolumeWWNLength         = 32
	MaxArrayTypeKeyLength   = 4
	DelimitersInVolumeID    = 2

	// SecretSystemIDMaxLength leaves room for the array type key, the WWN and
	// both delimiters inside a response-length volume id.
	SecretSystemIDMaxLength = MaxStringResponseLength - VolumeWWNLength - MaxArrayTypeKeyLength - DelimitersInVolumeID

	MinimumVolumeIDParts = 2
	MaximumVolumeIDParts = 3

	SupportedConnectivityTypes = 2
)

// Secret keys
const (
	SecretUsername            = "username"
	SecretPassword            = "password"
	SecretArray               = "management_address"
	SecretConfig              = "config"
	SecretSupportedTopologies = "supported_topologies"

	SecretValidationPattern = `^[a-zA-Z0-9][a-zA-Z0-9-_.]*[a-zA-Z0-9]$`
)

// StorageClass parameter keys
const (
	ParameterPool               = "pool"
	ParameterBySystemID         = "by_system_id"
	ParameterSpaceEfficiency    = "SpaceEfficiency"
	ParameterVolumeNamePrefix   = "volume_name_prefix"
	ParameterSnapshotNamePrefix = "snapshot_name_prefix"
)

// Delimiters used when packing composite values into flat request fields
const (
	CapacityDelimiter       = "="
	CapabilitiesDelimiter   = "="
	ObjectIDDelimiter       = ":"
	NodeIDDelimiter         = ";"
	FCWWNDelimiter          = ":"
	TopologyDelimiter       = "/"
	ArrayAddressesDelimiter = ","
)

const RequestAccessibilityRequirementsField = "accessibility_requirements"

// Object types that can be the content source of a new volume
const (
	SnapshotTypeName = "snapshot"
	VolumeTypeName   = "volume"
)

// Keys of the publish context handed to the node plugin
const (
	PublishContextLun             = "PUBLISH_CONTEXT_LUN"
	PublishContextConnectivity    = "PUBLISH_CONTEXT_CONNECTIVITY"
	PublishContextArrayIqn        = "PUBLISH_CONTEXT_ARRAY_IQN"
	PublishContextFCInitiators    = "PUBLISH_CONTEXT_ARRAY_FC_INITIATORS"
	PublishContextSeparator       = ","
	ConnectivityTypeISCSI         = "iscsi"
	ConnectivityTypeFC            = "fc"
	VolumeContextSpaceEfficiency  = "space_efficiency"
	VolumeContextPool             = "pool"
	VolumeContextArrayAddress     = "array_address"
	VolumeContextStorageArrayType = "storage_type"
)

var (
	supportedFSTypes     = []string{"ext4", "xfs"}
	supportedAccessModes = []csi.VolumeCapability_AccessMode_Mode{
		csi.VolumeCapability_AccessMode_SINGLE_NODE_WRITER,
	}
	volumeSourceIDFields = map[string]string{
		SnapshotTypeName: "snapshot_id",
		VolumeTypeName:   "volume_id",
	}

	secretValidation = regexp.MustCompile(SecretValidationPattern)
)

// SupportedFSTypes returns a copy of the filesystem types volumes may be
// formatted with.
func SupportedFSTypes() []string {
	return slices.Clone(supportedFSTypes)
}

func IsSupportedFSType(fsType string) bool {
	return slices.Contains(supportedFSTypes, fsType)
}

// SupportedAccessModes returns a copy of the accepted access modes.
func SupportedAccessModes() []csi.VolumeCapability_AccessMode_Mode {
	return slices.Clone(supportedAccessModes)
}

func IsSupportedAccessMode(mode csi.VolumeCapability_AccessMode_Mode) bool {
	return slices.Contains(supportedAccessModes, mode)
}

// VolumeSourceIDField returns the request field that carries the id of a
// content source of the given type.
func VolumeSourceIDField(sourceType string) (string, bool) {
	f, ok := volumeSourceIDFields[sourceType]
	return f, ok
}

// IsValidSecretValue reports whether v is acceptable as a system id or other
// identifier coming from secrets.
func IsValidSecretValue(v string) bool {
	return secretValidation.MatchString(v)
}

// TruncateResponse caps s at MaxStringResponseLength bytes without splitting
// a multi-byte rune.
func TruncateResponse(s string) string {
	if len(s) <= MaxStringResponseLength {
		return s
	}
	n := MaxStringResponseLength
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
