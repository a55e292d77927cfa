// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"strings"

	"github.com/stratastor/strata-csi/pkg/array"
	"github.com/stratastor/strata-csi/pkg/csiconfig"
	"github.com/stratastor/strata-csi/pkg/errors"
)

// ObjectIDInfo is a decomposed CSI volume or snapshot id:
// <array_type>[:<system_id>]:<internal_id>
type ObjectIDInfo struct {
	ArrayType  string
	SystemID   string
	InternalID string
}

func (o ObjectIDInfo) String() string {
	parts := []string{o.ArrayType}
	if o.SystemID != "" {
		parts = append(parts, o.SystemID)
	}
	parts = append(parts, o.InternalID)
	return strings.Join(parts, csiconfig.ObjectIDDelimiter)
}

// ParseObjectID splits a CSI object id into its parts. Ids that cannot be
// decomposed yield a ControllerObjectID error.
func ParseObjectID(id string) (ObjectIDInfo, error) {
	parts := strings.Split(id, csiconfig.ObjectIDDelimiter)
	if len(parts) < csiconfig.MinimumVolumeIDParts || len(parts) > csiconfig.MaximumVolumeIDParts {
		return ObjectIDInfo{}, errors.New(errors.ControllerObjectID, id).
			WithMetadata("object_id", id)
	}

	info := ObjectIDInfo{ArrayType: parts[0], InternalID: parts[len(parts)-1]}
	if len(parts) == csiconfig.MaximumVolumeIDParts {
		info.SystemID = parts[1]
		if len(info.SystemID) > csiconfig.SecretSystemIDMaxLength ||
			!csiconfig.IsValidSecretValue(info.SystemID) {
			return ObjectIDInfo{}, errors.New(errors.ControllerObjectID, id).
				WithMetadata("system_id", info.SystemID)
		}
	}

	if info.ArrayType == "" || info.InternalID == "" ||
		len(info.ArrayType) > csiconfig.MaxArrayTypeKeyLength {
		return ObjectIDInfo{}, errors.New(errors.ControllerObjectID, id).
			WithMetadata("object_id", id)
	}
	return info, nil
}

// NodeIDInfo is a decomposed node id:
// <hostname>;<nvme_nqn>;<fc_wwn>:<fc_wwn>...;<iscsi_iqn>
type NodeIDInfo struct {
	Hostname   string
	Initiators array.Initiators
}

// ParseNodeID splits a node id reported by the node plugin. Only the hostname
// is mandatory; trailing initiator fields may be omitted.
func ParseNodeID(nodeID string) (NodeIDInfo, error) {
	parts := strings.Split(nodeID, csiconfig.NodeIDDelimiter)
	if len(parts) < 2 || len(parts) > 4 || parts[0] == "" {
		return NodeIDInfo{}, errors.New(errors.ControllerValidation, "wrong node id format: "+nodeID)
	}

	info := NodeIDInfo{Hostname: parts[0]}
	info.Initiators.NvmeNQN = parts[1]
	if len(parts) > 2 && parts[2] != "" {
		info.Initiators.FCWWNs = strings.Split(parts[2], csiconfig.FCWWNDelimiter)
	}
	if len(parts) > 3 {
		info.Initiators.IscsiIQN = parts[3]
	}

	if info.Initiators.NvmeNQN == "" && len(info.Initiators.FCWWNs) == 0 && info.Initiators.IscsiIQN == "" {
		return NodeIDInfo{}, errors.New(errors.ControllerValidation, "node id carries no initiators: "+nodeID)
	}
	return info, nil
}

// credentialsFromSecrets extracts array credentials from CSI request secrets.
func credentialsFromSecrets(secrets map[string]string) (array.Credentials, error) {
	for _, key := range []string{csiconfig.SecretUsername, csiconfig.SecretPassword, csiconfig.SecretArray} {
		if secrets[key] == "" {
			return array.Credentials{}, errors.New(errors.ControllerValidation, "secret is missing: "+key)
		}
	}

	var addrs []string
	for _, a := range strings.Split(secrets[csiconfig.SecretArray], csiconfig.ArrayAddressesDelimiter) {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	if len(addrs) == 0 {
		return array.Credentials{}, errors.New(errors.ControllerValidation, "secret is missing: "+csiconfig.SecretArray)
	}

	return array.Credentials{
		Username:  secrets[csiconfig.SecretUsername],
		Password:  secrets[csiconfig.SecretPassword],
		Addresses: addrs,
	}, nil
}
