// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package array defines the vendor-neutral view of objects living on a storage
// array and the contract array mediators implement.
package array

import (
	"slices"
	"time"

	"github.com/stratastor/strata-csi/pkg/errors"
)

// ObjectKey scopes an object id to the array that owns it.
type ObjectKey struct {
	ArrayType    string `json:"array_type"`
	ArrayAddress string `json:"array_address"`
	ID           string `json:"id"`
}

// Volume is a read snapshot of a volume as reported by the array.
type Volume struct {
	CapacityBytes   int64  `json:"capacity_bytes"`
	ID              string `json:"id"`
	Name            string `json:"name"`
	ArrayAddress    string `json:"array_address"`
	PoolName        string `json:"pool_name"`
	CopySourceID    string `json:"copy_source_id,omitempty"`
	ArrayType       string `json:"array_type"`
	SpaceEfficiency string `json:"space_efficiency"`
}

func NewVolume(
	capacityBytes int64,
	id, name, arrayAddress, poolName, copySourceID, arrayType, spaceEfficiency string,
) Volume {
	return Volume{
		CapacityBytes:   capacityBytes,
		ID:              id,
		Name:            name,
		ArrayAddress:    arrayAddress,
		PoolName:        poolName,
		CopySourceID:    copySourceID,
		ArrayType:       arrayType,
		SpaceEfficiency: spaceEfficiency,
	}
}

func (v Volume) Key() ObjectKey {
	return ObjectKey{ArrayType: v.ArrayType, ArrayAddress: v.ArrayAddress, ID: v.ID}
}

// ConflictsWith reports whether both values describe the same array object.
// Equal ids on different arrays do not conflict.
func (v Volume) ConflictsWith(o Volume) bool {
	return v.Key() == o.Key()
}

// Snapshot is a read snapshot of an array snapshot. VolumeName is the name of
// the parent volume, used only for lookups. CreatedAt is zero when the array
// does not report a creation time; the controller then stamps the response
// with the current time.
type Snapshot struct {
	CapacityBytes int64     `json:"capacity_bytes"`
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ArrayAddress  string    `json:"array_address"`
	VolumeName    string    `json:"volume_name"`
	IsReady       bool      `json:"is_ready"`
	ArrayType     string    `json:"array_type"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

func NewSnapshot(
	capacityBytes int64,
	id, name, arrayAddress, volumeName string,
	isReady bool,
	arrayType string,
) Snapshot {
	return Snapshot{
		CapacityBytes: capacityBytes,
		ID:            id,
		Name:          name,
		ArrayAddress:  arrayAddress,
		VolumeName:    volumeName,
		IsReady:       isReady,
		ArrayType:     arrayType,
	}
}

func (s Snapshot) Key() ObjectKey {
	return ObjectKey{ArrayType: s.ArrayType, ArrayAddress: s.ArrayAddress, ID: s.ID}
}

// CanBeCopySource is false while the array is still materializing the snapshot.
func (s Snapshot) CanBeCopySource() bool {
	return s.IsReady
}

// ValidateCopySource must be called before a snapshot id is used as the copy
// source of a new volume.
func ValidateCopySource(s Snapshot) error {
	if !s.CanBeCopySource() {
		return errors.New(errors.ArraySnapshotNotReady, s.Name).
			WithMetadata("snapshot_id", s.ID)
	}
	return nil
}

// Host is the initiator identity a node presents to the array.
type Host struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	IscsiNames []string `json:"iscsi_names"`
	WWNs       []string `json:"wwns"`
}

func NewHost(id, name string, iscsiNames, wwns []string) Host {
	return Host{
		ID:         id,
		Name:       name,
		IscsiNames: slices.Clone(iscsiNames),
		WWNs:       slices.Clone(wwns),
	}
}

func (h Host) HasIscsi() bool { return len(h.IscsiNames) > 0 }

func (h Host) HasFC() bool { return len(h.WWNs) > 0 }

// Equal compares hosts by value. Initiator order is ignored.
func (h Host) Equal(o Host) bool {
	return h.ID == o.ID && h.Name == o.Name &&
		sameSet(h.IscsiNames, o.IscsiNames) && sameSet(h.WWNs, o.WWNs)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
