// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package controller implements the CSI controller service on top of array
// mediators. Every RPC is wrapped by HandleCommonErrors so that mediator
// failures reach callers as gRPC status codes.
package controller

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/container-storage-interface/spec/lib/go/csi"
	"github.com/stratastor/strata-csi/pkg/array"
	"github.com/stratastor/strata-csi/pkg/csiconfig"
	"github.com/stratastor/strata-csi/pkg/errors"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Options configures a ControllerServer.
type Options struct {
	// SystemID is embedded in every object id when set.
	SystemID string
}

// ControllerServer is the registered csi.ControllerServer. It only forwards
// to the guarded operations built in NewControllerServer.
type ControllerServer struct {
	csi.UnimplementedControllerServer

	createVolume               func(context.Context, *csi.CreateVolumeRequest) (*csi.CreateVolumeResponse, error)
	deleteVolume               func(context.Context, *csi.DeleteVolumeRequest) (*csi.DeleteVolumeResponse, error)
	controllerPublishVolume    func(context.Context, *csi.ControllerPublishVolumeRequest) (*csi.ControllerPublishVolumeResponse, error)
	controllerUnpublishVolume  func(context.Context, *csi.ControllerUnpublishVolumeRequest) (*csi.ControllerUnpublishVolumeResponse, error)
	validateVolumeCapabilities func(context.Context, *csi.ValidateVolumeCapabilitiesRequest) (*csi.ValidateVolumeCapabilitiesResponse, error)
	controllerGetCapabilities  func(context.Context, *csi.ControllerGetCapabilitiesRequest) (*csi.ControllerGetCapabilitiesResponse, error)
	createSnapshot             func(context.Context, *csi.CreateSnapshotRequest) (*csi.CreateSnapshotResponse, error)
	deleteSnapshot             func(context.Context, *csi.DeleteSnapshotRequest) (*csi.DeleteSnapshotResponse, error)
}

// controller holds the unguarded implementations.
type controller struct {
	registry *array.Registry
	log      Logger
	opts     Options
}

func NewControllerServer(registry *array.Registry, l Logger, opts Options) *ControllerServer {
	c := &controller{registry: registry, log: l, opts: opts}

	return &ControllerServer{
		createVolume:               HandleCommonErrors(l, "CreateVolume", c.createVolume),
		deleteVolume:               HandleCommonErrors(l, "DeleteVolume", c.deleteVolume),
		controllerPublishVolume:    HandleCommonErrors(l, "ControllerPublishVolume", c.controllerPublishVolume),
		controllerUnpublishVolume:  HandleCommonErrors(l, "ControllerUnpublishVolume", c.controllerUnpublishVolume),
		validateVolumeCapabilities: HandleCommonErrors(l, "ValidateVolumeCapabilities", c.validateVolumeCapabilities),
		controllerGetCapabilities:  HandleCommonErrors(l, "ControllerGetCapabilities", c.controllerGetCapabilities),
		createSnapshot:             HandleCommonErrors(l, "CreateSnapshot", c.createSnapshot),
		deleteSnapshot:             HandleCommonErrors(l, "DeleteSnapshot", c.deleteSnapshot),
	}
}

func (s *ControllerServer) CreateVolume(ctx context.Context, req *csi.CreateVolumeRequest) (*csi.CreateVolumeResponse, error) {
	return s.createVolume(ctx, req)
}

func (s *ControllerServer) DeleteVolume(ctx context.Context, req *csi.DeleteVolumeRequest) (*csi.DeleteVolumeResponse, error) {
	return s.deleteVolume(ctx, req)
}

func (s *ControllerServer) ControllerPublishVolume(
	ctx context.Context,
	req *csi.ControllerPublishVolumeRequest,
) (*csi.ControllerPublishVolumeResponse, error) {
	return s.controllerPublishVolume(ctx, req)
}

func (s *ControllerServer) ControllerUnpublishVolume(
	ctx context.Context,
	req *csi.ControllerUnpublishVolumeRequest,
) (*csi.ControllerUnpublishVolumeResponse, error) {
	return s.controllerUnpublishVolume(ctx, req)
}

func (s *ControllerServer) ValidateVolumeCapabilities(
	ctx context.Context,
	req *csi.ValidateVolumeCapabilitiesRequest,
) (*csi.ValidateVolumeCapabilitiesResponse, error) {
	return s.validateVolumeCapabilities(ctx, req)
}

func (s *ControllerServer) ControllerGetCapabilities(
	ctx context.Context,
	req *csi.ControllerGetCapabilitiesRequest,
) (*csi.ControllerGetCapabilitiesResponse, error) {
	return s.controllerGetCapabilities(ctx, req)
}

func (s *ControllerServer) CreateSnapshot(ctx context.Context, req *csi.CreateSnapshotRequest) (*csi.CreateSnapshotResponse, error) {
	return s.createSnapshot(ctx, req)
}

func (s *ControllerServer) DeleteSnapshot(ctx context.Context, req *csi.DeleteSnapshotRequest) (*csi.DeleteSnapshotResponse, error) {
	return s.deleteSnapshot(ctx, req)
}

func (c *controller) objectID(arrayType, internalID string) string {
	return ObjectIDInfo{ArrayType: arrayType, SystemID: c.opts.SystemID, InternalID: internalID}.String()
}

func (c *controller) createVolume(ctx context.Context, req *csi.CreateVolumeRequest) (*csi.CreateVolumeResponse, error) {
	if err := validateCreateVolumeRequest(req); err != nil {
		return nil, err
	}
	creds, err := credentialsFromSecrets(req.GetSecrets())
	if err != nil {
		return nil, err
	}

	params := req.GetParameters()
	pool := params[csiconfig.ParameterPool]
	if pool == "" {
		return nil, errors.New(errors.ArrayPoolParameterMissing, req.GetName())
	}
	name := req.GetName()
	if prefix := params[csiconfig.ParameterVolumeNamePrefix]; prefix != "" {
		name = prefix + "_" + name
	}
	requiredBytes := req.GetCapacityRange().GetRequiredBytes()

	m, err := c.registry.Detect(ctx, creds)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	if err := checkObjectName(m, name); err != nil {
		return nil, err
	}

	c.log.Debug("Creating volume", "name", name, "pool", pool, "array_type", m.ArrayType())

	sourceType, sourceID, err := c.resolveContentSource(ctx, m, req.GetVolumeContentSource())
	if err != nil {
		return nil, err
	}

	vol, err := m.GetVolume(ctx, name, pool)
	switch {
	case err == nil:
		c.log.Debug("Volume already exists", "name", name, "id", vol.ID)
		if vol.CopySourceID != sourceID {
			return nil, errors.New(errors.ArrayVolumeAlreadyExists, name).
				WithMetadata("copy_source_id", vol.CopySourceID)
		}
		if vol.CapacityBytes < requiredBytes {
			return nil, errors.New(errors.ArrayVolumeAlreadyExists, name).
				WithMetadata("capacity_bytes", strconv.FormatInt(vol.CapacityBytes, 10))
		}
	case errors.HasCode(err, errors.ArrayObjectNotFound):
		vol, err = m.CreateVolume(ctx, array.CreateVolumeParams{
			Name:            name,
			CapacityBytes:   requiredBytes,
			Pool:            pool,
			SpaceEfficiency: params[csiconfig.ParameterSpaceEfficiency],
		})
		if err != nil {
			return nil, err
		}
		if sourceID != "" {
			if err := c.copyToVolume(ctx, m, sourceType, sourceID, vol, requiredBytes); err != nil {
				if delErr := m.DeleteVolume(ctx, vol.ID); delErr != nil {
					c.log.Error("Failed to remove volume after copy failure", "volume_id", vol.ID, "err", delErr)
				}
				return nil, err
			}
			copied := *vol
			copied.CopySourceID = sourceID
			vol = &copied
		}
	default:
		return nil, err
	}

	return &csi.CreateVolumeResponse{
		Volume: &csi.Volume{
			CapacityBytes: vol.CapacityBytes,
			VolumeId:      c.objectID(m.ArrayType(), vol.ID),
			VolumeContext: map[string]string{
				csiconfig.VolumeContextPool:             vol.PoolName,
				csiconfig.VolumeContextArrayAddress:     vol.ArrayAddress,
				csiconfig.VolumeContextStorageArrayType: vol.ArrayType,
				csiconfig.VolumeContextSpaceEfficiency:  vol.SpaceEfficiency,
			},
			ContentSource: req.GetVolumeContentSource(),
		},
	}, nil
}

// resolveContentSource returns the internal id of the requested copy source
// after checking it exists and, for snapshots, that it is ready.
func (c *controller) resolveContentSource(
	ctx context.Context,
	m array.Mediator,
	src *csi.VolumeContentSource,
) (string, string, error) {
	if src == nil {
		return "", "", nil
	}

	var sourceType, rawID string
	switch {
	case src.GetSnapshot() != nil:
		sourceType, rawID = csiconfig.SnapshotTypeName, src.GetSnapshot().GetSnapshotId()
	case src.GetVolume() != nil:
		sourceType, rawID = csiconfig.VolumeTypeName, src.GetVolume().GetVolumeId()
	default:
		return "", "", errors.New(errors.ControllerValidation, "unsupported volume content source")
	}

	if rawID == "" {
		field, _ := csiconfig.VolumeSourceIDField(sourceType)
		return "", "", errors.New(errors.ControllerValidation, field+" is missing")
	}
	info, err := ParseObjectID(rawID)
	if err != nil {
		return "", "", err
	}
	if info.ArrayType != m.ArrayType() {
		return "", "", errors.New(errors.ControllerObjectID, rawID).
			WithMetadata("array_type", m.ArrayType())
	}

	if sourceType == csiconfig.SnapshotTypeName {
		snap, err := m.GetSnapshotByID(ctx, info.InternalID)
		if err != nil {
			return "", "", err
		}
		if err := array.ValidateCopySource(*snap); err != nil {
			return "", "", err
		}
	} else if _, err := m.GetVolumeByID(ctx, info.InternalID); err != nil {
		return "", "", err
	}
	return sourceType, info.InternalID, nil
}

func (c *controller) copyToVolume(
	ctx context.Context,
	m array.Mediator,
	sourceType, sourceID string,
	vol *array.Volume,
	minCapacity int64,
) error {
	var sourceCapacity int64
	if sourceType == csiconfig.SnapshotTypeName {
		snap, err := m.GetSnapshotByID(ctx, sourceID)
		if err != nil {
			return err
		}
		sourceCapacity = snap.CapacityBytes
	} else {
		src, err := m.GetVolumeByID(ctx, sourceID)
		if err != nil {
			return err
		}
		sourceCapacity = src.CapacityBytes
	}

	c.log.Debug("Copying source to volume", "source_type", sourceType, "source_id", sourceID, "volume_id", vol.ID)
	return m.CopyToExistingVolume(ctx, vol.ID, sourceID, sourceCapacity, minCapacity)
}

func (c *controller) deleteVolume(ctx context.Context, req *csi.DeleteVolumeRequest) (*csi.DeleteVolumeResponse, error) {
	if req.GetVolumeId() == "" {
		return nil, errors.New(errors.ControllerValidation, "volume id is missing")
	}
	creds, err := credentialsFromSecrets(req.GetSecrets())
	if err != nil {
		return nil, err
	}

	info, err := ParseObjectID(req.GetVolumeId())
	if err != nil {
		c.log.Warn("Volume id cannot be decomposed, nothing to delete", "volume_id", req.GetVolumeId())
		return &csi.DeleteVolumeResponse{}, nil
	}

	m, err := c.registry.Connect(ctx, info.ArrayType, creds)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	if err := m.DeleteVolume(ctx, info.InternalID); err != nil {
		if errors.HasCode(err, errors.ArrayObjectNotFound) {
			c.log.Debug("Volume already deleted", "volume_id", req.GetVolumeId())
			return &csi.DeleteVolumeResponse{}, nil
		}
		return nil, err
	}
	return &csi.DeleteVolumeResponse{}, nil
}

func (c *controller) createSnapshot(ctx context.Context, req *csi.CreateSnapshotRequest) (*csi.CreateSnapshotResponse, error) {
	if req.GetName() == "" {
		return nil, errors.New(errors.ControllerValidation, "snapshot name is missing")
	}
	if req.GetSourceVolumeId() == "" {
		return nil, errors.New(errors.ControllerValidation, "source volume id is missing")
	}
	creds, err := credentialsFromSecrets(req.GetSecrets())
	if err != nil {
		return nil, err
	}
	info, err := ParseObjectID(req.GetSourceVolumeId())
	if err != nil {
		return nil, err
	}

	m, err := c.registry.Connect(ctx, info.ArrayType, creds)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	vol, err := m.GetVolumeByID(ctx, info.InternalID)
	if err != nil {
		return nil, err
	}

	name := req.GetName()
	if prefix := req.GetParameters()[csiconfig.ParameterSnapshotNamePrefix]; prefix != "" {
		name = prefix + "_" + name
	}
	if err := checkObjectName(m, name); err != nil {
		return nil, err
	}
	pool := req.GetParameters()[csiconfig.ParameterPool]
	if pool == "" {
		pool = vol.PoolName
	}

	snap, err := m.GetSnapshot(ctx, vol.ID, name, pool)
	switch {
	case err == nil:
		if snap.VolumeName != vol.Name {
			return nil, errors.New(errors.ArraySnapshotAlreadyExists, name).
				WithMetadata("volume_name", snap.VolumeName)
		}
		c.log.Debug("Snapshot already exists", "name", name, "id", snap.ID)
	case errors.HasCode(err, errors.ArrayObjectNotFound):
		snap, err = m.CreateSnapshot(ctx, vol.ID, name, pool)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return &csi.CreateSnapshotResponse{
		Snapshot: &csi.Snapshot{
			SizeBytes:      snap.CapacityBytes,
			SnapshotId:     c.objectID(m.ArrayType(), snap.ID),
			SourceVolumeId: req.GetSourceVolumeId(),
			CreationTime:   creationTime(snap),
			ReadyToUse:     snap.IsReady,
		},
	}, nil
}

// creationTime prefers the time reported by the array so replays of
// CreateSnapshot answer with the same value.
func creationTime(snap *array.Snapshot) *timestamppb.Timestamp {
	if snap.CreatedAt.IsZero() {
		return timestamppb.Now()
	}
	return timestamppb.New(snap.CreatedAt)
}

func checkObjectName(m array.Mediator, name string) error {
	if limit := m.MaxObjectNameLength(); limit > 0 && len(name) > limit {
		return errors.New(errors.ArrayIllegalObjectName, name).
			WithMetadata("max_length", strconv.Itoa(limit))
	}
	return nil
}

func (c *controller) deleteSnapshot(ctx context.Context, req *csi.DeleteSnapshotRequest) (*csi.DeleteSnapshotResponse, error) {
	if req.GetSnapshotId() == "" {
		return nil, errors.New(errors.ControllerValidation, "snapshot id is missing")
	}
	creds, err := credentialsFromSecrets(req.GetSecrets())
	if err != nil {
		return nil, err
	}

	info, err := ParseObjectID(req.GetSnapshotId())
	if err != nil {
		c.log.Warn("Snapshot id cannot be decomposed, nothing to delete", "snapshot_id", req.GetSnapshotId())
		return &csi.DeleteSnapshotResponse{}, nil
	}

	m, err := c.registry.Connect(ctx, info.ArrayType, creds)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	if err := m.DeleteSnapshot(ctx, info.InternalID); err != nil {
		if errors.HasCode(err, errors.ArrayObjectNotFound) {
			c.log.Debug("Snapshot already deleted", "snapshot_id", req.GetSnapshotId())
			return &csi.DeleteSnapshotResponse{}, nil
		}
		return nil, err
	}
	return &csi.DeleteSnapshotResponse{}, nil
}

func (c *controller) controllerPublishVolume(
	ctx context.Context,
	req *csi.ControllerPublishVolumeRequest,
) (*csi.ControllerPublishVolumeResponse, error) {
	if req.GetVolumeId() == "" {
		return nil, errors.New(errors.ControllerValidation, "volume id is missing")
	}
	if req.GetNodeId() == "" {
		return nil, errors.New(errors.ControllerValidation, "node id is missing")
	}
	if err := validateCapability(req.GetVolumeCapability()); err != nil {
		return nil, err
	}
	creds, err := credentialsFromSecrets(req.GetSecrets())
	if err != nil {
		return nil, err
	}
	info, err := ParseObjectID(req.GetVolumeId())
	if err != nil {
		return nil, err
	}
	node, err := ParseNodeID(req.GetNodeId())
	if err != nil {
		return nil, err
	}

	m, err := c.registry.Connect(ctx, info.ArrayType, creds)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	host, connectivity, err := m.GetHostByIdentifiers(ctx, node.Initiators)
	if err != nil {
		return nil, err
	}
	connType, err := chooseConnectivityType(*host, connectivity)
	if err != nil {
		return nil, err
	}

	lun, err := m.MapVolume(ctx, info.InternalID, host.Name)
	if err != nil {
		return nil, err
	}

	publishContext := map[string]string{
		csiconfig.PublishContextLun:          strconv.Itoa(lun),
		csiconfig.PublishContextConnectivity: connType,
	}
	if connType == csiconfig.ConnectivityTypeISCSI {
		targets, err := m.GetIscsiTargets(ctx)
		if err != nil {
			return nil, err
		}
		if len(targets) == 0 {
			return nil, errors.New(errors.ArrayNoIscsiTargets, creds.Endpoint())
		}
		publishContext[csiconfig.PublishContextArrayIqn] = strings.Join(targets, csiconfig.PublishContextSeparator)
	} else {
		targets, err := m.GetFCTargets(ctx, host.Name)
		if err != nil {
			return nil, err
		}
		publishContext[csiconfig.PublishContextFCInitiators] = strings.Join(targets, csiconfig.PublishContextSeparator)
	}

	c.log.Info("Volume published", "volume_id", req.GetVolumeId(), "host", host.Name, "lun", lun, "connectivity", connType)
	return &csi.ControllerPublishVolumeResponse{PublishContext: publishContext}, nil
}

// chooseConnectivityType prefers Fibre Channel over iSCSI when the host has
// both and the array supports both.
func chooseConnectivityType(host array.Host, supported []string) (string, error) {
	if host.HasFC() && slices.Contains(supported, csiconfig.ConnectivityTypeFC) {
		return csiconfig.ConnectivityTypeFC, nil
	}
	if host.HasIscsi() && slices.Contains(supported, csiconfig.ConnectivityTypeISCSI) {
		return csiconfig.ConnectivityTypeISCSI, nil
	}
	return "", errors.New(errors.ArrayUnsupportedConnectivity, host.Name).
		WithMetadata("supported", strings.Join(supported, csiconfig.PublishContextSeparator))
}

func (c *controller) controllerUnpublishVolume(
	ctx context.Context,
	req *csi.ControllerUnpublishVolumeRequest,
) (*csi.ControllerUnpublishVolumeResponse, error) {
	if req.GetVolumeId() == "" {
		return nil, errors.New(errors.ControllerValidation, "volume id is missing")
	}
	if req.GetNodeId() == "" {
		return nil, errors.New(errors.ControllerValidation, "node id is missing")
	}
	creds, err := credentialsFromSecrets(req.GetSecrets())
	if err != nil {
		return nil, err
	}
	info, err := ParseObjectID(req.GetVolumeId())
	if err != nil {
		return nil, err
	}
	node, err := ParseNodeID(req.GetNodeId())
	if err != nil {
		return nil, err
	}

	m, err := c.registry.Connect(ctx, info.ArrayType, creds)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	host, _, err := m.GetHostByIdentifiers(ctx, node.Initiators)
	if err != nil {
		return nil, err
	}

	if err := m.UnmapVolume(ctx, info.InternalID, host.Name); err != nil {
		if errors.HasCode(err, errors.ArrayVolumeAlreadyUnmapped) {
			c.log.Debug("Volume already unmapped", "volume_id", req.GetVolumeId(), "host", host.Name)
			return &csi.ControllerUnpublishVolumeResponse{}, nil
		}
		return nil, err
	}
	return &csi.ControllerUnpublishVolumeResponse{}, nil
}

func (c *controller) validateVolumeCapabilities(
	ctx context.Context,
	req *csi.ValidateVolumeCapabilitiesRequest,
) (*csi.ValidateVolumeCapabilitiesResponse, error) {
	if req.GetVolumeId() == "" {
		return nil, errors.New(errors.ControllerValidation, "volume id is missing")
	}
	if len(req.GetVolumeCapabilities()) == 0 {
		return nil, errors.New(errors.ControllerValidation, "volume capabilities are missing")
	}
	creds, err := credentialsFromSecrets(req.GetSecrets())
	if err != nil {
		return nil, err
	}
	info, err := ParseObjectID(req.GetVolumeId())
	if err != nil {
		return nil, err
	}

	m, err := c.registry.Connect(ctx, info.ArrayType, creds)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	if _, err := m.GetVolumeByID(ctx, info.InternalID); err != nil {
		return nil, err
	}

	for _, vc := range req.GetVolumeCapabilities() {
		if err := validateCapability(vc); err != nil {
			return &csi.ValidateVolumeCapabilitiesResponse{Message: err.Error()}, nil
		}
	}

	return &csi.ValidateVolumeCapabilitiesResponse{
		Confirmed: &csi.ValidateVolumeCapabilitiesResponse_Confirmed{
			VolumeContext:      req.GetVolumeContext(),
			VolumeCapabilities: req.GetVolumeCapabilities(),
			Parameters:         req.GetParameters(),
		},
	}, nil
}

func (c *controller) controllerGetCapabilities(
	_ context.Context,
	_ *csi.ControllerGetCapabilitiesRequest,
) (*csi.ControllerGetCapabilitiesResponse, error) {
	types := []csi.ControllerServiceCapability_RPC_Type{
		csi.ControllerServiceCapability_RPC_CREATE_DELETE_VOLUME,
		csi.ControllerServiceCapability_RPC_CREATE_DELETE_SNAPSHOT,
		csi.ControllerServiceCapability_RPC_PUBLISH_UNPUBLISH_VOLUME,
		csi.ControllerServiceCapability_RPC_CLONE_VOLUME,
	}

	caps := make([]*csi.ControllerServiceCapability, 0, len(types))
	for _, t := range types {
		caps = append(caps, &csi.ControllerServiceCapability{
			Type: &csi.ControllerServiceCapability_Rpc{
				Rpc: &csi.ControllerServiceCapability_RPC{Type: t},
			},
		})
	}
	return &csi.ControllerGetCapabilitiesResponse{Capabilities: caps}, nil
}
