// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"github.com/container-storage-interface/spec/lib/go/csi"
	"github.com/stratastor/strata-csi/pkg/csiconfig"
	"github.com/stratastor/strata-csi/pkg/errors"
)

func validateCreateVolumeRequest(req *csi.CreateVolumeRequest) error {
	if req.GetName() == "" {
		return errors.New(errors.ControllerValidation, "name is missing")
	}
	if req.GetCapacityRange().GetRequiredBytes() < 0 {
		return errors.New(errors.ControllerValidation, "capacity must not be negative")
	}
	if len(req.GetVolumeCapabilities()) == 0 {
		return errors.New(errors.ControllerValidation, "volume capabilities are missing")
	}
	for _, vc := range req.GetVolumeCapabilities() {
		if err := validateCapability(vc); err != nil {
			return err
		}
	}
	return nil
}

// validateCapability checks a single capability against the supported access
// modes and filesystem types. An empty fs type means the default.
func validateCapability(vc *csi.VolumeCapability) error {
	if vc == nil {
		return errors.New(errors.ControllerValidation, "volume capability is missing")
	}

	if vc.GetMount() == nil && vc.GetBlock() == nil {
		return errors.New(errors.ControllerValidation,
			"access type must be "+csiconfig.AccessTypeMount+" or "+csiconfig.AccessTypeBlock)
	}
	if mount := vc.GetMount(); mount != nil {
		if fs := mount.GetFsType(); fs != "" && !csiconfig.IsSupportedFSType(fs) {
			return errors.New(errors.ControllerValidation, "unsupported fs type "+fs)
		}
	}

	mode := vc.GetAccessMode().GetMode()
	if !csiconfig.IsSupportedAccessMode(mode) {
		return errors.New(errors.ControllerValidation, "unsupported access mode "+mode.String())
	}
	return nil
}
