// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"

	"github.com/container-storage-interface/spec/lib/go/csi"
	"github.com/stratastor/strata-csi/pkg/errors"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// IdentityServer reports plugin name, version and capabilities.
type IdentityServer struct {
	csi.UnimplementedIdentityServer

	name    string
	version string

	getPluginInfo         func(context.Context, *csi.GetPluginInfoRequest) (*csi.GetPluginInfoResponse, error)
	getPluginCapabilities func(context.Context, *csi.GetPluginCapabilitiesRequest) (*csi.GetPluginCapabilitiesResponse, error)
	probe                 func(context.Context, *csi.ProbeRequest) (*csi.ProbeResponse, error)
}

func NewIdentityServer(name, version string, l Logger) *IdentityServer {
	s := &IdentityServer{name: name, version: version}
	s.getPluginInfo = HandleCommonErrors(l, "GetPluginInfo", s.pluginInfo)
	s.getPluginCapabilities = HandleCommonErrors(l, "GetPluginCapabilities", s.pluginCapabilities)
	s.probe = HandleCommonErrors(l, "Probe", s.probeReady)
	return s
}

func (s *IdentityServer) GetPluginInfo(ctx context.Context, req *csi.GetPluginInfoRequest) (*csi.GetPluginInfoResponse, error) {
	return s.getPluginInfo(ctx, req)
}

func (s *IdentityServer) GetPluginCapabilities(
	ctx context.Context,
	req *csi.GetPluginCapabilitiesRequest,
) (*csi.GetPluginCapabilitiesResponse, error) {
	return s.getPluginCapabilities(ctx, req)
}

func (s *IdentityServer) Probe(ctx context.Context, req *csi.ProbeRequest) (*csi.ProbeResponse, error) {
	return s.probe(ctx, req)
}

func (s *IdentityServer) pluginInfo(_ context.Context, _ *csi.GetPluginInfoRequest) (*csi.GetPluginInfoResponse, error) {
	if s.name == "" {
		return nil, errors.New(errors.ConfigValidationFailed, "driver name is not configured")
	}
	return &csi.GetPluginInfoResponse{Name: s.name, VendorVersion: s.version}, nil
}

func (s *IdentityServer) pluginCapabilities(
	_ context.Context,
	_ *csi.GetPluginCapabilitiesRequest,
) (*csi.GetPluginCapabilitiesResponse, error) {
	return &csi.GetPluginCapabilitiesResponse{
		Capabilities: []*csi.PluginCapability{
			{
				Type: &csi.PluginCapability_Service_{
					Service: &csi.PluginCapability_Service{
						Type: csi.PluginCapability_Service_CONTROLLER_SERVICE,
					},
				},
			},
		},
	}, nil
}

func (s *IdentityServer) probeReady(_ context.Context, _ *csi.ProbeRequest) (*csi.ProbeResponse, error) {
	return &csi.ProbeResponse{Ready: wrapperspb.Bool(true)}, nil
}
