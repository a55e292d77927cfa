// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/stratastor/strata-csi/pkg/errors"
)

// ParseEndpoint splits a CSI endpoint such as unix:///csi/csi.sock or
// tcp://0.0.0.0:10000 into a network and an address for net.Listen.
func ParseEndpoint(endpoint string) (network, address string, err error) {
	scheme, rest, ok := strings.Cut(endpoint, "://")
	if !ok {
		return "", "", errors.New(errors.ServerInvalidEndpoint, endpoint)
	}

	switch strings.ToLower(scheme) {
	case "unix":
		network = "unix"
	case "tcp":
		network = "tcp"
	default:
		return "", "", errors.New(errors.ServerInvalidEndpoint, endpoint).
			WithMetadata("scheme", scheme)
	}

	if rest == "" {
		return "", "", errors.New(errors.ServerInvalidEndpoint, endpoint)
	}
	return network, rest, nil
}

// listen opens the gRPC listener. A leftover unix socket from a previous run
// is removed first.
func listen(endpoint string) (net.Listener, error) {
	network, address, err := ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	if network == "unix" {
		if err := os.MkdirAll(filepath.Dir(address), 0750); err != nil {
			return nil, errors.Wrap(err, errors.ServerBind).WithMetadata("address", address)
		}
		if err := os.Remove(address); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ServerBind).WithMetadata("address", address)
		}
	}

	lis, err := net.Listen(network, address)
	if err != nil {
		return nil, errors.Wrap(err, errors.ServerBind).WithMetadata("address", address)
	}
	return lis, nil
}
