// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"context"
	"fmt"
	"time"

	"github.com/stratastor/logger"
	"github.com/stratastor/strata-csi/config"
	"github.com/stratastor/strata-csi/pkg/errors"
	"github.com/stratastor/strata-csi/pkg/httpclient"
)

// Status is the body served on the health endpoint.
type Status struct {
	Status     string   `json:"status"`
	Driver     string   `json:"driver"`
	Version    string   `json:"version"`
	ArrayTypes []string `json:"array_types"`
}

type HealthChecker struct {
	Client   *httpclient.Client
	Logger   logger.Logger
	endpoint string
}

func NewHealthChecker(cfg *config.Config) (*HealthChecker, error) {
	l, err := logger.NewTag(config.NewLoggerConfig(cfg), "health")
	if err != nil {
		return nil, err
	}

	clientConfig := httpclient.NewClientConfig()
	clientConfig.Timeout = 5 * time.Second
	clientConfig.RetryCount = 3
	clientConfig.RetryWaitTime = 2 * time.Second
	clientConfig.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.HTTPPort)

	return &HealthChecker{
		Client:   httpclient.NewClient(clientConfig),
		Logger:   l,
		endpoint: cfg.Health.Endpoint,
	}, nil
}

// CheckHealth queries the running driver's HTTP side server.
func (hc *HealthChecker) CheckHealth(ctx context.Context) (*Status, error) {
	var st Status
	resp, err := hc.Client.NewRequest(httpclient.RequestConfig{
		Path:    hc.endpoint,
		Result:  &st,
		Context: ctx,
	}).Get()
	if err != nil {
		return nil, errors.Wrap(err, errors.ServerResponseError).WithMetadata("endpoint", hc.endpoint)
	}

	if !resp.IsSuccess() {
		return nil, errors.New(errors.ServerResponseError,
			fmt.Sprintf("unhealthy, status: %s, response: %s", resp.Status(), resp.String()))
	}
	hc.Logger.Debug("Health check succeeded", "status", st.Status, "driver", st.Driver)
	return &st, nil
}
