// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stratastor/strata-csi/internal/constants"
	"github.com/stratastor/strata-csi/pkg/array"
	"github.com/stratastor/strata-csi/pkg/health"
)

func registerRoutes(engine *gin.Engine, driverName string, registry *array.Registry) {
	engine.GET(constants.HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, health.Status{
			Status:     "healthy",
			Driver:     driverName,
			Version:    constants.Version,
			ArrayTypes: registry.Types(),
		})
	})

	engine.GET(constants.MetricsPath, gin.WrapH(promhttp.Handler()))
}
