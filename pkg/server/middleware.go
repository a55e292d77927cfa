/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stratastor/logger"
	"github.com/stratastor/strata-csi/internal/constants"
	"github.com/stratastor/strata-csi/pkg/errors"
)

// LoggerMiddleware logs requests to the HTTP side server. Health and metrics
// scrapes are not logged.
func LoggerMiddleware(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		if path == constants.HealthPath || path == constants.MetricsPath {
			c.Next()
			return
		}

		requestID := c.GetHeader(constants.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(constants.RequestIDHeader, requestID)
		c.Set("request_id", requestID)

		c.Next()

		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("ip", c.ClientIP()),
		}

		if len(c.Errors) == 0 {
			l.Info("Request", logAttrs(attrs)...)
			return
		}

		for _, ginErr := range c.Errors {
			if ce, ok := errors.As(ginErr.Err); ok {
				attrs = append(attrs,
					slog.Int("error_code", int(ce.Code)),
					slog.String("error_domain", string(ce.Domain)),
					slog.String("error_message", ce.Message),
					slog.String("error_details", ce.Details),
				)
				for k, v := range ce.Metadata {
					attrs = append(attrs, slog.String("error_metadata_"+k, v))
				}
			} else {
				attrs = append(attrs, slog.String("error", ginErr.Error()))
			}
		}

		// Log as error for 5xx, warn for 4xx
		switch {
		case c.Writer.Status() >= 500:
			l.Error("Server Error", logAttrs(attrs)...)
		case c.Writer.Status() >= 400:
			l.Warn("Client Error", logAttrs(attrs)...)
		}
	}
}

func logAttrs(attrs []slog.Attr) []interface{} {
	args := make([]interface{}, len(attrs)*2)
	for i, attr := range attrs {
		args[i*2] = attr.Key
		args[i*2+1] = attr.Value.Any()
	}
	return args
}
