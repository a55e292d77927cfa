// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc/codes"
)

var (
	// OperationsTotal counts controller operations by method
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_csi_operations_total",
			Help: "Total number of CSI controller operations",
		},
		[]string{"method"},
	)

	// OperationFailuresTotal counts failed operations by method and the gRPC
	// code they were translated to
	OperationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_csi_operation_failures_total",
			Help: "Total number of failed CSI controller operations",
		},
		[]string{"method", "code"},
	)

	// OperationDuration tracks operation latency in seconds
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strata_csi_operation_duration_seconds",
			Help:    "CSI controller operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func recordOperation(method string, start time.Time) {
	OperationsTotal.WithLabelValues(method).Inc()
	OperationDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func recordFailure(method string, code codes.Code) {
	OperationFailuresTotal.WithLabelValues(method, code.String()).Inc()
}
