// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/stratastor/strata-csi/pkg/csiconfig"
	"github.com/stratastor/strata-csi/pkg/errors"
	"google.golang.org/grpc/status"
)

// Logger is the subset of logger.Logger used by the controller.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// HandleCommonErrors guards op so that callers only ever see a gRPC status.
//
// On success the result of op is returned as is. On failure the full error is
// logged, its code is resolved through errors.GRPCCode and an empty *Resp is
// returned along with the status error. A panic inside op is treated as an
// unexpected failure and reported as codes.Internal.
func HandleCommonErrors[Req, Resp any](
	l Logger,
	method string,
	op func(context.Context, *Req) (*Resp, error),
) func(context.Context, *Req) (*Resp, error) {
	return func(ctx context.Context, req *Req) (resp *Resp, err error) {
		defer recordOperation(method, time.Now())
		defer func() {
			if r := recover(); r != nil {
				l.Error("Controller operation panicked",
					"method", method,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()))
				resp, err = handleError[Resp](l, method, errors.New(errors.ServerInternalError, fmt.Sprintf("%v", r)))
			}
		}()

		resp, err = op(ctx, req)
		if err == nil {
			return resp, nil
		}
		return handleError[Resp](l, method, err)
	}
}

func handleError[Resp any](l Logger, method string, err error) (*Resp, error) {
	attrs := []interface{}{"method", method, "error", err}
	if ce, ok := errors.As(err); ok {
		attrs = append(attrs, ce.LogAttrs()...)
	}
	l.Error("Controller operation failed", attrs...)

	code := errors.GRPCCode(err)
	recordFailure(method, code)

	return new(Resp), status.Error(code, csiconfig.TruncateResponse(err.Error()))
}
