// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// New builds a CSIError for code. details is the caller-facing context, usually
// the offending object name or id.
func New(code ErrorCode, details string) *CSIError {
	def, ok := errorDefinitions[code]
	if !ok {
		def.message = "Unknown error"
		def.domain = DomainServer
	}
	return &CSIError{
		Code:    code,
		Domain:  def.domain,
		Message: def.message,
		Details: details,
	}
}

// Wrap converts an arbitrary error, typically a vendor client error, into a
// CSIError of the given code. The original error stays reachable via Unwrap.
func Wrap(err error, code ErrorCode) *CSIError {
	if err == nil {
		return nil
	}
	e := New(code, err.Error())
	e.cause = err
	return e
}

// WithMetadata attaches structured context to the error and returns it.
func (e *CSIError) WithMetadata(key, value string) *CSIError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

func (e *CSIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *CSIError) Unwrap() error {
	return e.cause
}

// Is matches on code only, so errors.Is(err, errors.New(ArrayObjectNotFound, ""))
// holds for any not-found error regardless of details.
func (e *CSIError) Is(target error) bool {
	t, ok := target.(*CSIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// LogAttrs flattens the error into key/value pairs for the logger.
func (e *CSIError) LogAttrs() []interface{} {
	attrs := []interface{}{
		"error_code", int(e.Code),
		"error_domain", string(e.Domain),
		"error_message", e.Message,
	}
	if e.Details != "" {
		attrs = append(attrs, "error_details", e.Details)
	}
	for k, v := range maps.Clone(e.Metadata) {
		attrs = append(attrs, "meta_"+k, v)
	}
	if e.cause != nil {
		attrs = append(attrs, "cause", e.cause.Error())
	}
	return attrs
}

// As returns the first CSIError in err's chain.
func As(err error) (*CSIError, bool) {
	var ce *CSIError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// HasCode reports whether err carries code.
func HasCode(err error, code ErrorCode) bool {
	ce, ok := As(err)
	return ok && ce.Code == code
}
