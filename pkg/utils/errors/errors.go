/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrArgument is the cause of every ArgumentError.
	ErrArgument = errors.New("invalid argument")
	// ErrValidation is the cause of every ValidationError.
	ErrValidation = errors.New("invalid topology")
)

// ArgumentError reports a missing or malformed invocation parameter.
type ArgumentError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ArgumentError) Error() string {
	return describe("argument", e.Field, e.Value, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrArgument }

// ValidationError reports a semantically invalid topology parameter.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return describe("validation", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewArgumentError returns an ArgumentError for field.
func NewArgumentError(field string, value interface{}, format string, args ...any) error {
	return &ArgumentError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field string, value interface{}, format string, args ...any) error {
	return &ValidationError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}

func describe(kind, field string, value interface{}, reason string) string {
	return fmt.Sprintf("%s error: field [%s] value [%v]: %s", kind, field, value, reason)
}

// AsValidation returns the ValidationError wrapped in err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// AsArgument returns the ArgumentError wrapped in err, if any.
func AsArgument(err error) (*ArgumentError, bool) {
	var ae *ArgumentError
	ok := errors.As(err, &ae)
	return ae, ok
}

// HasCause recursively checks errors wrapped using Wrapf until it detects the target error
func HasCause(source, target error) bool {
	return source != nil && target != nil && errors.Is(source, target)
}

// Wrapf wraps an error in a way compatible with HasCause
func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}

func Errorf(format string, args ...any) error {
	return errors.Errorf(format, args...)
}
