/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOperation is returned when a finder name does not start with find or fetch.
	ErrUnknownOperation = errors.New("datamapper: unknown operation")

	// ErrArgumentCountMismatch is returned when a finder receives a different
	// number of arguments than it has columns.
	ErrArgumentCountMismatch = errors.New("datamapper: argument count mismatch")

	// ErrFieldNotFound is returned when a record field does not exist.
	ErrFieldNotFound = errors.New("datamapper: field not found")

	// ErrInvalidAccessor is returned when a convention accessor is neither get nor set.
	ErrInvalidAccessor = errors.New("datamapper: invalid accessor")

	// ErrIndexOutOfRange is returned when a result set position is outside [0, count).
	ErrIndexOutOfRange = errors.New("datamapper: index out of range")

	// ErrRowNotFound is returned when no row matches the requested position or key.
	ErrRowNotFound = errors.New("datamapper: row not found")

	// ErrGatewayNotConfigured is returned when a service has no usable table gateway.
	ErrGatewayNotConfigured = errors.New("datamapper: gateway not configured")
)

// UnknownOperationError names the operation that could not be resolved.
type UnknownOperationError struct {
	Operation string
	Reason    string
}

func (e *UnknownOperationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("operation %q doesn't exist: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf("operation %q doesn't exist", e.Operation)
}

func (e *UnknownOperationError) Is(target error) bool {
	return target == ErrUnknownOperation
}

// ArgumentCountMismatchError reports the expected columns and the received argument count.
type ArgumentCountMismatchError struct {
	Columns   []string
	Arguments int
}

func (e *ArgumentCountMismatchError) Error() string {
	return fmt.Sprintf("number of arguments (%d) doesn't match number of columns %v", e.Arguments, e.Columns)
}

func (e *ArgumentCountMismatchError) Is(target error) bool {
	return target == ErrArgumentCountMismatch
}

// FieldNotFoundError carries the canonical field name that was looked up.
type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Field)
}

func (e *FieldNotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}

// InvalidAccessorError carries the rejected accessor name.
type InvalidAccessorError struct {
	Accessor string
}

func (e *InvalidAccessorError) Error() string {
	return fmt.Sprintf("%s must start with 'set' or 'get'", e.Accessor)
}

func (e *InvalidAccessorError) Is(target error) bool {
	return target == ErrInvalidAccessor
}

// IndexOutOfRangeError carries the illegal index and the collection size.
type IndexOutOfRangeError struct {
	Index int
	Count int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("illegal index %d (count %d)", e.Index, e.Count)
}

func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// RowNotFoundError describes where a row was expected. Cause, when set, is
// the underlying failure (for example an IndexOutOfRangeError).
type RowNotFoundError struct {
	Table    string
	Key      map[string]interface{}
	Position int
	Cause    error
}

func (e *RowNotFoundError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("no row in %s matches %v", e.Table, e.Key)
	}
	return fmt.Sprintf("no row could be found at position %d", e.Position)
}

func (e *RowNotFoundError) Is(target error) bool {
	return target == ErrRowNotFound
}

func (e *RowNotFoundError) Unwrap() error {
	return e.Cause
}

// GatewayNotConfiguredError names the service and the conventional table it looked for.
type GatewayNotConfiguredError struct {
	Service string
	Table   string
	Cause   error
}

func (e *GatewayNotConfiguredError) Error() string {
	msg := fmt.Sprintf("%s isn't defined for service %s, override it with WithTable", e.Table, e.Service)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *GatewayNotConfiguredError) Is(target error) bool {
	return target == ErrGatewayNotConfigured
}

func (e *GatewayNotConfiguredError) Unwrap() error {
	return e.Cause
}

// NewUnknownOperationError creates a new UnknownOperationError
func NewUnknownOperationError(operation, reason string) error {
	return &UnknownOperationError{Operation: operation, Reason: reason}
}

// NewArgumentCountMismatchError creates a new ArgumentCountMismatchError
func NewArgumentCountMismatchError(columns []string, arguments int) error {
	return &ArgumentCountMismatchError{Columns: columns, Arguments: arguments}
}

// NewFieldNotFoundError creates a new FieldNotFoundError
func NewFieldNotFoundError(field string) error {
	return &FieldNotFoundError{Field: field}
}

// NewInvalidAccessorError creates a new InvalidAccessorError
func NewInvalidAccessorError(accessor string) error {
	return &InvalidAccessorError{Accessor: accessor}
}

// NewIndexOutOfRangeError creates a new IndexOutOfRangeError
func NewIndexOutOfRangeError(index, count int) error {
	return &IndexOutOfRangeError{Index: index, Count: count}
}

// NewRowNotFoundError creates a RowNotFoundError for a primary-key lookup.
func NewRowNotFoundError(table string, key map[string]interface{}) error {
	return &RowNotFoundError{Table: table, Key: key}
}

// NewRowPositionError creates a RowNotFoundError for a result set position.
func NewRowPositionError(position int, cause error) error {
	return &RowNotFoundError{Position: position, Cause: cause}
}

// NewGatewayNotConfiguredError creates a new GatewayNotConfiguredError
func NewGatewayNotConfiguredError(service, table string, cause error) error {
	return &GatewayNotConfiguredError{Service: service, Table: table, Cause: cause}
}

// IsUnknownOperation checks if an error is an unknown operation error
func IsUnknownOperation(err error) bool {
	return errors.Is(err, ErrUnknownOperation)
}

// IsArgumentCountMismatch checks if an error is an argument count mismatch error
func IsArgumentCountMismatch(err error) bool {
	return errors.Is(err, ErrArgumentCountMismatch)
}

// IsFieldNotFound checks if an error is a field not found error
func IsFieldNotFound(err error) bool {
	return errors.Is(err, ErrFieldNotFound)
}

// IsInvalidAccessor checks if an error is an invalid accessor error
func IsInvalidAccessor(err error) bool {
	return errors.Is(err, ErrInvalidAccessor)
}

// IsIndexOutOfRange checks if an error is an index out of range error
func IsIndexOutOfRange(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange)
}

// IsRowNotFound checks if an error is a row not found error
func IsRowNotFound(err error) bool {
	return errors.Is(err, ErrRowNotFound)
}

// IsGatewayNotConfigured checks if an error is a gateway not configured error
func IsGatewayNotConfigured(err error) bool {
	return errors.Is(err, ErrGatewayNotConfigured)
}
