// Copyright 2023 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package errors

import "errors"

var (
	// ErrNotExist is returned when a requested object (a file, a task etc.) cannot be found
	ErrNotExist = errors.New("not exist")
	// ErrInvalid indicates that an argument or a state is not acceptable
	ErrInvalid = errors.New("invalid")
	// ErrInternal is the unexpected error, which usually means a bug or a panic
	ErrInternal = errors.New("internal error")
	// ErrClosed is returned when an object is used after it was closed or shut down
	ErrClosed = errors.New("closed")
	// ErrTimeout is the class of errors reported when an operation could not be
	// completed in the time allotted to it.
	ErrTimeout = errors.New("timeout")
	// ErrConflict indicates that the operation is not compatible with the current state
	ErrConflict = errors.New("conflict")
)

// Is is the shortcut for errors.Is, which also understands the gRPC status errors.
// So the status.Errorf(codes.NotFound, ...) error will match ErrNotExist.
func Is(err, target error) bool {
	if errors.Is(err, target) {
		return true
	}
	if err == nil || target == nil {
		return false
	}
	if _, ok := errorsToCode[target]; !ok {
		return false
	}
	return FromGRPCError(err) == target
}

// As is the shortcut for errors.As
func As(err error, target any) bool {
	return errors.As(err, target)
}
