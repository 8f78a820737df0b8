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

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var grpcToErrors = map[codes.Code]error{
	codes.OK:                 nil,
	codes.Canceled:           context.Canceled,
	codes.DeadlineExceeded:   ErrTimeout,
	codes.InvalidArgument:    ErrInvalid,
	codes.NotFound:           ErrNotExist,
	codes.FailedPrecondition: ErrConflict,
	codes.Unavailable:        ErrClosed,
}

var errorsToCode = map[error]codes.Code{
	ErrNotExist:              codes.NotFound,
	ErrInvalid:               codes.InvalidArgument,
	ErrInternal:              codes.Internal,
	ErrClosed:                codes.Unavailable,
	ErrTimeout:               codes.DeadlineExceeded,
	ErrConflict:              codes.FailedPrecondition,
	context.Canceled:         codes.Canceled,
	context.DeadlineExceeded: codes.DeadlineExceeded,
}

// FromGRPCError receives a gRPC error (code-based) and returns the one of the
// general errors (ErrTimeout, context.Canceled...). Codes that have no general
// error counterpart are reported as ErrInternal.
func FromGRPCError(err error) error {
	if err, ok := grpcToErrors[status.Code(err)]; ok {
		return err
	}
	return ErrInternal
}

// FromGRPCErrorMsg receives a gRPC status error message
func FromGRPCErrorMsg(err error) string {
	if err == nil {
		return ""
	}
	if st, ok := status.FromError(err); ok {
		return st.Message()
	}
	return err.Error()
}

// GRPCStatusCode returns the gRPC error status code by the error provided. The guard
// timeout is reported as codes.DeadlineExceeded, while a foreign cancellation keeps
// its codes.Canceled.
func GRPCStatusCode(err error) codes.Code {
	code := status.Code(err)
	if code != codes.Unknown {
		return code
	}
	if code, ok := errorsToCode[err]; ok {
		return code
	}
	for e, c := range errorsToCode {
		if errors.Is(err, e) {
			return c
		}
	}
	return codes.Internal
}

// GRPCWrap allows to get an error and wrap it to the grpc response error.
// you may use the function to report gRPC error from your server side like:
// ```
//
//	func RemoteCall(ctx context.Context, pbRequest *pb.Request) (*pb.Response, error) {
//	   var resp *pb.Response
//	   err := guard.Do(ctx, time.Second, func(ctx context.Context) (err error) {
//	      resp, err = handle(ctx, pbRequest)
//	      return err
//	   })
//	   return resp, errors.GRPCWrap(err)
//	}
//
// ```
func GRPCWrap(err error) error {
	if err == nil {
		return nil
	}
	if code := status.Code(err); code != codes.Unknown {
		return err // return err as is, it is already a gRPC formed error
	}
	return status.Error(GRPCStatusCode(err), err.Error())
}
