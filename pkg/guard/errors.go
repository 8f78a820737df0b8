// Copyright 2024 The Solaris Authors
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

package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/solarisdb/timeguard/golibs/errors"
)

// TimeoutError is returned by the guard, which cancelled the task because the work
// had not finished in MaxTime. The error matches errors.ErrTimeout and
// context.DeadlineExceeded, but never context.Canceled.
type TimeoutError struct {
	MaxTime time.Duration
}

// Error implements error
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("the operation is not completed in %s: %s", e.MaxTime, errors.ErrTimeout)
}

// Timeout returns true, so the error may be treated like net.Error
func (e *TimeoutError) Timeout() bool {
	return true
}

// Unwrap allows errors.Is(err, errors.ErrTimeout) and errors.Is(err, context.DeadlineExceeded)
func (e *TimeoutError) Unwrap() []error {
	return []error{errors.ErrTimeout, context.DeadlineExceeded}
}

// IsTimeout returns true if err is, or wraps, the *TimeoutError
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
