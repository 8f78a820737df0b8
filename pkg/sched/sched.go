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

// Package sched describes what a scheduler must provide to the code running in its
// tasks: the handle of the running task, which can be asked to stop, and one-shot
// deferred calls on the scheduler's own clock.
//
// A scheduler puts both into the task context with NewContext, and the code running
// in the task resolves them with CurrentTask. There is no global scheduler.
package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/solarisdb/timeguard/golibs/timeout"
)

type (
	// Task is a logical unit of suspendable execution.
	Task interface {
		// ID returns the task identifier, which is unique for the scheduler.
		ID() string

		// Cancel requests the task cancellation. The request is advisory: the task
		// observes context.Canceled at its next suspension point. The function returns
		// false if the task is already finished, so there is nothing to cancel.
		Cancel() bool
	}

	// Runtime is the scheduler's timer facility.
	Runtime interface {
		// CallLater schedules f to be called once after the duration d is elapsed on
		// the runtime clock. The returned Future may be used to dispose the call,
		// disposing is idempotent and is safe after f was called.
		CallLater(d time.Duration, f func()) timeout.Future
	}

	taskKey struct{}

	taskCtx struct {
		rt   Runtime
		task Task
	}
)

// ErrNoTask is returned by CurrentTask when the context was not created by a scheduler.
var ErrNoTask = fmt.Errorf("no task is associated with the context: %w", errors.ErrInvalid)

// NewContext returns the child of ctx which carries the task t run by the runtime rt.
func NewContext(ctx context.Context, rt Runtime, t Task) context.Context {
	if rt == nil || t == nil {
		panic("sched.NewContext: runtime and task must not be nil")
	}
	return context.WithValue(ctx, taskKey{}, taskCtx{rt: rt, task: t})
}

// CurrentTask returns the task executing the calling context and its runtime.
func CurrentTask(ctx context.Context) (Runtime, Task, error) {
	if ctx == nil {
		return nil, nil, ErrNoTask
	}
	tc, ok := ctx.Value(taskKey{}).(taskCtx)
	if !ok {
		return nil, nil, ErrNoTask
	}
	return tc.rt, tc.task, nil
}
