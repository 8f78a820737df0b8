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
	"sync/atomic"
	"time"

	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/solarisdb/timeguard/golibs/timeout"
	"github.com/solarisdb/timeguard/pkg/sched"
)

type (
	// Guard is the armed timeout of one scope. It is created by Enter and must be
	// released by Exit exactly once.
	Guard struct {
		maxTime time.Duration
		task    sched.Task
		timer   timeout.Future
		// state is the single-assignment cell, which tells whose cancellation the
		// scope observes: the timer callback moves it from armed to fired, the exit
		// from armed to disarmed. Only the first move happens.
		state atomic.Int32
	}
)

const (
	armed int32 = iota
	fired
	disarmed
)

// Enter arms the timeout of maxTime for the task running in ctx. When the time is
// over, the task is cancelled. The returned Guard must be released by Exit, which
// should be deferred right after the successful Enter.
//
// A negative maxTime is rejected with errors.ErrInvalid. Zero maxTime makes the
// timer to fire as soon as the scheduler gets the control, so the work is cancelled
// at its first suspension point.
func Enter(ctx context.Context, maxTime time.Duration) (*Guard, error) {
	if maxTime < 0 {
		return nil, fmt.Errorf("the timeout must not be negative, but it is %s: %w", maxTime, errors.ErrInvalid)
	}
	rt, task, err := sched.CurrentTask(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not arm the timeout: %w", err)
	}
	g := &Guard{maxTime: maxTime, task: task}
	g.timer = rt.CallLater(maxTime, g.fire)
	return g, nil
}

// fire is the timer callback. The state is moved before the cancellation is requested,
// so the cancellation is always seen as ours by Exit.
func (g *Guard) fire() {
	if g.state.CompareAndSwap(armed, fired) {
		g.task.Cancel()
	}
}

// Exit disposes the timer and translates the result err of the guarded scope:
//   - nil is returned as nil, even if the timer fired but the work ignored the cancellation;
//   - context.Canceled caused by the guard timer becomes *TimeoutError;
//   - any other error, including a cancellation not caused by the guard, is returned as is.
//
// Only the first call of Exit disposes the timer, the later calls just translate err.
func (g *Guard) Exit(err error) error {
	g.timer.Cancel()
	// the timer callback may be still running in a multi-threaded scheduler, after
	// this point it cannot cancel the task anymore
	g.state.CompareAndSwap(armed, disarmed)
	if err == nil || !errors.Is(err, context.Canceled) {
		return err
	}
	if g.state.Load() == fired {
		return &TimeoutError{MaxTime: g.maxTime}
	}
	return err
}

// Expired returns whether the guard timer fired and cancelled the task
func (g *Guard) Expired() bool {
	return g.state.Load() == fired
}

// MaxTime returns the guard timeout
func (g *Guard) MaxTime() time.Duration {
	return g.maxTime
}

// Do runs f guarded by the timeout maxTime. The ctx must be the context of a scheduler
// task, f receives the same ctx. The function returns nil, the error returned by f,
// or *TimeoutError if f was cancelled by the guard. If f panics, the timer is disposed
// before the panic goes up.
func Do(ctx context.Context, maxTime time.Duration, f func(ctx context.Context) error) (err error) {
	g, err := Enter(ctx, maxTime)
	if err != nil {
		return err
	}
	defer func() {
		err = g.Exit(err)
	}()
	return f(ctx)
}

// DoValue is Do for the functions which return a value. The value is returned as is,
// the guard never looks at it.
func DoValue[T any](ctx context.Context, maxTime time.Duration, f func(ctx context.Context) (T, error)) (T, error) {
	var res T
	err := Do(ctx, maxTime, func(ctx context.Context) (err error) {
		res, err = f(ctx)
		return err
	})
	return res, err
}
