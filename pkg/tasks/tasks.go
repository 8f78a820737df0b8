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

// Package tasks provides the multi-threaded scheduler: every task is a goroutine with
// its own cancellable context, and the deferred calls are run by timeout.Caller. Unlike
// the loop tasks, the cancellation of a goroutine task is sticky: once cancelled, the
// task context stays closed.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	gctx "github.com/solarisdb/timeguard/golibs/context"
	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/solarisdb/timeguard/golibs/logging"
	"github.com/solarisdb/timeguard/golibs/timeout"
	"github.com/solarisdb/timeguard/golibs/ulidutils"
	"github.com/solarisdb/timeguard/pkg/sched"
)

type (
	// Runtime starts the goroutine tasks and runs the deferred calls for them
	Runtime struct {
		caller *timeout.Caller
		log    logging.Logger
		wg     sync.WaitGroup
	}

	// Option allows to customize the Runtime created by New
	Option func(r *Runtime)

	// Task is the function run in its own goroutine
	Task struct {
		id     string
		name   string
		ctx    context.Context
		cancel gctx.CancelErrFunc
		doneCh chan struct{}
		err    error
	}
)

var (
	_ sched.Runtime = (*Runtime)(nil)
	_ sched.Task    = (*Task)(nil)
)

// WithCaller sets the timeout.Caller, which runs the deferred calls. The Caller's clock
// is the runtime clock.
func WithCaller(caller *timeout.Caller) Option {
	return func(r *Runtime) {
		r.caller = caller
	}
}

// WithLogger sets the runtime logger
func WithLogger(log logging.Logger) Option {
	return func(r *Runtime) {
		r.log = log
	}
}

// New creates the new Runtime
func New(opts ...Option) *Runtime {
	r := &Runtime{}
	for _, o := range opts {
		o(r)
	}
	if r.caller == nil {
		r.caller = timeout.NewCaller(clockwork.NewRealClock())
	}
	if r.log == nil {
		r.log = logging.NewLogger("tasks")
	}
	return r
}

// CallLater implements sched.Runtime
func (r *Runtime) CallLater(d time.Duration, f func()) timeout.Future {
	return r.caller.Call(f, d)
}

// Go starts f in a new goroutine. The ctx provided to f carries the task, and it is
// closed with context.Canceled when the task is cancelled, or with the parent
// ctx error.
func (r *Runtime) Go(ctx context.Context, name string, f func(ctx context.Context) error) *Task {
	if f == nil {
		panic("tasks.Go: the task function must not be nil")
	}
	t := &Task{id: ulidutils.NewID(r.caller.Now()), name: name, doneCh: make(chan struct{})}
	tctx, cancel := gctx.WithCancelError(ctx)
	t.cancel = cancel
	t.ctx = sched.NewContext(tctx, r, t)
	r.wg.Add(1)
	r.log.Debugf("starting task %s", t)
	go func() {
		defer r.wg.Done()
		t.run(f)
		r.log.Debugf("task %s is finished, err=%v", t, t.err)
	}()
	return t
}

// Wait blocks until all the tasks started by the runtime are finished or the ctx is
// closed.
func (r *Runtime) Wait(ctx context.Context) error {
	doneCh := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(doneCh)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-doneCh:
		return nil
	}
}

func (t *Task) run(f func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			t.err = fmt.Errorf("task %s panicked: %v: %w", t, r, errors.ErrInternal)
		}
		// releases the context watchdog, the code in the task sees the error only
		// if the context was not cancelled before
		t.cancel(nil)
		close(t.doneCh)
	}()
	t.err = f(t.ctx)
}

// ID returns the task identifier
func (t *Task) ID() string {
	return t.id
}

// Name returns the task name provided to Go
func (t *Task) Name() string {
	return t.name
}

// String implements fmt.Stringer
func (t *Task) String() string {
	return fmt.Sprintf("%s(%s)", t.name, t.id)
}

// Cancel closes the task context with context.Canceled. It returns false if the task
// is already finished.
func (t *Task) Cancel() bool {
	select {
	case <-t.doneCh:
		return false
	default:
	}
	t.cancel(context.Canceled)
	return true
}

// Done returns the channel, which is closed when the task is finished
func (t *Task) Done() <-chan struct{} {
	return t.doneCh
}

// Err returns the task result, it is nil until the task is finished
func (t *Task) Err() error {
	select {
	case <-t.doneCh:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task is finished and returns its result, or returns the ctx
// error if the ctx is closed first.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.doneCh:
		return t.err
	}
}
