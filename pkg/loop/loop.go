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

package loop

import (
	"container/heap"
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/solarisdb/timeguard/golibs/logging"
	"github.com/solarisdb/timeguard/golibs/timeout"
	"github.com/solarisdb/timeguard/pkg/sched"
)

type (
	// Loop is the single-threaded cooperative scheduler. It runs the ready callbacks
	// in FIFO order and the timers in order of their fire time.
	Loop struct {
		clock   clockwork.Clock
		log     logging.Logger
		ready   []*handle
		timers  handles
		seq     uint64
		yieldCh chan struct{}
		current *Task
		tasks   map[*Task]struct{}
		running bool
	}

	// Option allows to customize the Loop created by New
	Option func(l *Loop)
)

var (
	// ErrRunning is returned by a driver function when the loop is already driven
	ErrRunning = fmt.Errorf("the loop is already running: %w", errors.ErrConflict)

	// ErrStalled is returned by RunUntilComplete when the task waits for something,
	// that will never happen: there are no ready callbacks and no timers in the loop.
	ErrStalled = fmt.Errorf("the task cannot make progress: %w", errors.ErrConflict)

	// ErrNotRunning is returned by the suspension points, which are called not from
	// the task currently run by the loop.
	ErrNotRunning = fmt.Errorf("the suspension point must be called from the running loop task: %w", errors.ErrInvalid)
)

var _ sched.Runtime = (*Loop)(nil)

// WithClock sets the clock, which measures the loop time. The loop simulates the time
// if the clock is clockwork.FakeClock
func WithClock(clock clockwork.Clock) Option {
	return func(l *Loop) {
		l.clock = clock
	}
}

// WithLogger sets the loop logger
func WithLogger(log logging.Logger) Option {
	return func(l *Loop) {
		l.log = log
	}
}

// New creates the new Loop. By default, the loop works with the real clock.
func New(opts ...Option) *Loop {
	l := &Loop{
		yieldCh: make(chan struct{}),
		tasks:   make(map[*Task]struct{}),
	}
	for _, o := range opts {
		o(l)
	}
	if l.clock == nil {
		l.clock = clockwork.NewRealClock()
	}
	if l.log == nil {
		l.log = logging.NewLogger("loop")
	}
	return l
}

// Now returns the current time of the loop clock
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// CallLater schedules f to be called once the duration d is elapsed. A negative d is
// considered as 0, so f will be called on the next loop iteration.
func (l *Loop) CallLater(d time.Duration, f func()) timeout.Future {
	if f == nil {
		return timeout.VoidFuture
	}
	if d < 0 {
		d = 0
	}
	l.seq++
	h := &handle{l: l, f: f, fireT: l.clock.Now().Add(d), seq: l.seq, idx: -1}
	heap.Push(&l.timers, h)
	return h
}

// CallSoon schedules f to be called on the current loop iteration after all the
// callbacks, which are already ready to run.
func (l *Loop) CallSoon(f func()) timeout.Future {
	if f == nil {
		return timeout.VoidFuture
	}
	l.seq++
	h := &handle{l: l, f: f, fireT: l.clock.Now(), seq: l.seq, idx: -1}
	l.ready = append(l.ready, h)
	return h
}

// Tasks returns the number of tasks, which are not finished yet
func (l *Loop) Tasks() int {
	return len(l.tasks)
}

// Timers returns the number of timers, which are scheduled, but not fired yet
func (l *Loop) Timers() int {
	return len(l.timers)
}

// RunUntilIdle runs the loop until there are no ready callbacks and due timers. The
// loop time is not changed.
func (l *Loop) RunUntilIdle() error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.leave()
	l.drain()
	return nil
}

// Advance moves the fake clock forward by d, running all the timers which fire
// in the period. Each timer is run with the clock set to its fire time. The function
// returns an error if the loop clock is not a clockwork.FakeClock.
func (l *Loop) Advance(d time.Duration) error {
	fc, ok := l.clock.(clockwork.FakeClock)
	if !ok {
		return fmt.Errorf("the loop time can be advanced for the fake clock only: %w", errors.ErrInvalid)
	}
	if d < 0 {
		return fmt.Errorf("cannot move the loop time back by %s: %w", d, errors.ErrInvalid)
	}
	if err := l.enter(); err != nil {
		return err
	}
	defer l.leave()

	target := fc.Now().Add(d)
	l.drain()
	for len(l.timers) > 0 && !l.timers[0].fireT.After(target) {
		if dt := l.timers[0].fireT.Sub(fc.Now()); dt > 0 {
			fc.Advance(dt)
		}
		l.drain()
	}
	if dt := target.Sub(fc.Now()); dt > 0 {
		fc.Advance(dt)
	}
	l.drain()
	return nil
}

// Run runs the loop until there is nothing more to do: no ready callbacks and no
// timers, or until the ctx is closed. With the fake clock the loop time jumps to the
// next timer instead of waiting for it.
func (l *Loop) Run(ctx context.Context) error {
	return l.run(ctx, func() bool { return false })
}

// RunUntilComplete runs the loop until the task t is finished and returns the task
// result. It returns ErrStalled if the task will never finish, or the ctx error if
// the ctx is closed first.
func (l *Loop) RunUntilComplete(ctx context.Context, t *Task) error {
	if t.l != l {
		return fmt.Errorf("the task %s belongs to another loop: %w", t, errors.ErrInvalid)
	}
	if err := l.run(ctx, t.Done); err != nil {
		return err
	}
	if !t.Done() {
		return ErrStalled
	}
	return t.Err()
}

// Shutdown cancels all the tasks which are not finished yet and runs the loop until
// they are over. The tasks may ignore the cancellation, so the ctx limits the time
// the function may take.
func (l *Loop) Shutdown(ctx context.Context) error {
	if l.running {
		return ErrRunning
	}
	for t := range l.tasks {
		t.Cancel()
	}
	err := l.run(ctx, func() bool { return len(l.tasks) == 0 })
	if err == nil && len(l.tasks) > 0 {
		err = fmt.Errorf("%d task(s) are still running: %w", len(l.tasks), ErrStalled)
	}
	return err
}

func (l *Loop) run(ctx context.Context, stop func() bool) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.leave()

	for {
		l.drain()
		if stop() || len(l.timers) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		wait := l.timers[0].fireT.Sub(l.clock.Now())
		if wait <= 0 {
			continue
		}
		if fc, ok := l.clock.(clockwork.FakeClock); ok {
			fc.Advance(wait)
			continue
		}
		tmr := l.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			tmr.Stop()
			return ctx.Err()
		case <-tmr.Chan():
		}
	}
}

func (l *Loop) enter() error {
	if l.running {
		return ErrRunning
	}
	l.running = true
	return nil
}

func (l *Loop) leave() {
	l.running = false
}

// drain runs the loop iterations while there is something to run at the current time
func (l *Loop) drain() {
	for l.runOnce() {
	}
}

// runOnce is one loop iteration: the due timers become ready, and all the callbacks,
// which are ready at the beginning of the iteration, are called. The callbacks scheduled
// by them will be called on the next iteration.
func (l *Loop) runOnce() bool {
	now := l.clock.Now()
	for len(l.timers) > 0 && !l.timers[0].fireT.After(now) {
		l.ready = append(l.ready, heap.Pop(&l.timers).(*handle))
	}
	if len(l.ready) == 0 {
		return false
	}
	batch := l.ready
	l.ready = nil
	for _, h := range batch {
		if f := h.f; f != nil {
			h.f = nil
			f()
		}
	}
	return true
}
