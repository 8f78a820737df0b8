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
	"context"
	"fmt"
	"time"

	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/solarisdb/timeguard/golibs/timeout"
	"github.com/solarisdb/timeguard/golibs/ulidutils"
	"github.com/solarisdb/timeguard/pkg/sched"
)

type (
	// Task is a function run by the loop in its own goroutine. The task gets the control
	// from the loop and returns it back at its suspension points, so only one task of a
	// loop runs at a time.
	Task struct {
		l        *Loop
		id       string
		name     string
		f        func(ctx context.Context) error
		ctx      context.Context
		resumeCh chan error
		state    taskState
		started  bool

		// mustCancel is the cancellation request, which is not delivered yet
		mustCancel bool
		// waitOn is the registration which resumes the suspended task
		waitOn  timeout.Future
		waiters []*handle
		err     error
	}

	taskState int
)

const (
	stateScheduled taskState = iota
	stateRunning
	stateSuspended
	stateDone
)

var _ sched.Task = (*Task)(nil)

// Spawn creates the new task, which runs f, and schedules its first step. The ctx provided
// to f carries the task (see sched.CurrentTask), the task is not cancelled if the parent
// ctx is closed.
func (l *Loop) Spawn(ctx context.Context, name string, f func(ctx context.Context) error) *Task {
	if f == nil {
		panic("loop.Spawn: the task function must not be nil")
	}
	t := &Task{l: l, id: ulidutils.NewID(l.Now()), name: name, f: f, resumeCh: make(chan error)}
	t.ctx = sched.NewContext(ctx, l, t)
	l.tasks[t] = struct{}{}
	l.CallSoon(t.step)
	l.log.Debugf("task %s is spawned", t)
	return t
}

// ID returns the task identifier
func (t *Task) ID() string {
	return t.id
}

// Name returns the task name provided to Spawn
func (t *Task) Name() string {
	return t.name
}

// Done returns whether the task is finished
func (t *Task) Done() bool {
	return t.state == stateDone
}

// Err returns the task result: the error returned by the task function. It is nil
// if the task is not finished yet.
func (t *Task) Err() error {
	if t.state != stateDone {
		return nil
	}
	return t.err
}

// String implements fmt.Stringer
func (t *Task) String() string {
	return fmt.Sprintf("%s(%s)", t.name, t.id)
}

// Cancel requests the task cancellation. The next suspension point of the task returns
// context.Canceled. If the task is suspended now, it is resumed on the next loop
// iteration. The function returns false if the task is already finished.
func (t *Task) Cancel() bool {
	if t.state == stateDone {
		return false
	}
	t.l.log.Tracef("cancelling task %s", t)
	t.mustCancel = true
	if t.state == stateSuspended {
		t.interrupt()
	}
	return true
}

// Wait suspends the calling task until the task t is finished and returns its result.
// If the task t is already finished, its result is returned immediately and ctx
// may be any context.
func (t *Task) Wait(ctx context.Context) error {
	if t.state == stateDone {
		return t.err
	}
	cur, err := runningTask(ctx)
	if err != nil {
		return err
	}
	if cur == t {
		return fmt.Errorf("the task %s cannot wait for itself: %w", t, errors.ErrInvalid)
	}
	if cur.l != t.l {
		return fmt.Errorf("the task %s belongs to another loop: %w", t, errors.ErrInvalid)
	}
	h := &handle{l: t.l, f: cur.wakeup, idx: -1}
	t.waiters = append(t.waiters, h)
	cur.waitOn = h
	if err := cur.suspend(); err != nil {
		return err
	}
	return t.err
}

// Sleep is the suspension point, which resumes the task from ctx after the duration d
// is elapsed on the loop clock. It returns context.Canceled if the task is cancelled
// before that.
func Sleep(ctx context.Context, d time.Duration) error {
	t, err := runningTask(ctx)
	if err != nil {
		return err
	}
	t.waitOn = t.l.CallLater(d, t.wakeup)
	return t.suspend()
}

// Yield is the suspension point, which lets the other ready tasks to run
func Yield(ctx context.Context) error {
	return Sleep(ctx, 0)
}

func runningTask(ctx context.Context) (*Task, error) {
	_, st, err := sched.CurrentTask(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := st.(*Task)
	if !ok || t.l.current != t {
		return nil, ErrNotRunning
	}
	return t, nil
}

// step gives the control to the task and waits until the task returns it back.
// It is always called by the loop.
func (t *Task) step() {
	l := t.l
	var raise error
	if t.mustCancel {
		t.mustCancel = false
		raise = context.Canceled
	}
	t.state = stateRunning
	l.current = t
	if !t.started {
		t.started = true
		go t.run(raise)
	} else {
		t.resumeCh <- raise
	}
	<-l.yieldCh
	l.current = nil

	if t.state == stateDone {
		l.finish(t)
		return
	}
	if t.mustCancel {
		// the task was cancelled while it was running
		t.interrupt()
	}
}

// interrupt resumes the suspended task on the next loop iteration, regardless of what
// the task is waiting for.
func (t *Task) interrupt() {
	if t.waitOn != nil {
		t.waitOn.Cancel()
		t.waitOn = nil
	}
	t.state = stateScheduled
	t.l.CallSoon(t.step)
}

// wakeup is the callback, which resumes the task when what it waits for happens
func (t *Task) wakeup() {
	if t.state != stateSuspended {
		return
	}
	t.waitOn = nil
	t.state = stateScheduled
	t.step()
}

// suspend is called by the task goroutine, it returns the control to the loop and
// waits until the loop resumes the task.
func (t *Task) suspend() error {
	t.state = stateSuspended
	t.l.yieldCh <- struct{}{}
	return <-t.resumeCh
}

// run is the task goroutine. If raise is not nil, the task was cancelled before it had
// a chance to start, so f is not called.
func (t *Task) run(raise error) {
	err := raise
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v: %w", t, r, errors.ErrInternal)
		}
		t.err = err
		t.state = stateDone
		t.l.yieldCh <- struct{}{}
	}()
	if err == nil {
		err = t.f(t.ctx)
	}
}

func (l *Loop) finish(t *Task) {
	delete(l.tasks, t)
	for _, h := range t.waiters {
		if h.f != nil {
			l.ready = append(l.ready, h)
		}
	}
	t.waiters = nil
	l.log.Debugf("task %s is finished, err=%v", t, t.err)
}
