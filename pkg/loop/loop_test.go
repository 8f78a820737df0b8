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
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/stretchr/testify/assert"
)

func newFakeLoop() (*Loop, clockwork.FakeClock) {
	fc := clockwork.NewFakeClock()
	return New(WithClock(fc)), fc
}

func TestCallLaterOrder(t *testing.T) {
	l, fc := newFakeLoop()
	start := fc.Now()
	var res []string
	var at []time.Duration
	rec := func(s string) func() {
		return func() {
			res = append(res, s)
			at = append(at, l.Now().Sub(start))
		}
	}
	l.CallLater(2*time.Second, rec("c"))
	l.CallLater(time.Second, rec("a"))
	l.CallLater(time.Second, rec("b"))
	l.CallSoon(rec("soon"))
	assert.Equal(t, 3, l.Timers())

	assert.Nil(t, l.Advance(1500*time.Millisecond))
	assert.Equal(t, []string{"soon", "a", "b"}, res)
	assert.Equal(t, []time.Duration{0, time.Second, time.Second}, at)
	assert.Equal(t, 1500*time.Millisecond, l.Now().Sub(start))

	assert.Nil(t, l.Advance(time.Second))
	assert.Equal(t, []string{"soon", "a", "b", "c"}, res)
	assert.Equal(t, 2*time.Second, at[3])
	assert.Equal(t, 0, l.Timers())
}

func TestCallLaterCancel(t *testing.T) {
	l, _ := newFakeLoop()
	called := 0
	f := l.CallLater(time.Second, func() { called++ })
	f.Cancel()
	f.Cancel()
	assert.Equal(t, 0, l.Timers())
	assert.Nil(t, l.Advance(2*time.Second))
	assert.Equal(t, 0, called)

	f = l.CallLater(time.Second, func() { called++ })
	assert.Nil(t, l.Advance(time.Second))
	assert.Equal(t, 1, called)
	// disposing of the fired timer is a no-op
	f.Cancel()
	assert.Equal(t, 1, called)

	f = l.CallSoon(func() { called++ })
	f.Cancel()
	assert.Nil(t, l.RunUntilIdle())
	assert.Equal(t, 1, called)

	assert.Equal(t, 0, l.Timers())
	l.CallLater(time.Second, nil).Cancel()
	l.CallSoon(nil).Cancel()
	assert.Equal(t, 0, l.Timers())
}

func TestCallLaterCancelledByCallback(t *testing.T) {
	l, _ := newFakeLoop()
	called := false
	var second func()
	l.CallLater(time.Second, func() { second() })
	f := l.CallLater(time.Second, func() { called = true })
	second = f.Cancel
	assert.Nil(t, l.Advance(time.Second))
	assert.False(t, called)
}

func TestCallLaterNegative(t *testing.T) {
	l, fc := newFakeLoop()
	start := fc.Now()
	called := false
	l.CallLater(-time.Second, func() { called = true })
	assert.Nil(t, l.RunUntilIdle())
	assert.True(t, called)
	assert.Equal(t, start, l.Now())
}

func TestAdvanceErrors(t *testing.T) {
	l := New()
	assert.True(t, errors.Is(l.Advance(time.Second), errors.ErrInvalid))

	l, _ = newFakeLoop()
	assert.True(t, errors.Is(l.Advance(-time.Second), errors.ErrInvalid))
}

func TestRunRealClock(t *testing.T) {
	l := New()
	start := time.Now()
	var res []int
	l.CallLater(20*time.Millisecond, func() { res = append(res, 2) })
	l.CallLater(10*time.Millisecond, func() { res = append(res, 1) })
	assert.Nil(t, l.Run(context.Background()))
	assert.Equal(t, []int{1, 2}, res)
	assert.True(t, time.Since(start) >= 20*time.Millisecond)
}

func TestRunContextClosed(t *testing.T) {
	l := New()
	l.CallLater(time.Minute, func() {})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Equal(t, context.DeadlineExceeded, l.Run(ctx))
	assert.Equal(t, 1, l.Timers())
}

func TestRunFakeClockJumps(t *testing.T) {
	l, fc := newFakeLoop()
	start := fc.Now()
	fired := time.Duration(0)
	l.CallLater(time.Hour, func() { fired = l.Now().Sub(start) })
	assert.Nil(t, l.Run(context.Background()))
	assert.Equal(t, time.Hour, fired)
}

func TestRunning(t *testing.T) {
	l, _ := newFakeLoop()
	var errs []error
	l.CallSoon(func() {
		errs = append(errs, l.RunUntilIdle(), l.Advance(time.Second), l.Run(context.Background()), l.Shutdown(context.Background()))
	})
	assert.Nil(t, l.RunUntilIdle())
	assert.Len(t, errs, 4)
	for _, err := range errs {
		assert.Equal(t, ErrRunning, err)
	}
}
