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
package timeout

import (
	"container/heap"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type (
	// Future object allows to cancel a future execution request made by Call()
	Future interface {
		// Cancel disposes the execution request. The call is idempotent, and it is
		// a no-op if the function is already called.
		Cancel()
	}

	// Caller calls the functions scheduled by Call when their time comes. The time is
	// measured by the clockwork.Clock of the Caller. The functions are called one by one
	// in order of their fire time by the single watcher goroutine, which exists while
	// there are scheduled functions, so the functions must not block.
	Caller struct {
		clock    clockwork.Clock
		lock     sync.Mutex
		wakeCh   chan struct{}
		futures  futures
		seq      uint64
		watching bool
	}

	future struct {
		cc    *Caller
		f     func()
		fireT time.Time
		seq   uint64
		idx   int
	}

	futures []*future

	dummyFuture struct{}
)

var cc = NewCaller(clockwork.NewRealClock())

// VoidFuture maybe used to initialize a Future variable, without checking whether it is nil or not
var VoidFuture Future = dummyFuture{}

// NewCaller creates the new Caller which measures time by the clock provided.
func NewCaller(clock clockwork.Clock) *Caller {
	return &Caller{clock: clock, wakeCh: make(chan struct{}, 1)}
}

// Call schedules f to be called in timeout by the package Caller, which uses the real clock.
func Call(f func(), timeout time.Duration) Future {
	return cc.Call(f, timeout)
}

// Now returns the current time of the Caller clock
func (cc *Caller) Now() time.Time {
	return cc.clock.Now()
}

// Call schedules the function f to be called once after the timeout provided. A negative
// or zero timeout makes f to be called as soon as possible. The functions with the same
// fire time are called in order they were scheduled.
func (cc *Caller) Call(f func(), timeout time.Duration) Future {
	fu := &future{cc: cc, f: f, fireT: cc.clock.Now().Add(timeout), idx: -1}
	if f == nil {
		return fu
	}
	cc.lock.Lock()
	defer cc.lock.Unlock()
	cc.seq++
	fu.seq = cc.seq
	heap.Push(&cc.futures, fu)
	if !cc.watching {
		cc.watching = true
		go cc.watcher()
	} else if fu.idx == 0 {
		// the new head, the watcher must re-arm its timer
		cc.wake()
	}
	return fu
}

// Cancel cancels the future execution if not called yet
func (fu *future) Cancel() {
	cc := fu.cc
	cc.lock.Lock()
	defer cc.lock.Unlock()
	if fu.idx < 0 {
		return
	}
	fu.f = nil
	heap.Remove(&cc.futures, fu.idx)
}

// String implements fmt.Stringer
func (fu *future) String() string {
	fu.cc.lock.Lock()
	defer fu.cc.lock.Unlock()
	return fmt.Sprintf("{fireT: %v, scheduled: %t, assigned: %t}", fu.fireT, fu.idx >= 0, fu.f != nil)
}

func (cc *Caller) wake() {
	select {
	case cc.wakeCh <- struct{}{}:
	default:
	}
}

// due pops the functions which time has come. It returns the time to wait for the next
// function if there is nothing to call now, or false if the watcher must exit.
func (cc *Caller) due() ([]func(), time.Duration, bool) {
	cc.lock.Lock()
	defer cc.lock.Unlock()
	if len(cc.futures) == 0 {
		cc.watching = false
		return nil, 0, false
	}
	now := cc.clock.Now()
	var fs []func()
	for len(cc.futures) > 0 && !now.Before(cc.futures[0].fireT) {
		fu := heap.Pop(&cc.futures).(*future)
		fs = append(fs, fu.f)
		fu.f = nil
	}
	if len(fs) > 0 {
		return fs, 0, true
	}
	return nil, cc.futures[0].fireT.Sub(now), true
}

func (cc *Caller) watcher() {
	for {
		fs, wait, ok := cc.due()
		if !ok {
			return
		}
		for _, f := range fs {
			f()
		}
		if len(fs) > 0 {
			continue
		}
		tmr := cc.clock.NewTimer(wait)
		select {
		case <-tmr.Chan():
		case <-cc.wakeCh:
			tmr.Stop()
		}
	}
}

func (fs futures) Len() int {
	return len(fs)
}

func (fs futures) Less(i, j int) bool {
	if fs[i].fireT.Equal(fs[j].fireT) {
		return fs[i].seq < fs[j].seq
	}
	return fs[i].fireT.Before(fs[j].fireT)
}

func (fs futures) Swap(i, j int) {
	fs[i], fs[j] = fs[j], fs[i]
	fs[i].idx, fs[j].idx = i, j
}

func (fs *futures) Push(x any) {
	fu := x.(*future)
	fu.idx = len(*fs)
	*fs = append(*fs, fu)
}

func (fs *futures) Pop() any {
	last := len(*fs) - 1
	res := (*fs)[last]
	(*fs)[last] = nil
	*fs = (*fs)[:last]
	res.idx = -1
	return res
}

func (d dummyFuture) Cancel() {
}
