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
	"fmt"
	"time"

	"github.com/solarisdb/timeguard/golibs/timeout"
)

type (
	// handle is a callback scheduled in the loop. It is the timeout.Future returned
	// by CallLater and CallSoon.
	handle struct {
		l     *Loop
		f     func()
		fireT time.Time
		seq   uint64
		// idx is the position in the timers heap, -1 if the handle is not there
		idx int
	}

	handles []*handle
)

var _ timeout.Future = (*handle)(nil)

// Cancel disposes the callback. It is a no-op if the callback is already called.
func (h *handle) Cancel() {
	h.f = nil
	if h.idx >= 0 {
		heap.Remove(&h.l.timers, h.idx)
	}
}

// String implements fmt.Stringer
func (h *handle) String() string {
	return fmt.Sprintf("{seq: %d, fireT: %s, pending: %t}", h.seq, h.fireT.Format(time.RFC3339Nano), h.f != nil)
}

func (hs handles) Len() int {
	return len(hs)
}

func (hs handles) Less(i, j int) bool {
	if hs[i].fireT.Equal(hs[j].fireT) {
		return hs[i].seq < hs[j].seq
	}
	return hs[i].fireT.Before(hs[j].fireT)
}

func (hs handles) Swap(i, j int) {
	hs[i], hs[j] = hs[j], hs[i]
	hs[i].idx, hs[j].idx = i, j
}

func (hs *handles) Push(x any) {
	h := x.(*handle)
	h.idx = len(*hs)
	*hs = append(*hs, h)
}

func (hs *handles) Pop() any {
	last := len(*hs) - 1
	h := (*hs)[last]
	(*hs)[last] = nil
	*hs = (*hs)[:last]
	h.idx = -1
	return h
}
