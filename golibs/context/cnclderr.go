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
package context

import (
	ctx "context"
	"sync"
	"time"

	"github.com/solarisdb/timeguard/golibs/errors"
)

type (
	cancelErrCtx struct {
		parent ctx.Context
		doneCh chan struct{}
		stop   func() bool

		mu  sync.Mutex
		err error
	}

	// CancelErrFunc closes the context with the error provided, nil is turned into
	// errors.ErrClosed. The first call wins, the later ones are no-ops.
	CancelErrFunc func(err error)
)

var _ ctx.Context = (*cancelErrCtx)(nil)

// WithCancelError returns the child of parent, which Err() is the error provided to
// the CancelErrFunc, unlike the standard contexts which always report context.Canceled.
// If the parent is closed first, the child reports the parent's error. The CancelErrFunc
// must be called when the context is not needed anymore.
func WithCancelError(parent ctx.Context) (ctx.Context, CancelErrFunc) {
	if parent == nil {
		panic("cannot create context from nil parent")
	}
	c := &cancelErrCtx{parent: parent, doneCh: make(chan struct{})}
	c.mu.Lock()
	c.stop = ctx.AfterFunc(parent, func() {
		c.cancel(parent.Err())
	})
	c.mu.Unlock()
	return c, c.cancel
}

func (c *cancelErrCtx) Deadline() (time.Time, bool) {
	return c.parent.Deadline()
}

func (c *cancelErrCtx) Done() <-chan struct{} {
	return c.doneCh
}

func (c *cancelErrCtx) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *cancelErrCtx) Value(key any) any {
	return c.parent.Value(key)
}

func (c *cancelErrCtx) cancel(err error) {
	if err == nil {
		err = errors.ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return
	}
	c.err = err
	close(c.doneCh)
	c.stop()
}
