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
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/stretchr/testify/assert"
)

type ctxKey string

func isClosed(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func TestWithCancelErrorNilParent(t *testing.T) {
	assert.Panics(t, func() {
		WithCancelError(nil)
	})
}

func TestWithCancelErrorFirstWins(t *testing.T) {
	myErr := fmt.Errorf("first")
	for _, tc := range []struct {
		name   string
		errs   []error
		expErr error
	}{
		{name: "custom", errs: []error{myErr, context.Canceled}, expErr: myErr},
		{name: "nil", errs: []error{nil, myErr}, expErr: errors.ErrClosed},
		{name: "canceled", errs: []error{context.Canceled, nil}, expErr: context.Canceled},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cf := WithCancelError(context.Background())
			assert.Nil(t, ctx.Err())
			assert.False(t, isClosed(ctx))
			for _, err := range tc.errs {
				cf(err)
			}
			assert.True(t, isClosed(ctx))
			assert.Equal(t, tc.expErr, ctx.Err())
		})
	}
}

func TestWithCancelErrorParent(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	ctx, cf := WithCancelError(parent)
	<-ctx.Done()
	assert.Equal(t, context.DeadlineExceeded, ctx.Err())
	cf(fmt.Errorf("too late"))
	assert.Equal(t, context.DeadlineExceeded, ctx.Err())

	// the parent is already closed
	ctx, _ = WithCancelError(parent)
	<-ctx.Done()
	assert.Equal(t, context.DeadlineExceeded, ctx.Err())
}

func TestWithCancelErrorDeadlineAndValue(t *testing.T) {
	dl := time.Now().Add(time.Hour)
	parent, cancel := context.WithDeadline(context.WithValue(context.Background(), ctxKey("aa"), "bb"), dl)
	defer cancel()
	ctx, cf := WithCancelError(parent)
	cf(nil)

	d, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.Equal(t, dl, d)
	assert.Equal(t, "bb", ctx.Value(ctxKey("aa")))
}

func TestWithCancelErrorChildren(t *testing.T) {
	ctx, cf := WithCancelError(context.Background())
	child, cancel := context.WithCancel(ctx)
	defer cancel()
	cf(context.Canceled)
	<-child.Done()
	assert.Equal(t, context.Canceled, child.Err())
}
