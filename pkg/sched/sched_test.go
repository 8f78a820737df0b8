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

package sched

import (
	"context"
	"testing"
	"time"

	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/solarisdb/timeguard/golibs/timeout"
	"github.com/stretchr/testify/assert"
)

type (
	testTask    string
	testRuntime struct{}
)

func (t testTask) ID() string   { return string(t) }
func (t testTask) Cancel() bool { return true }

func (testRuntime) CallLater(time.Duration, func()) timeout.Future { return timeout.VoidFuture }

func TestCurrentTask(t *testing.T) {
	_, _, err := CurrentTask(context.Background())
	assert.True(t, errors.Is(err, ErrNoTask))
	assert.True(t, errors.Is(err, errors.ErrInvalid))

	var nilCtx context.Context
	_, _, err = CurrentTask(nilCtx)
	assert.Equal(t, ErrNoTask, err)

	ctx := NewContext(context.Background(), testRuntime{}, testTask("t1"))
	rt, task, err := CurrentTask(ctx)
	assert.Nil(t, err)
	assert.Equal(t, testRuntime{}, rt)
	assert.Equal(t, "t1", task.ID())

	// the nearest task wins
	ctx = NewContext(ctx, testRuntime{}, testTask("t2"))
	_, task, _ = CurrentTask(ctx)
	assert.Equal(t, "t2", task.ID())
}

func TestNewContextNil(t *testing.T) {
	assert.Panics(t, func() {
		NewContext(context.Background(), nil, testTask("t"))
	})
	assert.Panics(t, func() {
		NewContext(context.Background(), testRuntime{}, nil)
	})
}
