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
package ulidutils

import (
	"testing"
	"time"

	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	id1 := NewID(now)
	id2 := NewID(now)
	assert.Len(t, id1, 26)
	assert.Less(t, id1, id2)

	tm, err := Time(id1)
	assert.Nil(t, err)
	assert.True(t, now.Equal(tm))
	assert.Less(t, id2, NewID(now.Add(time.Millisecond)))
}

func TestTimeMalformed(t *testing.T) {
	_, err := Time("not-an-id")
	assert.True(t, errors.Is(err, errors.ErrInvalid))
}
