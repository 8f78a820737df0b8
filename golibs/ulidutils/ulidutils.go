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
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/solarisdb/timeguard/golibs/errors"
)

// NewID returns the new ULID string, which time part is t. The schedulers pass their
// clock time, so the IDs of the tasks created on a fake clock carry the simulated time.
// The IDs made within the same millisecond grow monotonically.
func NewID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}

// Time returns the time encoded in the id, made by NewID
func Time(id string) (time.Time, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed id %q: %s: %w", id, err, errors.ErrInvalid)
	}
	return ulid.Time(u.Time()), nil
}
