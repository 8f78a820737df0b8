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

package scenario

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/solarisdb/timeguard/golibs/errors"
)

type (
	// Duration is time.Duration which is read from JSON or YAML as a string like "1.5s",
	// or as a number of nanoseconds.
	Duration time.Duration

	// Config describes one guarded run: the work of WorkTime is guarded by the timeout
	// of MaxTime, and optionally the task is cancelled from outside at CancelAt.
	Config struct {
		// Name identifies the scenario in the output
		Name string `json:"name"`
		// MaxTime is the guard timeout
		MaxTime Duration `json:"maxTime"`
		// WorkTime is the time the work sleeps before it is over
		WorkTime Duration `json:"workTime"`
		// CancelAt is the time the task is cancelled by someone else. Zero means
		// no external cancellation.
		CancelAt Duration `json:"cancelAt,omitempty"`
		// Fail makes the work to return ErrWorkFailed after WorkTime
		Fail bool `json:"fail,omitempty"`
		// Swallow makes the work to ignore the cancellation and complete normally
		Swallow bool `json:"swallow,omitempty"`
		// Expect is the outcome the scenario should end with, the empty value means
		// any outcome is fine.
		Expect Outcome `json:"expect,omitempty"`
	}
)

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		*d = Duration(time.Duration(val))
	case string:
		dur, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("could not parse duration %q: %w", val, errors.ErrInvalid)
		}
		*d = Duration(dur)
	default:
		return fmt.Errorf("the duration must be a string or a number, but it is %s: %w", string(b), errors.ErrInvalid)
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// String implements fmt.Stringer
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Validate checks whether the scenario can be run
func (c Config) Validate() error {
	if c.MaxTime < 0 {
		return fmt.Errorf("maxTime=%s must not be negative: %w", c.MaxTime, errors.ErrInvalid)
	}
	if c.WorkTime < 0 {
		return fmt.Errorf("workTime=%s must not be negative: %w", c.WorkTime, errors.ErrInvalid)
	}
	if c.CancelAt < 0 {
		return fmt.Errorf("cancelAt=%s must not be negative: %w", c.CancelAt, errors.ErrInvalid)
	}
	if c.Expect != "" && !c.Expect.Valid() {
		return fmt.Errorf("unknown expected outcome %q: %w", c.Expect, errors.ErrInvalid)
	}
	return nil
}

// String implements fmt.Stringer
func (c Config) String() string {
	return fmt.Sprintf("{name: %s, maxTime: %s, workTime: %s, cancelAt: %s, fail: %t, swallow: %t, expect: %s}",
		c.Name, c.MaxTime, c.WorkTime, c.CancelAt, c.Fail, c.Swallow, c.Expect)
}

// Defaults returns the reference scenarios. Each of them ends with its own outcome.
func Defaults() []Config {
	return []Config{
		{Name: "completes-in-time", MaxTime: Duration(time.Second), WorkTime: Duration(500 * time.Millisecond), Expect: OutcomeCompleted},
		{Name: "times-out", MaxTime: Duration(time.Second), WorkTime: Duration(1500 * time.Millisecond), Expect: OutcomeTimeout},
		{Name: "cancelled-outside", MaxTime: Duration(time.Second), WorkTime: Duration(1500 * time.Millisecond),
			CancelAt: Duration(250 * time.Millisecond), Expect: OutcomeCanceled},
		{Name: "fails", MaxTime: Duration(2 * time.Second), Fail: true, Expect: OutcomeFailed},
		{Name: "swallows-cancellation", MaxTime: Duration(time.Second), WorkTime: Duration(2 * time.Second),
			Swallow: true, Expect: OutcomeCompleted},
	}
}
