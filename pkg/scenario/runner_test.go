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
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestDefaults(t *testing.T) {
	r := NewRunner(nil)
	res := r.RunAll(context.Background(), Defaults())
	require.Equal(t, 5, len(res))
	for _, rs := range res {
		assert.True(t, rs.OK(), "%s", rs)
	}

	assert.Equal(t, 500*time.Millisecond, res[0].Elapsed)
	assert.Equal(t, codes.OK, res[0].Code)

	assert.Equal(t, time.Second, res[1].Elapsed)
	assert.Equal(t, codes.DeadlineExceeded, res[1].Code)

	assert.Equal(t, 250*time.Millisecond, res[2].Elapsed)
	assert.Equal(t, context.Canceled, res[2].Err)
	assert.Equal(t, codes.Canceled, res[2].Code)

	assert.Equal(t, time.Duration(0), res[3].Elapsed)
	assert.Equal(t, ErrWorkFailed, res[3].Err)
	assert.Equal(t, codes.Internal, res[3].Code)

	assert.Equal(t, time.Second, res[4].Elapsed)
	assert.Nil(t, res[4].Err)
}

func TestRunInvalid(t *testing.T) {
	res := NewRunner(nil).Run(context.Background(), Config{Name: "bad", MaxTime: Duration(-time.Second)})
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.True(t, errors.Is(res.Err, errors.ErrInvalid))
	assert.Equal(t, codes.InvalidArgument, res.Code)
}

func TestRunFailAfterWork(t *testing.T) {
	res := NewRunner(nil).Run(context.Background(), Config{Name: "late-fail", MaxTime: Duration(time.Second),
		WorkTime: Duration(100 * time.Millisecond), Fail: true, Expect: OutcomeTimeout})
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, 100*time.Millisecond, res.Elapsed)
	assert.False(t, res.OK())
}

func TestCancelAfterTimeout(t *testing.T) {
	// the external cancellation is planned after the guard fires, so it is never seen
	res := NewRunner(nil).Run(context.Background(), Config{Name: "late-cancel", MaxTime: Duration(time.Second),
		WorkTime: Duration(3 * time.Second), CancelAt: Duration(2 * time.Second)})
	assert.Equal(t, OutcomeTimeout, res.Outcome)
	assert.Equal(t, time.Second, res.Elapsed)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeCompleted, Classify(nil))
	assert.Equal(t, OutcomeCanceled, Classify(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.Equal(t, OutcomeFailed, Classify(context.DeadlineExceeded))
	assert.True(t, OutcomeTimeout.Valid())
	assert.False(t, Outcome("").Valid())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.Nil(t, err)
	NewRunner(m).RunAll(context.Background(), Defaults())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues(string(OutcomeCompleted))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(string(OutcomeTimeout))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(string(OutcomeCanceled))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(string(OutcomeFailed))))
	assert.Nil(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP timeguard_scenario_outcomes_total Total number of the guarded runs by their outcome.
# TYPE timeguard_scenario_outcomes_total counter
timeguard_scenario_outcomes_total{outcome="canceled"} 1
timeguard_scenario_outcomes_total{outcome="completed"} 2
timeguard_scenario_outcomes_total{outcome="failed"} 1
timeguard_scenario_outcomes_total{outcome="timeout"} 1
`), "timeguard_scenario_outcomes_total"))

	_, err = NewMetrics(reg)
	assert.NotNil(t, err)
}
