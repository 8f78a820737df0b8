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

package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/solarisdb/timeguard/pkg/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConfigDefault(t *testing.T) {
	cfg, err := BuildConfig("")
	require.Nil(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Scenarios)
}

func TestBuildConfigFileAndEnv(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "timeguard.yaml")
	require.Nil(t, os.WriteFile(fn, []byte(`
logLevel: warn
scenarios:
  - name: slow
    maxTime: 1s
    workTime: 2s
    expect: timeout
`), 0644))
	t.Setenv("TIMEGUARD_LOGLEVEL", "debug")

	cfg, err := BuildConfig(fn)
	require.Nil(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []scenario.Config{{Name: "slow", MaxTime: scenario.Duration(time.Second),
		WorkTime: scenario.Duration(2 * time.Second), Expect: scenario.OutcomeTimeout}}, cfg.Scenarios)
	assert.Contains(t, cfg.String(), `"logLevel": "debug"`)
}

func TestBuildConfigErrors(t *testing.T) {
	_, err := BuildConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.Is(err, errors.ErrNotExist))

	t.Setenv("TIMEGUARD_LOGLEVEL", "loud")
	_, err = BuildConfig("")
	assert.True(t, errors.Is(err, errors.ErrInvalid))
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	ok, err := Run(context.Background(), &Config{LogLevel: "info", Scenarios: scenario.Defaults()}, &out)
	assert.Nil(t, err)
	assert.True(t, ok)
	for _, cfg := range scenario.Defaults() {
		assert.Contains(t, out.String(), cfg.Name)
	}
	assert.Contains(t, out.String(), `timeguard_scenario_outcomes_total{outcome="timeout"} 1`)
	assert.Contains(t, out.String(), "timeguard_scenario_elapsed_seconds_count 5")
}

func TestRunUnexpected(t *testing.T) {
	var out bytes.Buffer
	sc := scenario.Config{Name: "unexpected", MaxTime: scenario.Duration(time.Second),
		WorkTime: scenario.Duration(2 * time.Second), Expect: scenario.OutcomeCompleted}
	ok, err := Run(context.Background(), &Config{Scenarios: []scenario.Config{sc}}, &out)
	assert.Nil(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "FAIL (expected completed)")
}
