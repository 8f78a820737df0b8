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
	"testing"
	"time"

	"github.com/ghodss/yaml"
	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/stretchr/testify/assert"
)

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	assert.Nil(t, json.Unmarshal([]byte(`"1.5s"`), &d))
	assert.Equal(t, Duration(1500*time.Millisecond), d)
	assert.Nil(t, json.Unmarshal([]byte(`250000000`), &d))
	assert.Equal(t, Duration(250*time.Millisecond), d)
	assert.True(t, errors.Is(json.Unmarshal([]byte(`"1.5 parsecs"`), &d), errors.ErrInvalid))
	assert.True(t, errors.Is(json.Unmarshal([]byte(`true`), &d), errors.ErrInvalid))

	b, err := json.Marshal(Duration(time.Second))
	assert.Nil(t, err)
	assert.Equal(t, `"1s"`, string(b))
}

func TestConfigYAML(t *testing.T) {
	var cfg Config
	err := yaml.Unmarshal([]byte(`
name: yaml
maxTime: 1s
workTime: 2s
cancelAt: 300ms
swallow: true
expect: completed
`), &cfg)
	assert.Nil(t, err)
	assert.Equal(t, Config{Name: "yaml", MaxTime: Duration(time.Second), WorkTime: Duration(2 * time.Second),
		CancelAt: Duration(300 * time.Millisecond), Swallow: true, Expect: OutcomeCompleted}, cfg)
	assert.Nil(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	assert.True(t, errors.Is(Config{MaxTime: -1}.Validate(), errors.ErrInvalid))
	assert.True(t, errors.Is(Config{WorkTime: -1}.Validate(), errors.ErrInvalid))
	assert.True(t, errors.Is(Config{CancelAt: -1}.Validate(), errors.ErrInvalid))
	assert.True(t, errors.Is(Config{Expect: "finished"}.Validate(), errors.ErrInvalid))
	assert.Nil(t, Config{}.Validate())
	for _, cfg := range Defaults() {
		assert.Nil(t, cfg.Validate(), cfg.Name)
	}
}
