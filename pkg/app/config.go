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
	"encoding/json"
	"fmt"

	"github.com/solarisdb/timeguard/golibs/config"
	"github.com/solarisdb/timeguard/golibs/logging"
	"github.com/solarisdb/timeguard/pkg/scenario"
)

type (
	// Config defines the timeguard run configuration
	Config struct {
		// LogLevel is one of error, warn, info, debug or trace
		LogLevel string `json:"logLevel"`
		// Scenarios are run one by one in the order they are listed
		Scenarios []scenario.Config `json:"scenarios"`
	}
)

// EnvPrefix is the prefix of the environment variables, which overwrite the configuration,
// like TIMEGUARD_LOGLEVEL=debug
const EnvPrefix = "TIMEGUARD"

// getDefaultConfig returns the default config
func getDefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
	}
}

// BuildConfig builds the configuration: the defaults are overwritten by the values from
// cfgFile (if provided), and then by the environment variables.
func BuildConfig(cfgFile string) (*Config, error) {
	log := logging.NewLogger("timeguard.ConfigBuilder")
	log.Infof("trying to build config. cfgFile=%s", cfgFile)
	e := config.NewEnricher(*getDefaultConfig())
	fe := config.NewEnricher(Config{})
	err := fe.LoadFromFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("could not read data from the file %s: %w", cfgFile, err)
	}
	// overwrite default
	if err := e.ApplyOther(fe); err != nil {
		return nil, err
	}
	if err := e.ApplyEnvVariables(EnvPrefix, "_"); err != nil {
		return nil, fmt.Errorf("could not apply the environment variables: %w", err)
	}
	cfg := e.Value()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the log level and the scenarios
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for i, sc := range c.Scenarios {
		if err := sc.Validate(); err != nil {
			return fmt.Errorf("scenario #%d(%s) is invalid: %w", i, sc.Name, err)
		}
	}
	return nil
}

// String implements fmt.Stringify interface in a pretty console form
func (c *Config) String() string {
	b, _ := json.MarshalIndent(*c, "", "  ")
	return string(b)
}
