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
package logging

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/solarisdb/timeguard/golibs/errors"
)

type (
	// Logger is a named logger. The messages are formatted like fmt.Printf does,
	// and dropped if their level is above the current one (see SetLevel).
	Logger interface {
		Warnf(format string, args ...interface{})
		Infof(format string, args ...interface{})
		Debugf(format string, args ...interface{})
		// Tracef is for the messages too verbose even for DEBUG, like every
		// scheduler step
		Tracef(format string, args ...interface{})
		Errorf(format string, args ...interface{})
	}

	// Config struct allows to set the current logger settings
	Config struct {
		// NewLoggerF points to the function to construct new Logger
		NewLoggerF func(loggerName string) Logger
		// SetLevelF points to the function to set specific logger level
		SetLevelF func(lvl Level)
		// GetLevelF returns the current log level
		GetLevelF func() Level
	}

	// Level is one of ERROR, WARN, INFO, DEBUG, of TRACE
	Level int32
)

const (
	ERROR Level = iota
	WARN
	INFO
	DEBUG
	TRACE
)

var (
	loggerSettings atomic.Value
	levels         = map[Level]string{ERROR: "ERROR", DEBUG: "DEBUG", INFO: "INFO", WARN: "WARN", TRACE: "TRACE"}
)

func init() {
	// init with the std logger
	SetConfig(Config{NewLoggerF: stdNewLogger, SetLevelF: stdSetLevel, GetLevelF: stdGetLevel})
}

// NewLogger returns the new instance of Logger for the caller name.
func NewLogger(loggerName string) Logger {
	return loggerSettings.Load().(Config).NewLoggerF(loggerName)
}

// SetLevel allows to set the logging level
func SetLevel(lvl Level) {
	loggerSettings.Load().(Config).SetLevelF(lvl)
}

// GetLevel returns the current log level
func GetLevel() Level {
	return loggerSettings.Load().(Config).GetLevelF()
}

// SetConfig allows to overwrite the current logger settings
func SetConfig(cfg Config) {
	loggerSettings.Store(cfg)
}

// ParseLevel returns the Level by its name. The name is case-insensitive,
// so "debug", "Debug" and "DEBUG" are the same level.
func ParseLevel(s string) (Level, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for l, n := range levels {
		if n == s {
			return l, nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q, expecting one of ERROR, WARN, INFO, DEBUG, TRACE: %w", s, errors.ErrInvalid)
}

// String implements fmt.Stringer
func (l Level) String() string {
	if n, ok := levels[l]; ok {
		return n
	}
	return fmt.Sprintf("Level(%d)", int32(l))
}
