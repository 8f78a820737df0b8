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

package logging

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	zapLogger struct {
		s   *zap.SugaredLogger
		lvl *int32
	}
)

// NewZapConfig returns the Config which makes NewLogger() build the zap based loggers.
// All the loggers are created from the core provided, and named by the caller name.
// If core is nil, the console encoder writing to os.Stderr is used. The level is
// controlled by the Config (SetLevel), the core should not filter the messages
// below the zapcore.DebugLevel.
//
// Usage:
//
//	logging.SetConfig(logging.NewZapConfig(nil))
//	logging.SetLevel(logging.DEBUG)
func NewZapConfig(core zapcore.Core) Config {
	if core == nil {
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(defaultEncoderConfig()), zapcore.Lock(zapcore.AddSync(os.Stderr)), zapcore.DebugLevel)
	}
	root := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	lvl := int32(INFO)
	return Config{
		NewLoggerF: func(name string) Logger {
			return &zapLogger{s: root.Named(name).Sugar(), lvl: &lvl}
		},
		SetLevelF: func(l Level) { atomic.StoreInt32(&lvl, int32(l)) },
		GetLevelF: func() Level { return Level(atomic.LoadInt32(&lvl)) },
	}
}

func defaultEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000000"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

func (zl *zapLogger) enabled(l Level) bool {
	return atomic.LoadInt32(zl.lvl) >= int32(l)
}

// Warnf is a function for printing Warn-level messages from the source code
func (zl *zapLogger) Warnf(format string, args ...interface{}) {
	if zl.enabled(WARN) {
		zl.s.Warnf(format, args...)
	}
}

// Infof is a function for printing Info-level messages from the source code
func (zl *zapLogger) Infof(format string, args ...interface{}) {
	if zl.enabled(INFO) {
		zl.s.Infof(format, args...)
	}
}

// Debugf is a function for printing Debug-level messages from the source code
func (zl *zapLogger) Debugf(format string, args ...interface{}) {
	if zl.enabled(DEBUG) {
		zl.s.Debugf(format, args...)
	}
}

// Tracef prints the Trace-level messages. zap has no trace level, so the messages
// go to the debug level with the "trace" field.
func (zl *zapLogger) Tracef(format string, args ...interface{}) {
	if zl.enabled(TRACE) {
		zl.s.With("trace", true).Debugf(format, args...)
	}
}

// Errorf is a function for pretty printing Error-level messages from the source code
func (zl *zapLogger) Errorf(format string, args ...interface{}) {
	if zl.enabled(ERROR) {
		zl.s.Errorf(format, args...)
	}
}
