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
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type (
	stdLogger struct {
		name string
	}
)

var (
	stdMx     sync.Mutex
	stdWriter io.Writer = os.Stderr
	stdLevel            = int32(INFO)
)

func stdNewLogger(name string) Logger {
	return &stdLogger{name: name}
}

func stdSetLevel(lvl Level) {
	atomic.StoreInt32(&stdLevel, int32(lvl))
}

func stdGetLevel() Level {
	return Level(atomic.LoadInt32(&stdLevel))
}

func (sl *stdLogger) Warnf(format string, args ...interface{}) {
	sl.logf(WARN, format, args)
}

func (sl *stdLogger) Infof(format string, args ...interface{}) {
	sl.logf(INFO, format, args)
}

func (sl *stdLogger) Debugf(format string, args ...interface{}) {
	sl.logf(DEBUG, format, args)
}

func (sl *stdLogger) Tracef(format string, args ...interface{}) {
	sl.logf(TRACE, format, args)
}

func (sl *stdLogger) Errorf(format string, args ...interface{}) {
	sl.logf(ERROR, format, args)
}

// logf writes one line "hh:mm:ss.uuuuuu LEVEL name: message"
func (sl *stdLogger) logf(lvl Level, format string, args []interface{}) {
	if stdGetLevel() < lvl {
		return
	}
	var buf bytes.Buffer
	buf.WriteString(time.Now().Format("15:04:05.000000"))
	fmt.Fprintf(&buf, " %-5s %s: ", lvl, sl.name)
	fmt.Fprintf(&buf, format, args...)
	if b := buf.Bytes(); b[len(b)-1] != '\n' {
		buf.WriteByte('\n')
	}
	stdMx.Lock()
	defer stdMx.Unlock()
	_, _ = stdWriter.Write(buf.Bytes())
}
