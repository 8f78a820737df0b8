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

package version

import (
	"fmt"
	"runtime"
)

// Version and GitCommit are set by the linker flags, like
// -ldflags "-X github.com/solarisdb/timeguard/pkg/version.Version=v0.1.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// BuildVersionString returns the version, commit and the Go runtime the binary is built with
func BuildVersionString() string {
	return fmt.Sprintf("timeguard %s (commit %s, %s %s/%s)", Version, GitCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
