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
/*
Package logging is the logging facade of the module. The code gets its loggers by
NewLogger(name) and never depends on a logging engine, the engine is chosen once by
SetConfig:

  - the std back end (default) writes plain lines to os.Stderr;
  - NewZapConfig makes the loggers on top of go.uber.org/zap.

The level is global for all the loggers of the back end, see SetLevel and ParseLevel.
*/
package logging
