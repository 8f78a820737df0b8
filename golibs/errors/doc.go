// Copyright 2023 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
/*
Package errors contains some very general class of errors that any package of the
module may use. The errors are supposed to be wrapped with fmt.Errorf("...: %w", err),
so the class of an error can be checked with errors.Is().

The package also contains some gRPC helper functions that allow encoding the general
errors, including the context cancellation and timeout ones, to the gRPC code-based
errors, so an outcome of an operation can be passed through a distributed system.
*/
package errors
