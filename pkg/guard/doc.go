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

/*
Package guard provides the scoped timeout for the code running in a scheduler task (see
the sched package). When the guarded code does not finish in time, the guard cancels the
task it runs in, and turns exactly this cancellation into the *TimeoutError. A cancellation
requested by anyone else, and any other error, are returned unchanged:

	err := guard.Do(ctx, time.Second, func(ctx context.Context) error {
		return loop.Sleep(ctx, 2*time.Second)
	})
	switch {
	case guard.IsTimeout(err):
		// the guard timer fired
	case errors.Is(err, context.Canceled):
		// the task was cancelled by someone else
	}

The guard does not preempt the work: the cancellation is observed at the next suspension
point of the task. If the work ignores the cancellation and completes, the guard completes
normally too.

Enter and Exit are the two halves of Do for the code, which cannot be put into a closure:

	g, err := guard.Enter(ctx, time.Second)
	if err != nil {
		return err
	}
	defer func() { err = g.Exit(err) }()
*/
package guard
