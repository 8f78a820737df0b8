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
Package loop contains a single-threaded cooperative scheduler. Exactly one task runs at
a time: a task is a goroutine, which gets the control from the loop and gives it back
at its suspension points (Sleep, Yield, Task.Wait). Everything else, timers and task
steps, runs as callbacks in the goroutine which drives the loop.

The loop time is measured by a clockwork.Clock. With the real clock Run() sleeps until
the next timer, with a fake clock the loop time is simulated: Advance() moves it forward
firing the timers in order, each one at its own time, and Run() jumps from one timer to
the next one.

Cancellation is one-shot: Task.Cancel() makes the next suspension point of the task
return context.Canceled once. If the task ignores the error, it continues to run.

The loop is not safe for concurrent use. Its functions must be called either from the
tasks and callbacks run by the loop, or from the driving goroutine while no driver
(RunUntilIdle, Advance, Run...) is running.

	l := loop.New(loop.WithClock(clockwork.NewFakeClock()))
	t := l.Spawn(ctx, "worker", func(ctx context.Context) error {
		return loop.Sleep(ctx, time.Second)
	})
	l.Advance(time.Second)
	fmt.Println(t.Done(), t.Err()) // true <nil>
*/
package loop
