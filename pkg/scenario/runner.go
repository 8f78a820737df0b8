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
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/solarisdb/timeguard/golibs/logging"
	"github.com/solarisdb/timeguard/pkg/guard"
	"github.com/solarisdb/timeguard/pkg/loop"
	"google.golang.org/grpc/codes"
)

type (
	// Outcome is the class of the guarded run result
	Outcome string

	// Result describes how the scenario is over
	Result struct {
		Name    string
		Outcome Outcome
		// Expect is copied from the scenario Config
		Expect Outcome
		Err    error
		// Elapsed is the loop time from the start till the end of the run
		Elapsed time.Duration
		// Code is the gRPC status code the error would be reported with
		Code codes.Code
	}

	// Runner runs the scenarios, every scenario in its own loop with the fake clock,
	// so the scenarios take no real time.
	Runner struct {
		metrics *Metrics
		logger  logging.Logger
	}
)

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeCanceled  Outcome = "canceled"
	OutcomeFailed    Outcome = "failed"
)

// ErrWorkFailed is returned by the work of the scenario with Fail set
var ErrWorkFailed = fmt.Errorf("the work failed: %w", errors.ErrInternal)

// Valid returns whether o is one of the known outcomes
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeCompleted, OutcomeTimeout, OutcomeCanceled, OutcomeFailed:
		return true
	}
	return false
}

// Classify returns the outcome for the result of a guarded run
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeCompleted
	case guard.IsTimeout(err):
		return OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	}
	return OutcomeFailed
}

// OK returns whether the result matches the expected outcome
func (r Result) OK() bool {
	return r.Expect == "" || r.Expect == r.Outcome
}

// String implements fmt.Stringer
func (r Result) String() string {
	return fmt.Sprintf("%s: outcome=%s, elapsed=%s, code=%s, err=%v", r.Name, r.Outcome, r.Elapsed, r.Code, r.Err)
}

// NewRunner creates the new Runner. The metrics may be nil.
func NewRunner(metrics *Metrics) *Runner {
	return &Runner{metrics: metrics, logger: logging.NewLogger("scenario.Runner")}
}

// Run runs the scenario cfg and returns its result. The ctx limits the run in the
// real time.
func (r *Runner) Run(ctx context.Context, cfg Config) Result {
	res := Result{Name: cfg.Name, Expect: cfg.Expect}
	if err := cfg.Validate(); err != nil {
		res.Err = err
	} else {
		res.Elapsed, res.Err = r.run(ctx, cfg)
	}
	res.Outcome = Classify(res.Err)
	res.Code = errors.GRPCStatusCode(res.Err)
	r.metrics.observe(res.Outcome, res.Elapsed)
	r.logger.Debugf("scenario %s is over: %s", cfg, res)
	return res
}

// RunAll runs the scenarios one by one
func (r *Runner) RunAll(ctx context.Context, cfgs []Config) []Result {
	res := make([]Result, 0, len(cfgs))
	for _, cfg := range cfgs {
		res = append(res, r.Run(ctx, cfg))
	}
	return res
}

func (r *Runner) run(ctx context.Context, cfg Config) (time.Duration, error) {
	l := loop.New(loop.WithClock(clockwork.NewFakeClock()), loop.WithLogger(logging.NewLogger("loop."+cfg.Name)))
	start := l.Now()
	task := l.Spawn(ctx, cfg.Name, func(ctx context.Context) error {
		return guard.Do(ctx, time.Duration(cfg.MaxTime), func(ctx context.Context) error {
			return work(ctx, cfg)
		})
	})
	if cfg.CancelAt > 0 {
		l.CallLater(time.Duration(cfg.CancelAt), func() {
			task.Cancel()
		})
	}
	err := l.RunUntilComplete(ctx, task)
	return l.Now().Sub(start), err
}

func work(ctx context.Context, cfg Config) error {
	if cfg.WorkTime > 0 {
		err := loop.Sleep(ctx, time.Duration(cfg.WorkTime))
		if err != nil && (!cfg.Swallow || !errors.Is(err, context.Canceled)) {
			return err
		}
	}
	if cfg.Fail {
		return ErrWorkFailed
	}
	return nil
}
