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
	"context"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/logrange/linker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/solarisdb/timeguard/golibs/logging"
	"github.com/solarisdb/timeguard/pkg/scenario"
	"github.com/solarisdb/timeguard/pkg/version"
)

type (
	// service runs the scenarios and reports their results to out
	service struct {
		Registry *prometheus.Registry `inject:""`

		runner *scenario.Runner
		out    io.Writer
		log    logging.Logger
	}
)

var (
	_ linker.Initializer = (*service)(nil)
	_ linker.Shutdowner  = (*service)(nil)
)

// Run is an entry point of the timeguard application. It runs the scenarios from cfg,
// prints the results and the gathered metrics to out. The function returns false if
// at least one scenario did not end with the outcome it expected.
func Run(ctx context.Context, cfg *Config, out io.Writer) (bool, error) {
	log := logging.NewLogger("timeguard")
	log.Infof("starting %s", version.BuildVersionString())
	log.Debugf("effective config:\n%s", spew.Sdump(cfg))
	defer log.Infof("timeguard is stopped")

	svc := &service{out: out, log: log}
	inj := linker.New()
	inj.Register(linker.Component{Name: "", Value: prometheus.NewRegistry()})
	inj.Register(linker.Component{Name: "", Value: svc})
	inj.Init(ctx)
	defer inj.Shutdown()

	ok := svc.run(ctx, cfg.Scenarios)
	if err := svc.printMetrics(); err != nil {
		return ok, err
	}
	return ok, ctx.Err()
}

// Init implements linker.Initializer
func (s *service) Init(ctx context.Context) error {
	m, err := scenario.NewMetrics(s.Registry)
	if err != nil {
		return fmt.Errorf("could not register the scenario metrics: %w", err)
	}
	s.runner = scenario.NewRunner(m)
	return nil
}

// Shutdown implements linker.Shutdowner
func (s *service) Shutdown() {
	s.log.Debugf("service is shut down")
}

func (s *service) run(ctx context.Context, cfgs []scenario.Config) bool {
	ok := true
	for _, res := range s.runner.RunAll(ctx, cfgs) {
		mark := "ok"
		if !res.OK() {
			mark = fmt.Sprintf("FAIL (expected %s)", res.Expect)
			ok = false
		}
		fmt.Fprintf(s.out, "%-24s %-10s %-10s %-18s %s\n", res.Name, res.Outcome, res.Elapsed, res.Code, mark)
		if res.Err != nil {
			s.log.Debugf("scenario %s error: %v", res.Name, res.Err)
		}
	}
	return ok
}

func (s *service) printMetrics() error {
	mfs, err := s.Registry.Gather()
	if err != nil {
		return fmt.Errorf("could not gather the metrics: %w", err)
	}
	fmt.Fprintln(s.out)
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(s.out, mf); err != nil {
			return err
		}
	}
	return nil
}
