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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the scenario outcomes and observes the time the scenarios take on
// the loop clock.
type Metrics struct {
	outcomes *prometheus.CounterVec
	elapsed  prometheus.Histogram
}

// NewMetrics creates the Metrics and registers them in reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timeguard_scenario_outcomes_total",
				Help: "Total number of the guarded runs by their outcome.",
			},
			[]string{"outcome"},
		),
		elapsed: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "timeguard_scenario_elapsed_seconds",
				Help:    "The loop time taken by the guarded runs in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	for _, c := range []prometheus.Collector{m.outcomes, m.elapsed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(o Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(string(o)).Inc()
	m.elapsed.Observe(elapsed.Seconds())
}
