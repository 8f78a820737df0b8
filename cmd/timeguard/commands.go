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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	gctx "github.com/solarisdb/timeguard/golibs/context"
	"github.com/solarisdb/timeguard/golibs/logging"
	"github.com/solarisdb/timeguard/pkg/app"
	"github.com/solarisdb/timeguard/pkg/scenario"
	"github.com/solarisdb/timeguard/pkg/version"
	"github.com/spf13/cobra"
)

type (
	runFlags struct {
		cfgFile  string
		name     string
		maxTime  time.Duration
		workTime time.Duration
		cancelAt time.Duration
		fail     bool
		swallow  bool
		expect   string
	}
)

// errUnexpected is returned when a scenario ended not with the outcome it expected,
// the results are already printed, so the error only sets the exit code.
var errUnexpected = fmt.Errorf("unexpected scenario outcome")

var scenarioFlags = []string{"name", "max-time", "work-time", "cancel-at", "fail", "swallow", "expect"}

func newRootCmd() *cobra.Command {
	var logLevel string
	rootCmd := &cobra.Command{
		Use:   "timeguard",
		Short: "Runs the work guarded by the scoped timeouts and reports how it ended",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: error, warn, info, debug or trace")
	rootCmd.AddCommand(newRunCmd(), newDefaultsCmd(), newVersionCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	var rf runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenario described by the flags, or the scenarios from the config file",
		Example: "  timeguard run --max-time 1s --work-time 1.5s\n" +
			"  timeguard run --config scenarios.yaml",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.BuildConfig(rf.cfgFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-level") {
				if err := setupLogging(cfg.LogLevel); err != nil {
					return err
				}
			}
			if rf.cfgFile == "" || anyChanged(cmd, scenarioFlags...) {
				cfg.Scenarios = append(cfg.Scenarios, rf.scenario())
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runApp(cfg, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&rf.cfgFile, "config", "f", "", "the YAML or JSON file with the scenarios")
	f.StringVar(&rf.name, "name", "cli", "the scenario name")
	f.DurationVar(&rf.maxTime, "max-time", time.Second, "the guard timeout")
	f.DurationVar(&rf.workTime, "work-time", 500*time.Millisecond, "the time the guarded work takes")
	f.DurationVar(&rf.cancelAt, "cancel-at", 0, "cancel the task from outside at the time, 0 means never")
	f.BoolVar(&rf.fail, "fail", false, "the work fails after the work time")
	f.BoolVar(&rf.swallow, "swallow", false, "the work ignores the cancellation")
	f.StringVar(&rf.expect, "expect", "", "the expected outcome: completed, timeout, canceled or failed")
	return cmd
}

func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Run the reference scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.BuildConfig("")
			if err != nil {
				return err
			}
			cfg.Scenarios = scenario.Defaults()
			return runApp(cfg, cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.BuildVersionString())
		},
	}
}

func (rf runFlags) scenario() scenario.Config {
	return scenario.Config{
		Name:     rf.name,
		MaxTime:  scenario.Duration(rf.maxTime),
		WorkTime: scenario.Duration(rf.workTime),
		CancelAt: scenario.Duration(rf.cancelAt),
		Fail:     rf.fail,
		Swallow:  rf.swallow,
		Expect:   scenario.Outcome(rf.expect),
	}
}

func runApp(cfg *app.Config, out io.Writer) error {
	ctx := gctx.NewSignalsContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ok, err := app.Run(ctx, cfg, out)
	if err != nil {
		return err
	}
	if !ok {
		return errUnexpected
	}
	return nil
}

func setupLogging(level string) error {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	logging.SetConfig(logging.NewZapConfig(nil))
	logging.SetLevel(lvl)
	return nil
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}
