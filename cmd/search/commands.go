// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianSearch/cmd/search/config"
	"github.com/AleutianAI/AleutianSearch/pkg/logging"
	"github.com/AleutianAI/AleutianSearch/pkg/telemetry"
	"github.com/AleutianAI/AleutianSearch/pkg/ux"
	"github.com/AleutianAI/AleutianSearch/services/search/history"
)

// app holds state shared by every subcommand of one invocation.
type app struct {
	// Global flags
	configPath     string
	logLevel       string
	logJSON        bool
	traceExporter  string
	metricExporter string
	outputMode     string

	cfg      *config.SearchCLIConfig
	logger   *logging.Logger
	printer  *ux.Printer
	shutdown func(context.Context) error
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "search",
		Short: "Solve state-space search problems described as weighted graphs",
		Long: `search runs breadth-first, depth-first, uniform-cost, A* and greedy
best-first search over directed weighted graphs loaded from YAML files.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.aleutian/search.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&a.logJSON, "log-json", false, "write console logs as JSON")
	flags.StringVar(&a.traceExporter, "trace-exporter", "", "trace exporter: none, stdout, otlp")
	flags.StringVar(&a.metricExporter, "metric-exporter", "", "metric exporter: none, stdout, prometheus")
	flags.StringVarP(&a.outputMode, "output", "o", "", "output mode: rich, plain, machine (default: detect)")

	root.AddCommand(a.newSolveCmd(), a.newCheckCmd(), a.newHistoryCmd())
	return root, a
}

// setup loads config and wires logging, telemetry and output for the
// command about to run.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("log-json") {
		cfg.Logging.JSON = a.logJSON
	}
	if flags.Changed("trace-exporter") {
		cfg.Telemetry.TraceExporter = a.traceExporter
	}
	if flags.Changed("metric-exporter") {
		cfg.Telemetry.MetricExporter = a.metricExporter
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "search",
		JSON:    cfg.Logging.JSON,
		Output:  cmd.ErrOrStderr(),
	})
	a.logger.SetDefault()
	if path := a.logger.FilePath(); path != "" {
		a.logger.Debug("writing log file", slog.String("path", path))
	}

	tel := cfg.Telemetry
	tel.Writer = cmd.ErrOrStderr()
	shutdown, err := telemetry.Init(cmd.Context(), tel)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	a.shutdown = shutdown

	mode := ux.DetectMode(cmd.OutOrStdout())
	if a.outputMode != "" {
		mode = ux.ParseMode(a.outputMode)
	}
	a.printer = ux.NewPrinter(cmd.OutOrStdout(), mode)

	a.logger.Debug("command starting",
		slog.String("command", cmd.Name()),
		slog.String("trace_exporter", tel.TraceExporter),
		slog.String("metric_exporter", tel.MetricExporter),
	)
	return nil
}

// close flushes telemetry and the log file. Safe to call when setup never
// ran.
func (a *app) close() {
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdown(ctx); err != nil && a.logger != nil {
			a.logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
		a.shutdown = nil
	}
	if a.logger != nil {
		a.logger.Close()
	}
}

// openHistory opens the run archive configured for this invocation.
func (a *app) openHistory() (*history.Store, error) {
	path := a.cfg.History.Path
	if path == "" {
		path = history.DefaultPath()
	}
	cfg := history.DefaultConfig(path)
	cfg.Logger = a.logger.Slog()
	return history.Open(cfg)
}
