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
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianSearch/pkg/ux"
	"github.com/AleutianAI/AleutianSearch/services/search"
	"github.com/AleutianAI/AleutianSearch/services/search/conformance"
	"github.com/AleutianAI/AleutianSearch/services/search/graphproblem"
)

func (a *app) newCheckCmd() *cobra.Command {
	var maxStates int

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Check a problem file against the problem contract",
		Long: `check walks every state reachable from the start node and reports
negative costs, nondeterministic successors and heuristic estimates that are
negative or non-zero at a goal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-states") {
				a.cfg.Search.CheckMaxStates = maxStates
			}
			return a.runCheck(cmd, args[0])
		},
	}
	cmd.Flags().IntVar(&maxStates, "max-states", 0, "stop after this many states (default from config, 0 = unlimited)")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, path string) error {
	g, err := graphproblem.Load(path)
	if err != nil {
		return err
	}

	var heuristic search.Heuristic[string, string]
	if g.HasHeuristic() {
		heuristic = g.Heuristic()
	}

	cfg := conformance.DefaultConfig()
	cfg.MaxStates = a.cfg.Search.CheckMaxStates
	cfg.Logger = a.logger.Slog()

	report, err := conformance.Check[string, string](cmd.Context(), g, heuristic, cfg)
	if err != nil {
		return err
	}

	a.printer.Title(fmt.Sprintf("check %s", g.Name()))
	a.printer.Fields([]ux.Field{
		{Key: "states", Value: strconv.Itoa(report.StatesVisited)},
		{Key: "transitions", Value: strconv.Itoa(report.TransitionsChecked)},
		{Key: "goals", Value: strconv.Itoa(report.GoalsFound)},
		{Key: "truncated", Value: strconv.FormatBool(report.Truncated)},
		{Key: "violations", Value: strconv.Itoa(len(report.Violations))},
	})

	if report.OK() {
		a.printer.Success("no contract violations found")
		return nil
	}

	for _, v := range report.Violations {
		a.printer.Error(v.String())
	}
	a.logger.Warn("contract violations found",
		slog.String("problem", g.Name()),
		slog.Int("count", len(report.Violations)),
	)
	return &exitError{
		code: exitViolations,
		err:  fmt.Errorf("%s: %d contract violations", g.Name(), len(report.Violations)),
	}
}
