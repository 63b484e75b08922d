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
	"strconv"
	"time"

	"github.com/AleutianAI/AleutianSearch/pkg/ux"
	"github.com/AleutianAI/AleutianSearch/services/search"
	"github.com/AleutianAI/AleutianSearch/services/search/graphproblem"
)

func renderOutcome(p *ux.Printer, g *graphproblem.Graph, o solveOutcome) {
	r := o.result
	fields := []ux.Field{
		{Key: "problem", Value: g.Name()},
		{Key: "strategy", Value: o.strategy.String()},
		{Key: "status", Value: string(r.Status)},
	}
	if r.Reason != search.ReasonNone {
		fields = append(fields, ux.Field{Key: "reason", Value: string(r.Reason)})
	}
	if r.Found() {
		fields = append(fields,
			ux.Field{Key: "path", Value: p.Path(r.Actions)},
			ux.Field{Key: "steps", Value: strconv.Itoa(len(r.Actions))},
			ux.Field{Key: "cost", Value: formatCost(r.Cost)},
		)
	}
	fields = append(fields,
		ux.Field{Key: "expanded", Value: strconv.Itoa(r.Stats.Expanded)},
		ux.Field{Key: "generated", Value: strconv.Itoa(r.Stats.Generated)},
		ux.Field{Key: "peak frontier", Value: strconv.Itoa(r.Stats.PeakFrontier)},
		ux.Field{Key: "duration", Value: formatDuration(r.Stats.Duration)},
	)

	if p.Mode() == ux.ModeMachine {
		p.Fields(fields)
	} else {
		p.Box(fmt.Sprintf("%s on %s", o.strategy, g.Name()), fields, !r.Found())
	}
	reportCheck(p, o)
}

func renderComparison(p *ux.Printer, g *graphproblem.Graph, outcomes []solveOutcome) {
	p.Title(fmt.Sprintf("%s: %d nodes, %d edges", g.Name(), len(g.Nodes()), g.EdgeCount()))

	header := []string{"STRATEGY", "STATUS", "STEPS", "COST", "EXPANDED", "GENERATED", "DURATION"}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		r := o.result
		steps, cost := "-", "-"
		status := string(r.Status)
		if r.Found() {
			steps = strconv.Itoa(len(r.Actions))
			cost = formatCost(r.Cost)
		} else if r.Reason != search.ReasonNone {
			status += " (" + string(r.Reason) + ")"
		}
		rows = append(rows, []string{
			o.strategy.String(),
			status,
			steps,
			cost,
			strconv.Itoa(r.Stats.Expanded),
			strconv.Itoa(r.Stats.Generated),
			formatDuration(r.Stats.Duration),
		})
	}
	p.Table(header, rows)

	for _, o := range outcomes {
		reportCheck(p, o)
	}
}

// reportCheck prints a warning when a returned path does not replay.
func reportCheck(p *ux.Printer, o solveOutcome) {
	if o.checkErr != nil {
		p.Warning(fmt.Sprintf("%s: returned path failed replay: %v", o.strategy, o.checkErr))
	}
}

func formatCost(c float64) string {
	return strconv.FormatFloat(c, 'g', -1, 64)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
