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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianSearch/pkg/ux"
	"github.com/AleutianAI/AleutianSearch/services/search"
	"github.com/AleutianAI/AleutianSearch/services/search/history"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived search runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openHistory()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				a.printer.Info("no runs recorded yet (use solve --record)")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					shortID(rec.ID),
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.Problem,
					rec.Strategy,
					rec.Status,
					strconv.Itoa(len(rec.Actions)),
					formatCost(rec.Cost),
				})
			}
			a.printer.Table([]string{"ID", "CREATED", "PROBLEM", "STRATEGY", "STATUS", "STEPS", "COST"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list (0 = all)")

	cmd.AddCommand(a.newHistoryShowCmd())
	return cmd
}

func (a *app) newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			rec, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderRecord(a.printer, rec)
			return nil
		},
	}
}

func renderRecord(p *ux.Printer, rec *history.Record) {
	fields := []ux.Field{
		{Key: "id", Value: rec.ID},
		{Key: "created", Value: rec.CreatedAt.Local().Format(time.RFC3339)},
		{Key: "problem", Value: rec.Problem},
		{Key: "source", Value: rec.Source},
		{Key: "strategy", Value: rec.Strategy},
		{Key: "status", Value: rec.Status},
	}
	if rec.Reason != "" {
		fields = append(fields, ux.Field{Key: "reason", Value: rec.Reason})
	}
	if rec.ErrorText != "" {
		fields = append(fields, ux.Field{Key: "error", Value: rec.ErrorText})
	}
	if rec.Actions != nil {
		fields = append(fields,
			ux.Field{Key: "path", Value: p.Path(rec.Actions)},
			ux.Field{Key: "cost", Value: formatCost(rec.Cost)},
		)
	}
	fields = append(fields,
		ux.Field{Key: "expanded", Value: strconv.Itoa(rec.Expanded)},
		ux.Field{Key: "generated", Value: strconv.Itoa(rec.Generated)},
		ux.Field{Key: "duration", Value: formatDuration(rec.Duration)},
	)

	if p.Mode() == ux.ModeMachine {
		p.Fields(fields)
		return
	}
	p.Box("run "+shortID(rec.ID), fields, rec.Status != string(search.StatusSucceeded))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
