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
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianSearch/pkg/telemetry"
	"github.com/AleutianAI/AleutianSearch/services/search"
	"github.com/AleutianAI/AleutianSearch/services/search/conformance"
	"github.com/AleutianAI/AleutianSearch/services/search/graphproblem"
	"github.com/AleutianAI/AleutianSearch/services/search/history"
)

const watchDebounce = 200 * time.Millisecond

type solveOptions struct {
	strategy      string
	maxExpansions int
	maxFrontier   int
	timeout       time.Duration
	record        bool
	watch         bool
	metricsAddr   string
}

func (a *app) newSolveCmd() *cobra.Command {
	opts := &solveOptions{}

	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "Find a path from the start node to a goal node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSolve(cmd, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.strategy, "strategy", "s", "", "bfs, dfs, ucs, astar, greedy or all (default from config)")
	f.IntVar(&opts.maxExpansions, "max-expansions", 0, "stop after this many expansions (0 = unlimited)")
	f.IntVar(&opts.maxFrontier, "max-frontier", 0, "stop when the frontier exceeds this size (0 = unlimited)")
	f.DurationVar(&opts.timeout, "timeout", 0, "cancel each solve after this long (0 = no timeout)")
	f.BoolVar(&opts.record, "record", false, "archive results in the history store")
	f.BoolVarP(&opts.watch, "watch", "w", false, "re-solve whenever FILE changes")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus /metrics on this address while running")
	return cmd
}

// solveOutcome is the result of one strategy on one problem.
type solveOutcome struct {
	strategy search.Strategy
	result   *search.Result[string]
	err      error
	check    conformance.PathCheck
	checkErr error
}

func (a *app) runSolve(cmd *cobra.Command, opts *solveOptions, path string) error {
	ctx := cmd.Context()

	if cmd.Flags().Changed("max-expansions") {
		a.cfg.Search.MaxExpansions = opts.maxExpansions
	}
	if cmd.Flags().Changed("max-frontier") {
		a.cfg.Search.MaxFrontier = opts.maxFrontier
	}
	name := a.cfg.Search.Strategy
	if opts.strategy != "" {
		name = opts.strategy
	}
	strategies, err := parseStrategies(name)
	if err != nil {
		return err
	}

	if opts.metricsAddr != "" {
		stop, err := a.serveMetrics(opts.metricsAddr)
		if err != nil {
			return err
		}
		defer stop()
	}

	var store *history.Store
	if opts.record || a.cfg.History.Enabled {
		store, err = a.openHistory()
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
	}

	solveOnce := func(ctx context.Context) error {
		return a.solveFile(ctx, path, strategies, opts.timeout, store)
	}

	if !opts.watch {
		return solveOnce(ctx)
	}

	if err := solveOnce(ctx); err != nil {
		a.printer.Error(err.Error())
	}
	a.printer.Info(fmt.Sprintf("watching %s (Ctrl-C to stop)", path))
	return watchFile(ctx, path, watchDebounce, func(ctx context.Context) {
		a.logger.Info("problem file changed", slog.String("path", path))
		if err := solveOnce(ctx); err != nil {
			a.printer.Error(err.Error())
		}
	})
}

// solveFile loads the problem, runs every strategy and renders the result.
// Only the searches run under timeout; archiving uses ctx without its
// cancellation so interrupted runs are still recorded.
func (a *app) solveFile(ctx context.Context, path string, strategies []search.Strategy, timeout time.Duration, store *history.Store) error {
	g, err := graphproblem.Load(path)
	if err != nil {
		return err
	}

	engine := search.NewEngine[string, string](&search.Config{
		MaxExpansions:    a.cfg.Search.MaxExpansions,
		MaxFrontier:      a.cfg.Search.MaxFrontier,
		ProgressInterval: search.DefaultConfig().ProgressInterval,
		Logger:           a.logger.Slog(),
	})

	searchCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	outcomes, err := solveAll(searchCtx, engine, g, strategies)
	if err != nil {
		return err
	}

	if len(outcomes) == 1 {
		renderOutcome(a.printer, g, outcomes[0])
	} else {
		renderComparison(a.printer, g, outcomes)
	}

	if store != nil {
		archiveCtx := context.WithoutCancel(ctx)
		for _, o := range outcomes {
			rec := recordFor(g, path, o)
			if err := store.Put(archiveCtx, rec); err != nil {
				a.logger.Warn("failed to archive run", slog.String("error", err.Error()))
				continue
			}
			a.logger.Debug("run archived", slog.String("id", rec.ID), slog.String("strategy", rec.Strategy))
		}
	}

	cancelled := 0
	for _, o := range outcomes {
		if o.result.Found() {
			return nil
		}
		if o.result.Reason == search.ReasonCancelled {
			cancelled++
		}
	}
	if cancelled == len(outcomes) {
		if errors.Is(searchCtx.Err(), context.DeadlineExceeded) {
			return &exitError{code: exitTimedOut, err: fmt.Errorf("%s: search timed out after %s", g.Name(), timeout)}
		}
		return fmt.Errorf("%s: %w", g.Name(), outcomes[0].err)
	}
	return &exitError{code: exitNoSolution, err: fmt.Errorf("no solution found for %s", g.Name())}
}

// solveAll runs each strategy concurrently. Cancellation is recorded per
// outcome. A malformed problem aborts every strategy.
func solveAll(ctx context.Context, engine *search.Engine[string, string], g *graphproblem.Graph, strategies []search.Strategy) ([]solveOutcome, error) {
	outcomes := make([]solveOutcome, len(strategies))
	group, gCtx := errgroup.WithContext(ctx)

	for i, strategy := range strategies {
		group.Go(func() error {
			result, err := engine.Search(gCtx, g, strategy, g.Heuristic())
			if err != nil && !errors.Is(err, search.ErrSearchCancelled) {
				return fmt.Errorf("%s: %w", strategy, err)
			}

			o := solveOutcome{strategy: strategy, result: result, err: err}
			if result.Found() {
				o.check, o.checkErr = conformance.ValidatePath[string, string](g, result.Actions)
			}
			outcomes[i] = o
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func parseStrategies(name string) ([]search.Strategy, error) {
	if strings.EqualFold(strings.TrimSpace(name), "all") {
		return search.AllStrategies, nil
	}
	s, err := search.ParseStrategy(name)
	if err != nil {
		return nil, err
	}
	return []search.Strategy{s}, nil
}

func recordFor(g *graphproblem.Graph, path string, o solveOutcome) *history.Record {
	rec := &history.Record{
		Problem:  g.Name(),
		Source:   path,
		Strategy: o.strategy.String(),
	}
	if r := o.result; r != nil {
		rec.Status = string(r.Status)
		rec.Reason = string(r.Reason)
		rec.Actions = r.Actions
		rec.Cost = r.Cost
		rec.Expanded = r.Stats.Expanded
		rec.Generated = r.Stats.Generated
		rec.Duration = r.Stats.Duration
	}
	if o.err != nil {
		rec.ErrorText = o.err.Error()
	}
	return rec
}

// serveMetrics starts a /metrics server and returns a function that stops it.
func (a *app) serveMetrics(addr string) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	a.logger.Info("serving metrics", slog.String("addr", listener.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}, nil
}

// watchFile calls onChange after path is written or replaced, coalescing
// bursts of events within debounce. Returns when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func(context.Context)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", slog.String("error", err.Error()))
		}
	}
}
