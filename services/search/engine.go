// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// Config bounds and instruments a search.
type Config struct {
	// MaxExpansions stops the search after this many expansions.
	// 0 means unlimited.
	MaxExpansions int

	// MaxFrontier stops the search when the frontier holds more entries.
	// 0 means unlimited.
	MaxFrontier int

	// CancelCheckInterval is how many loop iterations pass between
	// context checks. Values <= 0 use the default.
	CancelCheckInterval int

	// ProgressInterval is how many expansions pass between debug progress
	// logs. 0 disables progress logs.
	ProgressInterval int

	// Logger receives search logs. Nil uses slog.Default().
	Logger *slog.Logger
}

const defaultCancelCheckInterval = 256

// DefaultConfig returns an unbounded configuration.
func DefaultConfig() *Config {
	return &Config{
		CancelCheckInterval: defaultCancelCheckInterval,
		ProgressInterval:    10000,
	}
}

// -----------------------------------------------------------------------------
// Engine
// -----------------------------------------------------------------------------

// Engine runs searches over problems with state type S and action type A.
//
// Description:
//
//	An Engine holds configuration only. Every Search call builds its own
//	frontier and ledger and discards them on return.
//
// Thread Safety: Safe for concurrent use. Concurrent searches over the same
// problem additionally require the problem's methods to be pure.
type Engine[S comparable, A comparable] struct {
	config *Config
	logger *slog.Logger
}

// NewEngine creates an engine.
//
// Inputs:
//   - config: Search bounds. Nil uses DefaultConfig().
//
// Outputs:
//   - *Engine[S, A]: The engine. Never nil.
func NewEngine[S comparable, A comparable](config *Config) *Engine[S, A] {
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine[S, A]{
		config: config,
		logger: logger.With(slog.String("component", "search_engine")),
	}
}

// Search finds an action sequence from problem's initial state to a goal.
//
// Description:
//
//	Runs the driver loop with the frontier ordering and goal-test timing
//	of strategy. The initial state is goal-tested before any expansion.
//
// Inputs:
//   - ctx: Context for cancellation. Polled every CancelCheckInterval
//     iterations.
//   - problem: The problem to solve. Must not be nil.
//   - strategy: One of the Strategy constants.
//   - heuristic: Required for StrategyAStar and StrategyGreedyBestFirst,
//     ignored otherwise.
//
// Outputs:
//   - *Result[A]: Non-nil whenever the search started. A search that finds
//     no goal returns StatusFailed with a nil error.
//   - error: ErrNilProblem, ErrUnknownStrategy or ErrHeuristicRequired for
//     invalid calls; *MalformedProblemError for contract violations;
//     ErrSearchCancelled (wrapping ctx.Err()) on cancellation.
//
// Example:
//
//	result, err := engine.Search(ctx, problem, search.StrategyUniformCost, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Actions, result.Cost)
//
// Thread Safety: Safe for concurrent calls.
func (e *Engine[S, A]) Search(ctx context.Context, problem Problem[S, A], strategy Strategy, heuristic Heuristic[S, A]) (*Result[A], error) {
	if problem == nil {
		return nil, ErrNilProblem
	}
	pol, ok := policyFor(strategy)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(strategy))
	}
	if pol.usesHeuristic && heuristic == nil {
		return nil, fmt.Errorf("%w: %s", ErrHeuristicRequired, strategy)
	}

	ctx, span := startSearchSpan(ctx, strategy)
	defer span.End()

	r := &run[S, A]{
		config:    e.config,
		logger:    e.logger.With(slog.String("strategy", strategy.String())),
		problem:   problem,
		strategy:  strategy,
		policy:    pol,
		heuristic: heuristic,
	}

	startTime := time.Now()
	r.logger.Debug("search started")

	result, err := r.execute(ctx)
	if result != nil {
		result.Stats.Duration = time.Since(startTime)
	}

	finishSearchSpan(span, result, err)
	recordSearchMetrics(strategy, result, err)

	switch {
	case err != nil && result != nil && result.Reason == ReasonCancelled:
		r.logger.Debug("search cancelled",
			slog.Int("expanded", result.Stats.Expanded),
			slog.String("error", err.Error()),
		)
	case err != nil:
		r.logger.Warn("search failed",
			slog.String("error", err.Error()),
		)
	case result.Reason == ReasonExpansionLimit || result.Reason == ReasonFrontierLimit:
		r.logger.Warn("search limit reached",
			slog.String("reason", string(result.Reason)),
			slog.Int("expanded", result.Stats.Expanded),
			slog.Int("peak_frontier", result.Stats.PeakFrontier),
		)
	default:
		r.logger.Debug("search completed",
			slog.String("status", string(result.Status)),
			slog.Int("actions", len(result.Actions)),
			slog.Float64("cost", result.Cost),
			slog.Int("expanded", result.Stats.Expanded),
			slog.Duration("duration", result.Stats.Duration),
		)
	}
	return result, err
}

// -----------------------------------------------------------------------------
// Convenience entry points
// -----------------------------------------------------------------------------

// BreadthFirstSearch runs breadth-first search with DefaultConfig.
func BreadthFirstSearch[S comparable, A comparable](ctx context.Context, problem Problem[S, A]) (*Result[A], error) {
	return NewEngine[S, A](nil).Search(ctx, problem, StrategyBreadthFirst, nil)
}

// DepthFirstSearch runs depth-first search with DefaultConfig.
func DepthFirstSearch[S comparable, A comparable](ctx context.Context, problem Problem[S, A]) (*Result[A], error) {
	return NewEngine[S, A](nil).Search(ctx, problem, StrategyDepthFirst, nil)
}

// UniformCostSearch runs uniform-cost search with DefaultConfig.
func UniformCostSearch[S comparable, A comparable](ctx context.Context, problem Problem[S, A]) (*Result[A], error) {
	return NewEngine[S, A](nil).Search(ctx, problem, StrategyUniformCost, nil)
}

// AStarSearch runs A* with DefaultConfig.
func AStarSearch[S comparable, A comparable](ctx context.Context, problem Problem[S, A], heuristic Heuristic[S, A]) (*Result[A], error) {
	return NewEngine[S, A](nil).Search(ctx, problem, StrategyAStar, heuristic)
}

// GreedyBestFirstSearch runs greedy best-first search with DefaultConfig.
func GreedyBestFirstSearch[S comparable, A comparable](ctx context.Context, problem Problem[S, A], heuristic Heuristic[S, A]) (*Result[A], error) {
	return NewEngine[S, A](nil).Search(ctx, problem, StrategyGreedyBestFirst, heuristic)
}

// -----------------------------------------------------------------------------
// Driver
// -----------------------------------------------------------------------------

// run is the state of a single search invocation.
type run[S comparable, A comparable] struct {
	config    *Config
	logger    *slog.Logger
	problem   Problem[S, A]
	strategy  Strategy
	policy    policy
	heuristic Heuristic[S, A]

	frontier *frontier[S]
	ledger   *ledger[S, A]
	stats    Stats
}

func (r *run[S, A]) execute(ctx context.Context) (*Result[A], error) {
	initial := r.problem.InitialState()
	if r.problem.IsGoal(initial) {
		r.ledger = newLedger[S, A](initial, 0)
		r.frontier = newFrontier[S](r.policy.newestFirst)
		return r.succeed(initial)
	}

	h0, err := r.estimate(initial)
	if err != nil {
		return nil, err
	}
	r.ledger = newLedger[S, A](initial, h0)
	r.frontier = newFrontier[S](r.policy.newestFirst)
	r.frontier.push(initial, r.policy.priority(0, h0))

	checkEvery := r.config.CancelCheckInterval
	if checkEvery <= 0 {
		checkEvery = defaultCancelCheckInterval
	}

	for iteration := 0; ; iteration++ {
		if iteration%checkEvery == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return r.fail(ReasonCancelled), fmt.Errorf("%w: %w", ErrSearchCancelled, ctxErr)
			}
		}
		if r.frontier.len() == 0 {
			return r.fail(ReasonExhausted), nil
		}
		if r.config.MaxExpansions > 0 && r.stats.Expanded >= r.config.MaxExpansions {
			return r.fail(ReasonExpansionLimit), nil
		}

		state, _, _ := r.frontier.popBest()
		if !r.ledger.markExpanded(state) {
			continue
		}
		r.stats.Expanded++
		if r.config.ProgressInterval > 0 && r.stats.Expanded%r.config.ProgressInterval == 0 {
			r.logger.Debug("search progress",
				slog.Int("expanded", r.stats.Expanded),
				slog.Int("frontier", r.frontier.len()),
				slog.Int("discovered", r.ledger.size()),
			)
		}

		if r.policy.timing == goalAtExpansion && r.problem.IsGoal(state) {
			return r.succeed(state)
		}

		goal, found, err := r.expand(state)
		if err != nil {
			return nil, err
		}
		if found {
			return r.succeed(goal)
		}
		if r.config.MaxFrontier > 0 && r.frontier.len() > r.config.MaxFrontier {
			return r.fail(ReasonFrontierLimit), nil
		}
	}
}

// expand generates the successors of state and admits them to the
// frontier. found is true when a goal was detected at generation time.
func (r *run[S, A]) expand(state S) (goal S, found bool, err error) {
	parent, _ := r.ledger.lookup(state)
	g := parent.cost

	for _, action := range r.problem.Actions(state) {
		child := r.problem.Successor(state, action)
		r.stats.Generated++

		// Every generated edge is validated, including edges into
		// expanded states.
		step, err := r.stepCost(state, action)
		if err != nil {
			return goal, false, err
		}
		if r.ledger.isExpanded(child) {
			continue
		}
		childCost := g + step

		if r.frontier.contains(child) {
			if !r.policy.relax {
				continue
			}
			rec, _ := r.ledger.lookup(child)
			tentative := r.policy.priority(childCost, rec.estimate)
			current, _ := r.frontier.priorityOf(child)
			if tentative < current {
				r.frontier.replace(child, tentative)
				r.ledger.admit(child, state, action, childCost, rec.estimate)
				r.stats.Replaced++
			}
			continue
		}

		h, err := r.estimate(child)
		if err != nil {
			return goal, false, err
		}
		r.ledger.admit(child, state, action, childCost, h)

		if r.policy.timing == goalAtGeneration && r.problem.IsGoal(child) {
			return child, true, nil
		}
		r.frontier.push(child, r.policy.priority(childCost, h))
	}
	return goal, false, nil
}

// stepCost returns the validated cost of applying action in state.
func (r *run[S, A]) stepCost(state S, action A) (float64, error) {
	c := r.problem.Cost(state, action)
	if c < 0 || math.IsNaN(c) {
		return 0, &MalformedProblemError{
			Operation: "cost",
			State:     fmt.Sprintf("%v", state),
			Value:     c,
		}
	}
	return c, nil
}

// estimate returns the validated heuristic value of state, or 0 for
// strategies that do not use one.
func (r *run[S, A]) estimate(state S) (float64, error) {
	if !r.policy.usesHeuristic {
		return 0, nil
	}
	h := r.heuristic(r.problem, state)
	if h < 0 || math.IsNaN(h) {
		return 0, &MalformedProblemError{
			Operation: "heuristic",
			State:     fmt.Sprintf("%v", state),
			Value:     h,
		}
	}
	return h, nil
}

func (r *run[S, A]) succeed(goal S) (*Result[A], error) {
	actions, err := r.ledger.reconstruct(goal)
	if err != nil {
		return nil, err
	}
	rec, _ := r.ledger.lookup(goal)
	r.collectStats()
	return &Result[A]{
		Strategy: r.strategy,
		Status:   StatusSucceeded,
		Actions:  actions,
		Cost:     rec.cost,
		Stats:    r.stats,
	}, nil
}

func (r *run[S, A]) fail(reason Reason) *Result[A] {
	r.collectStats()
	return &Result[A]{
		Strategy: r.strategy,
		Status:   StatusFailed,
		Reason:   reason,
		Stats:    r.stats,
	}
}

func (r *run[S, A]) collectStats() {
	r.stats.PeakFrontier = r.frontier.peak
	r.stats.Discovered = r.ledger.size()
}
