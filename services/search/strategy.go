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
	"fmt"
	"strings"
)

// Strategy selects the frontier ordering and goal-test timing.
type Strategy int

const (
	// StrategyBreadthFirst expands states in arrival order and tests goals
	// when children are generated. Minimises the number of actions.
	StrategyBreadthFirst Strategy = iota + 1

	// StrategyDepthFirst expands the most recently discovered state first.
	// Complete on finite state spaces, no optimality guarantee.
	StrategyDepthFirst

	// StrategyUniformCost expands states in order of path cost g.
	// Minimises total cost given non-negative action costs.
	StrategyUniformCost

	// StrategyAStar expands states in order of g + h. Minimises total cost
	// given an admissible heuristic.
	StrategyAStar

	// StrategyGreedyBestFirst expands states in order of h alone.
	StrategyGreedyBestFirst
)

// AllStrategies lists every strategy in declaration order.
var AllStrategies = []Strategy{
	StrategyBreadthFirst,
	StrategyDepthFirst,
	StrategyUniformCost,
	StrategyAStar,
	StrategyGreedyBestFirst,
}

// String returns the short name used in logs, metrics and the CLI.
func (s Strategy) String() string {
	switch s {
	case StrategyBreadthFirst:
		return "bfs"
	case StrategyDepthFirst:
		return "dfs"
	case StrategyUniformCost:
		return "ucs"
	case StrategyAStar:
		return "astar"
	case StrategyGreedyBestFirst:
		return "greedy"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// MarshalText encodes the strategy by its short name.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a strategy name accepted by ParseStrategy.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Informed reports whether the strategy needs a heuristic.
func (s Strategy) Informed() bool {
	return s == StrategyAStar || s == StrategyGreedyBestFirst
}

// Valid reports whether s is one of the defined strategies.
func (s Strategy) Valid() bool {
	return s >= StrategyBreadthFirst && s <= StrategyGreedyBestFirst
}

// ParseStrategy converts a name to a Strategy.
//
// Inputs:
//   - name: Short name or common alias, case-insensitive. Accepts "bfs",
//     "breadth-first", "dfs", "depth-first", "ucs", "uniform-cost",
//     "astar", "a*", "greedy", "best-first".
//
// Outputs:
//   - Strategy: The parsed strategy.
//   - error: Wraps ErrUnknownStrategy if the name is not recognised.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bfs", "breadth-first", "breadthfirst":
		return StrategyBreadthFirst, nil
	case "dfs", "depth-first", "depthfirst":
		return StrategyDepthFirst, nil
	case "ucs", "uniform-cost", "uniformcost", "dijkstra":
		return StrategyUniformCost, nil
	case "astar", "a*", "a-star":
		return StrategyAStar, nil
	case "greedy", "best-first", "bestfirst", "greedy-best-first":
		return StrategyGreedyBestFirst, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// goalTiming says when the driver applies the goal test.
type goalTiming int

const (
	goalAtExpansion goalTiming = iota
	goalAtGeneration
)

// policy is the per-strategy descriptor consumed by the driver.
type policy struct {
	// priority computes a frontier priority from path cost g and
	// heuristic estimate h.
	priority func(g, h float64) float64

	timing goalTiming

	// relax enables replacing a frontier entry when a strictly smaller
	// priority is found for the same state.
	relax bool

	// newestFirst serves equal priorities in reverse insertion order.
	newestFirst bool

	usesHeuristic bool
}

func constantPriority(_, _ float64) float64 { return 0 }
func pathCostPriority(g, _ float64) float64 { return g }
func totalPriority(g, h float64) float64    { return g + h }
func estimatePriority(_, h float64) float64 { return h }

// policyFor returns the descriptor for s. ok is false for invalid s.
func policyFor(s Strategy) (policy, bool) {
	switch s {
	case StrategyBreadthFirst:
		return policy{priority: constantPriority, timing: goalAtGeneration}, true
	case StrategyDepthFirst:
		return policy{priority: constantPriority, timing: goalAtExpansion, newestFirst: true}, true
	case StrategyUniformCost:
		return policy{priority: pathCostPriority, timing: goalAtExpansion, relax: true}, true
	case StrategyAStar:
		return policy{priority: totalPriority, timing: goalAtExpansion, relax: true, usesHeuristic: true}, true
	case StrategyGreedyBestFirst:
		return policy{priority: estimatePriority, timing: goalAtExpansion, usesHeuristic: true}, true
	default:
		return policy{}, false
	}
}
