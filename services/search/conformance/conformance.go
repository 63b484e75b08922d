// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package conformance checks that a search.Problem honours the contract the
// engine relies on.
//
// The engine validates costs and heuristic values as it meets them, but it
// cannot tell a nondeterministic successor function from a deterministic
// one, and it only ever sees the part of the state space a strategy happens
// to visit. Check walks the reachable space breadth-first and reports every
// violation it finds. ValidatePath replays a returned action sequence.
package conformance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/AleutianAI/AleutianSearch/services/search"
)

var (
	// ErrNilProblem is returned when Check or ValidatePath gets a nil problem.
	ErrNilProblem = errors.New("problem must not be nil")

	// ErrActionNotOffered is returned when a path applies an action the
	// problem did not offer in that state.
	ErrActionNotOffered = errors.New("action not offered in state")

	// ErrPathNotGoal is returned when a path ends in a non-goal state.
	ErrPathNotGoal = errors.New("path does not end in a goal state")
)

// ViolationKind names a broken contract clause.
type ViolationKind string

const (
	ViolationNegativeCost              ViolationKind = "negative_cost"
	ViolationNondeterministicSuccessor ViolationKind = "nondeterministic_successor"
	ViolationNegativeHeuristic         ViolationKind = "negative_heuristic"
	ViolationGoalHeuristicNonZero      ViolationKind = "goal_heuristic_nonzero"
)

// Violation is one observed contract breach.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	State  string        `json:"state"`
	Action string        `json:"action,omitempty"`
	Detail string        `json:"detail"`
}

func (v Violation) String() string {
	if v.Action == "" {
		return fmt.Sprintf("%s at %s: %s", v.Kind, v.State, v.Detail)
	}
	return fmt.Sprintf("%s at %s via %s: %s", v.Kind, v.State, v.Action, v.Detail)
}

// Report summarises a Check run.
type Report struct {
	// StatesVisited is the number of distinct states examined.
	StatesVisited int `json:"states_visited"`

	// TransitionsChecked is the number of (state, action) pairs examined.
	TransitionsChecked int `json:"transitions_checked"`

	// GoalsFound is the number of goal states among those visited.
	GoalsFound int `json:"goals_found"`

	// Truncated is true when MaxStates stopped the walk early.
	Truncated bool `json:"truncated"`

	Violations []Violation `json:"violations"`
}

// OK reports whether no violations were recorded.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Count returns the number of violations of kind.
func (r *Report) Count(kind ViolationKind) int {
	n := 0
	for _, v := range r.Violations {
		if v.Kind == kind {
			n++
		}
	}
	return n
}

// Config bounds a Check run.
type Config struct {
	// MaxStates stops the walk after this many distinct states.
	// 0 means unlimited, which only terminates on finite state spaces.
	MaxStates int

	// MaxViolations stops the walk once this many violations are recorded.
	// 0 means unlimited.
	MaxViolations int

	// Logger receives progress logs. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config that visits at most 100000 states.
func DefaultConfig() *Config {
	return &Config{
		MaxStates:     100000,
		MaxViolations: 1000,
	}
}

// Check walks the states reachable from the initial state and records
// contract violations.
//
// Description:
//
//	Every offered action is applied twice to detect nondeterministic
//	successors, and its cost is checked for negative or NaN values. When
//	heuristic is non-nil, every visited state's estimate must be
//	non-negative and every goal's estimate must be zero.
//
// Inputs:
//   - ctx: Context for cancellation. Checked once per visited state.
//   - problem: The problem to check. Must not be nil.
//   - heuristic: Optional. Nil skips heuristic checks.
//   - config: Walk bounds. Nil uses DefaultConfig().
//
// Outputs:
//   - *Report: The findings. Returned even when ctx is cancelled.
//   - error: ErrNilProblem, or ctx.Err() wrapped on cancellation.
func Check[S comparable, A comparable](
	ctx context.Context,
	problem search.Problem[S, A],
	heuristic search.Heuristic[S, A],
	config *Config,
) (*Report, error) {
	if problem == nil {
		return nil, ErrNilProblem
	}
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "conformance"))

	start := time.Now()
	report := &Report{}
	full := func() bool {
		return config.MaxViolations > 0 && len(report.Violations) >= config.MaxViolations
	}

	initial := problem.InitialState()
	seen := map[S]struct{}{initial: {}}
	queue := []S{initial}

	for len(queue) > 0 && !full() {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("conformance check cancelled: %w", err)
		}
		if config.MaxStates > 0 && report.StatesVisited >= config.MaxStates {
			report.Truncated = true
			break
		}

		state := queue[0]
		queue = queue[1:]
		report.StatesVisited++

		goal := problem.IsGoal(state)
		if goal {
			report.GoalsFound++
		}
		if heuristic != nil {
			checkHeuristic(report, problem, heuristic, state, goal)
		}

		for _, action := range problem.Actions(state) {
			report.TransitionsChecked++

			if c := problem.Cost(state, action); c < 0 || math.IsNaN(c) {
				report.add(ViolationNegativeCost, state, action, fmt.Sprintf("cost %v", c))
			}

			first := problem.Successor(state, action)
			second := problem.Successor(state, action)
			if first != second {
				report.add(ViolationNondeterministicSuccessor, state, action,
					fmt.Sprintf("successor %v then %v", first, second))
			}

			if _, ok := seen[first]; !ok {
				seen[first] = struct{}{}
				queue = append(queue, first)
			}
		}
	}

	logger.Debug("conformance check finished",
		slog.Int("states", report.StatesVisited),
		slog.Int("transitions", report.TransitionsChecked),
		slog.Int("violations", len(report.Violations)),
		slog.Bool("truncated", report.Truncated),
	)
	recordCheckMetrics(ctx, time.Since(start), report)
	return report, nil
}

func checkHeuristic[S comparable, A comparable](
	report *Report,
	problem search.Problem[S, A],
	heuristic search.Heuristic[S, A],
	state S,
	goal bool,
) {
	h := heuristic(problem, state)
	switch {
	case h < 0 || math.IsNaN(h):
		report.add(ViolationNegativeHeuristic, state, nil, fmt.Sprintf("estimate %v", h))
	case goal && h != 0:
		report.add(ViolationGoalHeuristicNonZero, state, nil, fmt.Sprintf("estimate %v", h))
	}
}

// add records a violation. action may be nil for state-level violations.
func (r *Report) add(kind ViolationKind, state any, action any, detail string) {
	v := Violation{
		Kind:   kind,
		State:  fmt.Sprintf("%v", state),
		Detail: detail,
	}
	if action != nil {
		v.Action = fmt.Sprintf("%v", action)
	}
	r.Violations = append(r.Violations, v)
}

// PathCheck describes a replayed action sequence.
type PathCheck struct {
	Steps      int     `json:"steps"`
	Cost       float64 `json:"cost"`
	FinalState string  `json:"final_state"`
}

// ValidatePath replays actions from the initial state.
//
// Description:
//
//	Each action must appear in Actions of the state it is applied to, and
//	the final state must satisfy IsGoal. An empty sequence is valid when
//	the initial state is already a goal.
//
// Inputs:
//   - problem: The problem the actions were computed for.
//   - actions: The sequence to replay.
//
// Outputs:
//   - PathCheck: Steps applied, summed cost and final state. Filled up to
//     the failing step on error.
//   - error: ErrNilProblem, ErrActionNotOffered or ErrPathNotGoal, wrapped
//     with the step and state.
func ValidatePath[S comparable, A comparable](problem search.Problem[S, A], actions []A) (PathCheck, error) {
	var check PathCheck
	if problem == nil {
		return check, ErrNilProblem
	}

	state := problem.InitialState()
	for i, action := range actions {
		if !slices.Contains(problem.Actions(state), action) {
			check.FinalState = fmt.Sprintf("%v", state)
			return check, fmt.Errorf("step %d: %w: %v in %v", i, ErrActionNotOffered, action, state)
		}
		check.Cost += problem.Cost(state, action)
		state = problem.Successor(state, action)
		check.Steps++
	}

	check.FinalState = fmt.Sprintf("%v", state)
	if !problem.IsGoal(state) {
		return check, fmt.Errorf("%w: %v", ErrPathNotGoal, state)
	}
	return check, nil
}
