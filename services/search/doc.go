// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package search provides a generic state-space search engine.
//
// The engine finds a sequence of actions that transforms a problem's initial
// state into a goal state. It only talks to the problem through the Problem
// interface, so any domain with a comparable state type and a comparable
// action type can be searched.
//
// Architecture:
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                          Engine.Search                              │
//	│                                                                     │
//	│   Strategy ──► policy (priority fn, goal-test timing, relax rule)   │
//	│                                                                     │
//	│   ┌──────────────┐    pop best    ┌──────────────────────────────┐  │
//	│   │   frontier   │ ─────────────► │          driver loop         │  │
//	│   │ (indexed     │ ◄───────────── │ goal test / expand / admit   │  │
//	│   │  heap)       │  push/replace  └──────────────┬───────────────┘  │
//	│   └──────────────┘                               │                  │
//	│                                                  ▼                  │
//	│                                  ┌──────────────────────────────┐   │
//	│                                  │ ledger: parent map, g-costs, │   │
//	│                                  │ expanded set                 │   │
//	│                                  └──────────────┬───────────────┘   │
//	│                                                 ▼                   │
//	│                                       path reconstruction           │
//	└─────────────────────────────────────────────────────────────────────┘
//
// Strategies:
//
//	| Strategy          | Priority        | Goal test   | Cheaper route   |
//	|-------------------|-----------------|-------------|-----------------|
//	| Breadth-first     | arrival (FIFO)  | generation  | ignored         |
//	| Depth-first       | arrival (LIFO)  | expansion   | ignored         |
//	| Uniform-cost      | g               | expansion   | entry replaced  |
//	| A*                | g + h           | expansion   | entry replaced  |
//	| Greedy best-first | h               | expansion   | ignored         |
//
// Equal priorities are served in insertion order. A replaced entry counts as
// newly inserted.
//
// Outcomes:
//
// A search either succeeds with an action sequence or fails. Failure is data,
// not an error: Result.Status is StatusFailed and Result.Reason says why
// (frontier exhausted, a caller-imposed limit, or cancellation). Errors are
// reserved for invalid calls and for problems that break their contract, such
// as a negative action cost.
//
// An initial state that already satisfies the goal test yields an empty,
// non-nil action sequence for every strategy.
//
// Resources:
//
// Each call owns its frontier and ledger and shares nothing with other calls,
// so independent searches may run in parallel goroutines as long as the
// problem's methods are pure. Memory grows with the number of distinct states
// reached and is unbounded on infinite state spaces. Use Config.MaxExpansions,
// Config.MaxFrontier or a context deadline to bound a search.
//
// Example:
//
//	engine := search.NewEngine[Board, Move](search.DefaultConfig())
//	result, err := engine.Search(ctx, puzzle, search.StrategyAStar, manhattan)
//	if err != nil {
//	    return err
//	}
//	if !result.Found() {
//	    return fmt.Errorf("no solution: %s", result.Reason)
//	}
package search
