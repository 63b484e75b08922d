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
	"slices"
)

// ledgerRecord is the best known way of reaching a state.
type ledgerRecord[S comparable, A comparable] struct {
	parent S
	action A

	// cost is the path cost g from the initial state.
	cost float64

	// estimate caches the heuristic value so it is computed once per state.
	estimate float64

	// root marks the initial state, which has no parent.
	root bool
}

// ledger tracks parents, path costs and the expanded set for one search.
//
// Description:
//
//	Every state gets a record the moment it enters the frontier, so a goal
//	found at generation time can be traced back. Records are only
//	overwritten through admit while the state is still in the frontier,
//	and parents are always expanded states, so a parent chain never leaves
//	the set of states that passed through the frontier.
//
// Thread Safety: Not safe for concurrent use. Owned by one search.
type ledger[S comparable, A comparable] struct {
	records  map[S]*ledgerRecord[S, A]
	expanded map[S]struct{}
}

func newLedger[S comparable, A comparable](initial S, estimate float64) *ledger[S, A] {
	l := &ledger[S, A]{
		records:  make(map[S]*ledgerRecord[S, A]),
		expanded: make(map[S]struct{}),
	}
	l.records[initial] = &ledgerRecord[S, A]{root: true, estimate: estimate}
	return l
}

// admit records (or overwrites) how state was reached.
func (l *ledger[S, A]) admit(state, parent S, action A, cost, estimate float64) {
	rec, ok := l.records[state]
	if !ok {
		rec = &ledgerRecord[S, A]{}
		l.records[state] = rec
	}
	rec.parent = parent
	rec.action = action
	rec.cost = cost
	rec.estimate = estimate
	rec.root = false
}

func (l *ledger[S, A]) lookup(state S) (*ledgerRecord[S, A], bool) {
	rec, ok := l.records[state]
	return rec, ok
}

// markExpanded adds state to the expanded set. Returns false if it was
// already there.
func (l *ledger[S, A]) markExpanded(state S) bool {
	if _, done := l.expanded[state]; done {
		return false
	}
	l.expanded[state] = struct{}{}
	return true
}

func (l *ledger[S, A]) isExpanded(state S) bool {
	_, done := l.expanded[state]
	return done
}

func (l *ledger[S, A]) size() int {
	return len(l.records)
}

// reconstruct walks parent records from goal back to the initial state and
// returns the actions in initial→goal order.
//
// Outputs:
//   - []A: The action sequence. Empty, non-nil when goal is the initial state.
//   - error: *LedgerInconsistencyError if the chain is broken or cyclic.
func (l *ledger[S, A]) reconstruct(goal S) ([]A, error) {
	actions := make([]A, 0)
	current := goal
	for steps := 0; ; steps++ {
		rec, ok := l.records[current]
		if !ok {
			return nil, &LedgerInconsistencyError{
				State:  fmt.Sprintf("%v", current),
				Detail: "no parent record",
			}
		}
		if rec.root {
			break
		}
		if steps >= len(l.records) {
			return nil, &LedgerInconsistencyError{
				State:  fmt.Sprintf("%v", goal),
				Detail: "parent chain does not terminate",
			}
		}
		actions = append(actions, rec.action)
		current = rec.parent
	}
	slices.Reverse(actions)
	return actions, nil
}
