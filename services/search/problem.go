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

// Problem is the contract a domain implements to be searched.
//
// Description:
//
//	S is the state type and A the action type. Both are compared with ==
//	and used as map keys, so equality must mean "the same configuration"
//	for the domain. The engine never inspects their internals.
//
// Contract:
//
//	Implementations MUST:
//	1. Return the same successor for the same (state, action) pair
//	2. Return a non-negative, non-NaN cost for every offered action
//	3. Only be asked about actions they returned from Actions
//
//	The engine rejects negative or NaN costs on every edge it generates,
//	including edges into expanded states, with a MalformedProblemError. The
//	other clauses are checked by the conformance package, not at search
//	time.
//
// Thread Safety: The engine calls a problem from a single goroutine per
// search. Sharing one problem between concurrent searches requires its
// methods to be pure.
type Problem[S comparable, A comparable] interface {
	// InitialState returns the state the search starts from.
	InitialState() S

	// IsGoal reports whether state satisfies the goal.
	IsGoal(state S) bool

	// Actions returns the legal actions in state. May be empty.
	Actions(state S) []A

	// Successor returns the state reached by applying action in state.
	Successor(state S, action A) S

	// Cost returns the non-negative cost of applying action in state.
	Cost(state S, action A) float64
}

// Heuristic estimates the remaining cost from state to the nearest goal.
//
// Estimates must be non-negative. A* only guarantees an optimal solution
// when the heuristic never overestimates the true remaining cost.
type Heuristic[S comparable, A comparable] func(problem Problem[S, A], state S) float64

// ZeroHeuristic returns 0 for every state. A* with ZeroHeuristic behaves
// like uniform-cost search.
func ZeroHeuristic[S comparable, A comparable](Problem[S, A], S) float64 {
	return 0
}

// ProblemFuncs adapts a set of closures to the Problem interface.
//
// Description:
//
//	Useful for small or generated problems where declaring a named type
//	is overkill. Nil GoalFunc never matches, nil ActionsFunc offers no
//	actions and nil CostFunc charges 1 per action.
type ProblemFuncs[S comparable, A comparable] struct {
	Initial       S
	GoalFunc      func(S) bool
	ActionsFunc   func(S) []A
	SuccessorFunc func(S, A) S
	CostFunc      func(S, A) float64
}

// InitialState implements Problem.
func (p *ProblemFuncs[S, A]) InitialState() S {
	return p.Initial
}

// IsGoal implements Problem.
func (p *ProblemFuncs[S, A]) IsGoal(state S) bool {
	if p.GoalFunc == nil {
		return false
	}
	return p.GoalFunc(state)
}

// Actions implements Problem.
func (p *ProblemFuncs[S, A]) Actions(state S) []A {
	if p.ActionsFunc == nil {
		return nil
	}
	return p.ActionsFunc(state)
}

// Successor implements Problem.
func (p *ProblemFuncs[S, A]) Successor(state S, action A) S {
	return p.SuccessorFunc(state, action)
}

// Cost implements Problem.
func (p *ProblemFuncs[S, A]) Cost(state S, action A) float64 {
	if p.CostFunc == nil {
		return 1
	}
	return p.CostFunc(state, action)
}
