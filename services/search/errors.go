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
	"errors"
	"fmt"
)

// Sentinel errors for search operations.
var (
	// ErrNilProblem is returned when Search is called without a problem.
	ErrNilProblem = errors.New("problem must not be nil")

	// ErrHeuristicRequired is returned when an informed strategy (A*,
	// greedy best-first) is run without a heuristic.
	ErrHeuristicRequired = errors.New("strategy requires a heuristic")

	// ErrUnknownStrategy is returned for a Strategy value outside the
	// defined set, or an unparseable strategy name.
	ErrUnknownStrategy = errors.New("unknown search strategy")

	// ErrMalformedProblem is returned when the problem or heuristic breaks
	// its contract while the search is running.
	ErrMalformedProblem = errors.New("malformed problem")

	// ErrSearchCancelled is returned when the context is cancelled or its
	// deadline passes before the search completes.
	ErrSearchCancelled = errors.New("search cancelled")

	// ErrLedgerInconsistency means a goal state could not be traced back to
	// the initial state. It indicates an engine defect, never a property of
	// the problem.
	ErrLedgerInconsistency = errors.New("ledger inconsistency")
)

// MalformedProblemError describes a contract violation by the problem or
// heuristic collaborator.
type MalformedProblemError struct {
	// Operation is the collaborator call that misbehaved ("cost", "heuristic").
	Operation string

	// State is a printable form of the state involved.
	State string

	// Value is the offending value.
	Value float64
}

func (e *MalformedProblemError) Error() string {
	return fmt.Sprintf("%s: %s returned %v for state %s", ErrMalformedProblem, e.Operation, e.Value, e.State)
}

// Unwrap allows errors.Is(err, ErrMalformedProblem).
func (e *MalformedProblemError) Unwrap() error {
	return ErrMalformedProblem
}

// LedgerInconsistencyError reports where path reconstruction broke down.
type LedgerInconsistencyError struct {
	State  string
	Detail string
}

func (e *LedgerInconsistencyError) Error() string {
	return fmt.Sprintf("%s at state %s: %s", ErrLedgerInconsistency, e.State, e.Detail)
}

// Unwrap allows errors.Is(err, ErrLedgerInconsistency).
func (e *LedgerInconsistencyError) Unwrap() error {
	return ErrLedgerInconsistency
}
