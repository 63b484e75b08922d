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

import "time"

// Status is the terminal state of a search.
type Status string

const (
	// StatusSucceeded means a goal was reached and Actions leads to it.
	StatusSucceeded Status = "succeeded"

	// StatusFailed means no goal was reached. See Reason.
	StatusFailed Status = "failed"
)

// Reason explains a failed search.
type Reason string

const (
	// ReasonNone is used for successful searches.
	ReasonNone Reason = ""

	// ReasonExhausted means the frontier drained: no goal is reachable.
	ReasonExhausted Reason = "exhausted"

	// ReasonExpansionLimit means Config.MaxExpansions was reached.
	ReasonExpansionLimit Reason = "expansion_limit"

	// ReasonFrontierLimit means the frontier grew beyond Config.MaxFrontier.
	ReasonFrontierLimit Reason = "frontier_limit"

	// ReasonCancelled means the context ended the search.
	ReasonCancelled Reason = "cancelled"
)

// Stats counts the work done by one search.
type Stats struct {
	// Expanded is the number of states whose successors were generated.
	Expanded int `json:"expanded"`

	// Generated is the number of successor states produced.
	Generated int `json:"generated"`

	// Replaced counts frontier entries replaced by a cheaper route.
	Replaced int `json:"replaced"`

	// PeakFrontier is the largest frontier size observed.
	PeakFrontier int `json:"peak_frontier"`

	// Discovered is the number of distinct states recorded in the ledger.
	Discovered int `json:"discovered"`

	// Duration is the wall-clock time of the search.
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of a search.
type Result[A comparable] struct {
	Strategy Strategy `json:"strategy"`
	Status   Status   `json:"status"`
	Reason   Reason   `json:"reason,omitempty"`

	// Actions leads from the initial state to a goal. Nil when the search
	// failed, empty when the initial state is already a goal.
	Actions []A `json:"actions"`

	// Cost is the summed action cost of Actions.
	Cost float64 `json:"cost"`

	Stats Stats `json:"stats"`
}

// Found reports whether the search reached a goal.
func (r *Result[A]) Found() bool {
	return r != nil && r.Status == StatusSucceeded
}
