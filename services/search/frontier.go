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

import "container/heap"

// frontierEntry is one state awaiting expansion.
type frontierEntry[S comparable] struct {
	state    S
	priority float64
	seq      uint64 // insertion order, refreshed on replace
	index    int    // position in the heap, maintained by Swap
}

// entryHeap implements heap.Interface ordered by (priority, seq).
type entryHeap[S comparable] struct {
	entries     []*frontierEntry[S]
	newestFirst bool
}

func (h *entryHeap[S]) Len() int { return len(h.entries) }

func (h *entryHeap[S]) Less(i, j int) bool {
	a, b := h.entries[i], h.entries[j]
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if h.newestFirst {
		return a.seq > b.seq
	}
	return a.seq < b.seq
}

func (h *entryHeap[S]) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.entries[i].index = i
	h.entries[j].index = j
}

func (h *entryHeap[S]) Push(x any) {
	entry := x.(*frontierEntry[S])
	entry.index = len(h.entries)
	h.entries = append(h.entries, entry)
}

func (h *entryHeap[S]) Pop() any {
	old := h.entries
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	h.entries = old[:n-1]
	return entry
}

// frontier is an indexed priority queue holding at most one entry per state.
//
// Description:
//
//	Entries are served by ascending priority. Ties go to the earliest
//	inserted entry, or the latest when newestFirst is set (depth-first).
//	The membership map doubles as the frontier membership set of the
//	visitation ledger and gives O(1) contains/priorityOf. replace is an
//	index-based decrease-key: the entry moves in place and gets a fresh
//	insertion sequence, so no stale entries are ever popped.
//
// Performance:
//
//	| Operation  | Complexity |
//	|------------|------------|
//	| push       | O(log n)   |
//	| popBest    | O(log n)   |
//	| replace    | O(log n)   |
//	| contains   | O(1)       |
//
// Thread Safety: Not safe for concurrent use. Owned by one search.
type frontier[S comparable] struct {
	heap    entryHeap[S]
	members map[S]*frontierEntry[S]
	nextSeq uint64
	peak    int
}

func newFrontier[S comparable](newestFirst bool) *frontier[S] {
	return &frontier[S]{
		heap:    entryHeap[S]{newestFirst: newestFirst},
		members: make(map[S]*frontierEntry[S]),
	}
}

// push inserts state. The caller guarantees state is not already present.
func (f *frontier[S]) push(state S, priority float64) {
	entry := &frontierEntry[S]{state: state, priority: priority, seq: f.nextSeq}
	f.nextSeq++
	heap.Push(&f.heap, entry)
	f.members[state] = entry
	if n := f.heap.Len(); n > f.peak {
		f.peak = n
	}
}

// popBest removes and returns the best entry. ok is false when empty.
func (f *frontier[S]) popBest() (state S, priority float64, ok bool) {
	if f.heap.Len() == 0 {
		return state, 0, false
	}
	entry := heap.Pop(&f.heap).(*frontierEntry[S])
	delete(f.members, entry.state)
	return entry.state, entry.priority, true
}

func (f *frontier[S]) contains(state S) bool {
	_, ok := f.members[state]
	return ok
}

// priorityOf returns the current priority of state, if present.
func (f *frontier[S]) priorityOf(state S) (float64, bool) {
	entry, ok := f.members[state]
	if !ok {
		return 0, false
	}
	return entry.priority, true
}

// replace evicts the entry for state and reinserts it with priority.
// Returns false if state is not in the frontier.
func (f *frontier[S]) replace(state S, priority float64) bool {
	entry, ok := f.members[state]
	if !ok {
		return false
	}
	entry.priority = priority
	entry.seq = f.nextSeq
	f.nextSeq++
	heap.Fix(&f.heap, entry.index)
	return true
}

func (f *frontier[S]) len() int {
	return f.heap.Len()
}
