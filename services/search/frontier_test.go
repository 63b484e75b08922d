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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(f *frontier[string]) []string {
	var out []string
	for {
		state, _, ok := f.popBest()
		if !ok {
			return out
		}
		out = append(out, state)
	}
}

func TestFrontier_AscendingPriority(t *testing.T) {
	f := newFrontier[string](false)
	f.push("c", 3)
	f.push("a", 1)
	f.push("b", 2)

	assert.Equal(t, []string{"a", "b", "c"}, drain(f))
}

func TestFrontier_TiesFavorEarliestInsertion(t *testing.T) {
	f := newFrontier[string](false)
	for _, s := range []string{"first", "second", "third"} {
		f.push(s, 5)
	}
	f.push("cheap", 1)

	assert.Equal(t, []string{"cheap", "first", "second", "third"}, drain(f))
}

func TestFrontier_NewestFirst(t *testing.T) {
	f := newFrontier[string](true)
	for _, s := range []string{"first", "second", "third"} {
		f.push(s, 0)
	}

	assert.Equal(t, []string{"third", "second", "first"}, drain(f))
}

func TestFrontier_Membership(t *testing.T) {
	f := newFrontier[string](false)
	f.push("a", 4)

	assert.True(t, f.contains("a"))
	assert.False(t, f.contains("b"))

	p, ok := f.priorityOf("a")
	require.True(t, ok)
	assert.Equal(t, 4.0, p)

	_, ok = f.priorityOf("b")
	assert.False(t, ok)

	state, priority, ok := f.popBest()
	require.True(t, ok)
	assert.Equal(t, "a", state)
	assert.Equal(t, 4.0, priority)
	assert.False(t, f.contains("a"), "popped state must leave the membership set")
	assert.Equal(t, 0, f.len())
}

func TestFrontier_PopEmpty(t *testing.T) {
	f := newFrontier[string](false)
	_, _, ok := f.popBest()
	assert.False(t, ok)
}

func TestFrontier_Replace(t *testing.T) {
	t.Run("lower priority moves entry forward", func(t *testing.T) {
		f := newFrontier[string](false)
		f.push("a", 1)
		f.push("b", 2)
		f.push("c", 10)

		require.True(t, f.replace("c", 0))
		p, _ := f.priorityOf("c")
		assert.Equal(t, 0.0, p)
		assert.Equal(t, 3, f.len(), "replace must not duplicate the state")
		assert.Equal(t, []string{"c", "a", "b"}, drain(f))
	})

	t.Run("replaced entry counts as newest on ties", func(t *testing.T) {
		f := newFrontier[string](false)
		f.push("a", 5)
		f.push("b", 9)
		f.push("c", 5)

		require.True(t, f.replace("b", 5))
		assert.Equal(t, []string{"a", "c", "b"}, drain(f))
	})

	t.Run("missing state", func(t *testing.T) {
		f := newFrontier[string](false)
		assert.False(t, f.replace("ghost", 1))
	})
}

func TestFrontier_Peak(t *testing.T) {
	f := newFrontier[string](false)
	f.push("a", 1)
	f.push("b", 1)
	f.popBest()
	f.push("c", 1)
	f.popBest()
	f.popBest()

	assert.Equal(t, 2, f.peak)
}
