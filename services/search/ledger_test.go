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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_ReconstructInitial(t *testing.T) {
	l := newLedger[string, string]("A", 0)

	actions, err := l.reconstruct("A")
	require.NoError(t, err)
	assert.NotNil(t, actions)
	assert.Empty(t, actions)
}

func TestLedger_ReconstructChain(t *testing.T) {
	l := newLedger[string, string]("A", 0)
	l.admit("B", "A", "ab", 1, 0)
	l.admit("C", "B", "bc", 2, 0)
	l.admit("D", "C", "cd", 3, 0)

	actions, err := l.reconstruct("D")
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "bc", "cd"}, actions)

	rec, ok := l.lookup("D")
	require.True(t, ok)
	assert.Equal(t, 3.0, rec.cost)
}

func TestLedger_AdmitOverwrites(t *testing.T) {
	l := newLedger[string, string]("A", 0)
	l.admit("B", "A", "expensive", 10, 0)
	l.admit("C", "A", "ac", 1, 0)
	l.admit("B", "C", "cb", 2, 0)

	actions, err := l.reconstruct("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"ac", "cb"}, actions)
	assert.Equal(t, 3, l.size())
}

func TestLedger_Expanded(t *testing.T) {
	l := newLedger[string, string]("A", 0)

	assert.False(t, l.isExpanded("A"))
	assert.True(t, l.markExpanded("A"))
	assert.True(t, l.isExpanded("A"))
	assert.False(t, l.markExpanded("A"), "second mark must report already expanded")
}

func TestLedger_Inconsistency(t *testing.T) {
	t.Run("missing record", func(t *testing.T) {
		l := newLedger[string, string]("A", 0)
		l.admit("C", "B", "bc", 2, 0) // B never recorded

		_, err := l.reconstruct("C")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrLedgerInconsistency))

		var lie *LedgerInconsistencyError
		require.ErrorAs(t, err, &lie)
		assert.Equal(t, "B", lie.State)
	})

	t.Run("cyclic chain", func(t *testing.T) {
		l := newLedger[string, string]("A", 0)
		l.admit("B", "C", "cb", 1, 0)
		l.admit("C", "B", "bc", 1, 0)

		_, err := l.reconstruct("B")
		assert.ErrorIs(t, err, ErrLedgerInconsistency)
	})
}
