// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package conformance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianSearch/services/search"
)

// line is 0..max with "+" and "-" moves; goal is max.
func line(max int) *search.ProblemFuncs[int, string] {
	return &search.ProblemFuncs[int, string]{
		Initial:  0,
		GoalFunc: func(n int) bool { return n == max },
		ActionsFunc: func(n int) []string {
			var out []string
			if n < max {
				out = append(out, "+")
			}
			if n > 0 {
				out = append(out, "-")
			}
			return out
		},
		SuccessorFunc: func(n int, a string) int {
			if a == "+" {
				return n + 1
			}
			return n - 1
		},
	}
}

func TestCheck_Clean(t *testing.T) {
	p := line(5)
	h := func(_ search.Problem[int, string], n int) float64 { return float64(5 - n) }

	report, err := Check[int, string](context.Background(), p, h, nil)
	require.NoError(t, err)

	assert.True(t, report.OK())
	assert.Equal(t, 6, report.StatesVisited)
	assert.Equal(t, 10, report.TransitionsChecked)
	assert.Equal(t, 1, report.GoalsFound)
	assert.False(t, report.Truncated)
}

func TestCheck_NegativeCost(t *testing.T) {
	p := line(3)
	p.CostFunc = func(n int, a string) float64 {
		if n == 1 && a == "+" {
			return -2
		}
		return 1
	}

	report, err := Check[int, string](context.Background(), p, nil, nil)
	require.NoError(t, err)

	require.Equal(t, 1, report.Count(ViolationNegativeCost))
	v := report.Violations[0]
	assert.Equal(t, "1", v.State)
	assert.Equal(t, "+", v.Action)
	assert.Contains(t, v.String(), "negative_cost at 1 via +")
}

func TestCheck_NondeterministicSuccessor(t *testing.T) {
	p := line(3)
	calls := 0
	p.SuccessorFunc = func(n int, a string) int {
		calls++
		if n == 2 && a == "+" && calls%2 == 0 {
			return 0
		}
		if a == "+" {
			return n + 1
		}
		return n - 1
	}

	report, err := Check[int, string](context.Background(), p, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(ViolationNondeterministicSuccessor))
}

func TestCheck_HeuristicViolations(t *testing.T) {
	p := line(3)
	h := func(_ search.Problem[int, string], n int) float64 {
		switch n {
		case 1:
			return -1
		case 3:
			return 0.5
		default:
			return 1
		}
	}

	report, err := Check[int, string](context.Background(), p, h, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count(ViolationNegativeHeuristic))
	assert.Equal(t, 1, report.Count(ViolationGoalHeuristicNonZero))
	assert.False(t, report.OK())
}

func TestCheck_Truncated(t *testing.T) {
	unbounded := &search.ProblemFuncs[int, string]{
		ActionsFunc:   func(int) []string { return []string{"next"} },
		SuccessorFunc: func(n int, _ string) int { return n + 1 },
	}

	report, err := Check[int, string](context.Background(), unbounded, nil, &Config{MaxStates: 25})
	require.NoError(t, err)
	assert.True(t, report.Truncated)
	assert.Equal(t, 25, report.StatesVisited)
}

func TestCheck_MaxViolations(t *testing.T) {
	p := line(50)
	p.CostFunc = func(int, string) float64 { return -1 }

	report, err := Check[int, string](context.Background(), p, nil, &Config{MaxViolations: 3})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(report.Violations), 3)
	assert.Less(t, report.StatesVisited, 51)
}

func TestCheck_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Check[int, string](ctx, line(3), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
}

func TestCheck_NilProblem(t *testing.T) {
	_, err := Check[int, string](context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrNilProblem)
}

func TestValidatePath(t *testing.T) {
	p := line(3)

	t.Run("valid", func(t *testing.T) {
		check, err := ValidatePath[int, string](p, []string{"+", "+", "-", "+", "+"})
		require.NoError(t, err)
		assert.Equal(t, 5, check.Steps)
		assert.Equal(t, 5.0, check.Cost)
		assert.Equal(t, "3", check.FinalState)
	})

	t.Run("action not offered", func(t *testing.T) {
		check, err := ValidatePath[int, string](p, []string{"+", "-", "-"})
		assert.ErrorIs(t, err, ErrActionNotOffered)
		assert.Equal(t, 2, check.Steps)
		assert.Equal(t, "0", check.FinalState)
	})

	t.Run("not a goal", func(t *testing.T) {
		_, err := ValidatePath[int, string](p, []string{"+"})
		assert.ErrorIs(t, err, ErrPathNotGoal)
	})

	t.Run("empty path from goal", func(t *testing.T) {
		atGoal := line(0)
		check, err := ValidatePath[int, string](atGoal, []string{})
		require.NoError(t, err)
		assert.Equal(t, 0, check.Steps)
	})

	t.Run("engine solutions replay", func(t *testing.T) {
		for _, s := range search.AllStrategies {
			result, err := search.NewEngine[int, string](nil).Search(
				context.Background(), p, s, search.ZeroHeuristic[int, string])
			require.NoError(t, err)
			require.True(t, result.Found(), s.String())

			check, err := ValidatePath[int, string](p, result.Actions)
			require.NoError(t, err, s.String())
			assert.Equal(t, result.Cost, check.Cost, s.String())
		}
	})
}
