// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianSearch/services/search"
	"github.com/AleutianAI/AleutianSearch/services/search/history"
)

const diamondGraph = `
name: diamond
start: A
goals: [D]
edges:
  - {from: A, to: B, cost: 1, action: ab}
  - {from: A, to: C}
  - {from: B, to: D, cost: 5}
  - {from: C, to: D, cost: 1}
heuristic:
  A: 2
  C: 1
`

const unreachableGraph = `
name: unreachable
start: A
goals: [Z]
nodes: [A, B, Z]
edges:
  - {from: A, to: B}
`

const badHeuristicGraph = `
name: bad-heuristic
start: A
goals: [B]
edges:
  - {from: A, to: B, cost: 2}
heuristic:
  A: 1
  B: 3
`

// cliEnv is an isolated config and history directory for one test.
type cliEnv struct {
	t          *testing.T
	dir        string
	configPath string
	historyDir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := &cliEnv{
		t:          t,
		dir:        dir,
		configPath: filepath.Join(dir, "search.yaml"),
		historyDir: filepath.Join(dir, "history"),
	}

	cfg := fmt.Sprintf(`search:
  strategy: astar
logging:
  level: error
telemetry:
  trace_exporter: none
  metric_exporter: none
history:
  path: %s
`, env.historyDir)
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0644))
	return env
}

func (e *cliEnv) writeProblem(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// run executes the CLI in machine output mode and returns stdout.
func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	root, a := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", e.configPath, "-o", "machine"}, args...))

	err := root.ExecuteContext(context.Background())
	a.close()
	return out.String(), err
}

func exitCode(err error) int {
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return -1
}

func TestSolve_DefaultStrategyFromConfig(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)

	out, err := env.run("solve", path)
	require.NoError(t, err)

	assert.Contains(t, out, "strategy=astar\n")
	assert.Contains(t, out, "status=succeeded\n")
	assert.Contains(t, out, "path=A->C,C->D\n")
	assert.Contains(t, out, "steps=2\n")
	assert.Contains(t, out, "cost=2\n")
	assert.Contains(t, out, "peak_frontier=")
}

func TestSolve_StrategyFlag(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)

	out, err := env.run("solve", path, "--strategy", "bfs")
	require.NoError(t, err)

	assert.Contains(t, out, "strategy=bfs\n")
	assert.Contains(t, out, "path=ab,B->D\n")
	assert.Contains(t, out, "cost=6\n")
}

func TestSolve_AllStrategies(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)

	out, err := env.run("solve", path, "-s", "all")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1+len(search.AllStrategies))
	assert.True(t, strings.HasPrefix(lines[0], "STRATEGY\tSTATUS\tSTEPS\tCOST"))

	for i, s := range search.AllStrategies {
		cells := strings.Split(lines[i+1], "\t")
		require.Len(t, cells, 7)
		assert.Equal(t, s.String(), cells[0])
		assert.Equal(t, "succeeded", cells[1])
	}
	assert.Equal(t, "2", strings.Split(lines[4], "\t")[3], "astar cost")
}

func TestSolve_UnknownStrategy(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)

	_, err := env.run("solve", path, "--strategy", "hill-climb")
	assert.ErrorIs(t, err, search.ErrUnknownStrategy)
}

func TestSolve_NoSolution(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("unreachable.yaml", unreachableGraph)

	out, err := env.run("solve", path, "-s", "ucs")
	require.Error(t, err)
	assert.Equal(t, exitNoSolution, exitCode(err))
	assert.Contains(t, out, "status=failed\n")
	assert.Contains(t, out, "reason=exhausted\n")
	assert.NotContains(t, out, "path=")
}

func TestSolve_ExpansionLimit(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)

	out, err := env.run("solve", path, "-s", "ucs", "--max-expansions", "1")
	assert.Equal(t, exitNoSolution, exitCode(err))
	assert.Contains(t, out, "reason=expansion_limit\n")
	assert.Contains(t, out, "expanded=1\n")
}

func TestSolve_TimeoutIsRecorded(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)

	out, err := env.run("solve", path, "-s", "bfs", "--record", "--timeout", "1ns")
	require.Error(t, err)
	assert.Equal(t, exitTimedOut, exitCode(err))
	assert.Contains(t, err.Error(), "timed out")
	assert.Contains(t, out, "reason=cancelled\n")

	store, err := history.Open(history.DefaultConfig(env.historyDir))
	require.NoError(t, err)
	defer store.Close()

	records, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bfs", records[0].Strategy)
	assert.Equal(t, string(search.StatusFailed), records[0].Status)
	assert.Equal(t, string(search.ReasonCancelled), records[0].Reason)
	assert.Contains(t, records[0].ErrorText, search.ErrSearchCancelled.Error())
}

func TestSolve_TimeoutAllStrategies(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)

	_, err := env.run("solve", path, "-s", "all", "--timeout", "1ns")
	assert.Equal(t, exitTimedOut, exitCode(err))
}

func TestSolve_MissingFile(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("solve", filepath.Join(env.dir, "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, -1, exitCode(err))
}

func TestSolve_RecordAndHistory(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)

	_, err := env.run("solve", path, "-s", "all", "--record")
	require.NoError(t, err)

	out, err := env.run("history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1+len(search.AllStrategies))
	assert.Equal(t, "ID\tCREATED\tPROBLEM\tSTRATEGY\tSTATUS\tSTEPS\tCOST", lines[0])
	for _, line := range lines[1:] {
		assert.Contains(t, line, "\tdiamond\t")
	}

	out, err = env.run("history", "--limit", "2")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	store, err := history.Open(history.DefaultConfig(env.historyDir))
	require.NoError(t, err)
	records, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NotEmpty(t, records)

	out, err = env.run("history", "show", records[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "id="+records[0].ID+"\n")
	assert.Contains(t, out, "problem=diamond\n")
	assert.Contains(t, out, "source="+path+"\n")
}

func TestHistory_Empty(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("history")
	require.NoError(t, err)
	assert.Contains(t, out, "no runs recorded yet")
}

func TestHistory_ShowUnknown(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("history", "show", "does-not-exist")
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestCheck_Clean(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)

	out, err := env.run("check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "states=4\n")
	assert.Contains(t, out, "transitions=4\n")
	assert.Contains(t, out, "goals=1\n")
	assert.Contains(t, out, "violations=0\n")
	assert.Contains(t, out, "OK: no contract violations found")
}

func TestCheck_Violations(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("bad.yaml", badHeuristicGraph)

	out, err := env.run("check", path)
	require.Error(t, err)
	assert.Equal(t, exitViolations, exitCode(err))
	assert.Contains(t, out, "violations=1\n")
	assert.Contains(t, out, "ERROR: goal_heuristic_nonzero at B")
}

func TestCheck_MaxStates(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)

	out, err := env.run("check", path, "--max-states", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "truncated=true\n")
}

func TestRoot_InvalidFlagOverride(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)

	_, err := env.run("--log-level", "loud", "solve", path)
	assert.Error(t, err)
}

func TestRoot_LogFileAnnounced(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeProblem("diamond.yaml", diamondGraph)
	logDir := filepath.Join(env.dir, "logs")

	cfg := fmt.Sprintf("logging:\n  level: debug\n  dir: %s\nhistory:\n  path: %s\n", logDir, env.historyDir)
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0644))

	_, err := env.run("solve", path)
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(logDir, "search_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "writing log file")
	assert.Contains(t, string(data), files[0])
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "problem.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 10*time.Millisecond, func(context.Context) {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("b"), 0644)
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchFile did not return after cancel")
	}
}

func TestWatchFile_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "problem.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	calls := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644)
	}()

	err := watchFile(ctx, path, 10*time.Millisecond, func(context.Context) { calls++ })
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestWatchFile_MissingDirectory(t *testing.T) {
	err := watchFile(context.Background(), filepath.Join(t.TempDir(), "missing", "p.yaml"), time.Millisecond, func(context.Context) {})
	assert.Error(t, err)
}

func TestParseStrategies(t *testing.T) {
	all, err := parseStrategies("ALL")
	require.NoError(t, err)
	assert.Equal(t, search.AllStrategies, all)

	one, err := parseStrategies("greedy")
	require.NoError(t, err)
	assert.Equal(t, []search.Strategy{search.StrategyGreedyBestFirst}, one)
}
