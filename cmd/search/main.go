// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command search solves weighted-graph problems with the search engine.
//
// Usage:
//
//	search solve problem.yaml --strategy astar
//	search solve problem.yaml --strategy all --record
//	search solve problem.yaml --watch --metrics-addr :9090
//	search check problem.yaml
//	search history --limit 10
//	search history show <id>
//
// Exit codes: 0 success, 1 error, 2 no solution found, 3 contract
// violations reported by check, 4 every search hit --timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	a.close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		code := 1
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			code = exitErr.code
		}
		stop()
		os.Exit(code)
	}
}

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

const (
	exitNoSolution = 2
	exitViolations = 3
	exitTimedOut   = 4
)
