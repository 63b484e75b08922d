// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graphproblem loads an explicit directed weighted graph from YAML
// and exposes it as a search.Problem[string, string].
//
// File format:
//
//	name: romania
//	start: Arad
//	goals: [Bucharest]
//	nodes: [Arad, Sibiu, Bucharest]     # optional, for isolated nodes
//	edges:
//	  - {from: Arad, to: Sibiu, cost: 140}
//	  - {from: Sibiu, to: Bucharest, cost: 278, action: fast-road}
//	heuristic:                          # optional, missing nodes estimate 0
//	  Arad: 366
//	  Sibiu: 253
//
// An edge without a cost costs 1. An edge without an action is labelled
// "from->to". Actions are offered in file order.
package graphproblem

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianSearch/pkg/validation"
	"github.com/AleutianAI/AleutianSearch/services/search"
)

var graphValidate = validator.New()

// File is the YAML schema of a graph problem.
type File struct {
	Name        string             `yaml:"name" validate:"required"`
	Description string             `yaml:"description,omitempty"`
	Start       string             `yaml:"start" validate:"required"`
	Goals       []string           `yaml:"goals" validate:"required,min=1,dive,required"`
	Nodes       []string           `yaml:"nodes,omitempty" validate:"dive,required"`
	Edges       []EdgeSpec         `yaml:"edges" validate:"dive"`
	Heuristic   map[string]float64 `yaml:"heuristic,omitempty" validate:"dive,keys,required,endkeys,gte=0"`
}

// EdgeSpec is one directed edge in a File.
type EdgeSpec struct {
	From   string   `yaml:"from" validate:"required"`
	To     string   `yaml:"to" validate:"required"`
	Cost   *float64 `yaml:"cost,omitempty" validate:"omitempty,gte=0"`
	Action string   `yaml:"action,omitempty"`
}

type edge struct {
	to   string
	cost float64
}

// Graph is a validated graph problem.
//
// Thread Safety: Immutable after construction. Safe for concurrent searches.
type Graph struct {
	name        string
	description string
	start       string
	goals       map[string]struct{}
	nodes       []string
	actions     map[string][]string
	edges       map[string]map[string]edge
	estimates   map[string]float64
	edgeCount   int
}

var _ search.Problem[string, string] = (*Graph)(nil)

// Load reads and parses a graph problem file.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph problem %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Parse decodes and validates a graph problem.
//
// Inputs:
//   - data: YAML document. Unknown fields are rejected.
//
// Outputs:
//   - *Graph: The validated graph.
//   - error: Wraps ErrDecode for malformed YAML, ErrInvalidGraph for
//     schema or consistency failures.
func Parse(data []byte) (*Graph, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrDecode)
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return New(&f)
}

// New builds a Graph from an in-memory File.
func New(f *File) (*Graph, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil file", ErrInvalidGraph)
	}
	if err := graphValidate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}

	g := &Graph{
		name:        f.Name,
		description: f.Description,
		start:       f.Start,
		goals:       make(map[string]struct{}, len(f.Goals)),
		actions:     make(map[string][]string),
		edges:       make(map[string]map[string]edge),
		estimates:   make(map[string]float64, len(f.Heuristic)),
		edgeCount:   len(f.Edges),
	}

	declared := make(map[string]struct{})
	for _, n := range f.Nodes {
		declared[n] = struct{}{}
	}

	for i, e := range f.Edges {
		declared[e.From] = struct{}{}
		declared[e.To] = struct{}{}

		action := e.Action
		if action == "" {
			action = e.From + "->" + e.To
		}
		if err := validation.ValidateLabel(action); err != nil {
			return nil, fmt.Errorf("%w: edge %d: %w", ErrInvalidGraph, i, err)
		}
		cost := 1.0
		if e.Cost != nil {
			cost = *e.Cost
		}

		out := g.edges[e.From]
		if out == nil {
			out = make(map[string]edge)
			g.edges[e.From] = out
		}
		if _, dup := out[action]; dup {
			return nil, fmt.Errorf("%w: edge %d: duplicate action %q from %q", ErrInvalidGraph, i, action, e.From)
		}
		out[action] = edge{to: e.To, cost: cost}
		g.actions[e.From] = append(g.actions[e.From], action)
	}

	if _, ok := declared[f.Start]; !ok {
		return nil, fmt.Errorf("%w: start %q is not a node", ErrInvalidGraph, f.Start)
	}
	for _, goal := range f.Goals {
		if _, ok := declared[goal]; !ok {
			return nil, fmt.Errorf("%w: goal %q is not a node", ErrInvalidGraph, goal)
		}
		g.goals[goal] = struct{}{}
	}
	for node, h := range f.Heuristic {
		if _, ok := declared[node]; !ok {
			return nil, fmt.Errorf("%w: heuristic for unknown node %q", ErrInvalidGraph, node)
		}
		g.estimates[node] = h
	}

	g.nodes = make([]string, 0, len(declared))
	for n := range declared {
		g.nodes = append(g.nodes, n)
	}
	sort.Strings(g.nodes)
	if err := validation.ValidateLabels(g.nodes); err != nil {
		return nil, fmt.Errorf("%w: nodes: %w", ErrInvalidGraph, err)
	}
	return g, nil
}

// Name returns the problem name.
func (g *Graph) Name() string { return g.name }

// Description returns the optional free-text description.
func (g *Graph) Description() string { return g.description }

// Nodes returns every node, sorted.
func (g *Graph) Nodes() []string { return slices.Clone(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edgeCount }

// InitialState implements search.Problem.
func (g *Graph) InitialState() string { return g.start }

// IsGoal implements search.Problem.
func (g *Graph) IsGoal(state string) bool {
	_, ok := g.goals[state]
	return ok
}

// Actions implements search.Problem. Labels are returned in file order.
func (g *Graph) Actions(state string) []string {
	return slices.Clone(g.actions[state])
}

// Successor implements search.Problem. An action not offered in state
// leaves the state unchanged.
func (g *Graph) Successor(state, action string) string {
	if e, ok := g.edges[state][action]; ok {
		return e.to
	}
	return state
}

// Cost implements search.Problem. An action not offered in state costs 0.
func (g *Graph) Cost(state, action string) float64 {
	return g.edges[state][action].cost
}

// HasHeuristic reports whether the file declared any estimates.
func (g *Graph) HasHeuristic() bool { return len(g.estimates) > 0 }

// Heuristic returns the table heuristic from the file. Nodes without an
// entry estimate 0.
func (g *Graph) Heuristic() search.Heuristic[string, string] {
	return func(_ search.Problem[string, string], state string) float64 {
		return g.estimates[state]
	}
}
