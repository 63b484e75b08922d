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
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("aleutian.search")

var (
	// searchRunsTotal counts searches by strategy and outcome.
	// Labels: status is "succeeded", "failed" or "error"; reason is a Reason
	// value or "" on success.
	searchRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "search_runs_total",
		Help: "Total searches by strategy, status and failure reason",
	}, []string{"strategy", "status", "reason"})

	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "search_duration_seconds",
		Help:    "Search wall-clock duration",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10},
	}, []string{"strategy"})

	searchExpanded = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "search_expanded_states",
		Help:    "States expanded per search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	}, []string{"strategy"})

	searchSolutionLength = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "search_solution_length",
		Help:    "Actions in successful solutions",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 500},
	}, []string{"strategy"})
)

// startSearchSpan creates a span for one search.
func startSearchSpan(ctx context.Context, strategy Strategy) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Engine.Search",
		trace.WithAttributes(
			attribute.String("search.strategy", strategy.String()),
		),
	)
}

// finishSearchSpan sets the result attributes on a search span.
func finishSearchSpan[A comparable](span trace.Span, result *Result[A], err error) {
	if result != nil {
		span.SetAttributes(
			attribute.String("search.status", string(result.Status)),
			attribute.String("search.reason", string(result.Reason)),
			attribute.Int("search.actions", len(result.Actions)),
			attribute.Float64("search.cost", result.Cost),
			attribute.Int("search.expanded", result.Stats.Expanded),
			attribute.Int("search.generated", result.Stats.Generated),
			attribute.Int("search.peak_frontier", result.Stats.PeakFrontier),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// recordSearchMetrics records prometheus metrics for one search.
func recordSearchMetrics[A comparable](strategy Strategy, result *Result[A], err error) {
	name := strategy.String()
	if result == nil {
		searchRunsTotal.WithLabelValues(name, "error", "").Inc()
		return
	}

	status := string(result.Status)
	if err != nil && result.Reason != ReasonCancelled {
		status = "error"
	}
	searchRunsTotal.WithLabelValues(name, status, string(result.Reason)).Inc()
	searchDuration.WithLabelValues(name).Observe(result.Stats.Duration.Seconds())
	searchExpanded.WithLabelValues(name).Observe(float64(result.Stats.Expanded))
	if result.Found() {
		searchSolutionLength.WithLabelValues(name).Observe(float64(len(result.Actions)))
	}
}
