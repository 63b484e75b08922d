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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("aleutian.search.conformance")

var (
	checkLatency    metric.Float64Histogram
	checkStates     metric.Int64Histogram
	violationsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		checkLatency, err = meter.Float64Histogram(
			"conformance_check_duration_seconds",
			metric.WithDescription("Duration of problem contract checks"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		checkStates, err = meter.Int64Histogram(
			"conformance_check_states",
			metric.WithDescription("States visited per contract check"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		violationsTotal, err = meter.Int64Counter(
			"conformance_violations_total",
			metric.WithDescription("Contract violations found, by kind"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordCheckMetrics records one finished Check run.
func recordCheckMetrics(ctx context.Context, duration time.Duration, report *Report) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("truncated", report.Truncated))
	checkLatency.Record(ctx, duration.Seconds(), attrs)
	checkStates.Record(ctx, int64(report.StatesVisited), attrs)

	counts := make(map[ViolationKind]int64)
	for _, v := range report.Violations {
		counts[v.Kind]++
	}
	for kind, n := range counts {
		violationsTotal.Add(ctx, n, metric.WithAttributes(attribute.String("kind", string(kind))))
	}
}
