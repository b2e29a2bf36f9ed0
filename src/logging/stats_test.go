// Copyright (c) 2026 Khaled Abbas
//
// This source code is licensed under the Business Source License 1.1.
//
// Change Date: 4 years after the first public release of this version.
// Change License: MIT
//
// On the Change Date, this version of the code automatically converts
// to the MIT License. Prior to that date, use is subject to the
// Additional Use Grant. See the LICENSE file for details.

package logging

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/darraghmahns/DES-Demo/src/model"
)

func TestUpdateStatsAccumulates(t *testing.T) {
	stats := NewPipelineStats("instance-1")
	ctx := context.Background()

	task := model.Task{ID: "task-1", Mode: model.ModeRealEstate}
	stats.UpdateStats(ctx, 1, 0, 0, 0, &task)
	stats.UpdateStats(ctx, 0, 1, 0, 1, nil)
	stats.UpdateStats(ctx, 1, 0, 0, 0, &task)
	stats.UpdateStats(ctx, 0, 0, 1, 0, nil)

	got := stats.GetStats()
	if got.ID != "instance-1" {
		t.Fatalf("id = %q, want instance-1", got.ID)
	}
	if got.TasksProcessed != 2 || got.TasksSucceeded != 1 || got.TasksFailed != 1 {
		t.Fatalf("counters = %d/%d/%d, want 2/1/1",
			got.TasksProcessed, got.TasksSucceeded, got.TasksFailed)
	}
	if got.CacheHits != 1 {
		t.Fatalf("cache hits = %d, want 1", got.CacheHits)
	}
	if got.CurrentTask != nil {
		t.Fatalf("current task = %+v, want nil after completion", got.CurrentTask)
	}
	if got.Uptime == "" {
		t.Fatal("uptime not populated")
	}
}

func TestUpdateStatsRecordsSpanAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	stats := NewPipelineStats("instance-2")
	ctx, span := StartSpan(context.Background(), "pipeline.run")
	stats.UpdateStats(ctx, 1, 0, 0, 0, nil)
	stats.UpdateStats(ctx, 0, 0, 1, 0, nil)
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(ended))
	}
	want := map[attribute.Key]float64{
		"pipeline_tasks_total":  1,
		"pipeline_tasks_failed": 1,
		"pipeline_error_rate":   1,
	}
	for _, attr := range ended[0].Attributes() {
		if expect, ok := want[attr.Key]; ok && attr.Value.AsFloat64() == expect {
			delete(want, attr.Key)
		}
	}
	if len(want) != 0 {
		t.Fatalf("span missing attributes %v", want)
	}
}
