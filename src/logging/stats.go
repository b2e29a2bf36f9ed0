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
	"sync"
	"time"

	"github.com/darraghmahns/DES-Demo/src/model"
)

// StatusResponse for JSON output
type StatusResponse struct {
	ID             string      `json:"id"`
	StartTime      time.Time   `json:"start_time"`
	Uptime         string      `json:"uptime"`
	TasksProcessed uint64      `json:"tasks_processed"`
	TasksSucceeded uint64      `json:"tasks_succeeded"`
	TasksFailed    uint64      `json:"tasks_failed"`
	CacheHits      uint64      `json:"cache_hits"`
	CurrentTask    *model.Task `json:"current_task,omitempty"`
}

// PipelineStats tracks the internal state of the extraction instance
type PipelineStats struct {
	mu             sync.RWMutex
	statusResponse StatusResponse
}

func NewPipelineStats(instanceID string) *PipelineStats {
	return &PipelineStats{
		statusResponse: StatusResponse{
			ID:        instanceID,
			StartTime: time.Now(),
		},
	}
}

// UpdateStats updates the pipeline statistics. Counter totals are recorded
// as attributes on the span carried by ctx.
func (s *PipelineStats) UpdateStats(ctx context.Context, processed, succeeded, failed, cacheHits uint64, current *model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusResponse.TasksProcessed += processed
	s.statusResponse.TasksSucceeded += succeeded
	s.statusResponse.TasksFailed += failed
	s.statusResponse.CacheHits += cacheHits
	s.statusResponse.CurrentTask = current

	UpdateSpanValue(ctx, "pipeline_tasks_total", float64(s.statusResponse.TasksProcessed))
	UpdateSpanValue(ctx, "pipeline_tasks_succeeded", float64(s.statusResponse.TasksSucceeded))
	UpdateSpanValue(ctx, "pipeline_tasks_failed", float64(s.statusResponse.TasksFailed))
	UpdateSpanValue(ctx, "pipeline_cache_hits", float64(s.statusResponse.CacheHits))
	if s.statusResponse.TasksProcessed > 0 {
		UpdateSpanValue(ctx, "pipeline_error_rate", float64(s.statusResponse.TasksFailed)/float64(s.statusResponse.TasksProcessed))
	}
}

// GetStats returns the current statistics as a response struct
func (s *PipelineStats) GetStats() StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := s.statusResponse
	resp.Uptime = time.Since(s.statusResponse.StartTime).Truncate(time.Second).String()
	return resp
}
