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

package model

type EventType string

const (
	EventStageStarted     EventType = "stage_started"
	EventStageCompleted   EventType = "stage_completed"
	EventExtractionReady  EventType = "extraction_ready"
	EventValidationResult EventType = "validation_result"
	EventCitationsReady   EventType = "citations_ready"
	EventDomainResult     EventType = "domain_result"
	EventTerminalSuccess  EventType = "terminal_success"
	EventTerminalFailure  EventType = "terminal_failure"
)

// Terminal reports whether t ends a task's event stream.
func (t EventType) Terminal() bool {
	return t == EventTerminalSuccess || t == EventTerminalFailure
}

// Event is one immutable, sequence-numbered record of pipeline progress.
// Seq is per-task, monotonically increasing from 1. Payload is one of the
// *Payload structs below, selected by Type; consumers switch on Type.
type Event struct {
	Seq     int64     `json:"seq"`
	Type    EventType `json:"type"`
	Payload any       `json:"data"`
}

// StagePayload accompanies stage_started and stage_completed.
type StagePayload struct {
	Step   int            `json:"step"`
	Total  int            `json:"total"`
	Title  string         `json:"title"`
	Status string         `json:"status"`
	Data   map[string]any `json:"data,omitempty"`
}

// ExtractionPayload accompanies extraction_ready.
type ExtractionPayload struct {
	ValidatedData map[string]any `json:"validated_data"`
}

// ValidationPayload accompanies validation_result.
type ValidationPayload struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors,omitempty"`
}

// CitationsPayload accompanies citations_ready.
type CitationsPayload struct {
	Citations         []Citation `json:"citations"`
	OverallConfidence float64    `json:"overall_confidence"`
}

// DomainPayload accompanies domain_result. Exactly one of the report fields
// is set, depending on mode and stage.
type DomainPayload struct {
	Compliance *ComplianceReport `json:"compliance,omitempty"`
	PII        *PIIReport        `json:"pii,omitempty"`
	Enrichment *ParcelInfo       `json:"enrichment,omitempty"`
}

// FailurePayload accompanies terminal_failure.
type FailurePayload struct {
	Message        string `json:"message"`
	Classification string `json:"classification"`
	Stage          string `json:"stage,omitempty"`
}
