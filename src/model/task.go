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

import "time"

type Mode string

const (
	ModeRealEstate Mode = "real_estate"
	ModeGov        Mode = "gov"
)

// ValidMode reports whether m is a recognized extraction mode.
func ValidMode(m Mode) bool {
	return m == ModeRealEstate || m == ModeGov
}

type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskRunning  TaskStatus = "running"
	TaskComplete TaskStatus = "complete"
	TaskError    TaskStatus = "error"
)

// Terminal reports whether s is a terminal lifecycle state.
func (s TaskStatus) Terminal() bool {
	return s == TaskComplete || s == TaskError
}

// Task is one scheduled run of the extraction pipeline against one document.
// Lifecycle state is owned by the task manager; the sequencer only mutates it
// through manager methods.
type Task struct {
	ID         string     `json:"task_id"`
	Mode       Mode       `json:"mode"`
	SubjectRef string     `json:"filename"`
	Status     TaskStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	TerminalAt *time.Time `json:"terminal_at,omitempty"`
}

// TaskSummary is the discovery view returned by the task-listing endpoints.
type TaskSummary struct {
	ID         string     `json:"task_id"`
	Mode       Mode       `json:"mode"`
	SubjectRef string     `json:"filename"`
	Status     TaskStatus `json:"status"`
	EventCount int        `json:"event_count"`
	CreatedAt  time.Time  `json:"created_at"`
}
