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

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMode rejects task creation before anything is scheduled.
	ErrInvalidMode = errors.New("invalid extraction mode")

	// ErrTaskNotFound is returned for unknown task IDs on stream or lookup.
	ErrTaskNotFound = errors.New("task not found")
)

// StageError is fatal to one task: it halts the remaining stages and is
// recorded as a terminal_failure event. Failures never cross task boundaries.
type StageError struct {
	Stage          string
	Classification string
	Err            error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err as a fatal failure of the named stage.
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Classification: "stage_execution_failed", Err: err}
}
