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

package extract

import (
	"context"

	"github.com/darraghmahns/DES-Demo/src/model"
)

// Engine is the opaque model-calling collaborator. Extract must run with a
// fixed, zero-variance configuration so repeated runs over the same pages
// agree. Verify independently re-reads the same pages and cites a source
// location for every extractable field. RawText returns per-page plain text
// for the sensitive-data scan.
type Engine interface {
	Name() string
	Extract(ctx context.Context, pages []string, mode model.Mode) (map[string]any, model.Usage, error)
	Verify(ctx context.Context, pages []string, data map[string]any) ([]model.Citation, model.Usage, error)
	RawText(ctx context.Context, pages []string) ([]string, model.Usage, error)
}

// ComputeOverallConfidence is the arithmetic mean of citation confidences.
// Advisory only: it is surfaced to the caller, never used to retry or reject.
// NOT FOUND citations carry 0.0 and still count, lowering the mean.
func ComputeOverallConfidence(citations []model.Citation) float64 {
	if len(citations) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, c := range citations {
		sum += c.Confidence
	}
	return sum / float64(len(citations))
}
