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
	"fmt"
	"log/slog"

	"github.com/darraghmahns/DES-Demo/src/logging"
	"github.com/darraghmahns/DES-Demo/src/model"
)

// Outcome is the merged result of the extraction and verification passes.
// SchemaFailed reports that even the lenient decode could not shape the
// data; the pipeline continues with whatever was recovered — validation
// failure is reported, not fatal.
type Outcome struct {
	Data              map[string]any
	ValidationErrors  []string
	SchemaFailed      bool
	Citations         []model.Citation
	OverallConfidence float64
	Usage             model.Usage
}

// Protocol runs the two-pass extraction/verification flow against one
// document. Extraction and verification are independent calls over the same
// pages, so a hallucinated or mis-read field gets checked against the source
// and leaves a per-field audit trail instead of one opaque answer.
type Protocol struct {
	engine Engine
}

func NewProtocol(engine Engine) *Protocol {
	return &Protocol{engine: engine}
}

// Engine exposes the underlying collaborator, for callers that need the raw
// text pass.
func (p *Protocol) Engine() Engine { return p.engine }

// ExtractPass runs the single deterministic extraction call and the
// strict-then-lenient schema decode.
func (p *Protocol) ExtractPass(ctx context.Context, pages []string, mode model.Mode) (Outcome, error) {
	raw, usage, err := p.engine.Extract(ctx, pages, mode)
	if err != nil {
		return Outcome{}, fmt.Errorf("extraction pass: %w", err)
	}

	out := Outcome{Usage: usage}
	validated, errs := ValidateStrict(raw, mode)
	if len(errs) == 0 {
		out.Data = validated
		return out, nil
	}

	out.ValidationErrors = errs
	lenient, lerr := ValidateLenient(raw, mode)
	if lerr != nil {
		// Keep the raw map so later stages still have something to cite.
		logging.Log(fmt.Sprintf("Lenient schema decode failed: %v", lerr), slog.LevelWarn)
		out.SchemaFailed = true
		out.Data = raw
		return out, nil
	}
	out.Data = lenient
	return out, nil
}

// VerifyPass runs the independent citation pass over the same pages and
// computes the advisory overall confidence.
func (p *Protocol) VerifyPass(ctx context.Context, pages []string, out *Outcome) error {
	citations, usage, err := p.engine.Verify(ctx, pages, out.Data)
	if err != nil {
		return fmt.Errorf("verification pass: %w", err)
	}
	out.Usage.Add(usage)
	out.Citations = citations
	out.OverallConfidence = ComputeOverallConfidence(citations)
	return nil
}

// Run executes both passes back to back. The sequencer uses the split
// ExtractPass/VerifyPass entry points so it can emit events between them;
// Run is the single-call form for library callers.
func (p *Protocol) Run(ctx context.Context, pages []string, mode model.Mode) (Outcome, error) {
	out, err := p.ExtractPass(ctx, pages, mode)
	if err != nil {
		return Outcome{}, err
	}
	if err := p.VerifyPass(ctx, pages, &out); err != nil {
		return Outcome{}, err
	}
	return out, nil
}
