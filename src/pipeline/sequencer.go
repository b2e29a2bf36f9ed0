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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/darraghmahns/DES-Demo/src/compliance"
	"github.com/darraghmahns/DES-Demo/src/enrich"
	"github.com/darraghmahns/DES-Demo/src/extract"
	"github.com/darraghmahns/DES-Demo/src/logging"
	"github.com/darraghmahns/DES-Demo/src/model"
	"github.com/darraghmahns/DES-Demo/src/pii"
	"github.com/darraghmahns/DES-Demo/src/render"
	"github.com/darraghmahns/DES-Demo/src/storage"
	"github.com/darraghmahns/DES-Demo/src/stream"
	"github.com/darraghmahns/DES-Demo/src/tasks"
)

// GPT-4o pricing, USD per token.
const (
	promptTokenRate     = 2.50 / 1_000_000
	completionTokenRate = 10.00 / 1_000_000
)

var realEstateStages = []string{"Load", "Render", "Extract", "Validate", "Verify", "Enrich", "Compliance", "Output"}
var govStages = []string{"Load", "Render", "Extract", "Validate", "Verify", "PII Scan", "Output"}

func stagesFor(mode model.Mode) []string {
	if mode == model.ModeGov {
		return govStages
	}
	return realEstateStages
}

// Sequencer drives one task through its mode's stage list, appending an event
// to the task's log after every observable step. Any stage error stops the
// run and is reported as a terminal_failure event; the task itself never
// panics the process.
type Sequencer struct {
	broker   *stream.Broker
	manager  *tasks.Manager
	source   Source
	renderer render.Renderer
	protocol *extract.Protocol
	checker  *compliance.Checker
	enricher enrich.Enricher
	store    storage.ResultStore
	stats    *logging.PipelineStats
}

func NewSequencer(
	broker *stream.Broker,
	manager *tasks.Manager,
	source Source,
	renderer render.Renderer,
	protocol *extract.Protocol,
	checker *compliance.Checker,
	enricher enrich.Enricher,
	store storage.ResultStore,
	stats *logging.PipelineStats,
) *Sequencer {
	return &Sequencer{
		broker:   broker,
		manager:  manager,
		source:   source,
		renderer: renderer,
		protocol: protocol,
		checker:  checker,
		enricher: enricher,
		store:    store,
		stats:    stats,
	}
}

// Run implements tasks.Runner.
func (s *Sequencer) Run(ctx context.Context, task model.Task) {
	ctx, span := logging.StartSpan(ctx, "pipeline.run")
	defer span.End()

	s.stats.UpdateStats(ctx, 1, 0, 0, 0, &task)

	cacheHit, err := s.execute(ctx, task)
	if err != nil {
		msg := err.Error()
		classification := "stage_execution_failed"
		stage := ""
		var stageErr *model.StageError
		if errors.As(err, &stageErr) {
			classification = stageErr.Classification
			stage = stageErr.Stage
		}
		logging.Log(fmt.Sprintf("Task %s failed at stage %q: %v", task.ID, stage, err), slog.LevelError)
		s.broker.Append(task.ID, model.EventTerminalFailure, model.FailurePayload{
			Message:        msg,
			Classification: classification,
			Stage:          stage,
		})
		s.manager.MarkError(task.ID)
		s.stats.UpdateStats(ctx, 0, 0, 1, 0, nil)
		return
	}

	s.manager.MarkComplete(task.ID)
	var hits uint64
	if cacheHit {
		hits = 1
	}
	s.stats.UpdateStats(ctx, 0, 1, 0, hits, nil)
}

func (s *Sequencer) execute(ctx context.Context, task model.Task) (cacheHit bool, err error) {
	stages := stagesFor(task.Mode)
	total := len(stages)
	step := 0

	startStage := func(title string) {
		step++
		s.broker.Append(task.ID, model.EventStageStarted, model.StagePayload{
			Step: step, Total: total, Title: title, Status: "running",
		})
	}
	completeStage := func(title string, data map[string]any) {
		s.broker.Append(task.ID, model.EventStageCompleted, model.StagePayload{
			Step: step, Total: total, Title: title, Status: "completed", Data: data,
		})
	}

	// Load
	startStage("Load")
	doc, filename, err := s.source.Load(ctx, task.SubjectRef)
	if err != nil {
		return false, model.NewStageError("Load", err)
	}
	fileHash := Fingerprint(doc)

	if cached, ok, cerr := s.store.FindCached(ctx, fileHash, task.Mode); cerr != nil {
		logging.Log(fmt.Sprintf("Cache lookup failed for %s: %v", fileHash[:12], cerr), slog.LevelWarn)
	} else if ok {
		completeStage("Load", map[string]any{"file": filename, "bytes": len(doc), "cache_hit": true})
		logging.Log(fmt.Sprintf("Task %s served from cache (hash=%s)", task.ID, fileHash[:12]), slog.LevelInfo)
		s.broker.Append(task.ID, model.EventTerminalSuccess, cached.Result)
		return true, nil
	}
	completeStage("Load", map[string]any{"file": filename, "bytes": len(doc), "cache_hit": false})

	// Render
	startStage("Render")
	pages, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return false, model.NewStageError("Render", err)
	}
	completeStage("Render", map[string]any{"pages": len(pages)})

	// Extract
	startStage("Extract")
	out, err := s.protocol.ExtractPass(ctx, pages, task.Mode)
	if err != nil {
		return false, model.NewStageError("Extract", err)
	}
	s.broker.Append(task.ID, model.EventExtractionReady, model.ExtractionPayload{ValidatedData: out.Data})
	completeStage("Extract", nil)

	// Validate reports what the extraction pass's schema decode found.
	startStage("Validate")
	s.broker.Append(task.ID, model.EventValidationResult, model.ValidationPayload{
		Success: len(out.ValidationErrors) == 0,
		Errors:  out.ValidationErrors,
	})
	completeStage("Validate", map[string]any{"schema_failed": out.SchemaFailed})

	// Verify
	startStage("Verify")
	if err := s.protocol.VerifyPass(ctx, pages, &out); err != nil {
		return false, model.NewStageError("Verify", err)
	}
	s.broker.Append(task.ID, model.EventCitationsReady, model.CitationsPayload{
		Citations:         out.Citations,
		OverallConfidence: out.OverallConfidence,
	})
	completeStage("Verify", map[string]any{"citations": len(out.Citations)})

	result := model.ExtractionResult{
		Mode:                task.Mode,
		SourceFile:          filename,
		FileHash:            fileHash,
		ExtractionTimestamp: time.Now().UTC().Format(time.RFC3339),
		PagesProcessed:      len(pages),
		Data:                out.Data,
		ValidationErrors:    out.ValidationErrors,
		Citations:           out.Citations,
		OverallConfidence:   out.OverallConfidence,
	}

	switch task.Mode {
	case model.ModeRealEstate:
		// Enrich
		startStage("Enrich")
		parcel, err := s.enricher.Enrich(ctx, out.Data)
		if err != nil {
			return false, model.NewStageError("Enrich", err)
		}
		result.Enrichment = parcel
		s.broker.Append(task.ID, model.EventDomainResult, model.DomainPayload{Enrichment: parcel})
		completeStage("Enrich", map[string]any{"parcel_found": parcel != nil})

		// Compliance
		startStage("Compliance")
		report, err := s.checker.Check(ctx, out.Data, transactionType(out.Data))
		if err != nil {
			return false, model.NewStageError("Compliance", err)
		}
		result.ComplianceReport = report
		s.broker.Append(task.ID, model.EventDomainResult, model.DomainPayload{Compliance: report})
		completeStage("Compliance", map[string]any{
			"status":       string(report.OverallStatus),
			"requirements": report.RequirementCount(),
		})

	case model.ModeGov:
		// PII Scan
		startStage("PII Scan")
		rawPages, usage, err := s.protocol.Engine().RawText(ctx, pages)
		if err != nil {
			return false, model.NewStageError("PII Scan", err)
		}
		out.Usage.Add(usage)
		report := pii.ScanPages(rawPages)
		result.PIIReport = report
		s.broker.Append(task.ID, model.EventDomainResult, model.DomainPayload{PII: report})
		completeStage("PII Scan", map[string]any{
			"findings":   len(report.Findings),
			"risk_level": string(report.RiskLevel),
		})
	}

	// Output
	startStage("Output")
	result.Usage = out.Usage
	result.CostUSD = costUSD(out.Usage)

	entry := storage.CachedExtraction{
		FileHash: fileHash,
		Mode:     task.Mode,
		TaskID:   task.ID,
		Result:   result,
	}
	if err := s.store.SaveResult(ctx, entry); err != nil {
		// The caller still gets the result; only the cache misses out.
		logging.Log(fmt.Sprintf("Failed to persist result for task %s: %v", task.ID, err), slog.LevelWarn)
	}
	completeStage("Output", nil)

	s.broker.Append(task.ID, model.EventTerminalSuccess, result)
	return false, nil
}

func transactionType(data map[string]any) string {
	if t, ok := data["transaction_type"].(string); ok && t != "" {
		return t
	}
	return "purchase"
}

func costUSD(u model.Usage) float64 {
	return float64(u.PromptTokens)*promptTokenRate + float64(u.CompletionTokens)*completionTokenRate
}
