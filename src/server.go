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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/darraghmahns/DES-Demo/src/compliance"
	"github.com/darraghmahns/DES-Demo/src/logging"
	"github.com/darraghmahns/DES-Demo/src/model"
	"github.com/darraghmahns/DES-Demo/src/storage"
	"github.com/darraghmahns/DES-Demo/src/stream"
	"github.com/darraghmahns/DES-Demo/src/tasks"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// APIServer holds dependencies for the HTTP handlers
type APIServer struct {
	baseCtx context.Context
	manager *tasks.Manager
	broker  *stream.Broker
	checker *compliance.Checker
	store   storage.ResultStore
	stats   *logging.PipelineStats
}

// StartAPIServer starts the HTTP server with graceful shutdown and OTel.
// It blocks until ctx is cancelled or the listener fails.
func StartAPIServer(ctx context.Context, port string, manager *tasks.Manager, broker *stream.Broker, checker *compliance.Checker, store storage.ResultStore, stats *logging.PipelineStats) error {
	// Setup OpenTelemetry
	otelShutdown, err := logging.SetupOTelSDK(context.Background())
	if err != nil {
		return fmt.Errorf("failed to setup OTel SDK: %w", err)
	}
	defer func() {
		// Ensure OTel flushes spans before exiting
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "OTel shutdown error: %v\n", err)
		}
	}()

	srv := &APIServer{
		baseCtx: ctx,
		manager: manager,
		broker:  broker,
		checker: checker,
		store:   store,
		stats:   stats,
	}

	// Wrap Mux with OTel Middleware
	// CRITICAL: We must use the returned handler from otelhttp.NewHandler
	otelHandler := otelhttp.NewHandler(srv.routes(), "extraction-api-server")

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: otelHandler,
	}

	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("API Server starting on :%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server startup failed: %w", err)
	case <-ctx.Done():
		fmt.Println("\nShutdown signal received, closing server...")

		// Gracefully shut down the HTTP server (max 10s timeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		fmt.Println("Server exited cleanly")
	}

	return nil
}

func (s *APIServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/extract", s.startExtractHandler)
	mux.HandleFunc("GET /api/extract/{id}/status", s.taskStatusHandler)
	mux.HandleFunc("GET /api/extract/{id}/stream", s.streamHandler)
	mux.HandleFunc("GET /api/tasks", s.tasksHandler)
	mux.HandleFunc("GET /api/tasks/active", s.activeTasksHandler)
	mux.HandleFunc("GET /api/extractions/cached", s.cachedHandler)
	mux.HandleFunc("GET /api/compliance-check", s.complianceCheckHandler)
	mux.HandleFunc("/status", s.statusHandler)
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

type startExtractRequest struct {
	Filename string     `json:"filename"`
	Mode     model.Mode `json:"mode"`
}

type startExtractResponse struct {
	TaskID    string           `json:"task_id"`
	Status    model.TaskStatus `json:"status"`
	StreamURL string           `json:"stream_url"`
	Reused    bool             `json:"reused"`
}

func (s *APIServer) startExtractHandler(w http.ResponseWriter, r *http.Request) {
	var req startExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	// Duplicate requests for an in-flight document attach to the existing
	// task instead of starting a second run.
	if existing, ok := s.manager.FindActive(req.Mode, req.Filename); ok {
		writeJSON(w, http.StatusOK, startExtractResponse{
			TaskID:    existing.ID,
			Status:    existing.Status,
			StreamURL: "/api/extract/" + existing.ID + "/stream",
			Reused:    true,
		})
		return
	}

	id, err := s.manager.CreateTask(req.Mode, req.Filename)
	if err != nil {
		if errors.Is(err, model.ErrInvalidMode) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	// The pipeline outlives the HTTP request, so it runs on the server's
	// lifetime context rather than the request's.
	if err := s.manager.Schedule(s.baseCtx, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to schedule task")
		return
	}

	writeJSON(w, http.StatusAccepted, startExtractResponse{
		TaskID:    id,
		Status:    model.TaskRunning,
		StreamURL: "/api/extract/" + id + "/stream",
	})
}

func (s *APIServer) taskStatusHandler(w http.ResponseWriter, r *http.Request) {
	task, err := s.manager.GetTask(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// streamHandler serves a task's event log over SSE: full replay first, then
// the live feed until the terminal event or client disconnect.
func (s *APIServer) streamHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	replay, live, cancelSub, err := s.broker.Subscribe(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	defer cancelSub()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent := func(ev model.Event) bool {
		data, err := json.Marshal(ev)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	for _, ev := range replay {
		if !writeEvent(ev) {
			return
		}
	}

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-live:
			if !open {
				return
			}
			if !writeEvent(ev) {
				return
			}
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *APIServer) tasksHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tasks": s.manager.ListAll()})
}

func (s *APIServer) activeTasksHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tasks": s.manager.ListActive()})
}

type cachedLookupResponse struct {
	Cached     bool                    `json:"cached"`
	TaskID     string                  `json:"task_id,omitempty"`
	Extraction *model.ExtractionResult `json:"extraction,omitempty"`
}

// cachedHandler checks whether a document with this fingerprint and mode has
// already been extracted, returning the stored result on a hit.
func (s *APIServer) cachedHandler(w http.ResponseWriter, r *http.Request) {
	fileHash := r.URL.Query().Get("file_hash")
	if fileHash == "" {
		writeError(w, http.StatusBadRequest, "file_hash is required")
		return
	}
	mode := model.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = model.ModeRealEstate
	}

	entry, found, err := s.store.FindCached(r.Context(), fileHash, mode)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cache lookup failed")
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, cachedLookupResponse{Cached: false})
		return
	}
	writeJSON(w, http.StatusOK, cachedLookupResponse{
		Cached:     true,
		TaskID:     entry.TaskID,
		Extraction: &entry.Result,
	})
}

func (s *APIServer) complianceCheckHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	transactionType := q.Get("transaction_type")
	if transactionType == "" {
		transactionType = "purchase"
	}

	report, err := s.checker.CheckAddress(r.Context(), q.Get("state"), q.Get("county"), q.Get("city"), transactionType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "compliance lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type statusPayload struct {
	logging.StatusResponse
	TaskCounts map[model.TaskStatus]int `json:"task_counts"`
}

func (s *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusPayload{
		StatusResponse: s.stats.GetStats(),
		TaskCounts:     s.manager.Counts(),
	})
}
