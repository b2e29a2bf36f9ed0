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

package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/darraghmahns/DES-Demo/src/logging"
	"github.com/darraghmahns/DES-Demo/src/model"
	"github.com/darraghmahns/DES-Demo/src/stream"
)

// Runner executes the pipeline for one task. Implemented by the sequencer;
// the manager never knows what the stages are.
type Runner interface {
	Run(ctx context.Context, task model.Task)
}

// DefaultRetention caps how many terminal tasks (and their event logs) are
// kept for replay before the oldest are evicted.
const DefaultRetention = 50

// Manager owns the task registry. It is the only component that mutates
// lifecycle state; scheduling requests for the same task id are serialized
// under the registry lock so a task can never be double-scheduled.
type Manager struct {
	mu        sync.Mutex
	tasks     map[string]*model.Task
	broker    *stream.Broker
	runner    Runner
	retention int
}

func NewManager(broker *stream.Broker, retention int) *Manager {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Manager{
		tasks:     make(map[string]*model.Task),
		broker:    broker,
		retention: retention,
	}
}

// SetRunner wires the pipeline in after construction. Must be called before
// the first Schedule.
func (m *Manager) SetRunner(r Runner) { m.runner = r }

// CreateTask allocates a task in pending and registers its event log.
// It does not start anything.
func (m *Manager) CreateTask(mode model.Mode, subjectRef string) (string, error) {
	if !model.ValidMode(mode) {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidMode, mode)
	}

	id := uuid.New().String()[:12]
	task := &model.Task{
		ID:         id,
		Mode:       mode,
		SubjectRef: subjectRef,
		Status:     model.TaskPending,
		CreatedAt:  time.Now().UTC(),
	}

	m.mu.Lock()
	m.tasks[id] = task
	m.mu.Unlock()
	m.broker.Register(id)

	logging.Log(fmt.Sprintf("Task %s created (mode=%s, subject=%s)", id, mode, subjectRef), slog.LevelInfo)
	return id, nil
}

// Schedule transitions pending → running and hands the task to the runner on
// its own goroutine. Idempotent: a task that is already running or terminal
// is left alone, so concurrent duplicate requests start at most one run.
func (m *Manager) Schedule(ctx context.Context, taskID string) error {
	m.mu.Lock()
	task, ok := m.tasks[taskID]
	if !ok {
		m.mu.Unlock()
		return model.ErrTaskNotFound
	}
	if task.Status != model.TaskPending {
		m.mu.Unlock()
		return nil
	}
	task.Status = model.TaskRunning
	snapshot := *task
	m.mu.Unlock()

	go m.runner.Run(ctx, snapshot)
	return nil
}

// GetTask returns a copy of the task record.
func (m *Manager) GetTask(taskID string) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return model.Task{}, model.ErrTaskNotFound
	}
	return *task, nil
}

// FindActive returns a pending/running task for the same mode and subject,
// so duplicate start requests for one document reuse the in-flight task.
func (m *Manager) FindActive(mode model.Mode, subjectRef string) (model.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range m.tasks {
		if task.Mode == mode && task.SubjectRef == subjectRef && !task.Status.Terminal() {
			return *task, true
		}
	}
	return model.Task{}, false
}

// ListAll returns summaries of every known task, oldest first.
func (m *Manager) ListAll() []model.TaskSummary {
	return m.list(false)
}

// ListActive returns only non-terminal tasks, for client reconnection after
// a page reload.
func (m *Manager) ListActive() []model.TaskSummary {
	return m.list(true)
}

func (m *Manager) list(activeOnly bool) []model.TaskSummary {
	m.mu.Lock()
	snapshot := make([]*model.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		if activeOnly && task.Status.Terminal() {
			continue
		}
		snapshot = append(snapshot, task)
	}
	m.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].CreatedAt.Before(snapshot[j].CreatedAt)
	})

	out := make([]model.TaskSummary, 0, len(snapshot))
	for _, task := range snapshot {
		out = append(out, model.TaskSummary{
			ID:         task.ID,
			Mode:       task.Mode,
			SubjectRef: task.SubjectRef,
			Status:     task.Status,
			EventCount: m.broker.EventCount(task.ID),
			CreatedAt:  task.CreatedAt,
		})
	}
	return out
}

// MarkComplete records successful completion. No-op once terminal.
func (m *Manager) MarkComplete(taskID string) {
	m.markTerminal(taskID, model.TaskComplete)
}

// MarkError records a failed run. No-op once terminal.
func (m *Manager) MarkError(taskID string) {
	m.markTerminal(taskID, model.TaskError)
}

func (m *Manager) markTerminal(taskID string, status model.TaskStatus) {
	m.mu.Lock()
	task, ok := m.tasks[taskID]
	if !ok || task.Status.Terminal() {
		m.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	task.Status = status
	task.TerminalAt = &now
	evicted := m.sweepLocked()
	m.mu.Unlock()

	for _, id := range evicted {
		m.broker.Drop(id)
	}
}

// sweepLocked evicts the oldest terminal tasks beyond the retention cap.
// Caller holds m.mu; returns the ids whose event logs must be dropped.
func (m *Manager) sweepLocked() []string {
	var terminal []*model.Task
	for _, task := range m.tasks {
		if task.Status.Terminal() {
			terminal = append(terminal, task)
		}
	}
	if len(terminal) <= m.retention {
		return nil
	}
	sort.Slice(terminal, func(i, j int) bool {
		return terminal[i].CreatedAt.Before(terminal[j].CreatedAt)
	})

	var evicted []string
	for _, task := range terminal[:len(terminal)-m.retention] {
		delete(m.tasks, task.ID)
		evicted = append(evicted, task.ID)
	}
	return evicted
}

// Counts reports how many tasks are in each lifecycle state.
func (m *Manager) Counts() map[model.TaskStatus]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[model.TaskStatus]int, 4)
	for _, task := range m.tasks {
		counts[task.Status]++
	}
	return counts
}
