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
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darraghmahns/DES-Demo/src/model"
	"github.com/darraghmahns/DES-Demo/src/stream"
)

type countingRunner struct {
	runs atomic.Int64
	wg   sync.WaitGroup
}

func (r *countingRunner) Run(_ context.Context, _ model.Task) {
	r.runs.Add(1)
	r.wg.Done()
}

func newTestManager(t *testing.T, runner Runner) (*Manager, *stream.Broker) {
	t.Helper()
	broker := stream.NewBroker()
	m := NewManager(broker, 0)
	if runner != nil {
		m.SetRunner(runner)
	}
	return m, broker
}

func TestCreateTaskRejectsInvalidMode(t *testing.T) {
	m, _ := newTestManager(t, nil)
	_, err := m.CreateTask("spreadsheet", "doc.pdf")
	if !errors.Is(err, model.ErrInvalidMode) {
		t.Fatalf("err = %v, want ErrInvalidMode", err)
	}
}

func TestCreateTaskStartsPending(t *testing.T) {
	m, broker := newTestManager(t, nil)
	id, err := m.CreateTask(model.ModeRealEstate, "doc.pdf")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	task, err := m.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Status != model.TaskPending {
		t.Fatalf("status = %s, want pending", task.Status)
	}

	// The event log must exist before the first event is appended.
	if _, _, cancel, err := broker.Subscribe(id); err != nil {
		t.Fatalf("Subscribe: %v", err)
	} else {
		cancel()
	}
}

func TestScheduleRunsExactlyOnce(t *testing.T) {
	runner := &countingRunner{}
	runner.wg.Add(1)
	m, _ := newTestManager(t, runner)

	id, err := m.CreateTask(model.ModeGov, "request.pdf")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := m.Schedule(context.Background(), id); err != nil {
			t.Fatalf("Schedule %d: %v", i, err)
		}
	}
	runner.wg.Wait()

	if n := runner.runs.Load(); n != 1 {
		t.Fatalf("runner ran %d times, want 1", n)
	}
	task, _ := m.GetTask(id)
	if task.Status != model.TaskRunning {
		t.Fatalf("status = %s, want running", task.Status)
	}
}

func TestScheduleUnknownTask(t *testing.T) {
	m, _ := newTestManager(t, &countingRunner{})
	if err := m.Schedule(context.Background(), "missing"); !errors.Is(err, model.ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestTerminalTransitionIsMonotonic(t *testing.T) {
	runner := &countingRunner{}
	runner.wg.Add(1)
	m, _ := newTestManager(t, runner)

	id, _ := m.CreateTask(model.ModeRealEstate, "doc.pdf")
	m.Schedule(context.Background(), id)
	runner.wg.Wait()

	m.MarkComplete(id)
	m.MarkError(id) // must not override

	task, _ := m.GetTask(id)
	if task.Status != model.TaskComplete {
		t.Fatalf("status = %s, want complete", task.Status)
	}
	if task.TerminalAt == nil {
		t.Fatal("TerminalAt not set")
	}
}

func TestFindActiveMatchesInFlightTask(t *testing.T) {
	m, _ := newTestManager(t, &countingRunner{})
	id, _ := m.CreateTask(model.ModeRealEstate, "doc.pdf")

	got, ok := m.FindActive(model.ModeRealEstate, "doc.pdf")
	if !ok || got.ID != id {
		t.Fatalf("FindActive = (%v, %v), want task %s", got.ID, ok, id)
	}

	if _, ok := m.FindActive(model.ModeGov, "doc.pdf"); ok {
		t.Fatal("FindActive matched a different mode")
	}

	m.MarkComplete(id)
	if _, ok := m.FindActive(model.ModeRealEstate, "doc.pdf"); ok {
		t.Fatal("FindActive matched a terminal task")
	}
}

func TestListSeparatesActiveFromAll(t *testing.T) {
	m, _ := newTestManager(t, &countingRunner{})
	first, _ := m.CreateTask(model.ModeRealEstate, "a.pdf")
	time.Sleep(time.Millisecond)
	second, _ := m.CreateTask(model.ModeGov, "b.pdf")
	m.MarkComplete(first)

	all := m.ListAll()
	if len(all) != 2 {
		t.Fatalf("ListAll = %d tasks, want 2", len(all))
	}
	if all[0].ID != first || all[1].ID != second {
		t.Fatalf("ListAll order = %s,%s, want %s,%s", all[0].ID, all[1].ID, first, second)
	}

	active := m.ListActive()
	if len(active) != 1 || active[0].ID != second {
		t.Fatalf("ListActive = %+v, want only %s", active, second)
	}
}

func TestRetentionEvictsOldestTerminalTasks(t *testing.T) {
	broker := stream.NewBroker()
	m := NewManager(broker, 2)

	var ids []string
	for i := 0; i < 4; i++ {
		id, err := m.CreateTask(model.ModeRealEstate, "doc.pdf")
		if err != nil {
			t.Fatalf("CreateTask %d: %v", i, err)
		}
		time.Sleep(time.Millisecond)
		broker.Append(id, model.EventTerminalSuccess, nil)
		m.MarkComplete(id)
		ids = append(ids, id)
	}

	// Retention 2: the two oldest terminal tasks are gone, logs included.
	for _, id := range ids[:2] {
		if _, err := m.GetTask(id); !errors.Is(err, model.ErrTaskNotFound) {
			t.Fatalf("task %s still present, want evicted", id)
		}
		if _, _, _, err := broker.Subscribe(id); !errors.Is(err, model.ErrTaskNotFound) {
			t.Fatalf("log for %s still present, want dropped", id)
		}
	}
	for _, id := range ids[2:] {
		if _, err := m.GetTask(id); err != nil {
			t.Fatalf("task %s evicted, want retained", id)
		}
	}
}

func TestCounts(t *testing.T) {
	m, _ := newTestManager(t, &countingRunner{})
	a, _ := m.CreateTask(model.ModeRealEstate, "a.pdf")
	m.CreateTask(model.ModeGov, "b.pdf")
	m.MarkError(a)

	counts := m.Counts()
	if counts[model.TaskPending] != 1 || counts[model.TaskError] != 1 {
		t.Fatalf("counts = %v, want 1 pending and 1 error", counts)
	}
}
