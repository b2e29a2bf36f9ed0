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

package stream

import (
	"sync"
	"testing"

	"github.com/darraghmahns/DES-Demo/src/model"
)

func TestAppendAssignsGaplessSequences(t *testing.T) {
	b := NewBroker()
	b.Register("t1")

	for i := 0; i < 5; i++ {
		ev := b.Append("t1", model.EventStageStarted, nil)
		if ev.Seq != int64(i+1) {
			t.Fatalf("event %d got seq %d, want %d", i, ev.Seq, i+1)
		}
	}
	if n := b.EventCount("t1"); n != 5 {
		t.Fatalf("EventCount = %d, want 5", n)
	}
}

func TestLateSubscriberSeesIdenticalHistory(t *testing.T) {
	b := NewBroker()
	b.Register("t1")

	b.Append("t1", model.EventStageStarted, model.StagePayload{Title: "Load"})
	b.Append("t1", model.EventStageCompleted, model.StagePayload{Title: "Load"})
	b.Append("t1", model.EventTerminalSuccess, nil)

	replay, live, cancel, err := b.Subscribe("t1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	if len(replay) != 3 {
		t.Fatalf("replay length = %d, want 3", len(replay))
	}
	for i, ev := range replay {
		if ev.Seq != int64(i+1) {
			t.Fatalf("replay[%d].Seq = %d, want %d", i, ev.Seq, i+1)
		}
	}
	if replay[2].Type != model.EventTerminalSuccess {
		t.Fatalf("last replay event = %s, want terminal_success", replay[2].Type)
	}

	// The log ended, so the live channel must already be closed.
	if _, open := <-live; open {
		t.Fatal("live channel open after terminal event")
	}
}

func TestLiveSubscriberReceivesAppendsInOrder(t *testing.T) {
	b := NewBroker()
	b.Register("t1")
	b.Append("t1", model.EventStageStarted, nil)

	replay, live, cancel, err := b.Subscribe("t1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	if len(replay) != 1 {
		t.Fatalf("replay length = %d, want 1", len(replay))
	}

	b.Append("t1", model.EventStageCompleted, nil)
	b.Append("t1", model.EventTerminalSuccess, nil)

	var got []model.Event
	for ev := range live {
		got = append(got, ev)
	}
	if len(got) != 2 {
		t.Fatalf("live events = %d, want 2", len(got))
	}
	if got[0].Seq != 2 || got[1].Seq != 3 {
		t.Fatalf("live seqs = %d,%d, want 2,3", got[0].Seq, got[1].Seq)
	}
	if got[1].Type != model.EventTerminalSuccess {
		t.Fatalf("last live event = %s, want terminal_success", got[1].Type)
	}
}

func TestConcurrentSubscribersSeeSameStream(t *testing.T) {
	b := NewBroker()
	b.Register("t1")

	const subscribers = 8
	const events = 20

	var wg sync.WaitGroup
	results := make([][]model.Event, subscribers)

	for i := 0; i < subscribers; i++ {
		replay, live, cancel, err := b.Subscribe("t1")
		if err != nil {
			t.Fatalf("Subscribe %d: %v", i, err)
		}
		wg.Add(1)
		go func(idx int, replay []model.Event, live <-chan model.Event, cancel func()) {
			defer wg.Done()
			defer cancel()
			all := append([]model.Event{}, replay...)
			for ev := range live {
				all = append(all, ev)
			}
			results[idx] = all
		}(i, replay, live, cancel)
	}

	for i := 0; i < events-1; i++ {
		b.Append("t1", model.EventStageStarted, nil)
	}
	b.Append("t1", model.EventTerminalSuccess, nil)
	wg.Wait()

	for i, got := range results {
		if len(got) != events {
			t.Fatalf("subscriber %d saw %d events, want %d", i, len(got), events)
		}
		for j, ev := range got {
			if ev.Seq != int64(j+1) {
				t.Fatalf("subscriber %d event %d has seq %d, want %d", i, j, ev.Seq, j+1)
			}
		}
	}
}

func TestSubscribeUnknownTask(t *testing.T) {
	b := NewBroker()
	if _, _, _, err := b.Subscribe("nope"); err != model.ErrTaskNotFound {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestCancelDetachesWithoutAffectingLog(t *testing.T) {
	b := NewBroker()
	b.Register("t1")

	_, live, cancel, err := b.Subscribe("t1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	cancel()
	if _, open := <-live; open {
		t.Fatal("live channel open after cancel")
	}

	// Appends after cancel still land in the log.
	b.Append("t1", model.EventStageStarted, nil)
	if n := b.EventCount("t1"); n != 1 {
		t.Fatalf("EventCount = %d, want 1", n)
	}

	// Cancelling twice must not panic.
	cancel()
}

func TestDropRemovesLog(t *testing.T) {
	b := NewBroker()
	b.Register("t1")
	b.Append("t1", model.EventStageStarted, nil)

	_, live, _, err := b.Subscribe("t1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	b.Drop("t1")
	if _, open := <-live; open {
		t.Fatal("live channel open after Drop")
	}
	if _, _, _, err := b.Subscribe("t1"); err != model.ErrTaskNotFound {
		t.Fatalf("Subscribe after Drop: err = %v, want ErrTaskNotFound", err)
	}
}
