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

	"github.com/darraghmahns/DES-Demo/src/model"
)

// liveBuffer is sized well past the maximum number of events one pipeline
// run can emit, so a synchronous Append can never block on a live channel.
const liveBuffer = 64

// Broker keeps one append-only event log per task and fans appended events
// out to any number of subscribers. A subscriber first receives a replay of
// every past event, then the live feed; the single broker lock makes the
// replay/live boundary atomic, so no event is skipped or duplicated.
type Broker struct {
	mu   sync.Mutex
	logs map[string]*taskLog
}

type taskLog struct {
	events []model.Event
	subs   []chan model.Event
	closed bool
}

func NewBroker() *Broker {
	return &Broker{logs: make(map[string]*taskLog)}
}

// Register creates an empty log for a task. Idempotent.
func (b *Broker) Register(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.logs[taskID]; !ok {
		b.logs[taskID] = &taskLog{}
	}
}

// Append assigns the next sequence number, stores the event for the task's
// lifetime, and notifies all current subscribers in registration order.
// A terminal event closes every live channel; later subscribers still get
// the full replay.
func (b *Broker) Append(taskID string, typ model.EventType, payload any) model.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.logs[taskID]
	if !ok {
		l = &taskLog{}
		b.logs[taskID] = l
	}

	ev := model.Event{
		Seq:     int64(len(l.events)) + 1,
		Type:    typ,
		Payload: payload,
	}
	l.events = append(l.events, ev)

	for _, ch := range l.subs {
		ch <- ev
	}

	if typ.Terminal() {
		for _, ch := range l.subs {
			close(ch)
		}
		l.subs = nil
		l.closed = true
	}
	return ev
}

// Subscribe returns every event already appended for the task, in order, plus
// a live channel for subsequent events. The cancel func detaches the
// subscriber; it never affects the stored log or other subscribers. For a
// task whose log already ended, live is a closed channel.
func (b *Broker) Subscribe(taskID string) (replay []model.Event, live <-chan model.Event, cancel func(), err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.logs[taskID]
	if !ok {
		return nil, nil, nil, model.ErrTaskNotFound
	}

	replay = make([]model.Event, len(l.events))
	copy(replay, l.events)

	ch := make(chan model.Event, liveBuffer)
	if l.closed {
		close(ch)
		return replay, ch, func() {}, nil
	}

	l.subs = append(l.subs, ch)
	cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range l.subs {
			if sub == ch {
				l.subs = append(l.subs[:i], l.subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return replay, ch, cancel, nil
}

// EventCount reports how many events a task's log holds.
func (b *Broker) EventCount(taskID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if l, ok := b.logs[taskID]; ok {
		return len(l.events)
	}
	return 0
}

// Drop removes a task's log entirely. Used by the retention sweep; any
// remaining subscribers are detached.
func (b *Broker) Drop(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.logs[taskID]
	if !ok {
		return
	}
	for _, ch := range l.subs {
		close(ch)
	}
	delete(b.logs, taskID)
}
