// Package hub holds the in-memory, observable view of the user's current
// state. The reconciler is the only writer; the UI layer reads snapshots and
// never mutates them.
package hub

import (
	"sync"

	"medminder/internal/models"
)

// subscriberBuffer is how many snapshots a subscriber may fall behind before
// it is dropped. Dropping keeps the single-writer publish step non-blocking
// while every live subscriber still observes the same ordered sequence.
const subscriberBuffer = 64

// Snapshot is one immutable, versioned view of the current state. Versions
// increase monotonically; Stats is always the fold over the other three
// slots, never independently mutated.
type Snapshot struct {
	Version     uint64
	Medications []*models.Medication
	Reminders   []*models.Reminder
	Today       []*models.ScheduleEntry
	Stats       models.Stats
}

// Hub broadcasts snapshots to any number of subscribers.
type Hub struct {
	mu          sync.RWMutex
	current     Snapshot
	subscribers map[uint64]chan Snapshot
	nextSubID   uint64
}

// New creates an empty Hub at version zero.
func New() *Hub {
	return &Hub{
		subscribers: make(map[uint64]chan Snapshot),
	}
}

// Current returns the latest snapshot.
func (h *Hub) Current() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Publish folds a new snapshot from the given slots, bumps the version, and
// broadcasts it. It returns the published snapshot.
func (h *Hub) Publish(meds []*models.Medication, reminders []*models.Reminder, today []*models.ScheduleEntry) Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = Snapshot{
		Version:     h.current.Version + 1,
		Medications: meds,
		Reminders:   reminders,
		Today:       today,
		Stats:       models.FoldStats(meds, reminders, today),
	}

	for id, ch := range h.subscribers {
		select {
		case ch <- h.current:
		default:
			// Subscriber stopped draining; cut it loose rather than
			// stall the writer or skew the sequence for others.
			close(ch)
			delete(h.subscribers, id)
		}
	}
	return h.current
}

// Subscribe registers an observer. The returned channel yields every snapshot
// published after the call, in order. The cancel function unregisters the
// observer and closes the channel.
func (h *Hub) Subscribe() (<-chan Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSubID
	h.nextSubID++
	ch := make(chan Snapshot, subscriberBuffer)
	h.subscribers[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subscribers[id]; ok {
			close(sub)
			delete(h.subscribers, id)
		}
	}
	return ch, cancel
}
