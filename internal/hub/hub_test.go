package hub

import (
	"testing"

	"medminder/internal/models"
)

func TestPublishBumpsVersionMonotonically(t *testing.T) {
	h := New()
	if got := h.Current().Version; got != 0 {
		t.Fatalf("fresh hub should be at version 0, got %d", got)
	}

	for i := 1; i <= 5; i++ {
		snap := h.Publish(nil, nil, nil)
		if snap.Version != uint64(i) {
			t.Errorf("publish %d: got version %d", i, snap.Version)
		}
	}
	if got := h.Current().Version; got != 5 {
		t.Errorf("current version = %d, want 5", got)
	}
}

func TestStatsAreFoldedOnPublish(t *testing.T) {
	h := New()
	meds := []*models.Medication{{Name: "A"}, {Name: "B"}}
	reminders := []*models.Reminder{
		{MedicationName: "A", IsActive: true},
		{MedicationName: "B", IsActive: false},
	}
	today := []*models.ScheduleEntry{
		{DoseIndex: 0, IsCompleted: true},
		{DoseIndex: 1},
		{DoseIndex: 2},
	}

	snap := h.Publish(meds, reminders, today)
	want := models.Stats{
		TotalMedications: 2,
		ActiveReminders:  1,
		CompletedToday:   1,
		PendingToday:     2,
	}
	if snap.Stats != want {
		t.Errorf("stats = %+v, want %+v", snap.Stats, want)
	}
}

func TestSubscribersObserveSameSequence(t *testing.T) {
	h := New()
	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelA()
	defer cancelB()

	for i := 0; i < 3; i++ {
		h.Publish(nil, nil, nil)
	}

	for i := 1; i <= 3; i++ {
		snapA := <-a
		snapB := <-b
		if snapA.Version != uint64(i) || snapB.Version != uint64(i) {
			t.Errorf("delivery %d: versions %d/%d", i, snapA.Version, snapB.Version)
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	h := New()
	ch, cancel := h.Subscribe()
	cancel()

	h.Publish(nil, nil, nil)

	if _, open := <-ch; open {
		t.Error("expected closed channel after cancel")
	}
}

func TestSlowSubscriberIsDroppedNotBlocking(t *testing.T) {
	h := New()
	ch, cancel := h.Subscribe()
	defer cancel()

	// Overflow the buffer without draining; publishes must not block.
	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(nil, nil, nil)
	}

	// The dropped subscriber's channel drains its backlog and then closes.
	count := 0
	for range ch {
		count++
	}
	if count != subscriberBuffer {
		t.Errorf("expected %d buffered snapshots before close, got %d", subscriberBuffer, count)
	}
}
