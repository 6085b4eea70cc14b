package remote

import (
	"context"
	"errors"
	"testing"

	"medminder/internal/models"
)

func TestMemoryStoreAssignsServerIdentity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	local := &models.Medication{
		ID:     models.NewLocalID(),
		Name:   "Paracetamol",
		Unit:   "mg",
		UserID: "user-1",
	}
	got, err := s.SaveMedication(ctx, local)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if got == local.ID {
		t.Error("expected a server-assigned identity, got the local one back")
	}
	if got.IsLocal() {
		t.Errorf("server identity still looks local: %s", got)
	}
	// The caller's copy must not be mutated; promotion is the
	// reconciler's job.
	if !local.ID.IsLocal() {
		t.Error("input medication was mutated")
	}
}

func TestMemoryStoreKeepsCanonicalIdentity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	m := &models.Medication{ID: "srv-1", Name: "Aspirin", Unit: "mg", UserID: "user-1"}
	got, err := s.SaveMedication(ctx, m)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if got != "srv-1" {
		t.Errorf("canonical identity changed: %s", got)
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i, name := range []string{"A", "B", "C"} {
		if _, err := s.SaveReminder(ctx, &models.Reminder{
			ID:             models.ID(name),
			MedicationName: name,
			UserID:         "user-1",
			CreatedAt:      int64(100 + i),
		}); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	if _, err := s.SaveReminder(ctx, &models.Reminder{
		ID: "X", MedicationName: "X", UserID: "someone-else", CreatedAt: 999,
	}); err != nil {
		t.Fatalf("save foreign: %v", err)
	}

	got, err := s.ListReminders(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"C", "B", "A"}
	if len(got) != len(want) {
		t.Fatalf("expected %d reminders, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].MedicationName != w {
			t.Errorf("position %d: got %s, want %s", i, got[i].MedicationName, w)
		}
	}
}

func TestMemoryStoreUnavailableMode(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.SetUnavailable(true)

	if _, err := s.SaveMedication(ctx, &models.Medication{Name: "X", Unit: "mg"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("save: expected ErrUnavailable, got %v", err)
	}
	if _, err := s.ListMedications(ctx, "user-1"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("list: expected ErrUnavailable, got %v", err)
	}
	if err := s.DeleteReminder(ctx, "anything"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("delete: expected ErrUnavailable, got %v", err)
	}

	s.SetUnavailable(false)
	if _, err := s.ListMedications(ctx, "user-1"); err != nil {
		t.Errorf("recovered store should serve again: %v", err)
	}
}
