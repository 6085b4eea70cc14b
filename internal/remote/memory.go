package remote

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"medminder/internal/models"
)

// MemoryStore is an in-memory Store used by tests and offline development
// runs. SetUnavailable flips it into a mode where every call fails with
// ErrUnavailable, simulating a dead network.
type MemoryStore struct {
	mu          sync.RWMutex
	medications map[models.ID]*models.Medication
	reminders   map[models.ID]*models.Reminder
	unavailable bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		medications: make(map[models.ID]*models.Medication),
		reminders:   make(map[models.ID]*models.Reminder),
	}
}

// SetUnavailable toggles simulated unavailability.
func (s *MemoryStore) SetUnavailable(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = down
}

func (s *MemoryStore) check() error {
	if s.unavailable {
		return ErrUnavailable
	}
	return nil
}

func serverID() models.ID {
	return models.ID(uuid.New().String())
}

// SaveMedication upserts a medication, assigning a server identity when the
// input carries a local-temporary one.
func (s *MemoryStore) SaveMedication(ctx context.Context, m *models.Medication) (models.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return "", err
	}

	doc := *m
	if doc.ID.IsLocal() || doc.ID == "" {
		doc.ID = serverID()
	}
	s.medications[doc.ID] = &doc
	return doc.ID, nil
}

// DeleteMedication removes a medication.
func (s *MemoryStore) DeleteMedication(ctx context.Context, id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	delete(s.medications, id)
	return nil
}

// ListMedications returns the user's medications, newest first.
func (s *MemoryStore) ListMedications(ctx context.Context, userID string) ([]*models.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	out := make([]*models.Medication, 0)
	for _, m := range s.medications {
		if m.UserID == userID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

// SaveReminder upserts a reminder, assigning a server identity when the
// input carries a local-temporary one.
func (s *MemoryStore) SaveReminder(ctx context.Context, r *models.Reminder) (models.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return "", err
	}

	doc := *r
	doc.CompletedDoses = append(models.DoseSet(nil), r.CompletedDoses...)
	if doc.ID.IsLocal() || doc.ID == "" {
		doc.ID = serverID()
	}
	s.reminders[doc.ID] = &doc
	return doc.ID, nil
}

// DeleteReminder removes a reminder.
func (s *MemoryStore) DeleteReminder(ctx context.Context, id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	delete(s.reminders, id)
	return nil
}

// ListReminders returns the user's reminders, newest first.
func (s *MemoryStore) ListReminders(ctx context.Context, userID string) ([]*models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	out := make([]*models.Reminder, 0)
	for _, r := range s.reminders {
		if r.UserID == userID {
			copied := *r
			copied.CompletedDoses = append(models.DoseSet(nil), r.CompletedDoses...)
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
