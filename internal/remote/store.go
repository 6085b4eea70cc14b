// Package remote provides the best-effort remote copy of the medminder
// entities. Every operation can fail independently; failures surface as
// ErrUnavailable and callers degrade to whatever the local store already has.
package remote

import (
	"context"
	"errors"

	"medminder/internal/models"
)

// ErrUnavailable marks any failure reaching the remote store: network,
// timeout, server error. Callers must treat it as "no remote right now",
// never as a fatal operation failure.
var ErrUnavailable = errors.New("remote store unavailable")

// Store is the logical CRUD surface of the remote document store.
//
// Save upserts the entity and returns the identity the server holds it
// under. When the entity carries a local-temporary identity the server
// assigns its own and the returned ID differs from the input; the reconciler
// then promotes the local row.
//
// List results are filtered by owner and ordered by creation time descending.
// There are no partial results: a query either returns the whole set or
// fails as a unit.
type Store interface {
	SaveMedication(ctx context.Context, m *models.Medication) (models.ID, error)
	DeleteMedication(ctx context.Context, id models.ID) error
	ListMedications(ctx context.Context, userID string) ([]*models.Medication, error)

	SaveReminder(ctx context.Context, r *models.Reminder) (models.ID, error)
	DeleteReminder(ctx context.Context, id models.ID) error
	ListReminders(ctx context.Context, userID string) ([]*models.Reminder, error)
}
