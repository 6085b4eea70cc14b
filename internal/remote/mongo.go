package remote

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medminder/internal/models"
)

const (
	medicationCollection = "medications"
	reminderCollection   = "reminders"

	// defaultCallTimeout bounds every remote call so a dead network turns
	// into ErrUnavailable instead of an indefinite stall.
	defaultCallTimeout = 5 * time.Second
)

// MongoStore implements Store over a MongoDB database with one collection per
// entity type.
type MongoStore struct {
	db      *mongo.Database
	timeout time.Duration
}

// ConnectMongo dials MongoDB and returns a MongoStore bound to dbName.
func ConnectMongo(ctx context.Context, uri, dbName string, callTimeout time.Duration) (*MongoStore, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &MongoStore{db: client.Database(dbName), timeout: callTimeout}, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func (s *MongoStore) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// SaveMedication upserts a medication. Local-temporary identities are
// replaced by a server-assigned ObjectID hex string.
func (s *MongoStore) SaveMedication(ctx context.Context, m *models.Medication) (models.ID, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	doc := *m
	if doc.ID.IsLocal() || doc.ID == "" {
		doc.ID = models.ID(primitive.NewObjectID().Hex())
		if _, err := s.db.Collection(medicationCollection).InsertOne(ctx, &doc); err != nil {
			return "", unavailable("insert medication", err)
		}
		return doc.ID, nil
	}

	_, err := s.db.Collection(medicationCollection).ReplaceOne(ctx,
		bson.M{"_id": doc.ID}, &doc, options.Replace().SetUpsert(true))
	if err != nil {
		return "", unavailable("replace medication", err)
	}
	return doc.ID, nil
}

// DeleteMedication removes a medication document.
func (s *MongoStore) DeleteMedication(ctx context.Context, id models.ID) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	if _, err := s.db.Collection(medicationCollection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return unavailable("delete medication", err)
	}
	return nil
}

// ListMedications returns the user's medications, newest first. Any failure,
// including a mid-cursor one, is total: no partial list is returned.
func (s *MongoStore) ListMedications(ctx context.Context, userID string) ([]*models.Medication, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	cursor, err := s.db.Collection(medicationCollection).Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, unavailable("list medications", err)
	}

	var meds []*models.Medication
	if err := cursor.All(ctx, &meds); err != nil {
		return nil, unavailable("decode medications", err)
	}
	return meds, nil
}

// SaveReminder upserts a reminder. Local-temporary identities are replaced
// by a server-assigned ObjectID hex string.
func (s *MongoStore) SaveReminder(ctx context.Context, r *models.Reminder) (models.ID, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	doc := *r
	if doc.ID.IsLocal() || doc.ID == "" {
		doc.ID = models.ID(primitive.NewObjectID().Hex())
		if _, err := s.db.Collection(reminderCollection).InsertOne(ctx, &doc); err != nil {
			return "", unavailable("insert reminder", err)
		}
		return doc.ID, nil
	}

	_, err := s.db.Collection(reminderCollection).ReplaceOne(ctx,
		bson.M{"_id": doc.ID}, &doc, options.Replace().SetUpsert(true))
	if err != nil {
		return "", unavailable("replace reminder", err)
	}
	return doc.ID, nil
}

// DeleteReminder removes a reminder document.
func (s *MongoStore) DeleteReminder(ctx context.Context, id models.ID) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	if _, err := s.db.Collection(reminderCollection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return unavailable("delete reminder", err)
	}
	return nil
}

// ListReminders returns the user's reminders, newest first.
func (s *MongoStore) ListReminders(ctx context.Context, userID string) ([]*models.Reminder, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	cursor, err := s.db.Collection(reminderCollection).Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, unavailable("list reminders", err)
	}

	var reminders []*models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, unavailable("decode reminders", err)
	}
	return reminders, nil
}

var _ Store = (*MongoStore)(nil)
