package webhooks

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "webhooks"

// MongoStorage persists webhooks in a mongo collection keyed by webhook id.
type MongoStorage struct {
	col *mongo.Collection
}

// NewMongoStorage creates a storage bound to the given database.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{col: db.Collection(collectionName)}
}

func (s *MongoStorage) Create(ctx context.Context, w *Webhook) error {
	_, err := s.col.InsertOne(ctx, w)
	return err
}

func (s *MongoStorage) GetByID(ctx context.Context, id string) (*Webhook, error) {
	var w Webhook
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *MongoStorage) ListByUser(ctx context.Context, userID string) ([]*Webhook, error) {
	return s.find(ctx, bson.M{"user_id": userID})
}

func (s *MongoStorage) ListActive(ctx context.Context, userID string, event Event) ([]*Webhook, error) {
	return s.find(ctx, bson.M{
		"user_id":   userID,
		"is_active": true,
		"events":    string(event),
	})
}

func (s *MongoStorage) find(ctx context.Context, filter bson.M) ([]*Webhook, error) {
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*Webhook
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStorage) Update(ctx context.Context, w *Webhook) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": w.ID}, w)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStorage) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStorage) RecordSuccess(ctx context.Context, id string, status int, at time.Time) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"failure_count":     0,
			"last_triggered_at": at,
			"last_status":       status,
			"updated_at":        at,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordFailure increments the counter with $inc so concurrent deliveries
// never lose a failure, then deactivates in a second conditional update once
// the counter crossed the threshold.
func (s *MongoStorage) RecordFailure(ctx context.Context, id string, status int, at time.Time, disableAt int) (int, error) {
	var w Webhook
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"failure_count": 1},
		"$set": bson.M{
			"last_triggered_at": at,
			"last_status":       status,
			"updated_at":        at,
		},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if disableAt > 0 && w.FailureCount >= disableAt && w.IsActive {
		_, err = s.col.UpdateOne(ctx,
			bson.M{"_id": id, "failure_count": bson.M{"$gte": disableAt}},
			bson.M{"$set": bson.M{"is_active": false, "updated_at": at}},
		)
		if err != nil {
			return w.FailureCount, err
		}
	}
	return w.FailureCount, nil
}
