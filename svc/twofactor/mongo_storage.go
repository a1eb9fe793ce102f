package twofactor

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "twofactor_configs"

type twoFactorDoc struct {
	UserID string `bson:"_id"`
	Config `bson:",inline"`
}

// MongoStorage persists two-factor configs in a mongo collection keyed by
// user id.
type MongoStorage struct {
	col *mongo.Collection
}

// NewMongoStorage creates a storage bound to the given database.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{col: db.Collection(collectionName)}
}

func (s *MongoStorage) Get(ctx context.Context, userID string) (*Config, error) {
	var doc twoFactorDoc
	err := s.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc.Config, nil
}

func (s *MongoStorage) Save(ctx context.Context, userID string, cfg *Config) error {
	doc := twoFactorDoc{UserID: userID, Config: *cfg}
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": userID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStorage) Delete(ctx context.Context, userID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}
