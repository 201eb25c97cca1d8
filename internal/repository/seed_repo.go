package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveygraph/internal/model"
)

// SeedRepo persists the content hash of the last applied survey seed
type SeedRepo interface {
	GetHash(ctx context.Context) (string, error)
	SetHash(ctx context.Context, hash string) error
}

type seedRepo struct {
	collection *mongo.Collection
}

// NewSeedRepo creates a new seed metadata repository
func NewSeedRepo(db *mongo.Database) SeedRepo {
	return &seedRepo{
		collection: db.Collection("seed_metadata"),
	}
}

func (r *seedRepo) GetHash(ctx context.Context) (string, error) {
	var meta model.SeedMetadata
	err := r.collection.FindOne(ctx, bson.M{"key": model.SeedKeySurveys}).Decode(&meta)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return meta.Hash, nil
}

func (r *seedRepo) SetHash(ctx context.Context, hash string) error {
	opts := options.Replace().SetUpsert(true)
	meta := model.SeedMetadata{
		Key:       model.SeedKeySurveys,
		Hash:      hash,
		UpdatedAt: time.Now(),
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"key": model.SeedKeySurveys}, &meta, opts)
	return err
}
