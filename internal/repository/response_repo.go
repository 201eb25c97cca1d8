package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"surveygraph/internal/model"
)

// ResponseRepo handles MongoDB operations for responses
type ResponseRepo interface {
	Create(ctx context.Context, response *model.Response) (string, error)
	GetByID(ctx context.Context, id string) (*model.Response, error)
	FindBySessionAndPage(ctx context.Context, sessionID, pageID string) (*model.Response, error)
	Update(ctx context.Context, response *model.Response) error
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

func (r *responseRepo) Create(ctx context.Context, response *model.Response) (string, error) {
	response.CreatedAt = time.Now()
	response.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, response)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}

func (r *responseRepo) GetByID(ctx context.Context, id string) (*model.Response, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var response model.Response
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&response)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepo) FindBySessionAndPage(ctx context.Context, sessionID, pageID string) (*model.Response, error) {
	var response model.Response
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID, "pageId": pageID}).Decode(&response)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepo) Update(ctx context.Context, response *model.Response) error {
	oid, err := primitive.ObjectIDFromHex(response.ID)
	if err != nil {
		return err
	}

	response.UpdatedAt = time.Now()
	update := *response
	update.ID = ""
	_, err = r.collection.ReplaceOne(ctx, bson.M{"_id": oid}, &update)
	return err
}
