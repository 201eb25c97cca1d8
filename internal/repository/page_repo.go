package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"surveygraph/internal/model"
)

// PageRepo handles MongoDB operations for pages
type PageRepo interface {
	Create(ctx context.Context, page *model.Page) (string, error)
	GetByID(ctx context.Context, id string) (*model.Page, error)
	List(ctx context.Context) ([]model.Page, error)
	Update(ctx context.Context, page *model.Page) error
	DeleteAll(ctx context.Context) error
}

type pageRepo struct {
	collection *mongo.Collection
}

// NewPageRepo creates a new page repository
func NewPageRepo(db *mongo.Database) PageRepo {
	return &pageRepo{
		collection: db.Collection("pages"),
	}
}

func (r *pageRepo) Create(ctx context.Context, page *model.Page) (string, error) {
	result, err := r.collection.InsertOne(ctx, page)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}

func (r *pageRepo) GetByID(ctx context.Context, id string) (*model.Page, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var page model.Page
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&page)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepo) List(ctx context.Context) ([]model.Page, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pages []model.Page
	if err := cursor.All(ctx, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *pageRepo) Update(ctx context.Context, page *model.Page) error {
	oid, err := primitive.ObjectIDFromHex(page.ID)
	if err != nil {
		return err
	}

	update := *page
	update.ID = ""
	_, err = r.collection.ReplaceOne(ctx, bson.M{"_id": oid}, &update)
	return err
}

func (r *pageRepo) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}
