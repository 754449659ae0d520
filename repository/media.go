package repository

import (
	"context"

	"selfie/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MediaRepo struct {
	store[model.Media]
}

func NewMediaRepo(db *mongo.Database) *MediaRepo {
	return &MediaRepo{newStore[model.Media](db, MediaCollection)}
}

func (r *MediaRepo) Create(ctx context.Context, media *model.Media) error {
	return r.insert(ctx, media)
}

// FindByID loads the blob together with its metadata.
func (r *MediaRepo) FindByID(ctx context.Context, id string) (*model.Media, error) {
	return r.findByID(ctx, id)
}

// ListByAuthor returns metadata only, newest first.
func (r *MediaRepo) ListByAuthor(ctx context.Context, username string) ([]*model.Media, error) {
	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"author": username}, opts)
}

func (r *MediaRepo) CountByAuthor(ctx context.Context, username string) (int64, error) {
	return r.count(ctx, bson.M{"author": username})
}

func (r *MediaRepo) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

func (r *MediaRepo) DeleteByAuthor(ctx context.Context, username string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"author": username})
}
