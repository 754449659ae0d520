package repository

import (
	"context"

	"selfie/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActivityRepo struct {
	store[model.Activity]
}

func NewActivityRepo(db *mongo.Database) *ActivityRepo {
	return &ActivityRepo{newStore[model.Activity](db, ActivitiesCollection)}
}

func (r *ActivityRepo) Create(ctx context.Context, activity *model.Activity) error {
	return r.insert(ctx, activity)
}

func (r *ActivityRepo) FindByID(ctx context.Context, id string) (*model.Activity, error) {
	return r.findByID(ctx, id)
}

func (r *ActivityRepo) Update(ctx context.Context, activity *model.Activity) error {
	return r.replace(ctx, activity.ID, activity)
}

func (r *ActivityRepo) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

// ListVisible returns activities authored by or shared with username, soonest deadline first.
func (r *ActivityRepo) ListVisible(ctx context.Context, username string) ([]*model.Activity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "end_date", Value: 1}})
	return r.find(ctx, visibleTo(username), opts)
}

func (r *ActivityRepo) ListByAuthor(ctx context.Context, username string) ([]*model.Activity, error) {
	return r.find(ctx, bson.M{"author": username})
}

func (r *ActivityRepo) DeleteByAuthor(ctx context.Context, username string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"author": username})
}

func (r *ActivityRepo) RemoveMember(ctx context.Context, username string) (int64, error) {
	return r.updateMany(ctx, bson.M{"group_list": username}, bson.M{
		"$pull": bson.M{"group_list": username},
	})
}
