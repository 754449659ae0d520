package repository

import (
	"context"

	"selfie/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WorkoutRepo struct {
	store[model.Workout]
}

func NewWorkoutRepo(db *mongo.Database) *WorkoutRepo {
	return &WorkoutRepo{newStore[model.Workout](db, WorkoutsCollection)}
}

func (r *WorkoutRepo) Create(ctx context.Context, workout *model.Workout) error {
	return r.insert(ctx, workout)
}

func (r *WorkoutRepo) FindByID(ctx context.Context, id string) (*model.Workout, error) {
	return r.findByID(ctx, id)
}

func (r *WorkoutRepo) Update(ctx context.Context, workout *model.Workout) error {
	return r.replace(ctx, workout.ID, workout)
}

func (r *WorkoutRepo) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

// ListByAuthor returns the author's workouts, newest first.
func (r *WorkoutRepo) ListByAuthor(ctx context.Context, username string) ([]*model.Workout, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"author": username}, opts)
}

func (r *WorkoutRepo) DeleteByAuthor(ctx context.Context, username string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"author": username})
}
