package repository

import (
	"context"
	"errors"
	"fmt"

	"selfie/model"
	"selfie/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection      = "users"
	SessionsCollection   = "sessions"
	EventsCollection     = "events"
	ActivitiesCollection = "activities"
	NotesCollection      = "notes"
	WorkoutsCollection   = "workouts"
	MediaCollection      = "media"
)

// store holds the CRUD plumbing shared by every document repository.
type store[T any] struct {
	MongoCollection *mongo.Collection
	name            string
}

func newStore[T any](db *mongo.Database, name string) store[T] {
	return store[T]{MongoCollection: db.Collection(name), name: name}
}

func (s store[T]) insert(ctx context.Context, doc *T) error {
	timer := utils.TrackDBOperation("insert", s.name)
	defer timer.ObserveDuration()

	if _, err := s.MongoCollection.InsertOne(ctx, doc); err != nil {
		return translate(s.name, "insert", err)
	}
	return nil
}

func (s store[T]) findOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	timer := utils.TrackDBOperation("find", s.name)
	defer timer.ObserveDuration()

	var doc T
	if err := s.MongoCollection.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, translate(s.name, "find", err)
	}
	return &doc, nil
}

func (s store[T]) findByID(ctx context.Context, id string) (*T, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s store[T]) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]*T, error) {
	timer := utils.TrackDBOperation("find", s.name)
	defer timer.ObserveDuration()

	cursor, err := s.MongoCollection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, translate(s.name, "find", err)
	}
	defer cursor.Close(ctx)

	docs := make([]*T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(s.name, "decode", err)
	}
	return docs, nil
}

func (s store[T]) replace(ctx context.Context, id string, doc *T) error {
	timer := utils.TrackDBOperation("update", s.name)
	defer timer.ObserveDuration()

	result, err := s.MongoCollection.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(s.name, "update", err)
	}
	if result.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s store[T]) updateOne(ctx context.Context, filter, update interface{}) error {
	timer := utils.TrackDBOperation("update", s.name)
	defer timer.ObserveDuration()

	result, err := s.MongoCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(s.name, "update", err)
	}
	if result.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s store[T]) updateMany(ctx context.Context, filter, update interface{}) (int64, error) {
	timer := utils.TrackDBOperation("update", s.name)
	defer timer.ObserveDuration()

	result, err := s.MongoCollection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, translate(s.name, "update", err)
	}
	return result.ModifiedCount, nil
}

func (s store[T]) deleteByID(ctx context.Context, id string) error {
	timer := utils.TrackDBOperation("delete", s.name)
	defer timer.ObserveDuration()

	result, err := s.MongoCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(s.name, "delete", err)
	}
	if result.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s store[T]) deleteMany(ctx context.Context, filter interface{}) (int64, error) {
	timer := utils.TrackDBOperation("delete", s.name)
	defer timer.ObserveDuration()

	result, err := s.MongoCollection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, translate(s.name, "delete", err)
	}
	return result.DeletedCount, nil
}

func (s store[T]) count(ctx context.Context, filter interface{}) (int64, error) {
	timer := utils.TrackDBOperation("count", s.name)
	defer timer.ObserveDuration()

	n, err := s.MongoCollection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, translate(s.name, "count", err)
	}
	return n, nil
}

// translate maps driver errors onto model sentinels and records the failure.
func translate(collection, op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return model.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		utils.TrackError("database", collection+"_duplicate")
		return model.ErrConflict
	}
	utils.TrackError("database", collection+"_"+op+"_failed")
	return fmt.Errorf("%s %s: %w", collection, op, err)
}

// visibleTo matches documents authored by username or shared through group_list.
func visibleTo(username string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"author": username},
		bson.M{"group_list": username},
	}}
}
