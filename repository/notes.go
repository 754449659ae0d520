package repository

import (
	"context"

	"selfie/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotesRepo struct {
	store[model.Note]
}

func NewNotesRepo(db *mongo.Database) *NotesRepo {
	return &NotesRepo{newStore[model.Note](db, NotesCollection)}
}

func (r *NotesRepo) Create(ctx context.Context, note *model.Note) error {
	return r.insert(ctx, note)
}

func (r *NotesRepo) FindByID(ctx context.Context, id string) (*model.Note, error) {
	return r.findByID(ctx, id)
}

func (r *NotesRepo) Update(ctx context.Context, note *model.Note) error {
	return r.replace(ctx, note.ID, note)
}

func (r *NotesRepo) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

// ListVisible returns notes username may read, optionally within one category.
// Ordering is left to the caller since length sorting needs the decoded content.
func (r *NotesRepo) ListVisible(ctx context.Context, username, category string) ([]*model.Note, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"author": username},
		bson.M{"access_type": model.AccessPublic},
		bson.M{"access_type": model.AccessSpecific, "specific_access": username},
	}}
	if category != "" {
		filter["categories"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *NotesRepo) ListByAuthor(ctx context.Context, username string) ([]*model.Note, error) {
	return r.find(ctx, bson.M{"author": username})
}

func (r *NotesRepo) DeleteByAuthor(ctx context.Context, username string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"author": username})
}

// RemoveMember drops username from every specific-access list. A note whose
// list ends up empty falls back to private.
func (r *NotesRepo) RemoveMember(ctx context.Context, username string) (int64, error) {
	emptied := bson.M{"$and": bson.A{
		bson.M{"$eq": bson.A{"$access_type", string(model.AccessSpecific)}},
		bson.M{"$eq": bson.A{bson.M{"$size": "$specific_access"}, 0}},
	}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"specific_access": bson.M{"$filter": bson.M{
			"input": "$specific_access",
			"cond":  bson.M{"$ne": bson.A{"$$this", username}},
		}}}}},
		{{Key: "$set", Value: bson.M{"access_type": bson.M{"$cond": bson.A{
			emptied, string(model.AccessPrivate), "$access_type",
		}}}}},
	}
	return r.updateMany(ctx, bson.M{"specific_access": username}, pipeline)
}
