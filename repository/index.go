package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collectionIndexes lists the indexes every collection needs, by collection name.
func collectionIndexes() map[string][]mongo.IndexModel {
	authorDate := func(name, field string, order int) mongo.IndexModel {
		return mongo.IndexModel{
			Keys: bson.D{
				{Key: "author", Value: 1},
				{Key: field, Value: order},
			},
			Options: options.Index().SetName(name),
		}
	}
	groupList := mongo.IndexModel{
		Keys:    bson.D{{Key: "group_list", Value: 1}},
		Options: options.Index().SetName("group_list_index"),
	}

	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName("username_unique").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_unique").SetUnique(true),
			},
		},
		SessionsCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "is_active", Value: 1},
					{Key: "last_activity_at", Value: -1},
				},
				Options: options.Index().SetName("user_active_sessions"),
			},
			// Ended and expired sessions are purged a day after expiry.
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetName("session_expiry").SetExpireAfterSeconds(24 * 60 * 60),
			},
		},
		EventsCollection: {
			authorDate("author_event_date", "date", 1),
			groupList,
			{
				Keys: bson.D{
					{Key: "is_pomodoro", Value: 1},
					{Key: "author", Value: 1},
				},
				Options: options.Index().SetName("pomodoro_author"),
			},
		},
		ActivitiesCollection: {
			authorDate("author_activity_end_date", "end_date", 1),
			groupList,
		},
		NotesCollection: {
			authorDate("author_notes_updated", "updated_at", -1),
			{
				Keys: bson.D{
					{Key: "access_type", Value: 1},
					{Key: "specific_access", Value: 1},
				},
				Options: options.Index().SetName("note_access"),
			},
			{
				Keys:    bson.D{{Key: "categories", Value: 1}},
				Options: options.Index().SetName("note_categories"),
			},
		},
		WorkoutsCollection: {
			authorDate("author_workouts_date", "created_at", -1),
		},
		MediaCollection: {
			authorDate("author_media_date", "created_at", -1),
		},
	}
}

func SetupIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for collection, indexes := range collectionIndexes() {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}

	slog.Info("Successfully created all indexes")
	return nil
}
