package repository

import (
	"context"
	"time"

	"selfie/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepo struct {
	store[model.Event]
}

func NewEventRepo(db *mongo.Database) *EventRepo {
	return &EventRepo{newStore[model.Event](db, EventsCollection)}
}

func (r *EventRepo) Create(ctx context.Context, event *model.Event) error {
	return r.insert(ctx, event)
}

func (r *EventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	return r.findByID(ctx, id)
}

func (r *EventRepo) Update(ctx context.Context, event *model.Event) error {
	return r.replace(ctx, event.ID, event)
}

func (r *EventRepo) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

// ListVisible returns events authored by or shared with username, by date.
func (r *EventRepo) ListVisible(ctx context.Context, username string) ([]*model.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return r.find(ctx, visibleTo(username), opts)
}

func (r *EventRepo) ListByAuthor(ctx context.Context, username string) ([]*model.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return r.find(ctx, bson.M{"author": username}, opts)
}

// ListUnfinishedPomodoro returns the author's non-recurring Pomodoro events
// dated before cutoff that still have cycles left.
func (r *EventRepo) ListUnfinishedPomodoro(ctx context.Context, username string, before time.Time) ([]*model.Event, error) {
	filter := bson.M{
		"author":       username,
		"is_pomodoro":  true,
		"is_recurring": false,
		"date":         bson.M{"$lt": before},
		"$expr": bson.M{"$lt": bson.A{
			"$pomodoro.completed_cycles", "$pomodoro.cycles",
		}},
	}
	return r.find(ctx, filter)
}

// PomodoroAuthors lists authors owning at least one unfinished one-off
// Pomodoro event.
func (r *EventRepo) PomodoroAuthors(ctx context.Context) ([]string, error) {
	filter := bson.M{
		"is_pomodoro":  true,
		"is_recurring": false,
		"$expr": bson.M{"$lt": bson.A{
			"$pomodoro.completed_cycles", "$pomodoro.cycles",
		}},
	}
	values, err := r.MongoCollection.Distinct(ctx, "author", filter)
	if err != nil {
		return nil, translate(r.name, "distinct", err)
	}
	authors := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			authors = append(authors, s)
		}
	}
	return authors, nil
}

func (r *EventRepo) DeleteByAuthor(ctx context.Context, username string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"author": username})
}

// RemoveMember drops username from every event group list.
func (r *EventRepo) RemoveMember(ctx context.Context, username string) (int64, error) {
	return r.updateMany(ctx, bson.M{"group_list": username}, bson.M{
		"$pull": bson.M{"group_list": username},
	})
}
