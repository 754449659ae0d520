package repository

import (
	"context"
	"errors"
	"time"

	"selfie/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepo struct {
	store[model.Session]
}

func NewSessionRepo(db *mongo.Database) *SessionRepo {
	return &SessionRepo{newStore[model.Session](db, SessionsCollection)}
}

func (r *SessionRepo) Create(ctx context.Context, session *model.Session) error {
	return r.insert(ctx, session)
}

func (r *SessionRepo) FindByID(ctx context.Context, sessionID string) (*model.Session, error) {
	return r.findByID(ctx, sessionID)
}

// ListActive returns the user's live sessions, most recently used first.
func (r *SessionRepo) ListActive(ctx context.Context, userID string, now time.Time) ([]*model.Session, error) {
	filter := bson.M{
		"user_id":    userID,
		"is_active":  true,
		"expires_at": bson.M{"$gt": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "last_activity_at", Value: -1}})
	return r.find(ctx, filter, opts)
}

// Rotate swaps the session's refresh jti only if oldJTI is still current, so
// two refreshes racing with the same token cannot both succeed.
func (r *SessionRepo) Rotate(ctx context.Context, sessionID, oldJTI, newJTI string, at, expiresAt time.Time) error {
	err := r.updateOne(ctx,
		bson.M{"_id": sessionID, "refresh_jti": oldJTI, "is_active": true},
		bson.M{"$set": bson.M{
			"refresh_jti":      newJTI,
			"last_activity_at": at,
			"expires_at":       expiresAt,
		}},
	)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrRefreshTokenReused
	}
	return err
}

func (r *SessionRepo) End(ctx context.Context, sessionID string) error {
	return r.updateOne(ctx, bson.M{"_id": sessionID}, bson.M{
		"$set": bson.M{"is_active": false},
	})
}

// EndAll deactivates every active session of userID and returns their ids.
func (r *SessionRepo) EndAll(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	sessions, err := r.find(ctx, bson.M{"user_id": userID, "is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.SessionID)
	}
	if _, err := r.updateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{
		"$set": bson.M{"is_active": false},
	}); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *SessionRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"user_id": userID})
}
