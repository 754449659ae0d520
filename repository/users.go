package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"selfie/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepo struct {
	store[model.User]
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{newStore[model.User](db, UsersCollection)}
}

// Create inserts user; a taken username or email yields model.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	return r.insert(ctx, user)
}

func (r *UserRepo) FindByID(ctx context.Context, userID string) (*model.User, error) {
	return r.findByID(ctx, userID)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// TimeOffset reads only the time machine offset.
func (r *UserRepo) TimeOffset(ctx context.Context, userID string) (time.Duration, error) {
	opts := options.FindOne().SetProjection(bson.M{"time_offset": 1})
	user, err := r.findOne(ctx, bson.M{"_id": userID}, opts)
	if err != nil {
		return 0, err
	}
	return user.TimeOffset, nil
}

// ExistingUsernames returns the subset of usernames that belong to a user.
func (r *UserRepo) ExistingUsernames(ctx context.Context, usernames []string) ([]string, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	opts := options.Find().SetProjection(bson.M{"username": 1})
	users, err := r.find(ctx, bson.M{"username": bson.M{"$in": usernames}}, opts)
	if err != nil {
		return nil, err
	}
	found := make([]string, 0, len(users))
	for _, u := range users {
		found = append(found, u.Username)
	}
	return found, nil
}

// SearchUsernames lists usernames starting with prefix, case-insensitively.
func (r *UserRepo) SearchUsernames(ctx context.Context, prefix string, limit int) ([]string, error) {
	filter := bson.M{}
	if prefix != "" {
		filter["username"] = bson.M{"$regex": "^" + regexp.QuoteMeta(prefix), "$options": "i"}
	}
	opts := options.Find().
		SetProjection(bson.M{"username": 1}).
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetLimit(int64(limit))

	users, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names, nil
}

func (r *UserRepo) Update(ctx context.Context, user *model.User) error {
	return r.replace(ctx, user.UserID, user)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, hashedPassword string, at time.Time) error {
	return r.updateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{
			"password":             hashedPassword,
			"last_password_change": at,
			"updated_at":           at,
		},
	})
}

func (r *UserRepo) SetTimeOffset(ctx context.Context, userID string, offset time.Duration) error {
	return r.updateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"time_offset": offset},
	})
}

func (r *UserRepo) SetPendingTwoFactor(ctx context.Context, userID, secret string) error {
	return r.updateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"two_factor_pending_secret": secret},
	})
}

func (r *UserRepo) EnableTwoFactor(ctx context.Context, userID, secret string, recoveryCodes []string) error {
	return r.updateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{
			"two_factor_secret":  secret,
			"two_factor_enabled": true,
			"recovery_codes":     recoveryCodes,
		},
		"$unset": bson.M{"two_factor_pending_secret": ""},
	})
}

func (r *UserRepo) DisableTwoFactor(ctx context.Context, userID string) error {
	return r.updateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"two_factor_enabled": false},
		"$unset": bson.M{
			"two_factor_secret":         "",
			"two_factor_pending_secret": "",
			"recovery_codes":            "",
		},
	})
}

// ConsumeRecoveryCode removes hashedCode atomically and reports whether it was present.
func (r *UserRepo) ConsumeRecoveryCode(ctx context.Context, userID, hashedCode string) (bool, error) {
	err := r.updateOne(ctx,
		bson.M{"_id": userID, "recovery_codes": hashedCode},
		bson.M{"$pull": bson.M{"recovery_codes": hashedCode}},
	)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// AddPushSubscription stores sub, replacing any earlier one for the same endpoint.
func (r *UserRepo) AddPushSubscription(ctx context.Context, userID string, sub model.PushSubscription) error {
	if err := r.RemovePushSubscription(ctx, userID, sub.Endpoint); err != nil {
		return err
	}
	return r.updateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"push_subscriptions": sub},
	})
}

func (r *UserRepo) RemovePushSubscription(ctx context.Context, userID, endpoint string) error {
	return r.updateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$pull": bson.M{"push_subscriptions": bson.M{"endpoint": endpoint}},
	})
}

// ListSubscribed returns users with at least one push subscription.
func (r *UserRepo) ListSubscribed(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetProjection(bson.M{
		"username":           1,
		"time_offset":        1,
		"push_subscriptions": 1,
	})
	return r.find(ctx, bson.M{"push_subscriptions.0": bson.M{"$exists": true}}, opts)
}

func (r *UserRepo) Delete(ctx context.Context, userID string) error {
	return r.deleteByID(ctx, userID)
}
