package usecase

import (
	"context"
	"testing"
	"time"

	"selfie/model"
	"selfie/testutils"
	"selfie/utils"
)

var testNow = time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// seedUsers stores one user per username and returns them keyed by name.
func seedUsers(t *testing.T, users *testutils.UserRepo, usernames ...string) map[string]*model.User {
	t.Helper()
	out := make(map[string]*model.User, len(usernames))
	for _, name := range usernames {
		u := &model.User{
			UserID:    utils.NewID(),
			Username:  name,
			Email:     name + "@example.com",
			CreatedAt: testNow,
			UpdatedAt: testNow,
		}
		if err := users.Create(context.Background(), u); err != nil {
			t.Fatalf("seeding user %s: %v", name, err)
		}
		out[name] = u
	}
	return out
}
