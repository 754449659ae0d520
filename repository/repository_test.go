package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"selfie/model"
	"selfie/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newTestDB connects to MONGO_TEST_URI and returns a throwaway database.
func newTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set; skipping MongoDB repository tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := utils.NewMongoClient(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("error while connecting to database: %v", err)
	}

	db := client.Database("selfie_test_" + utils.NewID()[:8])
	if err := SetupIndexes(ctx, db); err != nil {
		t.Fatalf("SetupIndexes() error = %v", err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func newTestUser(username string) *model.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.User{
		UserID:    utils.NewID(),
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUserRepo(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	alice := newTestUser("alice")
	if err := repo.Create(ctx, alice); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("DuplicateUsername", func(t *testing.T) {
		dup := newTestUser("alice")
		dup.Email = "other@example.com"
		if err := repo.Create(ctx, dup); !errors.Is(err, model.ErrConflict) {
			t.Fatalf("Create() error = %v, want ErrConflict", err)
		}
	})

	t.Run("FindByUsername", func(t *testing.T) {
		got, err := repo.FindByUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("FindByUsername() error = %v", err)
		}
		if got.UserID != alice.UserID {
			t.Errorf("FindByUsername() id = %s, want %s", got.UserID, alice.UserID)
		}
		if _, err := repo.FindByUsername(ctx, "nobody"); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("FindByUsername(nobody) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("TimeOffset", func(t *testing.T) {
		if err := repo.SetTimeOffset(ctx, alice.UserID, 48*time.Hour); err != nil {
			t.Fatalf("SetTimeOffset() error = %v", err)
		}
		offset, err := repo.TimeOffset(ctx, alice.UserID)
		if err != nil {
			t.Fatalf("TimeOffset() error = %v", err)
		}
		if offset != 48*time.Hour {
			t.Errorf("TimeOffset() = %v, want 48h", offset)
		}
	})

	t.Run("RecoveryCodesAreSingleUse", func(t *testing.T) {
		if err := repo.EnableTwoFactor(ctx, alice.UserID, "SECRET", []string{"h1", "h2"}); err != nil {
			t.Fatalf("EnableTwoFactor() error = %v", err)
		}
		ok, err := repo.ConsumeRecoveryCode(ctx, alice.UserID, "h1")
		if err != nil || !ok {
			t.Fatalf("first ConsumeRecoveryCode() = %v, %v", ok, err)
		}
		ok, err = repo.ConsumeRecoveryCode(ctx, alice.UserID, "h1")
		if err != nil || ok {
			t.Fatalf("second ConsumeRecoveryCode() = %v, %v, want false", ok, err)
		}
	})

	t.Run("PushSubscriptions", func(t *testing.T) {
		sub := model.PushSubscription{
			Endpoint: "https://push.example.com/abc",
			Keys:     model.PushKeys{P256dh: "p", Auth: "a"},
		}
		for i := 0; i < 2; i++ {
			if err := repo.AddPushSubscription(ctx, alice.UserID, sub); err != nil {
				t.Fatalf("AddPushSubscription() error = %v", err)
			}
		}
		users, err := repo.ListSubscribed(ctx)
		if err != nil {
			t.Fatalf("ListSubscribed() error = %v", err)
		}
		if len(users) != 1 || len(users[0].PushSubscriptions) != 1 {
			t.Fatalf("ListSubscribed() = %+v, want one user with one subscription", users)
		}
		if err := repo.RemovePushSubscription(ctx, alice.UserID, sub.Endpoint); err != nil {
			t.Fatalf("RemovePushSubscription() error = %v", err)
		}
	})

	t.Run("ExistingUsernames", func(t *testing.T) {
		found, err := repo.ExistingUsernames(ctx, []string{"alice", "ghost"})
		if err != nil {
			t.Fatalf("ExistingUsernames() error = %v", err)
		}
		if len(found) != 1 || found[0] != "alice" {
			t.Errorf("ExistingUsernames() = %v, want [alice]", found)
		}
	})
}

func TestSessionRepo_RotateDetectsReuse(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	session := &model.Session{
		SessionID:      utils.NewID(),
		UserID:         "u1",
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Hour),
		LastActivityAt: now,
		IsActive:       true,
		RefreshJTI:     "jti-1",
	}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Rotate(ctx, session.SessionID, "jti-1", "jti-2", now, now.Add(time.Hour)); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if err := repo.Rotate(ctx, session.SessionID, "jti-1", "jti-3", now, now.Add(time.Hour)); !errors.Is(err, model.ErrRefreshTokenReused) {
		t.Fatalf("Rotate() with stale jti error = %v, want ErrRefreshTokenReused", err)
	}

	ids, err := repo.EndAll(ctx, "u1")
	if err != nil || len(ids) != 1 {
		t.Fatalf("EndAll() = %v, %v", ids, err)
	}
	active, err := repo.ListActive(ctx, "u1", now)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ListActive() len = %d, want 0", len(active))
	}
}

func TestEventRepo_Visibility(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventRepo(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	events := []*model.Event{
		{ID: utils.NewID(), Title: "own", Date: now, Duration: 30, Author: "alice", GroupList: []string{}},
		{ID: utils.NewID(), Title: "shared", Date: now, Duration: 30, Author: "bob", GroupList: []string{"alice"}},
		{ID: utils.NewID(), Title: "private", Date: now, Duration: 30, Author: "bob", GroupList: []string{}},
		{
			ID: utils.NewID(), Title: "study", Date: now.Add(-48 * time.Hour), Duration: 50, Author: "alice",
			IsPomodoro: true, Pomodoro: &model.Pomodoro{StudyMinutes: 25, BreakMinutes: 5, Cycles: 2},
		},
		{
			ID: utils.NewID(), Title: "weekly study", Date: now.Add(-72 * time.Hour), Duration: 50, Author: "carol",
			IsRecurring: true, Recurrence: &model.Recurrence{Frequency: model.FrequencyWeekly, Interval: 1, Count: 4},
			IsPomodoro: true, Pomodoro: &model.Pomodoro{StudyMinutes: 25, BreakMinutes: 5, Cycles: 2},
		},
	}
	for _, e := range events {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create(%s) error = %v", e.Title, err)
		}
	}

	visible, err := repo.ListVisible(ctx, "alice")
	if err != nil {
		t.Fatalf("ListVisible() error = %v", err)
	}
	if len(visible) != 3 {
		t.Errorf("ListVisible() len = %d, want 3", len(visible))
	}

	unfinished, err := repo.ListUnfinishedPomodoro(ctx, "alice", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListUnfinishedPomodoro() error = %v", err)
	}
	if len(unfinished) != 1 || unfinished[0].Title != "study" {
		t.Errorf("ListUnfinishedPomodoro() = %v, want [study]", unfinished)
	}

	authors, err := repo.PomodoroAuthors(ctx)
	if err != nil {
		t.Fatalf("PomodoroAuthors() error = %v", err)
	}
	if len(authors) != 1 || authors[0] != "alice" {
		t.Errorf("PomodoroAuthors() = %v, want [alice]", authors)
	}

	if _, err := repo.RemoveMember(ctx, "alice"); err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	visible, _ = repo.ListVisible(ctx, "alice")
	if len(visible) != 2 {
		t.Errorf("ListVisible() after RemoveMember len = %d, want 2", len(visible))
	}
}

func TestNotesRepo_ListVisible(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotesRepo(db)
	ctx := context.Background()

	notes := []*model.Note{
		{ID: utils.NewID(), Title: "mine", Author: "alice", AccessType: model.AccessPrivate, Categories: []string{"work"}},
		{ID: utils.NewID(), Title: "public", Author: "bob", AccessType: model.AccessPublic, Categories: []string{"fun"}},
		{ID: utils.NewID(), Title: "for alice", Author: "bob", AccessType: model.AccessSpecific, SpecificAccess: []string{"alice"}},
		{ID: utils.NewID(), Title: "bob only", Author: "bob", AccessType: model.AccessPrivate},
	}
	for _, n := range notes {
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("Create(%s) error = %v", n.Title, err)
		}
	}

	tests := []struct {
		name     string
		category string
		want     int
	}{
		{"all visible", "", 3},
		{"category filter", "work", 1},
		{"unknown category", "nope", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListVisible(ctx, "alice", tt.category)
			if err != nil {
				t.Fatalf("ListVisible() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("ListVisible() len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestNotesRepo_RemoveMember(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotesRepo(db)
	ctx := context.Background()

	solo := &model.Note{ID: utils.NewID(), Title: "solo", Author: "bob", AccessType: model.AccessSpecific, SpecificAccess: []string{"alice"}}
	pair := &model.Note{ID: utils.NewID(), Title: "pair", Author: "bob", AccessType: model.AccessSpecific, SpecificAccess: []string{"alice", "carol"}}
	for _, n := range []*model.Note{solo, pair} {
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("Create(%s) error = %v", n.Title, err)
		}
	}

	modified, err := repo.RemoveMember(ctx, "alice")
	if err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	if modified != 2 {
		t.Errorf("RemoveMember() modified = %d, want 2", modified)
	}

	got, err := repo.FindByID(ctx, solo.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessType != model.AccessPrivate || len(got.SpecificAccess) != 0 {
		t.Errorf("solo note = %q %v, want private with no members", got.AccessType, got.SpecificAccess)
	}
	got, err = repo.FindByID(ctx, pair.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessType != model.AccessSpecific || len(got.SpecificAccess) != 1 || got.SpecificAccess[0] != "carol" {
		t.Errorf("pair note = %q %v, want specific [carol]", got.AccessType, got.SpecificAccess)
	}
}

func TestMediaRepo_ListOmitsData(t *testing.T) {
	db := newTestDB(t)
	repo := NewMediaRepo(db)
	ctx := context.Background()

	media := &model.Media{
		ID:        utils.NewID(),
		Filename:  "a.png",
		MimeType:  "image/png",
		Size:      3,
		Data:      []byte{1, 2, 3},
		Author:    "alice",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, media); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, err := repo.ListByAuthor(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByAuthor() error = %v", err)
	}
	if len(list) != 1 || len(list[0].Data) != 0 {
		t.Fatalf("ListByAuthor() = %+v, want metadata without data", list)
	}

	full, err := repo.FindByID(ctx, media.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if len(full.Data) != 3 {
		t.Errorf("FindByID() data len = %d, want 3", len(full.Data))
	}

	if err := repo.Delete(ctx, media.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, media.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
