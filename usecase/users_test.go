package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"selfie/model"
	"selfie/testutils"
)

type userFixture struct {
	*authFixture
	deps  UserDeps
	svc   *UserService
	notes *testutils.NoteRepo
	media *testutils.MediaRepo
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	af := newAuthFixture(t, 5)
	f := &userFixture{
		authFixture: af,
		notes:       testutils.NewNoteRepo(),
		media:       testutils.NewMediaRepo(),
	}
	f.deps = UserDeps{
		Users:      af.users,
		Sessions:   af.sessions,
		Events:     testutils.NewEventRepo(),
		Activities: testutils.NewActivityRepo(),
		Notes:      f.notes,
		Workouts:   testutils.NewWorkoutRepo(),
		Media:      f.media,
	}
	f.svc = NewUserService(f.deps, af.svc, WithUserClock(af.clock.Now))
	return f
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice").User
	f.signup(t, "bob")

	mine := &model.Media{ID: "img-alice", Author: "alice", MimeType: "image/png"}
	theirs := &model.Media{ID: "img-bob", Author: "bob", MimeType: "image/png"}
	doc := &model.Media{ID: "pdf-alice", Author: "alice", MimeType: "application/pdf"}
	for _, m := range []*model.Media{mine, theirs, doc} {
		if err := f.media.Create(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	updated, err := f.svc.UpdateProfile(ctx, alice.UserID, model.UserUpdate{
		Name: ptr(" Alice "), AvatarID: ptr("img-alice"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Name != "Alice" || updated.AvatarID != "img-alice" || updated.Email != "alice@example.com" {
		t.Errorf("UpdateProfile() = %+v", updated)
	}

	future := f.clock.Now().Add(24 * time.Hour)
	tests := []struct {
		name  string
		in    model.UserUpdate
		check func(error) bool
	}{
		{"foreign avatar", model.UserUpdate{AvatarID: ptr("img-bob")}, model.IsValidation},
		{"non-image avatar", model.UserUpdate{AvatarID: ptr("pdf-alice")}, model.IsValidation},
		{"unknown avatar", model.UserUpdate{AvatarID: ptr("nope")}, model.IsValidation},
		{"future birthday", model.UserUpdate{Birthday: &future}, model.IsValidation},
		{"taken email", model.UserUpdate{Email: ptr("bob@example.com")}, func(err error) bool { return errors.Is(err, model.ErrConflict) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.UpdateProfile(ctx, alice.UserID, tt.in); !tt.check(err) {
				t.Errorf("UpdateProfile() error = %v", err)
			}
		})
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	current := f.signup(t, "alice")
	other, err := f.svc.auth.Login(ctx, model.LoginRequest{Username: "alice", Password: testPassword}, ClientInfo{})
	if err != nil {
		t.Fatal(err)
	}
	userID := current.User.UserID

	if err := f.svc.ChangePassword(ctx, userID, current.Session.SessionID, "wrong!1", "n3w!pass"); !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("wrong current password error = %v", err)
	}
	if err := f.svc.ChangePassword(ctx, userID, current.Session.SessionID, testPassword, "short"); !model.IsValidation(err) {
		t.Errorf("weak new password error = %v", err)
	}
	if err := f.svc.ChangePassword(ctx, userID, current.Session.SessionID, testPassword, "n3w!pass"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	active, _ := f.svc.auth.ListSessions(ctx, userID)
	if len(active) != 1 || active[0].SessionID != current.Session.SessionID {
		t.Errorf("sessions after password change = %+v", active)
	}
	if !f.revoker.SessionRevoked(other.Session.SessionID) {
		t.Error("other session not revoked")
	}
	if _, err := f.svc.auth.Login(ctx, model.LoginRequest{Username: "alice", Password: "n3w!pass"}, ClientInfo{}); err != nil {
		t.Errorf("login with new password error = %v", err)
	}
}

func TestUserService_DeleteCascades(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice").User
	f.signup(t, "bob")

	notes := NewNotesService(f.notes, f.users, nil, f.clock.Now)
	own, _ := notes.Create(ctx, "alice", model.NoteInput{Title: ptr("mine")})
	shared, err := notes.Create(ctx, "bob", model.NoteInput{
		Title: ptr("for alice"), AccessType: ptr(model.AccessSpecific), SpecificAccess: &[]string{"alice"},
	})
	if err != nil {
		t.Fatal(err)
	}
	f.signup(t, "carol")
	group, err := notes.Create(ctx, "bob", model.NoteInput{
		Title: ptr("for alice and carol"), AccessType: ptr(model.AccessSpecific), SpecificAccess: &[]string{"alice", "carol"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Delete(ctx, alice.UserID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.users.FindByID(ctx, alice.UserID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("user still present: %v", err)
	}
	if _, err := f.notes.FindByID(ctx, own.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("authored note survived: %v", err)
	}
	kept, err := f.notes.FindByID(ctx, shared.ID)
	if err != nil {
		t.Fatalf("shared note removed: %v", err)
	}
	if len(kept.SpecificAccess) != 0 {
		t.Errorf("deleted user still in access list: %v", kept.SpecificAccess)
	}
	if kept.AccessType != model.AccessPrivate {
		t.Errorf("emptied note access = %q, want private", kept.AccessType)
	}
	if _, err := notes.Update(ctx, "bob", shared.ID, model.NoteInput{Title: ptr("renamed")}); err != nil {
		t.Errorf("author cannot edit the emptied note: %v", err)
	}
	still, _ := f.notes.FindByID(ctx, group.ID)
	if still.AccessType != model.AccessSpecific || len(still.SpecificAccess) != 1 || still.SpecificAccess[0] != "carol" {
		t.Errorf("group note = %q %v, want specific [carol]", still.AccessType, still.SpecificAccess)
	}
	if f.sessions.Len() != 2 {
		t.Errorf("sessions left = %d, want bob's and carol's", f.sessions.Len())
	}
}

func TestUserService_TimeMachine(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice").User

	target := f.clock.Now().Add(72 * time.Hour)
	state, err := f.svc.TravelTo(ctx, alice.UserID, target)
	if err != nil {
		t.Fatalf("TravelTo() error = %v", err)
	}
	if !state.Active || state.Offset != 72*time.Hour || state.OffsetSeconds != 72*3600 {
		t.Errorf("TravelTo() = %+v", state)
	}

	f.clock.Advance(time.Hour)
	state, _ = f.svc.TimeMachine(ctx, alice.UserID)
	if !state.Now.Equal(target.Add(time.Hour).UTC()) {
		t.Errorf("virtual now = %v, want %v", state.Now, target.Add(time.Hour))
	}

	if _, err := f.svc.TravelTo(ctx, alice.UserID, time.Time{}); !model.IsValidation(err) {
		t.Errorf("zero target error = %v", err)
	}
	state, _ = f.svc.ResetTimeMachine(ctx, alice.UserID)
	if state.Active {
		t.Error("time machine still active after reset")
	}
	if offset, _ := f.svc.TimeOffset(ctx, alice.UserID); offset != 0 {
		t.Errorf("stored offset = %v", offset)
	}
}

func TestUserService_SearchUsernames(t *testing.T) {
	f := newUserFixture(t)
	for _, name := range []string{"alice", "alina", "bob"} {
		f.signup(t, name)
	}
	names, err := f.svc.SearchUsernames(context.Background(), "al", 0)
	if err != nil || len(names) != 2 || names[0] != "alice" {
		t.Errorf("SearchUsernames() = %v, %v", names, err)
	}
}
