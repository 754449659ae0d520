package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"selfie/model"
	"selfie/testutils"
)

func TestWorkoutService(t *testing.T) {
	ctx := context.Background()
	svc := NewWorkoutService(testutils.NewWorkoutRepo(), func() time.Time { return testNow })

	tests := []struct {
		name string
		in   model.WorkoutInput
	}{
		{"missing title", model.WorkoutInput{Reps: ptr(10)}},
		{"missing reps", model.WorkoutInput{Title: ptr("squat")}},
		{"zero reps", model.WorkoutInput{Title: ptr("squat"), Reps: ptr(0)}},
		{"negative load", model.WorkoutInput{Title: ptr("squat"), Reps: ptr(5), Load: ptr(-1.0)}},
		{"nan load", model.WorkoutInput{Title: ptr("squat"), Reps: ptr(5), Load: ptr(math.NaN())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, "alice", tt.in); !model.IsValidation(err) {
				t.Errorf("Create() error = %v, want validation error", err)
			}
		})
	}

	w, err := svc.Create(ctx, "alice", model.WorkoutInput{Title: ptr("deadlift"), Reps: ptr(5), Load: ptr(100.0)})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Get(ctx, "bob", w.ID); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("foreign Get() error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, "bob", w.ID); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("foreign Delete() error = %v, want ErrForbidden", err)
	}

	updated, err := svc.Update(ctx, "alice", w.ID, model.WorkoutInput{Reps: ptr(8)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Reps != 8 || updated.Load != 100 {
		t.Errorf("Update() = %+v", updated)
	}

	list, _ := svc.List(ctx, "bob")
	if len(list) != 0 {
		t.Errorf("bob lists %d workouts", len(list))
	}
}
