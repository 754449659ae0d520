package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"selfie/model"
	"selfie/utils"
)

type WorkoutService struct {
	workouts WorkoutRepository
	now      Clock
}

func NewWorkoutService(workouts WorkoutRepository, now Clock) *WorkoutService {
	if now == nil {
		now = time.Now
	}
	return &WorkoutService{workouts: workouts, now: now}
}

func (s *WorkoutService) List(ctx context.Context, username string) ([]*model.Workout, error) {
	return s.workouts.ListByAuthor(ctx, username)
}

// Get returns ErrForbidden for another user's workout.
func (s *WorkoutService) Get(ctx context.Context, username, id string) (*model.Workout, error) {
	workout, err := s.workouts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workout.Author != username {
		return nil, model.ErrForbidden
	}
	return workout, nil
}

func (s *WorkoutService) Create(ctx context.Context, username string, in model.WorkoutInput) (*model.Workout, error) {
	if in.Title == nil {
		return nil, model.NewValidationError("title", "is required")
	}
	if in.Reps == nil {
		return nil, model.NewValidationError("reps", "is required")
	}
	now := s.now().UTC()
	workout := &model.Workout{
		ID:        utils.NewID(),
		Author:    username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyWorkout(workout, in); err != nil {
		return nil, err
	}
	if err := s.workouts.Create(ctx, workout); err != nil {
		return nil, fmt.Errorf("failed to create workout: %w", err)
	}
	utils.TrackResourceOperation("workout", "create")
	return workout, nil
}

func (s *WorkoutService) Update(ctx context.Context, username, id string, in model.WorkoutInput) (*model.Workout, error) {
	workout, err := s.Get(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if err := applyWorkout(workout, in); err != nil {
		return nil, err
	}
	workout.UpdatedAt = s.now().UTC()
	if err := s.workouts.Update(ctx, workout); err != nil {
		return nil, fmt.Errorf("failed to update workout: %w", err)
	}
	utils.TrackResourceOperation("workout", "update")
	return workout, nil
}

func (s *WorkoutService) Delete(ctx context.Context, username, id string) error {
	if _, err := s.Get(ctx, username, id); err != nil {
		return err
	}
	if err := s.workouts.Delete(ctx, id); err != nil {
		return err
	}
	utils.TrackResourceOperation("workout", "delete")
	return nil
}

func applyWorkout(w *model.Workout, in model.WorkoutInput) error {
	if in.Title != nil {
		w.Title = *in.Title
	}
	title, err := requireTitle(w.Title)
	if err != nil {
		return err
	}
	w.Title = title

	if in.Reps != nil {
		w.Reps = *in.Reps
	}
	if w.Reps < 1 {
		return model.NewValidationError("reps", "must be at least 1")
	}
	if in.Load != nil {
		w.Load = *in.Load
	}
	if w.Load < 0 || math.IsNaN(w.Load) || math.IsInf(w.Load, 0) {
		return model.NewValidationError("load", "must be zero or more")
	}
	return nil
}
