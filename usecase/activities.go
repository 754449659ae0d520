package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"selfie/model"
	"selfie/utils"
)

type ActivityService struct {
	activities ActivityRepository
	users      UserRepository
	now        Clock
}

func NewActivityService(activities ActivityRepository, users UserRepository, now Clock) *ActivityService {
	if now == nil {
		now = time.Now
	}
	return &ActivityService{activities: activities, users: users, now: now}
}

// ParseActivityStatus maps a query value to a filter; empty means all.
func ParseActivityStatus(s string) (model.ActivityStatus, error) {
	switch status := model.ActivityStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case "":
		return model.ActivityAll, nil
	case model.ActivityAll, model.ActivityPending, model.ActivityCompleted, model.ActivityLate:
		return status, nil
	}
	return "", model.NewValidationError("status", "must be all, pending, completed or late")
}

// List returns visible activities matching status, judged at now.
func (s *ActivityService) List(ctx context.Context, username string, status model.ActivityStatus, now time.Time) ([]*model.Activity, error) {
	all, err := s.activities.ListVisible(ctx, username)
	if err != nil {
		return nil, err
	}
	if status == model.ActivityAll || status == "" {
		return all, nil
	}

	out := make([]*model.Activity, 0, len(all))
	for _, a := range all {
		switch status {
		case model.ActivityPending:
			if !a.Completed {
				out = append(out, a)
			}
		case model.ActivityCompleted:
			if a.Completed {
				out = append(out, a)
			}
		case model.ActivityLate:
			if a.Late(now) {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (s *ActivityService) Get(ctx context.Context, username, id string) (*model.Activity, error) {
	activity, err := s.activities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !activity.VisibleTo(username) {
		return nil, model.ErrNotFound
	}
	return activity, nil
}

func (s *ActivityService) owned(ctx context.Context, username, id string) (*model.Activity, error) {
	activity, err := s.Get(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if activity.Author != username {
		return nil, model.ErrForbidden
	}
	return activity, nil
}

// Create stores a new activity; now is the caller's virtual time, used to
// stamp completion.
func (s *ActivityService) Create(ctx context.Context, username string, in model.ActivityInput, now time.Time) (*model.Activity, error) {
	if in.Title == nil {
		return nil, model.NewValidationError("title", "is required")
	}
	if in.EndDate == nil {
		return nil, model.NewValidationError("end_date", "is required")
	}

	real := s.now().UTC()
	activity := &model.Activity{
		ID:        utils.NewID(),
		Author:    username,
		GroupList: []string{},
		CreatedAt: real,
		UpdatedAt: real,
	}
	if err := s.apply(ctx, activity, in, now); err != nil {
		return nil, err
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}
	utils.TrackResourceOperation("activity", "create")
	return activity, nil
}

func (s *ActivityService) Update(ctx context.Context, username, id string, in model.ActivityInput, now time.Time) (*model.Activity, error) {
	activity, err := s.owned(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, activity, in, now); err != nil {
		return nil, err
	}
	activity.UpdatedAt = s.now().UTC()
	if err := s.activities.Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}
	utils.TrackResourceOperation("activity", "update")
	return activity, nil
}

// Toggle flips the completion flag.
func (s *ActivityService) Toggle(ctx context.Context, username, id string, now time.Time) (*model.Activity, error) {
	activity, err := s.owned(ctx, username, id)
	if err != nil {
		return nil, err
	}
	completed := !activity.Completed
	return s.Update(ctx, username, id, model.ActivityInput{Completed: &completed}, now)
}

func (s *ActivityService) Delete(ctx context.Context, username, id string) error {
	if _, err := s.owned(ctx, username, id); err != nil {
		return err
	}
	if err := s.activities.Delete(ctx, id); err != nil {
		return err
	}
	utils.TrackResourceOperation("activity", "delete")
	return nil
}

func (s *ActivityService) apply(ctx context.Context, a *model.Activity, in model.ActivityInput, now time.Time) error {
	if in.Title != nil {
		a.Title = *in.Title
	}
	title, err := requireTitle(a.Title)
	if err != nil {
		return err
	}
	a.Title = title

	if in.Description != nil {
		a.Description = strings.TrimSpace(*in.Description)
	}
	if in.EndDate != nil {
		if in.EndDate.IsZero() {
			return model.NewValidationError("end_date", "is required")
		}
		a.EndDate = in.EndDate.UTC()
	}
	if in.Completed != nil && *in.Completed != a.Completed {
		a.Completed = *in.Completed
		if a.Completed {
			at := now.UTC()
			a.CompletedAt = &at
		} else {
			a.CompletedAt = nil
		}
	}
	if in.GroupList != nil {
		a.GroupList = normalizeMembers(*in.GroupList, a.Author)
		if err := requireUsers(ctx, s.users, "group_list", a.GroupList); err != nil {
			return err
		}
	}
	return nil
}
