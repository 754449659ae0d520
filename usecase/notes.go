package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"selfie/model"
	"selfie/services"
	"selfie/utils"
)

type NotesService struct {
	notes     NoteRepository
	users     UserRepository
	sanitizer *services.ContentSanitizer
	now       Clock
}

func NewNotesService(notes NoteRepository, users UserRepository, sanitizer *services.ContentSanitizer, now Clock) *NotesService {
	if now == nil {
		now = time.Now
	}
	if sanitizer == nil {
		sanitizer = services.NewContentSanitizer()
	}
	return &NotesService{notes: notes, users: users, sanitizer: sanitizer, now: now}
}

// ParseNoteListOptions validates sort and order query values.
func ParseNoteListOptions(username, category, sortBy, order string) (model.NoteListOptions, error) {
	opts := model.NoteListOptions{
		Username:  username,
		Category:  strings.TrimSpace(category),
		SortBy:    strings.ToLower(strings.TrimSpace(sortBy)),
		SortOrder: strings.ToLower(strings.TrimSpace(order)),
	}
	switch opts.SortBy {
	case "":
		opts.SortBy = "updated"
	case "title", "created", "updated", "length":
	default:
		return opts, model.NewValidationError("sort", "must be title, created, updated or length")
	}
	switch opts.SortOrder {
	case "":
		if opts.SortBy == "title" {
			opts.SortOrder = "asc"
		} else {
			opts.SortOrder = "desc"
		}
	case "asc", "desc":
	default:
		return opts, model.NewValidationError("order", "must be asc or desc")
	}
	return opts, nil
}

func (s *NotesService) List(ctx context.Context, opts model.NoteListOptions) ([]*model.Note, error) {
	notes, err := s.notes.ListVisible(ctx, opts.Username, opts.Category)
	if err != nil {
		return nil, err
	}
	sortNotes(notes, opts.SortBy, opts.SortOrder)
	return notes, nil
}

func sortNotes(notes []*model.Note, sortBy, sortOrder string) {
	descending := sortOrder == "desc"
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if descending {
			a, b = b, a
		}
		switch sortBy {
		case "title":
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case "created":
			return a.CreatedAt.Before(b.CreatedAt)
		case "length":
			return a.Length() < b.Length()
		default:
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	})
}

// Categories lists the distinct categories across notes visible to username.
func (s *NotesService) Categories(ctx context.Context, username string) ([]string, error) {
	notes, err := s.notes.ListVisible(ctx, username, "")
	if err != nil {
		return nil, err
	}
	var all []string
	for _, n := range notes {
		all = append(all, n.Categories...)
	}
	return normalizeCategories(all), nil
}

func (s *NotesService) Get(ctx context.Context, username, id string) (*model.Note, error) {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !note.VisibleTo(username) {
		return nil, model.ErrNotFound
	}
	return note, nil
}

func (s *NotesService) owned(ctx context.Context, username, id string) (*model.Note, error) {
	note, err := s.Get(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if note.Author != username {
		return nil, model.ErrForbidden
	}
	return note, nil
}

func (s *NotesService) Create(ctx context.Context, username string, in model.NoteInput) (*model.Note, error) {
	if in.Title == nil {
		return nil, model.NewValidationError("title", "is required")
	}
	now := s.now().UTC()
	note := &model.Note{
		ID:         utils.NewID(),
		Author:     username,
		Categories: []string{},
		AccessType: model.AccessPrivate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.apply(ctx, note, in); err != nil {
		return nil, err
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	utils.TrackResourceOperation("note", "create")
	return note, nil
}

func (s *NotesService) Update(ctx context.Context, username, id string, in model.NoteInput) (*model.Note, error) {
	note, err := s.owned(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, note, in); err != nil {
		return nil, err
	}
	note.UpdatedAt = s.now().UTC()
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	utils.TrackResourceOperation("note", "update")
	return note, nil
}

// Duplicate copies a visible note into a new private note owned by username.
func (s *NotesService) Duplicate(ctx context.Context, username, id string) (*model.Note, error) {
	src, err := s.Get(ctx, username, id)
	if err != nil {
		return nil, err
	}

	title := src.Title + " (copy)"
	if r := []rune(title); len(r) > 200 {
		title = string(r[:200])
	}
	now := s.now().UTC()
	dup := &model.Note{
		ID:         utils.NewID(),
		Title:      title,
		Content:    src.Content,
		Categories: append([]string{}, src.Categories...),
		AccessType: model.AccessPrivate,
		Author:     username,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if src.Author == username {
		dup.AccessType = src.AccessType
		dup.SpecificAccess = append([]string(nil), src.SpecificAccess...)
	}
	if err := s.notes.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("failed to duplicate note: %w", err)
	}
	utils.TrackResourceOperation("note", "duplicate")
	return dup, nil
}

func (s *NotesService) Delete(ctx context.Context, username, id string) error {
	if _, err := s.owned(ctx, username, id); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, id); err != nil {
		return err
	}
	utils.TrackResourceOperation("note", "delete")
	return nil
}

func (s *NotesService) apply(ctx context.Context, n *model.Note, in model.NoteInput) error {
	if in.Title != nil {
		n.Title = s.sanitizer.SanitizeText(*in.Title)
	}
	title, err := requireTitle(n.Title)
	if err != nil {
		return err
	}
	n.Title = title

	if in.Content != nil {
		n.Content = s.sanitizer.Sanitize(*in.Content)
	}
	if in.Categories != nil {
		n.Categories = normalizeCategories(*in.Categories)
	}
	if in.AccessType != nil {
		if !in.AccessType.Valid() {
			return model.NewValidationError("access_type", "must be public, private or specific")
		}
		n.AccessType = *in.AccessType
	}
	if in.SpecificAccess != nil {
		n.SpecificAccess = normalizeMembers(*in.SpecificAccess, n.Author)
	}

	if n.AccessType == model.AccessSpecific {
		if len(n.SpecificAccess) == 0 {
			return model.NewValidationError("specific_access", "must list at least one user")
		}
		if err := requireUsers(ctx, s.users, "specific_access", n.SpecificAccess); err != nil {
			return err
		}
	} else {
		n.SpecificAccess = nil
	}
	return nil
}
