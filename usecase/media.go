package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"selfie/model"
	"selfie/utils"

	"github.com/gabriel-vasile/mimetype"
)

type MediaService struct {
	media    MediaRepository
	maxBytes int64
	now      Clock
}

func NewMediaService(media MediaRepository, maxBytes int64, now Clock) *MediaService {
	if now == nil {
		now = time.Now
	}
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &MediaService{media: media, maxBytes: maxBytes, now: now}
}

func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

// allowedMedia reports whether a sniffed type may be stored.
func allowedMedia(mime *mimetype.MIME) bool {
	for m := mime; m != nil; m = m.Parent() {
		t := m.String()
		switch {
		case strings.HasPrefix(t, "image/"),
			strings.HasPrefix(t, "audio/"),
			strings.HasPrefix(t, "video/"),
			t == "application/pdf":
			return true
		}
	}
	return false
}

// Upload sniffs data, rejecting oversize and unsupported content.
func (s *MediaService) Upload(ctx context.Context, username, filename string, data []byte) (*model.Media, error) {
	if len(data) == 0 {
		return nil, model.NewValidationError("file", "is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, model.ErrMediaTooLarge
	}

	mime := mimetype.Detect(data)
	if !allowedMedia(mime) {
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedMediaType, mime.String())
	}

	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == "/" || name == "" {
		name = "upload" + mime.Extension()
	}

	media := &model.Media{
		ID:        utils.NewID(),
		Filename:  name,
		MimeType:  mime.String(),
		Size:      int64(len(data)),
		Data:      data,
		Author:    username,
		CreatedAt: s.now().UTC(),
	}
	if err := s.media.Create(ctx, media); err != nil {
		return nil, fmt.Errorf("failed to store media: %w", err)
	}
	utils.TrackResourceOperation("media", "create")
	return media, nil
}

// Get loads media publicly; ids are unguessable.
func (s *MediaService) Get(ctx context.Context, id string) (*model.Media, error) {
	return s.media.FindByID(ctx, id)
}

func (s *MediaService) List(ctx context.Context, username string) ([]*model.Media, error) {
	return s.media.ListByAuthor(ctx, username)
}

func (s *MediaService) Delete(ctx context.Context, username, id string) error {
	media, err := s.media.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if media.Author != username {
		return model.ErrForbidden
	}
	if err := s.media.Delete(ctx, id); err != nil {
		return err
	}
	utils.TrackResourceOperation("media", "delete")
	return nil
}
