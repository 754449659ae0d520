package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"selfie/model"
	"selfie/testutils"
)

// pngHeader is enough of a PNG file for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func TestMediaService_Upload(t *testing.T) {
	ctx := context.Background()
	svc := NewMediaService(testutils.NewMediaRepo(), 64, func() time.Time { return testNow })

	media, err := svc.Upload(ctx, "alice", "../avatar.png", pngHeader)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if media.MimeType != "image/png" || media.Filename != "avatar.png" || media.Size != int64(len(pngHeader)) {
		t.Errorf("Upload() = %+v", media)
	}

	if _, err := svc.Upload(ctx, "alice", "notes.txt", []byte("just some text")); !errors.Is(err, model.ErrUnsupportedMediaType) {
		t.Errorf("text upload error = %v, want ErrUnsupportedMediaType", err)
	}
	if _, err := svc.Upload(ctx, "alice", "big.png", append(pngHeader, make([]byte, 64)...)); !errors.Is(err, model.ErrMediaTooLarge) {
		t.Errorf("oversize upload error = %v, want ErrMediaTooLarge", err)
	}
	if _, err := svc.Upload(ctx, "alice", "empty", nil); !model.IsValidation(err) {
		t.Errorf("empty upload error = %v", err)
	}

	unnamed, err := svc.Upload(ctx, "alice", "", pngHeader)
	if err != nil || unnamed.Filename != "upload.png" {
		t.Errorf("unnamed upload = %+v, %v", unnamed, err)
	}

	got, err := svc.Get(ctx, media.ID)
	if err != nil || len(got.Data) != len(pngHeader) {
		t.Errorf("Get() = %v, %v", got, err)
	}
	if err := svc.Delete(ctx, "bob", media.ID); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("foreign Delete() error = %v", err)
	}
	list, _ := svc.List(ctx, "alice")
	if len(list) != 2 || list[0].Data != nil {
		t.Errorf("List() returned %d items with data", len(list))
	}
}
