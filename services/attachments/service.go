package attachments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/dataURI"
	"github.com/gjc-app/board-sync/pkg/logger"
	timehelper "github.com/gjc-app/board-sync/pkg/timeHelper"
	"github.com/gjc-app/board-sync/repos/blobstore"
)

type Kind string

const (
	Avatars  Kind = "avatars"
	Loadouts Kind = "loadouts"
)

type Service interface {
	Upload(ctx context.Context, kind Kind, ownerID, uri string) (string, error)
}

type Uploader struct {
	blobs blobstore.Store
	clock timehelper.Clock
	log   zerolog.Logger

	mu   sync.Mutex
	last time.Time
}

var _ Service = (*Uploader)(nil)

func NewUploader(blobs blobstore.Store) *Uploader {
	return &Uploader{
		blobs: blobs,
		clock: time.Now,
		log:   logger.Component("attachments"),
	}
}

// SetClock replaces the time source used for object keys.
func (u *Uploader) SetClock(clock timehelper.Clock) {
	u.clock = clock
}

// Upload stores a local image and returns its public URL. The URL is only
// returned once the object is fully written.
func (u *Uploader) Upload(ctx context.Context, kind Kind, ownerID, uri string) (string, error) {
	if kind != Avatars && kind != Loadouts {
		return "", apperrors.Validation("upload", "unknown attachment kind %q", kind)
	}
	if ownerID == "" {
		return "", apperrors.Validation("upload", "owner id is required")
	}
	if !dataURI.IsLocalImage(uri) {
		return "", apperrors.Validation("upload", "attachment must be an image data uri")
	}

	path := ObjectPath(kind, ownerID, u.now())
	h, err := u.blobs.UploadDataURI(ctx, path, uri)
	if err != nil {
		u.log.Error().Err(err).Str("path", path).Msg("upload failed")
		return "", apperrors.UploadFailed("upload", err)
	}

	url, err := u.blobs.PublicURL(ctx, h)
	if err != nil {
		u.log.Error().Err(err).Str("path", path).Msg("public url failed")
		return "", apperrors.UploadFailed("upload", err)
	}
	u.log.Debug().Str("path", path).Msg("attachment uploaded")
	return url, nil
}

// now never repeats within the process, so one owner's uploads get distinct keys
// even on a coarse clock.
func (u *Uploader) now() time.Time {
	u.mu.Lock()
	defer u.mu.Unlock()
	t := u.clock()
	if !t.After(u.last) {
		t = u.last.Add(time.Nanosecond)
	}
	u.last = t
	return t
}

// ObjectPath is <kind>/<owner>_<unix nanos>.
func ObjectPath(kind Kind, ownerID string, t time.Time) string {
	return fmt.Sprintf("%s/%s_%d", kind, ownerID, timehelper.Stamp(t))
}
