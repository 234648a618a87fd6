package attachments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/repos/blobstore"
)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func TestObjectPath(t *testing.T) {
	ts := time.Unix(1700000000, 123456789)
	assert.Equal(t, "avatars/user_a_1700000000123456789", ObjectPath(Avatars, "user_a", ts))
	assert.Equal(t, "loadouts/user_a_1700000000123456789", ObjectPath(Loadouts, "user_a", ts))
}

func TestUploadReturnsPublicURL(t *testing.T) {
	blobs := blobstore.NewMemory("gjc-test")
	u := NewUploader(blobs)
	u.SetClock(func() time.Time { return time.Unix(0, 42) })

	url, err := u.Upload(context.Background(), Avatars, "user_a", pixel)
	require.NoError(t, err)
	assert.True(t, strings.Contains(url, "avatars%2Fuser_a_42"))

	_, ok := blobs.Object("avatars/user_a_42")
	assert.True(t, ok)
}

func TestUploadsDoNotCollide(t *testing.T) {
	blobs := blobstore.NewMemory("gjc-test")
	u := NewUploader(blobs)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		url, err := u.Upload(context.Background(), Loadouts, "user_a", pixel)
		require.NoError(t, err)
		assert.False(t, seen[url])
		seen[url] = true
	}
	assert.Equal(t, 5, blobs.Len())
}

func TestUploadRejectsRemoteURL(t *testing.T) {
	u := NewUploader(blobstore.NewMemory("gjc-test"))

	_, err := u.Upload(context.Background(), Avatars, "user_a", "https://cdn/a.png")
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestUploadFailure(t *testing.T) {
	blobs := blobstore.NewMemory("gjc-test")
	blobs.SetFailing(errors.New("network"))
	u := NewUploader(blobs)

	_, err := u.Upload(context.Background(), Avatars, "user_a", pixel)
	assert.True(t, errors.Is(err, apperrors.ErrUploadFailed))
}
