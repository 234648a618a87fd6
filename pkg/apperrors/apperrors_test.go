package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/xerrors"
)

func TestKindMatching(t *testing.T) {
	err := NotFound("getDocument", errors.New("users/abc"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrStoreUnavailable))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := errors.New("connection reset")
	err := xerrors.Errorf("update profile: %w", StoreUnavailable("updateDocument", base))

	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, KindStoreUnavailable, KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestErrorMessage(t *testing.T) {
	err := Validation("createScrim", "team %q is empty", "")
	assert.Equal(t, `createScrim: validation failed: team "" is empty`, err.Error())
	assert.Equal(t, "conflict", ErrConflict.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		NotFound("op", nil):                  404,
		Validation("op", "bad"):              400,
		Conflict("op", nil):                  409,
		UploadFailed("op", nil):              502,
		StoreUnavailable("op", nil):          503,
		errors.New("plain"):                  500,
		xerrors.Errorf("x: %w", ErrConflict): 409,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}

func TestMessageHidesStoreDetails(t *testing.T) {
	err := StoreUnavailable("updateDocument", errors.New("dial tcp 10.0.0.1:443: i/o timeout"))
	assert.Equal(t, "something went wrong", Message(err))
	assert.Equal(t, "upload failed", Message(UploadFailed("upload", errors.New("quota"))))
}
