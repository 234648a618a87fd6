package profile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xorcare/pointer"

	"github.com/gjc-app/board-sync/models"
	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/auth"
	"github.com/gjc-app/board-sync/repos/blobstore"
	"github.com/gjc-app/board-sync/repos/docstore"
	"github.com/gjc-app/board-sync/repos/localslot"
	"github.com/gjc-app/board-sync/services/attachments"
	"github.com/gjc-app/board-sync/services/identity"
	"github.com/gjc-app/board-sync/services/session"
)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type fixture struct {
	docs     *docstore.Memory
	blobs    *blobstore.Memory
	sessions *session.Cache
	ids      *identity.Bootstrapper
	store    *Store
	session  session.Session
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		docs:     docstore.NewMemory(),
		blobs:    blobstore.NewMemory("gjc-test"),
		sessions: session.NewCache(time.Minute),
	}
	f.ids = identity.NewBootstrapper(f.docs, f.sessions, "")
	f.store = NewStore(f.docs, attachments.NewUploader(f.blobs), f.sessions)

	s, err := f.ids.EnsureIdentity(context.Background(), localslot.NewMemory())
	require.NoError(t, err)
	f.session = s
	return f
}

func (f *fixture) stored(t *testing.T) models.UserProfile {
	doc, err := f.docs.GetDocument(context.Background(), models.Users, f.session.UserID)
	require.NoError(t, err)
	p, err := models.DecodeProfile(*doc)
	require.NoError(t, err)
	return p
}

func TestUpdateProfileOverwritesEditableFields(t *testing.T) {
	f := newFixture(t)
	created := f.stored(t).CreatedAt

	updated, err := f.store.UpdateProfile(context.Background(), f.session, Edits{
		Name:        "  Alice ",
		Rank:        "マスター",
		Avatar:      pointer.String("https://cdn/a.png"),
		DiscordName: "alice#0001",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)

	stored := f.stored(t)
	assert.Equal(t, "Alice", stored.Name)
	assert.Equal(t, "マスター", stored.Rank)
	assert.Equal(t, "https://cdn/a.png", *stored.Avatar)
	assert.Equal(t, "alice#0001", stored.DiscordName)
	assert.True(t, created.Equal(stored.CreatedAt), "createdAt is not editable")

	cached, ok := f.sessions.Get(f.session.UserID)
	require.True(t, ok)
	assert.Equal(t, "Alice", cached.Profile.Name)
}

func TestUpdateProfileUploadsAvatarBeforeReferencingIt(t *testing.T) {
	f := newFixture(t)

	updated, err := f.store.UpdateProfile(context.Background(), f.session, Edits{
		Name:   "Alice",
		Rank:   "ルーキー",
		Avatar: pointer.String(pixel),
	})
	require.NoError(t, err)

	stored := f.stored(t)
	require.NotNil(t, stored.Avatar)
	assert.False(t, strings.HasPrefix(*stored.Avatar, "data:"), "raw bytes are never persisted")
	assert.Contains(t, *stored.Avatar, "avatars%2F"+f.session.UserID+"_")
	assert.Equal(t, *stored.Avatar, *updated.Avatar)
	assert.Equal(t, 1, f.blobs.Len())
}

func TestUpdateProfileUploadsAvatarWithUpperCaseScheme(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.UpdateProfile(context.Background(), f.session, Edits{
		Name:   "Alice",
		Rank:   "ルーキー",
		Avatar: pointer.String("Data:" + strings.TrimPrefix(pixel, "data:")),
	})
	require.NoError(t, err)

	stored := f.stored(t)
	require.NotNil(t, stored.Avatar)
	assert.True(t, strings.HasPrefix(*stored.Avatar, "https://"))
	assert.Equal(t, 1, f.blobs.Len())
}

func TestUpdateProfileRejectsNonImageDataURIs(t *testing.T) {
	for _, avatar := range []string{
		"data:text/html;base64,PGI+aGk8L2I+",
		"DATA:text/plain,hello",
		"data:,hello",
	} {
		t.Run(avatar, func(t *testing.T) {
			f := newFixture(t)
			before := f.stored(t)

			_, err := f.store.UpdateProfile(context.Background(), f.session, Edits{
				Name:   "Alice",
				Rank:   "ルーキー",
				Avatar: pointer.String(avatar),
			})
			assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
			assert.Equal(t, before, f.stored(t))
			assert.Equal(t, 0, f.blobs.Len())
		})
	}
}

func TestUpdateProfileUploadFailureChangesNothing(t *testing.T) {
	f := newFixture(t)
	before := f.stored(t)
	f.blobs.SetFailing(errors.New("network"))

	_, err := f.store.UpdateProfile(context.Background(), f.session, Edits{
		Name:   "Alice",
		Rank:   "ルーキー",
		Avatar: pointer.String(pixel),
	})
	assert.True(t, errors.Is(err, apperrors.ErrUploadFailed))
	assert.Equal(t, before, f.stored(t))

	cached, _ := f.sessions.Get(f.session.UserID)
	assert.Equal(t, f.session.Profile.Name, cached.Profile.Name)
}

func TestUpdateProfileStoreFailureChangesNothing(t *testing.T) {
	f := newFixture(t)
	f.docs.SetUnavailable(errors.New("offline"))

	_, err := f.store.UpdateProfile(context.Background(), f.session, Edits{Name: "Alice", Rank: "ルーキー"})
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))

	f.docs.SetUnavailable(nil)
	assert.Equal(t, f.session.Profile.Name, f.stored(t).Name)
	cached, _ := f.sessions.Get(f.session.UserID)
	assert.Equal(t, f.session.Profile.Name, cached.Profile.Name)
}

func TestUpdateProfileValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.UpdateProfile(context.Background(), f.session, Edits{Name: " ", Rank: "ルーキー"})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = f.store.UpdateProfile(context.Background(), f.session, Edits{Name: "Alice", Rank: "神"})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestUpdateProfileClearsAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.UpdateProfile(ctx, f.session, Edits{Name: "Alice", Rank: "ルーキー", Avatar: pointer.String("https://cdn/a.png")})
	require.NoError(t, err)
	_, err = f.store.UpdateProfile(ctx, f.session, Edits{Name: "Alice", Rank: "ルーキー"})
	require.NoError(t, err)

	assert.Nil(t, f.stored(t).Avatar)
}

func TestUpdateProfileHTTP(t *testing.T) {
	f := newFixture(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/profile/v1")
	group.Use(auth.IdentityMiddleware(f.ids, false))
	NewHTTPHandler(HTTPOptions{Service: f.store, Router: group})

	body := `{"name":"Alice","rank":"プロ","avatar":null,"gameName":"alice"}`
	req := httptest.NewRequest(http.MethodPut, "/profile/v1/me", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: identity.SlotKey, Value: f.session.UserID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Alice"`)
	assert.Equal(t, "alice", f.stored(t).GameName)

	req = httptest.NewRequest(http.MethodPut, "/profile/v1/me", strings.NewReader(`{"rank":"プロ"}`))
	req.AddCookie(&http.Cookie{Name: identity.SlotKey, Value: f.session.UserID})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
