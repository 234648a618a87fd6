package identity

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/xerrors"

	"github.com/gjc-app/board-sync/models"
	"github.com/gjc-app/board-sync/pkg/anonID"
	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/catalog"
	"github.com/gjc-app/board-sync/pkg/logger"
	"github.com/gjc-app/board-sync/repos/docstore"
	"github.com/gjc-app/board-sync/repos/localslot"
	"github.com/gjc-app/board-sync/services/session"
)

// SlotKey is the local slot entry holding the anonymous user id.
const SlotKey = "gjc_user_id"

type Service interface {
	EnsureIdentity(ctx context.Context, slot localslot.Slot) (session.Session, error)
}

type Bootstrapper struct {
	store    docstore.Store
	sessions *session.Cache
	slotKey  string
	group    singleflight.Group
	log      zerolog.Logger
}

var _ Service = (*Bootstrapper)(nil)

func NewBootstrapper(store docstore.Store, sessions *session.Cache, slotKey string) *Bootstrapper {
	if slotKey == "" {
		slotKey = SlotKey
	}
	return &Bootstrapper{
		store:    store,
		sessions: sessions,
		slotKey:  slotKey,
		log:      logger.Component("identity"),
	}
}

// EnsureIdentity returns the actor's session, creating the id and the profile
// document on the first visit. Concurrent calls for one id share a single load.
func (b *Bootstrapper) EnsureIdentity(ctx context.Context, slot localslot.Slot) (session.Session, error) {
	userID, err := b.userID(slot)
	if err != nil {
		return session.Session{}, err
	}

	if s, ok := b.sessions.Get(userID); ok {
		return s, nil
	}

	v, err, _ := b.group.Do(userID, func() (interface{}, error) {
		profile, err := b.loadOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}
		s := session.Session{UserID: userID, Profile: profile}
		b.sessions.Put(s)
		return s, nil
	})
	if err != nil {
		return session.Session{}, err
	}
	return v.(session.Session), nil
}

func (b *Bootstrapper) userID(slot localslot.Slot) (string, error) {
	if id, ok := slot.GetItem(b.slotKey); ok {
		err := anonID.Check(id)
		if err == nil {
			return id, nil
		}
		b.log.Warn().Err(err).Msg("discarding malformed user id")
	}

	id := anonID.NewUserID()
	if err := slot.SetItem(b.slotKey, id); err != nil {
		return "", xerrors.Errorf("persist user id: %w", err)
	}
	b.log.Info().Str("userId", id).Msg("new anonymous user")
	return id, nil
}

func (b *Bootstrapper) loadOrCreate(ctx context.Context, userID string) (models.UserProfile, error) {
	doc, err := b.store.GetDocument(ctx, models.Users, userID)
	if err == nil {
		return models.DecodeProfile(*doc)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		b.log.Error().Err(err).Str("userId", userID).Msg("failed to load profile")
		return models.UserProfile{}, err
	}

	profile := DefaultProfile(userID)
	fields := profile.Fields()
	fields["createdAt"] = docstore.ServerTimestamp
	if err := b.store.SetDocument(ctx, models.Users, userID, fields); err != nil {
		b.log.Error().Err(err).Str("userId", userID).Msg("failed to create profile")
		return models.UserProfile{}, err
	}

	// Read back for the server-assigned createdAt.
	doc, err = b.store.GetDocument(ctx, models.Users, userID)
	if err != nil {
		return profile, nil
	}
	return models.DecodeProfile(*doc)
}

// DefaultProfile is the profile synthesized on a first visit.
func DefaultProfile(userID string) models.UserProfile {
	return models.UserProfile{
		Name: anonID.DefaultPlayerName(userID),
		Rank: catalog.LowestRank(),
	}
}
