package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gjc-app/board-sync/models"
	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/catalog"
	"github.com/gjc-app/board-sync/pkg/dataURI"
	"github.com/gjc-app/board-sync/pkg/logger"
	"github.com/gjc-app/board-sync/repos/docstore"
	"github.com/gjc-app/board-sync/services/attachments"
	"github.com/gjc-app/board-sync/services/session"
)

// Edits are the editable profile fields.
type Edits struct {
	Name         string
	Rank         string
	Avatar       *string
	GameName     string
	TwitterName  string
	ParallelName string
	DiscordName  string
}

type Service interface {
	UpdateProfile(ctx context.Context, s session.Session, edits Edits) (models.UserProfile, error)
}

type Store struct {
	store    docstore.Store
	uploader attachments.Service
	sessions *session.Cache
	log      zerolog.Logger
}

var _ Service = (*Store)(nil)

func NewStore(store docstore.Store, uploader attachments.Service, sessions *session.Cache) *Store {
	return &Store{
		store:    store,
		uploader: uploader,
		sessions: sessions,
		log:      logger.Component("profile"),
	}
}

// UpdateProfile overwrites the editable fields of the session's profile.
// A data URI avatar is uploaded first; if anything fails neither the stored
// document nor the cached session changes.
func (p *Store) UpdateProfile(ctx context.Context, s session.Session, edits Edits) (models.UserProfile, error) {
	if err := validate(edits); err != nil {
		return s.Profile, err
	}

	avatar := edits.Avatar
	if avatar != nil && *avatar == "" {
		avatar = nil
	}
	if avatar != nil && dataURI.IsDataURI(*avatar) {
		if !dataURI.IsLocalImage(*avatar) {
			return s.Profile, apperrors.Validation("updateProfile", "avatar must be an image")
		}
		url, err := p.uploader.Upload(ctx, attachments.Avatars, s.UserID, *avatar)
		if err != nil {
			return s.Profile, err
		}
		avatar = &url
	}

	updated := s.Profile
	updated.ID = ""
	updated.Name = strings.TrimSpace(edits.Name)
	updated.Rank = edits.Rank
	updated.Avatar = avatar
	updated.GameName = edits.GameName
	updated.TwitterName = edits.TwitterName
	updated.ParallelName = edits.ParallelName
	updated.DiscordName = edits.DiscordName

	if err := p.write(ctx, s.UserID, updated); err != nil {
		p.log.Error().Err(err).Str("userId", s.UserID).Msg("failed to update profile")
		return s.Profile, err
	}

	p.sessions.Put(session.Session{UserID: s.UserID, Profile: updated})
	return updated, nil
}

func (p *Store) write(ctx context.Context, userID string, profile models.UserProfile) error {
	fields := profile.Fields()
	updates := make([]docstore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, docstore.Update{Path: path, Value: value})
	}

	err := p.store.UpdateDocument(ctx, models.Users, userID, updates)
	if errors.Is(err, apperrors.ErrNotFound) {
		// The document vanished since bootstrap. Recreate it rather than fail the edit.
		fields["createdAt"] = docstore.ServerTimestamp
		return p.store.SetDocument(ctx, models.Users, userID, fields)
	}
	return err
}

func validate(e Edits) error {
	if strings.TrimSpace(e.Name) == "" {
		return apperrors.Validation("updateProfile", "name is required")
	}
	if !catalog.IsRank(e.Rank) {
		return apperrors.Validation("updateProfile", "unknown rank %q", e.Rank)
	}
	return nil
}
