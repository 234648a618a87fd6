package board

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/gjc-app/board-sync/models"
	"github.com/gjc-app/board-sync/pkg/anonID"
	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/catalog"
	"github.com/gjc-app/board-sync/pkg/dataURI"
	"github.com/gjc-app/board-sync/pkg/logger"
	timehelper "github.com/gjc-app/board-sync/pkg/timeHelper"
	"github.com/gjc-app/board-sync/repos/docstore"
	"github.com/gjc-app/board-sync/services/attachments"
	"github.com/gjc-app/board-sync/services/session"
)

// Mutations writes board items. Nothing is applied locally: the channels see
// every write through the store.
type Mutations interface {
	CreateRecruitment(ctx context.Context, s session.Session, d RecruitmentDraft) (string, error)
	CreateScrim(ctx context.Context, s session.Session, d ScrimDraft) (string, error)
	CreateEvent(ctx context.Context, s session.Session, d EventDraft) (string, error)
	CreateLoadout(ctx context.Context, s session.Session, d LoadoutDraft) (string, error)
	Delete(ctx context.Context, collection, id string) error
	JoinOrApply(ctx context.Context, s session.Session, collection, id string) error
	MarkJoined(ctx context.Context, s session.Session, id string) error
}

type Gateway struct {
	store    docstore.Store
	uploader attachments.Service
	clock    timehelper.Clock
	loc      *time.Location
	log      zerolog.Logger
}

var _ Mutations = (*Gateway)(nil)

func NewGateway(store docstore.Store, uploader attachments.Service, loc *time.Location) *Gateway {
	return &Gateway{
		store:    store,
		uploader: uploader,
		clock:    time.Now,
		loc:      loc,
		log:      logger.Component("board"),
	}
}

// SetClock replaces the time source of display timestamps.
func (g *Gateway) SetClock(clock timehelper.Clock) {
	g.clock = clock
}

func (g *Gateway) CreateRecruitment(ctx context.Context, s session.Session, d RecruitmentDraft) (string, error) {
	if err := d.validate(); err != nil {
		return "", err
	}
	post := models.RecruitmentPost{
		Host:       s.Profile.Name,
		HostID:     s.UserID,
		HostAvatar: s.Profile.Avatar,
		Mode:       d.Mode,
		Rank:       d.Rank,
		Needed:     d.Needed,
		Mic:        d.Mic,
		Roles:      d.Roles,
		Comment:    d.Comment,
		Timestamp:  timehelper.ClockString(g.clock(), g.loc),
	}
	return g.create(ctx, models.Recruitments, post.Fields())
}

func (g *Gateway) CreateScrim(ctx context.Context, s session.Session, d ScrimDraft) (string, error) {
	if err := d.validate(); err != nil {
		return "", err
	}
	scrim := models.ScrimPost{
		Host:    s.Profile.Name,
		HostID:  s.UserID,
		Team:    d.Team,
		Time:    d.Time,
		Mode:    d.Mode,
		Map:     d.Map,
		Rank:    d.Rank,
		Comment: d.Comment,
		Status:  catalog.ScrimOpen,
	}
	return g.create(ctx, models.Scrims, scrim.Fields())
}

func (g *Gateway) CreateEvent(ctx context.Context, s session.Session, d EventDraft) (string, error) {
	if err := d.validate(); err != nil {
		return "", err
	}
	event := models.Event{
		Name:   d.Name,
		Date:   d.Date,
		Type:   d.Type,
		Host:   s.Profile.Name,
		HostID: s.UserID,
		Desc:   d.Desc,
	}
	return g.create(ctx, models.Events, event.Fields())
}

// CreateLoadout uploads the screenshot before the document references it.
// A failed upload writes nothing.
func (g *Gateway) CreateLoadout(ctx context.Context, s session.Session, d LoadoutDraft) (string, error) {
	if err := d.validate(); err != nil {
		return "", err
	}

	var image *string
	if dataURI.IsLocalImage(*d.Image) {
		url, err := g.uploader.Upload(ctx, attachments.Loadouts, s.UserID, *d.Image)
		if err != nil {
			return "", err
		}
		image = &url
	}

	loadout := models.Loadout{
		Title:    d.Title,
		Author:   s.Profile.Name,
		AuthorID: s.UserID,
		Image:    image,
	}
	return g.create(ctx, models.Loadouts, loadout.Fields())
}

func (g *Gateway) create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := anonID.NewDocumentID()
	fields["createdAt"] = docstore.ServerTimestamp
	if err := g.store.SetDocument(ctx, collection, id, fields); err != nil {
		g.log.Error().Err(err).Str("collection", collection).Msg("create failed")
		return "", err
	}
	g.log.Info().Str("collection", collection).Str("id", id).Msg("item created")
	return id, nil
}

// Delete removes an item. Ownership is not checked here.
func (g *Gateway) Delete(ctx context.Context, collection, id string) error {
	if !slices.Contains(models.Boards, collection) {
		return apperrors.Validation("delete", "unknown collection %q", collection)
	}
	if err := g.store.DeleteDocument(ctx, collection, id); err != nil {
		g.log.Error().Err(err).Str("collection", collection).Str("id", id).Msg("delete failed")
		return err
	}
	return nil
}

// JoinOrApply appends the caller's current profile to a recruitment or scrim.
// The append is atomic and keyed by user id, so a repeated apply is a Conflict
// and leaves a single entry.
func (g *Gateway) JoinOrApply(ctx context.Context, s session.Session, collection, id string) error {
	applicant := docstore.Update{
		Path:  "applicants",
		Value: docstore.ArrayUnionBy("id", s.Profile.Snapshot(s.UserID)),
	}

	var updates []docstore.Update
	switch collection {
	case models.Recruitments:
		updates = []docstore.Update{applicant}
	case models.Scrims:
		updates = []docstore.Update{{Path: "applied", Value: true}, applicant}
	default:
		return apperrors.Validation("joinOrApply", "cannot apply to %q", collection)
	}

	if err := g.store.UpdateDocument(ctx, collection, id, updates); err != nil {
		if apperrors.KindOf(err) != apperrors.KindConflict {
			g.log.Error().Err(err).Str("collection", collection).Str("id", id).Msg("apply failed")
		}
		return err
	}
	return nil
}

// MarkJoined sets the event's shared joined flag and records the caller as an attendee.
func (g *Gateway) MarkJoined(ctx context.Context, s session.Session, id string) error {
	updates := []docstore.Update{
		{Path: "joined", Value: true},
		{Path: "attendees", Value: docstore.ArrayUnion(s.UserID)},
	}
	if err := g.store.UpdateDocument(ctx, models.Events, id, updates); err != nil {
		g.log.Error().Err(err).Str("id", id).Msg("mark joined failed")
		return err
	}
	return nil
}
