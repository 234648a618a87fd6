package board

import (
	"context"
	"errors"
	"slices"
	"sync"

	"golang.org/x/xerrors"

	"github.com/gjc-app/board-sync/models"
	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/catalog"
	"github.com/gjc-app/board-sync/repos/docstore"
	"github.com/gjc-app/board-sync/services/channels"
	"github.com/gjc-app/board-sync/services/session"
)

// sharedViewer owns the process-wide mirrors behind listings and stats.
const sharedViewer = "*"

type RecruitmentView struct {
	models.RecruitmentPost
	CanDelete  bool `json:"canDelete"`
	JoinedByMe bool `json:"joinedByMe"`
}

type ScrimView struct {
	models.ScrimPost
	CanDelete  bool `json:"canDelete"`
	JoinedByMe bool `json:"joinedByMe"`
}

type EventView struct {
	models.Event
	CanDelete  bool `json:"canDelete"`
	JoinedByMe bool `json:"joinedByMe"`
}

type LoadoutView struct {
	models.Loadout
	CanDelete bool `json:"canDelete"`
}

// Board is the read side: live mirrors of the four collections rendered per viewer.
type Board struct {
	supervisor *channels.Supervisor
	store      docstore.Store

	mu     sync.Mutex
	shared map[string]lease
}

type lease struct {
	ch      any
	release func()
}

func NewBoard(supervisor *channels.Supervisor, store docstore.Store) *Board {
	return &Board{supervisor: supervisor, store: store, shared: make(map[string]lease)}
}

// Close releases the shared mirrors.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for collection, l := range b.shared {
		l.release()
		delete(b.shared, collection)
	}
}

// mirror returns the shared mirror of a collection once its first snapshot
// has arrived. The board holds one lease per collection until Close.
func mirror[T any, PT models.Item[T]](ctx context.Context, b *Board, collection string) ([]T, error) {
	ch, release, err := channels.Acquire[T, PT](b.supervisor, collection, sharedViewer)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	held, ok := b.shared[collection]
	switch {
	case ok && held.ch == any(ch):
		release()
	case ok:
		// The previous mirror ended and the supervisor opened a new one.
		held.release()
		b.shared[collection] = lease{ch: ch, release: release}
	default:
		b.shared[collection] = lease{ch: ch, release: release}
	}
	b.mu.Unlock()

	if items, ok := ch.Latest(); ok {
		return items, nil
	}
	items, _, err := ch.Wait(ctx, 0)
	return items, err
}

func (b *Board) Recruitments(ctx context.Context) ([]models.RecruitmentPost, error) {
	return mirror[models.RecruitmentPost](ctx, b, models.Recruitments)
}

func (b *Board) Scrims(ctx context.Context) ([]models.ScrimPost, error) {
	return mirror[models.ScrimPost](ctx, b, models.Scrims)
}

func (b *Board) Events(ctx context.Context) ([]models.Event, error) {
	return mirror[models.Event](ctx, b, models.Events)
}

func (b *Board) Loadouts(ctx context.Context) ([]models.Loadout, error) {
	return mirror[models.Loadout](ctx, b, models.Loadouts)
}

// List renders a collection for viewer, filtered the way the board screens filter.
func (b *Board) List(ctx context.Context, collection string, viewer session.Session, f Filter) (any, error) {
	switch collection {
	case models.Recruitments:
		items, err := b.Recruitments(ctx)
		if err != nil {
			return nil, err
		}
		return RenderRecruitments(filterRecruitments(items, f.Mode), viewer.UserID), nil
	case models.Scrims:
		items, err := b.Scrims(ctx)
		if err != nil {
			return nil, err
		}
		return RenderScrims(filterScrims(items, f.Status), viewer.UserID), nil
	case models.Events:
		items, err := b.Events(ctx)
		if err != nil {
			return nil, err
		}
		return RenderEvents(items, viewer.UserID), nil
	case models.Loadouts:
		items, err := b.Loadouts(ctx)
		if err != nil {
			return nil, err
		}
		return RenderLoadouts(items, viewer.UserID), nil
	default:
		return nil, apperrors.NotFound("list", nil)
	}
}

// Owner returns the host or author id of an item. The mirror trails writes by
// one snapshot, so an item it has not seen yet is read from the store.
func (b *Board) Owner(ctx context.Context, collection, id string) (string, error) {
	owner, err := b.mirroredOwner(ctx, collection, id)
	if !errors.Is(err, apperrors.ErrNotFound) || !slices.Contains(models.Boards, collection) {
		return owner, err
	}

	doc, err := b.store.GetDocument(ctx, collection, id)
	if err != nil {
		return "", err
	}
	field := "hostId"
	if collection == models.Loadouts {
		field = "authorId"
	}
	owner, _ = doc.Data[field].(string)
	return owner, nil
}

func (b *Board) mirroredOwner(ctx context.Context, collection, id string) (string, error) {
	switch collection {
	case models.Recruitments:
		items, err := b.Recruitments(ctx)
		return findOwner(items, err, id, func(r models.RecruitmentPost) (string, string) { return r.ID, r.HostID })
	case models.Scrims:
		items, err := b.Scrims(ctx)
		return findOwner(items, err, id, func(s models.ScrimPost) (string, string) { return s.ID, s.HostID })
	case models.Events:
		items, err := b.Events(ctx)
		return findOwner(items, err, id, func(e models.Event) (string, string) { return e.ID, e.HostID })
	case models.Loadouts:
		items, err := b.Loadouts(ctx)
		return findOwner(items, err, id, func(l models.Loadout) (string, string) { return l.ID, l.AuthorID })
	default:
		return "", apperrors.NotFound("owner", nil)
	}
}

func findOwner[T any](items []T, err error, id string, key func(T) (itemID, ownerID string)) (string, error) {
	if err != nil {
		return "", err
	}
	for _, item := range items {
		if itemID, owner := key(item); itemID == id {
			return owner, nil
		}
	}
	return "", apperrors.NotFound("owner", xerrors.Errorf("item %s", id))
}

// Watch streams the viewer's own subscription of a collection.
func (b *Board) Watch(ctx context.Context, collection string, viewer session.Session, emit func(view any) bool) error {
	switch collection {
	case models.Recruitments:
		return watch[models.RecruitmentPost](ctx, b, collection, viewer, emit, func(items []models.RecruitmentPost) any {
			return RenderRecruitments(items, viewer.UserID)
		})
	case models.Scrims:
		return watch[models.ScrimPost](ctx, b, collection, viewer, emit, func(items []models.ScrimPost) any {
			return RenderScrims(items, viewer.UserID)
		})
	case models.Events:
		return watch[models.Event](ctx, b, collection, viewer, emit, func(items []models.Event) any {
			return RenderEvents(items, viewer.UserID)
		})
	case models.Loadouts:
		return watch[models.Loadout](ctx, b, collection, viewer, emit, func(items []models.Loadout) any {
			return RenderLoadouts(items, viewer.UserID)
		})
	default:
		return apperrors.NotFound("watch", nil)
	}
}

func watch[T any, PT models.Item[T]](ctx context.Context, b *Board, collection string, viewer session.Session, emit func(any) bool, render func([]T) any) error {
	ch, release, err := channels.Acquire[T, PT](b.supervisor, collection, viewer.UserID)
	if err != nil {
		return err
	}
	defer release()

	var version uint64
	for {
		items, v, err := ch.Wait(ctx, version)
		if err != nil {
			return err
		}
		version = v
		if !emit(render(items)) {
			return nil
		}
	}
}

func RenderRecruitments(items []models.RecruitmentPost, viewerID string) []RecruitmentView {
	views := make([]RecruitmentView, len(items))
	for i, r := range items {
		views[i] = RecruitmentView{
			RecruitmentPost: r,
			CanDelete:       r.HostID == viewerID,
			JoinedByMe:      hasApplicant(r.Applicants, viewerID),
		}
	}
	return views
}

func RenderScrims(items []models.ScrimPost, viewerID string) []ScrimView {
	views := make([]ScrimView, len(items))
	for i, s := range items {
		views[i] = ScrimView{
			ScrimPost:  s,
			CanDelete:  s.HostID == viewerID,
			JoinedByMe: hasApplicant(s.Applicants, viewerID),
		}
	}
	return views
}

func RenderEvents(items []models.Event, viewerID string) []EventView {
	views := make([]EventView, len(items))
	for i, e := range items {
		views[i] = EventView{
			Event:      e,
			CanDelete:  e.HostID == viewerID,
			JoinedByMe: slices.Contains(e.Attendees, viewerID),
		}
	}
	return views
}

func RenderLoadouts(items []models.Loadout, viewerID string) []LoadoutView {
	views := make([]LoadoutView, len(items))
	for i, l := range items {
		views[i] = LoadoutView{Loadout: l, CanDelete: l.AuthorID == viewerID}
	}
	return views
}

func hasApplicant(applicants []models.UserProfile, userID string) bool {
	return slices.ContainsFunc(applicants, func(p models.UserProfile) bool { return p.ID == userID })
}

func filterRecruitments(items []models.RecruitmentPost, mode string) []models.RecruitmentPost {
	if mode == "" || mode == catalog.All {
		return items
	}
	var out []models.RecruitmentPost
	for _, r := range items {
		if r.Mode == mode {
			out = append(out, r)
		}
	}
	return out
}

func filterScrims(items []models.ScrimPost, status string) []models.ScrimPost {
	if status == "" || status == catalog.All {
		return items
	}
	var out []models.ScrimPost
	for _, s := range items {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out
}
