package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gjc-app/board-sync/pkg/apperrors"
)

func fixedClock(start time.Time) func() time.Time {
	return func() time.Time { return start }
}

func TestGetMissingDocumentIsNotFound(t *testing.T) {
	store := NewMemory()

	_, err := store.GetDocument(context.Background(), "users", "nobody")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSetIsFullOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.SetDocument(ctx, "users", "u1", map[string]any{"name": "a", "rank": "プロ"}))
	require.NoError(t, store.SetDocument(ctx, "users", "u1", map[string]any{"name": "b"}))

	doc, err := store.GetDocument(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "b"}, doc.Data)
}

func TestUpdateMissingDocumentIsNotFound(t *testing.T) {
	store := NewMemory()

	err := store.UpdateDocument(context.Background(), "events", "gone", []Update{{Path: "joined", Value: true}})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestServerTimestampsStrictlyIncrease(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	store.SetClock(fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	for i := 0; i < 3; i++ {
		require.NoError(t, store.SetDocument(ctx, "scrims", fmt.Sprint(i), map[string]any{"createdAt": ServerTimestamp}))
	}

	var stamps []time.Time
	for i := 0; i < 3; i++ {
		doc, err := store.GetDocument(ctx, "scrims", fmt.Sprint(i))
		require.NoError(t, err)
		stamps = append(stamps, doc.Data["createdAt"].(time.Time))
	}
	assert.True(t, stamps[0].Before(stamps[1]))
	assert.True(t, stamps[1].Before(stamps[2]))
}

func TestArrayUnionSkipsEqualElements(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.SetDocument(ctx, "events", "e1", map[string]any{"attendees": []string{}}))

	require.NoError(t, store.UpdateDocument(ctx, "events", "e1", []Update{{Path: "attendees", Value: ArrayUnion("u1")}}))
	require.NoError(t, store.UpdateDocument(ctx, "events", "e1", []Update{{Path: "attendees", Value: ArrayUnion("u1", "u2")}}))

	doc, err := store.GetDocument(ctx, "events", "e1")
	require.NoError(t, err)
	assert.Equal(t, []any{"u1", "u2"}, doc.Data["attendees"])
}

func TestArrayUnionByKeyRejectsDuplicateKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.SetDocument(ctx, "scrims", "s1", map[string]any{"applicants": []any{}, "applied": false}))

	first := map[string]any{"id": "u1", "name": "Alice"}
	require.NoError(t, store.UpdateDocument(ctx, "scrims", "s1", []Update{
		{Path: "applied", Value: true},
		{Path: "applicants", Value: ArrayUnionBy("id", first)},
	}))

	renamed := map[string]any{"id": "u1", "name": "Bob"}
	err := store.UpdateDocument(ctx, "scrims", "s1", []Update{
		{Path: "applied", Value: false},
		{Path: "applicants", Value: ArrayUnionBy("id", renamed)},
	})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	doc, err := store.GetDocument(ctx, "scrims", "s1")
	require.NoError(t, err)
	assert.Len(t, doc.Data["applicants"], 1)
	assert.Equal(t, true, doc.Data["applied"], "no field is written when the union adds nothing")
}

func TestConcurrentUnionsAllSurvive(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.SetDocument(ctx, "recruitments", "p1", map[string]any{"applicants": []any{}}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			elem := map[string]any{"id": fmt.Sprintf("u%d", i)}
			assert.NoError(t, store.UpdateDocument(ctx, "recruitments", "p1", []Update{
				{Path: "applicants", Value: ArrayUnionBy("id", elem)},
			}))
		}(i)
	}
	wg.Wait()

	doc, err := store.GetDocument(ctx, "recruitments", "p1")
	require.NoError(t, err)
	assert.Len(t, doc.Data["applicants"], 20)
}

func TestNormalizeMatchesFirestoreReadShapes(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.SetDocument(ctx, "recruitments", "p1", map[string]any{
		"needed": 3,
		"roles":  []string{"アンカー"},
		"avatar": (*string)(nil),
	}))

	doc, err := store.GetDocument(ctx, "recruitments", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), doc.Data["needed"])
	assert.Equal(t, []any{"アンカー"}, doc.Data["roles"])
	assert.Nil(t, doc.Data["avatar"])
}

func TestSubscribeDeliversOrderedFullSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	sub, err := store.SubscribeCollection(ctx, "loadouts", "createdAt", Desc)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	initial := <-sub.Snapshots()
	assert.Empty(t, initial)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SetDocument(ctx, "loadouts", id, map[string]any{"title": id, "createdAt": ServerTimestamp}))
		snap := <-sub.Snapshots()
		require.NotEmpty(t, snap)
		assert.Equal(t, id, snap[0].ID, "newest first")
	}

	require.NoError(t, store.SetDocument(ctx, "loadouts", "untimed", map[string]any{"title": "x"}))
	snap := <-sub.Snapshots()
	assert.Len(t, snap, 3, "documents without the order field are excluded")
}

func TestSubscribeKeepsOnlyLatestPendingSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	sub, err := store.SubscribeCollection(ctx, "events", "createdAt", Desc)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.SetDocument(ctx, "events", fmt.Sprint(i), map[string]any{"createdAt": ServerTimestamp}))
	}

	snap := <-sub.Snapshots()
	assert.Len(t, snap, 5)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewMemory()

	sub, err := store.SubscribeCollection(ctx, "scrims", "createdAt", Desc)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Subscribers("scrims"))

	cancel()
	assert.Eventually(t, func() bool { return store.Subscribers("scrims") == 0 }, time.Second, 5*time.Millisecond)

	for range sub.Snapshots() {
	}
	sub.Unsubscribe()
}

func TestUnavailableStoreFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	store.SetUnavailable(errors.New("offline"))

	err := store.SetDocument(ctx, "users", "u1", map[string]any{"name": "a"})
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))

	store.SetUnavailable(nil)
	assert.NoError(t, store.SetDocument(ctx, "users", "u1", map[string]any{"name": "a"}))
}

func TestDocumentDataTo(t *testing.T) {
	type applicant struct {
		ID   string `firestore:"id"`
		Name string `firestore:"name"`
	}
	type post struct {
		Needed     int         `firestore:"needed"`
		Roles      []string    `firestore:"roles"`
		Applicants []applicant `firestore:"applicants"`
		CreatedAt  time.Time   `firestore:"createdAt"`
	}
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := Document{ID: "p1", Data: map[string]any{
		"needed":     int64(2),
		"roles":      []any{"サポート"},
		"applicants": []any{map[string]any{"id": "u1", "name": "Alice"}},
		"createdAt":  ts,
	}}

	var p post
	require.NoError(t, doc.DataTo(&p))
	assert.Equal(t, 2, p.Needed)
	assert.Equal(t, []string{"サポート"}, p.Roles)
	assert.Equal(t, []applicant{{ID: "u1", Name: "Alice"}}, p.Applicants)
	assert.True(t, ts.Equal(p.CreatedAt))
}
