package channels

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gjc-app/board-sync/models"
	"github.com/gjc-app/board-sync/repos/docstore"
)

func TestSupervisorAtMostOnePerViewer(t *testing.T) {
	store := docstore.NewMemory()
	sup := NewSupervisor(context.Background(), store)
	defer sup.Shutdown()

	a1, releaseA1, err := Acquire[models.ScrimPost](sup, models.Scrims, "user_a")
	require.NoError(t, err)
	a2, releaseA2, err := Acquire[models.ScrimPost](sup, models.Scrims, "user_a")
	require.NoError(t, err)
	assert.Same(t, a1, a2)
	assert.Equal(t, 1, store.Subscribers(models.Scrims))

	_, releaseB, err := Acquire[models.ScrimPost](sup, models.Scrims, "user_b")
	require.NoError(t, err)
	assert.Equal(t, 2, store.Subscribers(models.Scrims))
	assert.Equal(t, 2, sup.Active(models.Scrims))

	releaseA1()
	releaseA1()
	assert.Equal(t, 2, store.Subscribers(models.Scrims), "one lease is still held")

	releaseA2()
	releaseB()
	assert.Equal(t, 0, store.Subscribers(models.Scrims))
	assert.Equal(t, 0, sup.Active(models.Scrims))
}

func TestSupervisorCollectionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	sup := NewSupervisor(ctx, store)
	defer sup.Shutdown()

	events, releaseEvents, err := Acquire[models.Event](sup, models.Events, "user_a")
	require.NoError(t, err)
	defer releaseEvents()
	scrims, releaseScrims, err := Acquire[models.ScrimPost](sup, models.Scrims, "user_a")
	require.NoError(t, err)
	defer releaseScrims()

	_, ev, err := events.Wait(ctx, 0)
	require.NoError(t, err)
	_, sv, err := scrims.Wait(ctx, 0)
	require.NoError(t, err)

	fields := models.Event{Name: "cup"}.Fields()
	fields["createdAt"] = docstore.ServerTimestamp
	require.NoError(t, store.SetDocument(ctx, models.Events, "e1", fields))

	items, _, err := events.Wait(ctx, ev)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, _, err = scrims.Wait(waitCtx, sv)
	assert.Error(t, err, "an events write does not touch the scrims mirror")
}

func TestSupervisorRejectsSecondItemType(t *testing.T) {
	sup := NewSupervisor(context.Background(), docstore.NewMemory())
	defer sup.Shutdown()

	_, release, err := Acquire[models.Event](sup, models.Events, "user_a")
	require.NoError(t, err)
	defer release()

	_, _, err = Acquire[models.Loadout](sup, models.Events, "user_a")
	assert.Error(t, err)
}

func TestSupervisorReopensEndedChannel(t *testing.T) {
	store := docstore.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	sup := NewSupervisor(ctx, store)

	first, release, err := Acquire[models.Loadout](sup, models.Loadouts, "user_a")
	require.NoError(t, err)
	defer release()

	cancel()
	<-first.Done()

	sup.ctx = context.Background()
	second, release2, err := Acquire[models.Loadout](sup, models.Loadouts, "user_a")
	require.NoError(t, err)
	defer release2()
	assert.NotSame(t, first, second)
}
