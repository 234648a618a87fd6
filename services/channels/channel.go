package channels

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gjc-app/board-sync/models"
	"github.com/gjc-app/board-sync/pkg/logger"
	"github.com/gjc-app/board-sync/repos/docstore"
)

// OrderBy is the field every board collection is ordered by, newest first.
const OrderBy = "createdAt"

// ErrClosed is returned by Wait once the channel has been torn down.
var ErrClosed = errors.New("channel closed")

// Channel is the live, ordered mirror of one collection. Every store
// notification replaces the mirrored items wholesale.
type Channel[T any] struct {
	sub    docstore.Subscription
	decode func(docstore.Snapshot) ([]T, error)
	log    zerolog.Logger

	updates chan []T
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	latest  []T
	version uint64
	changed chan struct{}
	err     error
}

// Open subscribes to collection ordered by createdAt descending.
func Open[T any, PT models.Item[T]](ctx context.Context, store docstore.Store, collection string) (*Channel[T], error) {
	sub, err := store.SubscribeCollection(ctx, collection, OrderBy, docstore.Desc)
	if err != nil {
		return nil, err
	}

	c := &Channel[T]{
		sub:     sub,
		decode:  models.DecodeAll[T, PT],
		log:     logger.Component("channels").With().Str("collection", collection).Logger(),
		updates: make(chan []T, 1),
		done:    make(chan struct{}),
		changed: make(chan struct{}),
	}
	go c.run()
	return c, nil
}

// Updates yields each new ordered sequence. A reader that falls behind only
// sees the most recent one. The channel is closed when the subscription ends.
func (c *Channel[T]) Updates() <-chan []T {
	return c.updates
}

// Latest returns the current mirror and whether a snapshot has arrived yet.
func (c *Channel[T]) Latest() ([]T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest, c.version > 0
}

// Wait blocks until the mirror is newer than version after and returns it with
// its version. Any number of goroutines may wait at once.
func (c *Channel[T]) Wait(ctx context.Context, after uint64) ([]T, uint64, error) {
	for {
		c.mu.Lock()
		if c.version > after {
			items, v := c.latest, c.version
			c.mu.Unlock()
			return items, v, nil
		}
		changed := c.changed
		c.mu.Unlock()

		select {
		case <-changed:
		case <-c.done:
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.version > after {
				return c.latest, c.version, nil
			}
			if c.err != nil {
				return nil, after, c.err
			}
			return nil, after, ErrClosed
		case <-ctx.Done():
			return nil, after, ctx.Err()
		}
	}
}

// Done is closed when the subscription has ended.
func (c *Channel[T]) Done() <-chan struct{} {
	return c.done
}

// Err reports why the subscription ended, if it was a store failure.
func (c *Channel[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close tears down the subscription and waits for the mirror to stop.
func (c *Channel[T]) Close() {
	c.once.Do(c.sub.Unsubscribe)
	<-c.done
}

func (c *Channel[T]) run() {
	for snap := range c.sub.Snapshots() {
		items, err := c.decode(snap)
		if err != nil {
			c.log.Error().Err(err).Msg("dropping undecodable snapshot")
			continue
		}

		c.mu.Lock()
		c.latest = items
		c.version++
		close(c.changed)
		c.changed = make(chan struct{})
		c.mu.Unlock()

		select {
		case <-c.updates:
		default:
		}
		c.updates <- items
	}

	c.mu.Lock()
	c.err = c.sub.Err()
	c.mu.Unlock()
	if c.err != nil {
		c.log.Error().Err(c.err).Msg("subscription ended")
	}
	close(c.updates)
	close(c.done)
}
