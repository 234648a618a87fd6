package channels

import (
	"context"
	"sync"

	"golang.org/x/xerrors"

	"github.com/gjc-app/board-sync/models"
	"github.com/gjc-app/board-sync/repos/docstore"
)

// Supervisor keeps at most one subscription per (collection, viewer). Every
// Acquire for a pair shares the same Channel until the last release.
type Supervisor struct {
	ctx   context.Context
	store docstore.Store

	mu      sync.Mutex
	entries map[key]*entry
}

type key struct {
	collection string
	viewer     string
}

type entry struct {
	ch   feed
	refs int
}

type feed interface {
	Close()
	Done() <-chan struct{}
}

// NewSupervisor opens subscriptions under ctx. Cancelling it ends them all.
func NewSupervisor(ctx context.Context, store docstore.Store) *Supervisor {
	return &Supervisor{
		ctx:     ctx,
		store:   store,
		entries: make(map[key]*entry),
	}
}

// Acquire returns the viewer's channel for collection, opening it if needed.
// release must be called once the view ends.
func Acquire[T any, PT models.Item[T]](s *Supervisor, collection, viewer string) (*Channel[T], func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{collection: collection, viewer: viewer}
	e, ok := s.entries[k]
	if ok && isDone(e.ch) {
		delete(s.entries, k)
		ok = false
	}
	if !ok {
		ch, err := Open[T, PT](s.ctx, s.store, collection)
		if err != nil {
			return nil, nil, err
		}
		e = &entry{ch: ch}
		s.entries[k] = e
	}

	ch, ok := e.ch.(*Channel[T])
	if !ok {
		return nil, nil, xerrors.Errorf("collection %s is already mirrored with another item type", collection)
	}
	e.refs++

	var once sync.Once
	release := func() {
		once.Do(func() { s.release(k, e) })
	}
	return ch, release, nil
}

func (s *Supervisor) release(k key, e *entry) {
	s.mu.Lock()
	e.refs--
	last := e.refs == 0
	if last && s.entries[k] == e {
		delete(s.entries, k)
	}
	s.mu.Unlock()

	if last {
		e.ch.Close()
	}
}

// Active reports the number of live subscriptions for collection.
func (s *Supervisor) Active(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.entries {
		if k.collection == collection {
			n++
		}
	}
	return n
}

// Shutdown closes every subscription regardless of outstanding leases.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[key]*entry)
	s.mu.Unlock()

	for _, e := range entries {
		e.ch.Close()
	}
}

func isDone(f feed) bool {
	select {
	case <-f.Done():
		return true
	default:
		return false
	}
}
