package docstore

import (
	"context"
	"errors"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gjc-app/board-sync/pkg/apperrors"
)

// Firestore is the Store backed by Cloud Firestore.
type Firestore struct {
	client *firestore.Client
}

var _ Store = (*Firestore)(nil)

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) GetDocument(ctx context.Context, collection, id string) (*Document, error) {
	doc, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, translate("getDocument", err)
	}
	return &Document{ID: doc.Ref.ID, Data: doc.Data()}, nil
}

func (s *Firestore) SetDocument(ctx context.Context, collection, id string, data map[string]any) error {
	fields := make(map[string]any, len(data))
	for k, v := range data {
		fields[k] = toFirestoreValue(v)
	}
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, fields)
	if err != nil {
		return translate("setDocument", err)
	}
	return nil
}

func (s *Firestore) UpdateDocument(ctx context.Context, collection, id string, updates []Update) error {
	docRef := s.client.Collection(collection).Doc(id)

	if !hasKeyedUnion(updates) {
		_, err := docRef.Update(ctx, toFirestoreUpdates(updates))
		if err != nil {
			return translate("updateDocument", err)
		}
		return nil
	}

	// Keyed unions need the current array, so read and write inside one transaction.
	// Firestore retries the function when a concurrent writer touches the document.
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		resolved := make([]Update, 0, len(updates))
		added := false
		for _, u := range updates {
			au, ok := u.Value.(ArrayUnionValue)
			if !ok || au.Key == "" {
				resolved = append(resolved, u)
				continue
			}
			var existing []any
			if data, err := doc.DataAt(u.Path); err == nil {
				existing, _ = data.([]any)
			}
			missing := missingByKey(existing, au)
			if len(missing) == 0 {
				continue
			}
			added = true
			resolved = append(resolved, Update{Path: u.Path, Value: ArrayUnion(missing...)})
		}
		if !added {
			return ErrAlreadyPresent
		}
		return tx.Update(docRef, toFirestoreUpdates(resolved))
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyPresent) {
			return apperrors.Conflict("updateDocument", err)
		}
		return translate("updateDocument", err)
	}
	return nil
}

func (s *Firestore) DeleteDocument(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	if err != nil {
		return translate("deleteDocument", err)
	}
	return nil
}

func (s *Firestore) SubscribeCollection(ctx context.Context, collection, orderBy string, dir Direction) (Subscription, error) {
	fsDir := firestore.Asc
	if dir == Desc {
		fsDir = firestore.Desc
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &firestoreSubscription{
		it:     s.client.Collection(collection).OrderBy(orderBy, fsDir).Snapshots(ctx),
		ctx:    ctx,
		cancel: cancel,
		ch:     make(chan Snapshot, 1),
	}
	go sub.run()
	return sub, nil
}

type firestoreSubscription struct {
	it     *firestore.QuerySnapshotIterator
	ctx    context.Context
	cancel context.CancelFunc
	ch     chan Snapshot

	mu  sync.Mutex
	err error
}

func (s *firestoreSubscription) Snapshots() <-chan Snapshot {
	return s.ch
}

func (s *firestoreSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Unsubscribe cancels the listen stream; run stops the iterator once Next returns.
func (s *firestoreSubscription) Unsubscribe() {
	s.cancel()
}

func (s *firestoreSubscription) run() {
	defer close(s.ch)
	defer s.it.Stop()

	for {
		qs, err := s.it.Next()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
				return
			}
			s.fail(err)
			return
		}

		docs, err := qs.Documents.GetAll()
		if err != nil {
			s.fail(err)
			return
		}
		snap := make(Snapshot, 0, len(docs))
		for _, doc := range docs {
			snap = append(snap, Document{ID: doc.Ref.ID, Data: doc.Data()})
		}

		// Drop a snapshot the reader has not taken yet; the new one supersedes it.
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- snap:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *firestoreSubscription) fail(err error) {
	s.mu.Lock()
	s.err = translate("subscribeCollection", err)
	s.mu.Unlock()
}

func translate(op string, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return apperrors.NotFound(op, err)
	default:
		return apperrors.StoreUnavailable(op, err)
	}
}

func toFirestoreValue(v any) any {
	switch val := v.(type) {
	case serverTimestamp:
		return firestore.ServerTimestamp
	case ArrayUnionValue:
		return firestore.ArrayUnion(val.Elems...)
	default:
		return v
	}
}

func toFirestoreUpdates(updates []Update) []firestore.Update {
	result := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		result = append(result, firestore.Update{Path: u.Path, Value: toFirestoreValue(u.Value)})
	}
	return result
}
