package docstore

import (
	"context"
	"errors"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/xerrors"
)

// Direction of a collection ordering.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// ErrAlreadyPresent is returned by UpdateDocument when every element of a keyed
// union is already in the array. No field of the update is written in that case.
var ErrAlreadyPresent = errors.New("element already present")

// Store is the remote, multi-writer document database.
type Store interface {
	// GetDocument returns the document or an apperrors NotFound error.
	GetDocument(ctx context.Context, collection, id string) (*Document, error)
	// SetDocument creates or fully overwrites a document.
	SetDocument(ctx context.Context, collection, id string, data map[string]any) error
	// UpdateDocument merges top-level fields into an existing document.
	// Values may be ServerTimestamp or an ArrayUnion which are applied atomically by the store.
	UpdateDocument(ctx context.Context, collection, id string, updates []Update) error
	DeleteDocument(ctx context.Context, collection, id string) error
	// SubscribeCollection streams the full ordered collection on every change until Unsubscribe.
	SubscribeCollection(ctx context.Context, collection, orderBy string, dir Direction) (Subscription, error)
}

// Subscription delivers full snapshots. Only the most recent undelivered snapshot is kept,
// so a slow reader skips intermediate states but never sees a stale one last.
type Subscription interface {
	Snapshots() <-chan Snapshot
	// Err is set when the stream ended because of a store failure.
	Err() error
	Unsubscribe()
}

type Document struct {
	ID   string
	Data map[string]any
}

// DataTo decodes the document fields into v using `firestore` struct tags.
func (d Document) DataTo(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "firestore",
		Result:  v,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(d.Data); err != nil {
		return xerrors.Errorf("consistency error. Converting document %s failed: %w", d.ID, err)
	}
	return nil
}

// Snapshot is the whole collection in query order.
type Snapshot []Document

type Update struct {
	Path  string
	Value any
}

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store's commit time.
var ServerTimestamp any = serverTimestamp{}

// ArrayUnionValue appends elements that are not yet present in an array field.
// With a Key, presence is decided by the element's Key field instead of the whole element.
type ArrayUnionValue struct {
	Key   string
	Elems []any
}

func ArrayUnion(elems ...any) ArrayUnionValue {
	return ArrayUnionValue{Elems: elems}
}

// ArrayUnionBy appends map elements whose key field value is not already in the array.
func ArrayUnionBy(key string, elems ...any) ArrayUnionValue {
	return ArrayUnionValue{Key: key, Elems: elems}
}

func hasKeyedUnion(updates []Update) bool {
	for _, u := range updates {
		if au, ok := u.Value.(ArrayUnionValue); ok && au.Key != "" {
			return true
		}
	}
	return false
}

func keyOf(elem any, key string) (any, bool) {
	m, ok := elem.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// missingByKey returns the elements of au whose key is absent from existing.
func missingByKey(existing []any, au ArrayUnionValue) []any {
	seen := make(map[any]struct{}, len(existing))
	for _, e := range existing {
		if k, ok := keyOf(e, au.Key); ok {
			seen[k] = struct{}{}
		}
	}
	var missing []any
	for _, e := range au.Elems {
		k, ok := keyOf(e, au.Key)
		if !ok {
			missing = append(missing, e)
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		missing = append(missing, e)
	}
	return missing
}
