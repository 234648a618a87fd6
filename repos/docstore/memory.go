package docstore

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/xerrors"

	"github.com/gjc-app/board-sync/pkg/apperrors"
)

// Memory is an in-process Store with Firestore semantics: top-level merges,
// atomic unions, strictly increasing server timestamps and realtime snapshots.
// It backs local development and every service test.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	subs        map[string]map[int]*memorySubscription
	nextSub     int
	now         func() time.Time
	last        time.Time
	unavailable error
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]map[string]any),
		subs:        make(map[string]map[int]*memorySubscription),
		now:         time.Now,
	}
}

// SetClock replaces the source of server timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// SetUnavailable makes every following call fail with StoreUnavailable until reset with nil.
func (m *Memory) SetUnavailable(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = err
}

func (m *Memory) GetDocument(ctx context.Context, collection, id string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("getDocument"); err != nil {
		return nil, err
	}

	data, ok := m.collections[collection][id]
	if !ok {
		return nil, apperrors.NotFound("getDocument", xerrors.Errorf("%s/%s", collection, id))
	}
	return &Document{ID: id, Data: copyValue(data).(map[string]any)}, nil
}

func (m *Memory) SetDocument(ctx context.Context, collection, id string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("setDocument"); err != nil {
		return err
	}

	doc := make(map[string]any, len(data))
	for k, v := range data {
		doc[k] = m.resolve(nil, v)
	}
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]map[string]any)
	}
	m.collections[collection][id] = doc
	m.notify(collection)
	return nil
}

func (m *Memory) UpdateDocument(ctx context.Context, collection, id string, updates []Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("updateDocument"); err != nil {
		return err
	}

	doc, ok := m.collections[collection][id]
	if !ok {
		return apperrors.NotFound("updateDocument", xerrors.Errorf("%s/%s", collection, id))
	}

	if hasKeyedUnion(updates) {
		added := false
		for _, u := range updates {
			au, ok := u.Value.(ArrayUnionValue)
			if !ok || au.Key == "" {
				continue
			}
			existing, _ := doc[u.Path].([]any)
			if len(missingByKey(existing, normalizeUnion(au))) > 0 {
				added = true
			}
		}
		if !added {
			return apperrors.Conflict("updateDocument", ErrAlreadyPresent)
		}
	}

	for _, u := range updates {
		doc[u.Path] = m.resolve(doc[u.Path], u.Value)
	}
	m.notify(collection)
	return nil
}

func (m *Memory) DeleteDocument(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("deleteDocument"); err != nil {
		return err
	}

	if _, ok := m.collections[collection][id]; !ok {
		return nil
	}
	delete(m.collections[collection], id)
	m.notify(collection)
	return nil
}

func (m *Memory) SubscribeCollection(ctx context.Context, collection, orderBy string, dir Direction) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("subscribeCollection"); err != nil {
		return nil, err
	}

	m.nextSub++
	sub := &memorySubscription{
		store:      m,
		id:         m.nextSub,
		collection: collection,
		orderBy:    orderBy,
		dir:        dir,
		ch:         make(chan Snapshot, 1),
		done:       make(chan struct{}),
	}
	if m.subs[collection] == nil {
		m.subs[collection] = make(map[int]*memorySubscription)
	}
	m.subs[collection][sub.id] = sub
	sub.push(m.snapshot(collection, orderBy, dir))

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Unsubscribe()
			case <-sub.done:
			}
		}()
	}
	return sub, nil
}

// Subscribers reports the number of live subscriptions on a collection.
func (m *Memory) Subscribers(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[collection])
}

func (m *Memory) check(op string) error {
	if m.unavailable != nil {
		return apperrors.StoreUnavailable(op, m.unavailable)
	}
	return nil
}

// serverTime returns a strictly increasing commit time.
func (m *Memory) serverTime() time.Time {
	t := m.now()
	if !t.After(m.last) {
		t = m.last.Add(time.Nanosecond)
	}
	m.last = t
	return t
}

func (m *Memory) resolve(current any, v any) any {
	switch val := v.(type) {
	case serverTimestamp:
		return m.serverTime()
	case ArrayUnionValue:
		existing, _ := current.([]any)
		result := append([]any{}, existing...)
		au := normalizeUnion(val)
		if au.Key != "" {
			return append(result, missingByKey(existing, au)...)
		}
		for _, e := range au.Elems {
			if !containsValue(result, e) {
				result = append(result, e)
			}
		}
		return result
	default:
		return normalize(v)
	}
}

func (m *Memory) notify(collection string) {
	for _, sub := range m.subs[collection] {
		sub.push(m.snapshot(collection, sub.orderBy, sub.dir))
	}
}

// snapshot orders like Firestore: documents without the field are excluded and
// ties fall back to the document id in the same direction.
func (m *Memory) snapshot(collection, orderBy string, dir Direction) Snapshot {
	snap := make(Snapshot, 0, len(m.collections[collection]))
	for id, data := range m.collections[collection] {
		if _, ok := data[orderBy]; !ok {
			continue
		}
		snap = append(snap, Document{ID: id, Data: copyValue(data).(map[string]any)})
	}
	sort.SliceStable(snap, func(i, j int) bool {
		c := compareValues(snap[i].Data[orderBy], snap[j].Data[orderBy])
		if c == 0 {
			c = strings.Compare(snap[i].ID, snap[j].ID)
		}
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
	return snap
}

type memorySubscription struct {
	store      *Memory
	id         int
	collection string
	orderBy    string
	dir        Direction
	ch         chan Snapshot
	done       chan struct{}
	once       sync.Once
}

func (s *memorySubscription) Snapshots() <-chan Snapshot {
	return s.ch
}

func (s *memorySubscription) Err() error {
	return nil
}

func (s *memorySubscription) Unsubscribe() {
	s.once.Do(func() {
		s.store.mu.Lock()
		delete(s.store.subs[s.collection], s.id)
		close(s.ch)
		s.store.mu.Unlock()
		close(s.done)
	})
}

// push is called with the store lock held, so it is the only sender.
func (s *memorySubscription) push(snap Snapshot) {
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snap:
	default:
	}
}

func normalizeUnion(au ArrayUnionValue) ArrayUnionValue {
	elems := make([]any, 0, len(au.Elems))
	for _, e := range au.Elems {
		elems = append(elems, normalize(e))
	}
	return ArrayUnionValue{Key: au.Key, Elems: elems}
}

func containsValue(list []any, v any) bool {
	for _, e := range list {
		if reflect.DeepEqual(e, v) {
			return true
		}
	}
	return false
}

// normalize converts a value to the shapes Firestore hands back on read:
// int64, float64, []any and map[string]any.
func normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val
	case []byte:
		return append([]byte{}, val...)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	default:
		return v
	}
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return compareOrdered(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return compareOrdered(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	}
	return 0
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
