package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryDatabase is an in-process Database used by tests and local tooling.
// Documents round-trip through BSON so bson struct tags behave exactly as
// they do against Mongo.
type MemoryDatabase struct {
	mu          sync.Mutex
	collections map[string]*MemoryCollection
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{collections: make(map[string]*MemoryCollection)}
}

func (d *MemoryDatabase) Collection(name string) Collection {
	return d.Mem(name)
}

// Mem returns the concrete collection so tests can reach knobs like
// SimulateMissingIndex.
func (d *MemoryDatabase) Mem(name string) *MemoryCollection {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.collections[name]
	if !ok {
		c = &MemoryCollection{
			name: name,
			docs: make(map[string]bson.M),
			subs: make(map[int]*memorySubscription),
		}
		d.collections[name] = c
	}
	return c
}

// MemoryCollection stores documents in insertion order.
type MemoryCollection struct {
	mu    sync.RWMutex
	name  string
	docs  map[string]bson.M
	order []string

	missingIndex bool

	subMu   sync.Mutex
	subs    map[int]*memorySubscription
	nextSub int
}

// SimulateMissingIndex makes every filtered + sorted query fail with an
// index-unavailable error, mimicking a store without the composite index.
func (c *MemoryCollection) SimulateMissingIndex(missing bool) {
	c.mu.Lock()
	c.missingIndex = missing
	c.mu.Unlock()
}

func (c *MemoryCollection) InsertOne(_ context.Context, doc interface{}) error {
	m, id, err := toDocument(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = m
	c.mu.Unlock()

	c.emit(Event{Collection: c.name, Op: "insert", DocumentID: id})
	return nil
}

func (c *MemoryCollection) FindByID(_ context.Context, id string, out interface{}) error {
	c.mu.RLock()
	doc, ok := c.docs[id]
	c.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return decodeDocument(doc, out)
}

func (c *MemoryCollection) Find(_ context.Context, filter Filter, opts FindOptions, out interface{}) error {
	c.mu.RLock()
	if opts.Sort != nil && len(filter) > 0 && c.missingIndex {
		c.mu.RUnlock()
		return &IndexUnavailableError{
			Reason: fmt.Sprintf("no composite index for filter+sort on %s.%s", c.name, opts.Sort.Field),
		}
	}

	matched := make([]bson.M, 0, len(c.order))
	for _, id := range c.order {
		doc := c.docs[id]
		if matchesFilter(doc, filter) {
			matched = append(matched, doc)
		}
	}
	c.mu.RUnlock()

	if opts.Sort != nil {
		field, desc := opts.Sort.Field, opts.Sort.Desc
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compareValues(matched[i][field], matched[j][field])
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if opts.Limit > 0 && int64(len(matched)) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	return decodeDocuments(matched, out)
}

func (c *MemoryCollection) UpdateByID(_ context.Context, id string, set map[string]interface{}) error {
	c.mu.Lock()
	doc, ok := c.docs[id]
	if !ok {
		c.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range set {
		doc[k] = normalizeValue(v)
	}
	c.mu.Unlock()

	c.emit(Event{Collection: c.name, Op: "update", DocumentID: id})
	return nil
}

func (c *MemoryCollection) DeleteByID(_ context.Context, id string) error {
	c.mu.Lock()
	if _, ok := c.docs[id]; !ok {
		c.mu.Unlock()
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.emit(Event{Collection: c.name, Op: "delete", DocumentID: id})
	return nil
}

func (c *MemoryCollection) Watch(_ context.Context) (Subscription, error) {
	sub := &memorySubscription{
		events: make(chan Event, 64),
	}

	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = sub
	c.subMu.Unlock()

	sub.cancel = func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
	return sub, nil
}

func (c *MemoryCollection) emit(ev Event) {
	c.subMu.Lock()
	subs := make([]*memorySubscription, 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.subMu.Unlock()

	for _, s := range subs {
		s.send(ev)
	}
}

type memorySubscription struct {
	mu     sync.Mutex
	closed bool
	events chan Event
	cancel func()
	once   sync.Once
}

func (s *memorySubscription) Events() <-chan Event { return s.events }

// send drops the event when the buffer is full or the subscription is
// already cancelled.
func (s *memorySubscription) send(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default: // slow consumer, drop
	}
}

func (s *memorySubscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
}

func toDocument(doc interface{}) (bson.M, string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, "", err
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, "", err
	}
	id, _ := m["_id"].(string)
	if id == "" {
		return nil, "", fmt.Errorf("store: document has no string _id")
	}
	return m, id, nil
}

func decodeDocument(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func decodeDocuments(docs []bson.M, out interface{}) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("store: out must be a pointer to a slice")
	}
	slice := v.Elem()
	slice.Set(reflect.MakeSlice(slice.Type(), 0, len(docs)))
	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return err
		}
		elem := reflect.New(slice.Type().Elem())
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return err
		}
		slice.Set(reflect.Append(slice, elem.Elem()))
	}
	return nil
}

func matchesFilter(doc bson.M, filter Filter) bool {
	for k, want := range filter {
		if compareValues(doc[k], normalizeValue(want)) != 0 {
			return false
		}
	}
	return true
}

// normalizeValue maps Go values onto the shapes BSON round-tripping
// produces, so filter values compare cleanly with stored fields.
func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		return primitive.NewDateTimeFromTime(t)
	default:
		return v
	}
}

func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if na, aok := asFloat(a); aok {
		if nb, bok := asFloat(b); bok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}

	if ta, aok := asTime(a); aok {
		if tb, bok := asTime(b); bok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}

	if ba, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}

	sa := fmt.Sprintf("%v", a)
	sb := fmt.Sprintf("%v", b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	default:
		return time.Time{}, false
	}
}
