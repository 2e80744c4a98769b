// Package docstoretest provides an in-memory docstore.Collection for tests.
package docstoretest

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
)

type entry struct {
	id  string
	at  time.Time
	doc docstore.Document
}

// Collection keeps documents in insertion order. Set Err to make every call
// fail with a wrapped docstore.ErrUnavailable.
type Collection struct {
	mu      sync.Mutex
	entries []entry
	unique  []string

	Err error
}

// New returns an empty collection; unique names top-level fields that reject
// duplicate values on insert.
func New(unique ...string) *Collection {
	return &Collection{unique: unique}
}

// InsertAt inserts doc with an id whose embedded time is at.
func (c *Collection) InsertAt(doc docstore.Document, at time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := fmt.Sprintf("%08x%016x", uint32(at.Unix()), len(c.entries)+1)
	d := normalize(doc)
	d["_id"] = id
	c.entries = append(c.entries, entry{id: id, at: at, doc: d})
	return id
}

// Len reports the number of stored documents.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Collection) InsertOne(_ context.Context, doc docstore.Document) (docstore.InsertResult, error) {
	if err := c.fail(); err != nil {
		return docstore.InsertResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	d := normalize(doc)
	if c.conflicts(d) {
		return docstore.InsertResult{}, fmt.Errorf("memory insert: %w", docstore.ErrDuplicate)
	}
	id, at := docstore.NewID()
	d["_id"] = id
	c.entries = append(c.entries, entry{id: id, at: at, doc: d})
	return docstore.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (c *Collection) Find(_ context.Context, match docstore.Document) ([]docstore.Document, error) {
	if err := c.fail(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m := normalize(match)
	out := []docstore.Document{}
	for _, e := range c.entries {
		if contains(e.doc, m) {
			out = append(out, normalize(e.doc))
		}
	}
	return out, nil
}

func (c *Collection) FindExcept(_ context.Context, field string, value any) ([]docstore.Document, error) {
	if err := c.fail(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m := normalize(docstore.Document{field: value})
	out := []docstore.Document{}
	for _, e := range c.entries {
		if !contains(e.doc, m) {
			out = append(out, normalize(e.doc))
		}
	}
	return out, nil
}

func (c *Collection) FindOne(ctx context.Context, match docstore.Document) (docstore.Document, error) {
	docs, err := c.Find(ctx, match)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, docstore.ErrNotFound
	}
	return docs[0], nil
}

func (c *Collection) FindByID(_ context.Context, id string) (docstore.Document, error) {
	if err := c.fail(); err != nil {
		return nil, err
	}
	if _, err := docstore.ParseID(id); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexByID(id); i >= 0 {
		return normalize(c.entries[i].doc), nil
	}
	return nil, docstore.ErrNotFound
}

func (c *Collection) UpdateByID(_ context.Context, id string, u docstore.Update, upsert bool) (docstore.UpdateResult, error) {
	if err := c.fail(); err != nil {
		return docstore.UpdateResult{}, err
	}
	at, err := docstore.ParseID(id)
	if err != nil {
		return docstore.UpdateResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexByID(id); i >= 0 {
		return c.modify(i, u), nil
	}
	if !upsert {
		return docstore.UpdateResult{Acknowledged: true}, nil
	}
	return c.create(id, at, docstore.Document{}, u), nil
}

func (c *Collection) UpdateOne(_ context.Context, match docstore.Document, u docstore.Update, upsert bool) (docstore.UpdateResult, error) {
	if err := c.fail(); err != nil {
		return docstore.UpdateResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m := normalize(match)
	for i, e := range c.entries {
		if contains(e.doc, m) {
			return c.modify(i, u), nil
		}
	}
	if !upsert {
		return docstore.UpdateResult{Acknowledged: true}, nil
	}
	id, at := docstore.NewID()
	return c.create(id, at, m, u), nil
}

func (c *Collection) EstimatedCount(context.Context) (int64, error) {
	if err := c.fail(); err != nil {
		return 0, err
	}
	return int64(c.Len()), nil
}

func (c *Collection) SumByDay(_ context.Context, field string) ([]docstore.DayBucket, error) {
	if err := c.fail(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	points := make([]docstore.Point, 0, len(c.entries))
	for _, e := range c.entries {
		points = append(points, docstore.Point{CreatedAt: e.at, Value: e.doc[field]})
	}
	return docstore.GroupByDay(points), nil
}

func (c *Collection) modify(i int, u docstore.Update) docstore.UpdateResult {
	before := normalize(c.entries[i].doc)
	after := apply(normalize(before), u)
	c.entries[i].doc = after
	res := docstore.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if !reflect.DeepEqual(before, after) {
		res.ModifiedCount = 1
	}
	return res
}

// create inserts an upserted document. Like ON CONFLICT DO NOTHING, a clash
// on a unique field inserts nothing and reports no match.
func (c *Collection) create(id string, at time.Time, seed docstore.Document, u docstore.Update) docstore.UpdateResult {
	d := apply(normalize(seed), u)
	if c.conflicts(d) {
		return docstore.UpdateResult{Acknowledged: true}
	}
	d["_id"] = id
	c.entries = append(c.entries, entry{id: id, at: at, doc: d})
	return docstore.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &id}
}

func (c *Collection) indexByID(id string) int {
	for i, e := range c.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (c *Collection) conflicts(d docstore.Document) bool {
	for _, f := range c.unique {
		v, ok := d[f]
		if !ok {
			continue
		}
		for _, e := range c.entries {
			if reflect.DeepEqual(e.doc[f], v) {
				return true
			}
		}
	}
	return false
}

func (c *Collection) fail() error {
	if c.Err != nil {
		return fmt.Errorf("memory: %w: %w", docstore.ErrUnavailable, c.Err)
	}
	return nil
}

func apply(d docstore.Document, u docstore.Update) docstore.Document {
	for k, v := range normalize(u.Set) {
		d[k] = v
	}
	keys := make([]string, 0, len(u.Inc))
	for k := range u.Inc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cur, _ := d[k].(float64)
		d[k] = cur + u.Inc[k]
	}
	return d
}

// normalize deep-copies through JSON so numbers compare as float64.
func normalize(d docstore.Document) docstore.Document {
	out := docstore.Document{}
	if d == nil {
		return out
	}
	b, err := json.Marshal(d)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return out
}

func contains(doc, match any) bool {
	mm, ok := match.(map[string]any)
	if !ok {
		if d, isDoc := match.(docstore.Document); isDoc {
			mm, ok = d, true
		}
	}
	if !ok {
		return reflect.DeepEqual(doc, match)
	}
	dm, ok := doc.(map[string]any)
	if !ok {
		if d, isDoc := doc.(docstore.Document); isDoc {
			dm, ok = d, true
		}
	}
	if !ok {
		return false
	}
	for k, v := range mm {
		if !contains(dm[k], v) {
			return false
		}
	}
	return true
}
