// Package docstore stores schemaless JSON documents in collections keyed by
// ObjectID strings. Results mirror the acknowledgment shapes the web client
// already understands (insertedId, matchedCount, ...).
package docstore

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrDuplicate   = errors.New("duplicate key")
	ErrInvalidID   = errors.New("invalid id")
	ErrUnavailable = errors.New("storage unavailable")
)

// Document is a decoded JSON object. Numbers are float64.
type Document map[string]any

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

// Update applies Set as a top-level merge, then adds each Inc delta to the
// numeric field of the same name (missing fields count as 0).
type Update struct {
	Set Document
	Inc map[string]float64
}

// DayBucket is one UTC calendar day of documents grouped by creation time.
type DayBucket struct {
	Day   string
	Sum   float64
	Count int64
}

type Collection interface {
	InsertOne(ctx context.Context, doc Document) (InsertResult, error)
	// Find returns documents containing match (nested objects match
	// recursively); a nil match returns everything.
	Find(ctx context.Context, match Document) ([]Document, error)
	// FindExcept returns documents whose field differs from value or is missing.
	FindExcept(ctx context.Context, field string, value any) ([]Document, error)
	FindOne(ctx context.Context, match Document) (Document, error)
	FindByID(ctx context.Context, id string) (Document, error)
	UpdateByID(ctx context.Context, id string, u Update, upsert bool) (UpdateResult, error)
	UpdateOne(ctx context.Context, match Document, u Update, upsert bool) (UpdateResult, error)
	EstimatedCount(ctx context.Context) (int64, error)
	// SumByDay groups by creation day, summing the numeric field.
	SumByDay(ctx context.Context, field string) ([]DayBucket, error)
}

// String returns the string at a dotted path, or "".
func (d Document) String(path string) string {
	s, _ := d.Lookup(path).(string)
	return s
}

// Float returns the number at a dotted path.
func (d Document) Float(path string) (float64, bool) {
	f, ok := d.Lookup(path).(float64)
	return f, ok
}

func (d Document) Lookup(path string) any {
	var cur any = map[string]any(d)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// Clone copies the top level of d.
func (d Document) Clone() Document {
	out := make(Document, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	}
	return nil, false
}
