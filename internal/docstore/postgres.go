package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Table is a Collection backed by a Postgres table with columns
// (id text primary key, doc jsonb, created_at timestamptz).
type Table struct {
	DB   *pgxpool.Pool
	Name string
}

func NewTable(db *pgxpool.Pool, name string) *Table {
	return &Table{DB: db, Name: name}
}

func (t *Table) InsertOne(ctx context.Context, doc Document) (InsertResult, error) {
	id, at := NewID()
	d := doc.Clone()
	d["_id"] = id
	b, err := json.Marshal(d)
	if err != nil {
		return InsertResult{}, fmt.Errorf("encode document: %w", err)
	}
	_, err = t.DB.Exec(ctx, `INSERT INTO `+t.Name+`(id, doc, created_at) VALUES ($1, $2::jsonb, $3)`, id, string(b), at)
	if err != nil {
		return InsertResult{}, t.fail("insert", err)
	}
	return InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (t *Table) Find(ctx context.Context, match Document) ([]Document, error) {
	if len(match) == 0 {
		return t.query(ctx, `SELECT doc FROM `+t.Name+` ORDER BY created_at, id`)
	}
	m, err := json.Marshal(match)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return t.query(ctx, `SELECT doc FROM `+t.Name+` WHERE doc @> $1::jsonb ORDER BY created_at, id`, string(m))
}

func (t *Table) FindExcept(ctx context.Context, field string, value any) ([]Document, error) {
	v, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return t.query(ctx, `SELECT doc FROM `+t.Name+`
		WHERE NOT (doc @> jsonb_build_object($1::text, $2::jsonb))
		ORDER BY created_at, id`, field, string(v))
}

func (t *Table) FindOne(ctx context.Context, match Document) (Document, error) {
	m, err := json.Marshal(match)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return t.one(ctx, `SELECT doc FROM `+t.Name+` WHERE doc @> $1::jsonb ORDER BY created_at, id LIMIT 1`, string(m))
}

func (t *Table) FindByID(ctx context.Context, id string) (Document, error) {
	if _, err := ParseID(id); err != nil {
		return nil, err
	}
	return t.one(ctx, `SELECT doc FROM `+t.Name+` WHERE id = $1`, id)
}

func (t *Table) UpdateByID(ctx context.Context, id string, u Update, upsert bool) (UpdateResult, error) {
	at, err := ParseID(id)
	if err != nil {
		return UpdateResult{}, err
	}
	res, err := t.update(ctx, `id = $1`, []any{id}, u)
	if err != nil || res.MatchedCount > 0 || !upsert {
		return res, err
	}
	return t.upsert(ctx, id, at, Document{}, u, func() (UpdateResult, error) {
		return t.update(ctx, `id = $1`, []any{id}, u)
	})
}

func (t *Table) UpdateOne(ctx context.Context, match Document, u Update, upsert bool) (UpdateResult, error) {
	m, err := json.Marshal(match)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("encode filter: %w", err)
	}
	res, err := t.update(ctx, `doc @> $1::jsonb`, []any{string(m)}, u)
	if err != nil || res.MatchedCount > 0 || !upsert {
		return res, err
	}
	id, at := NewID()
	return t.upsert(ctx, id, at, match, u, func() (UpdateResult, error) {
		return t.update(ctx, `doc @> $1::jsonb`, []any{string(m)}, u)
	})
}

func (t *Table) EstimatedCount(ctx context.Context) (int64, error) {
	var n int64
	if err := t.DB.QueryRow(ctx, `SELECT count(*) FROM `+t.Name).Scan(&n); err != nil {
		return 0, t.fail("count", err)
	}
	return n, nil
}

func (t *Table) SumByDay(ctx context.Context, field string) ([]DayBucket, error) {
	rows, err := t.DB.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(CASE WHEN jsonb_typeof(doc->$1::text) = 'number'
		                         THEN (doc->>$1::text)::numeric END), 0)::float8,
		       count(*)
		FROM `+t.Name+`
		GROUP BY day
		ORDER BY day`, field)
	if err != nil {
		return nil, t.fail("group", err)
	}
	defer rows.Close()

	var out []DayBucket
	for rows.Next() {
		var b DayBucket
		if err := rows.Scan(&b.Day, &b.Sum, &b.Count); err != nil {
			return nil, t.fail("group scan", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, t.fail("group", err)
	}
	return out, nil
}

func (t *Table) query(ctx context.Context, sql string, args ...any) ([]Document, error) {
	rows, err := t.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, t.fail("find", err)
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, t.fail("find scan", err)
		}
		var d Document
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", t.Name, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, t.fail("find", err)
	}
	return out, nil
}

func (t *Table) one(ctx context.Context, sql string, args ...any) (Document, error) {
	var raw []byte
	err := t.DB.QueryRow(ctx, sql, args...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, t.fail("find one", err)
	}
	var d Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", t.Name, err)
	}
	return d, nil
}

// update modifies the first row matching where. prev locks that row so the
// returned flag can tell whether the document actually changed.
func (t *Table) update(ctx context.Context, where string, args []any, u Update) (UpdateResult, error) {
	expr, args, err := u.sql("d.doc", args)
	if err != nil {
		return UpdateResult{}, err
	}
	sql := `WITH prev AS (
			SELECT id, doc FROM ` + t.Name + ` WHERE ` + where + `
			ORDER BY created_at, id LIMIT 1 FOR UPDATE)
		UPDATE ` + t.Name + ` AS d SET doc = ` + expr + `
		FROM prev WHERE d.id = prev.id
		RETURNING prev.doc IS DISTINCT FROM d.doc`

	var changed bool
	err = t.DB.QueryRow(ctx, sql, args...).Scan(&changed)
	if errors.Is(err, pgx.ErrNoRows) {
		return UpdateResult{Acknowledged: true}, nil
	}
	if err != nil {
		return UpdateResult{}, t.fail("update", err)
	}
	res := UpdateResult{Acknowledged: true, MatchedCount: 1}
	if changed {
		res.ModifiedCount = 1
	}
	return res, nil
}

// upsert inserts seed+update under id. Losing a race to a concurrent insert
// (any unique violation) falls back to retry.
func (t *Table) upsert(ctx context.Context, id string, at time.Time, seed Document, u Update, retry func() (UpdateResult, error)) (UpdateResult, error) {
	d := u.apply(seed.Clone())
	d["_id"] = id
	b, err := json.Marshal(d)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("encode document: %w", err)
	}
	var got string
	err = t.DB.QueryRow(ctx, `INSERT INTO `+t.Name+`(id, doc, created_at) VALUES ($1, $2::jsonb, $3)
		ON CONFLICT DO NOTHING RETURNING id`, id, string(b), at).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return retry()
	}
	if err != nil {
		return UpdateResult{}, t.fail("upsert", err)
	}
	return UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &got}, nil
}

func (t *Table) fail(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s %s: %w", t.Name, op, ErrDuplicate)
	}
	return fmt.Errorf("%s %s: %w: %w", t.Name, op, ErrUnavailable, err)
}

// sql renders u as an expression over base, appending its parameters. An
// increment treats a missing or non-numeric field as 0.
func (u Update) sql(base string, args []any) (string, []any, error) {
	expr := base
	if len(u.Set) > 0 {
		b, err := json.Marshal(u.Set)
		if err != nil {
			return "", nil, fmt.Errorf("encode update: %w", err)
		}
		args = append(args, string(b))
		expr = fmt.Sprintf("(%s || $%d::jsonb)", expr, len(args))
	}
	for _, field := range incFields(u.Inc) {
		args = append(args, field, u.Inc[field])
		f, v := len(args)-1, len(args)
		expr = fmt.Sprintf("jsonb_set(%s, ARRAY[$%d::text], to_jsonb("+
			"CASE WHEN jsonb_typeof(%s->$%d::text) = 'number' THEN (%s->>$%d::text)::numeric ELSE 0 END + $%d::numeric))",
			expr, f, base, f, base, f, v)
	}
	return expr, args, nil
}

// apply performs u in memory, for documents created by an upsert.
func (u Update) apply(d Document) Document {
	for k, v := range u.Set {
		d[k] = v
	}
	for _, field := range incFields(u.Inc) {
		cur, _ := d[field].(float64)
		d[field] = cur + u.Inc[field]
	}
	return d
}

func incFields(inc map[string]float64) []string {
	out := make([]string, 0, len(inc))
	for k := range inc {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
