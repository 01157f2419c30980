package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories run the same
// statements inside and outside transactions.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db DBTX
}

func newQueries(db DBTX) *queries { return &queries{db: db} }

// execOne runs a statement that must touch exactly one row.
func (q *queries) execOne(ctx context.Context, query string, args ...any) error {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
}

// timestamp scans TIMESTAMP columns whether the driver hands back a
// time.Time or the raw text, which happens for expressions without a
// declared column type.
type timestamp struct{ time.Time }

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		ts.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("sqlite: cannot scan %T into timestamp", src)
}

func (ts *timestamp) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("sqlite: unrecognised timestamp %q", s)
}

// now is the write-side timestamp; UTC keeps stored text comparable.
func now() time.Time { return time.Now().UTC() }
