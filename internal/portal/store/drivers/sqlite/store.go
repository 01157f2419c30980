package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/portal/internal/portal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  *sql.DB
	q   *queries
	dsn string
}

var _ store.Store = (*Store)(nil)

// DSN builds a modernc.org/sqlite connection string for path with foreign
// keys enforced on every pooled connection.
func DSN(path string) string {
	v := url.Values{}
	v.Add("_pragma", "foreign_keys(1)")
	v.Add("_pragma", "busy_timeout(5000)")
	v.Add("_time_format", "sqlite")
	if path != ":memory:" {
		v.Add("_pragma", "journal_mode(WAL)")
	}
	return "file:" + path + "?" + v.Encode()
}

// NewStore opens the database at path (or ":memory:").
func NewStore(path string) (*Store, error) {
	dsn := DSN(path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Each connection to :memory: is its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	return &Store{db: db, q: newQueries(db), dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(newTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Principals() store.Principals   { return &principalsRepo{q: s.q} }
func (s *Store) Divisions() store.Divisions     { return &divisionsRepo{q: s.q} }
func (s *Store) LoginEvents() store.LoginEvents { return &loginEventsRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns SQLite constraint failures into store sentinels.
func mapConstraint(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case sqlite3.SQLITE_CONSTRAINT:
		switch msg := se.Error(); {
		case strings.Contains(msg, "UNIQUE"):
			return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
		case strings.Contains(msg, "FOREIGN KEY"):
			return fmt.Errorf("%w: %v", store.ErrNotFound, err)
		}
	}
	return err
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func splitIDs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
