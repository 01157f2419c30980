package sqlite

import (
	"database/sql"

	"github.com/aussiebroadwan/portal/internal/portal/store"
)

type txStore struct {
	q *queries
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{q: newQueries(tx)}
}

func (t *txStore) Principals() store.Principals   { return &principalsRepo{q: t.q} }
func (t *txStore) Divisions() store.Divisions     { return &divisionsRepo{q: t.q} }
func (t *txStore) LoginEvents() store.LoginEvents { return &loginEventsRepo{q: t.q} }
