package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
)

type loginEventsRepo struct {
	q *queries
}

func (r *loginEventsRepo) RecordLoginEvent(ctx context.Context, e domain.LoginEvent) error {
	ts := e.CreatedAt.UTC()
	if e.CreatedAt.IsZero() {
		ts = now()
	}
	_, err := r.q.db.ExecContext(ctx, `
INSERT INTO login_events (id, principal_id, email, outcome, remote_addr, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, mapStringNull(e.PrincipalID), e.Email, string(e.Outcome), e.RemoteAddr, ts)
	return mapConstraint(err)
}

func (r *loginEventsRepo) ListRecentLoginEvents(ctx context.Context, limit int) ([]domain.LoginEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.db.QueryContext(ctx, `
SELECT id, principal_id, email, outcome, remote_addr, created_at
FROM login_events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LoginEvent
	for rows.Next() {
		var (
			e           domain.LoginEvent
			principalID sql.NullString
			outcome     string
			ts          timestamp
		)
		if err := rows.Scan(&e.ID, &principalID, &e.Email, &outcome, &e.RemoteAddr, &ts); err != nil {
			return nil, err
		}
		e.PrincipalID = principalID.String
		e.Outcome = domain.LoginOutcome(outcome)
		e.CreatedAt = ts.Time
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *loginEventsRepo) DeleteLoginEventsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.db.ExecContext(ctx, `DELETE FROM login_events WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
