package sqlite

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
)

type divisionsRepo struct {
	q *queries
}

func (r *divisionsRepo) CreateDivision(ctx context.Context, d domain.Division) error {
	ts := d.CreatedAt.UTC()
	if d.CreatedAt.IsZero() {
		ts = now()
	}
	_, err := r.q.db.ExecContext(ctx,
		`INSERT INTO divisions (id, name, created_at) VALUES (?, ?, ?)`,
		d.ID, strings.TrimSpace(d.Name), ts)
	return mapConstraint(err)
}

func (r *divisionsRepo) GetDivisionByID(ctx context.Context, id string) (domain.Division, error) {
	var (
		d  domain.Division
		ts timestamp
	)
	err := r.q.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM divisions WHERE id = ?`, id).
		Scan(&d.ID, &d.Name, &ts)
	if err != nil {
		return domain.Division{}, mapNotFound(err)
	}
	d.CreatedAt = ts.Time
	return d, nil
}

func (r *divisionsRepo) ListDivisions(ctx context.Context) ([]domain.Division, error) {
	return r.list(ctx, `SELECT id, name, created_at FROM divisions ORDER BY name`)
}

func (r *divisionsRepo) ListDivisionsForPrincipal(ctx context.Context, principalID string) ([]domain.Division, error) {
	return r.list(ctx, `
SELECT d.id, d.name, d.created_at
FROM divisions d
JOIN principal_divisions pd ON pd.division_id = d.id
WHERE pd.principal_id = ?
ORDER BY d.name`, principalID)
}

func (r *divisionsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Division, error) {
	rows, err := r.q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Division
	for rows.Next() {
		var (
			d  domain.Division
			ts timestamp
		)
		if err := rows.Scan(&d.ID, &d.Name, &ts); err != nil {
			return nil, err
		}
		d.CreatedAt = ts.Time
		out = append(out, d)
	}
	return out, rows.Err()
}
