package sqlite

import (
	"context"
	"slices"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
)

type principalsRepo struct {
	q *queries
}

const selectPrincipal = `
SELECT p.id, p.email, p.name, p.role, p.is_active, p.created_at, p.updated_at,
       COALESCE(group_concat(pd.division_id), '')
FROM principals p
LEFT JOIN principal_divisions pd ON pd.principal_id = p.id
`

func scanPrincipal(row interface{ Scan(...any) error }) (domain.Principal, error) {
	var (
		p                    domain.Principal
		role, divisions      string
		createdAt, updatedAt timestamp
	)
	if err := row.Scan(&p.ID, &p.Email, &p.Name, &role, &p.IsActive, &createdAt, &updatedAt, &divisions); err != nil {
		return domain.Principal{}, err
	}
	p.Role = domain.Role(role)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	p.DivisionIDs = splitIDs(divisions)
	slices.Sort(p.DivisionIDs)
	return p, nil
}

func (r *principalsRepo) GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error) {
	row := r.q.db.QueryRowContext(ctx, selectPrincipal+`WHERE p.id = ? GROUP BY p.id`, id)
	p, err := scanPrincipal(row)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return p, nil
}

func (r *principalsRepo) GetPrincipalByEmail(ctx context.Context, email string) (domain.Credentials, error) {
	var (
		c                    domain.Credentials
		role                 string
		createdAt, updatedAt timestamp
	)
	err := r.q.db.QueryRowContext(ctx, `
SELECT id, email, name, role, is_active, password_hash, created_at, updated_at
FROM principals WHERE email = ?`, email).
		Scan(&c.ID, &c.Email, &c.Name, &role, &c.IsActive, &c.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		return domain.Credentials{}, mapNotFound(err)
	}
	c.Role = domain.Role(role)
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return c, nil
}

func (r *principalsRepo) CreatePrincipal(ctx context.Context, c domain.Credentials) error {
	ts := now()
	if !c.CreatedAt.IsZero() {
		ts = c.CreatedAt.UTC()
	}
	_, err := r.q.db.ExecContext(ctx, `
INSERT INTO principals (id, email, name, role, password_hash, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, domain.NormalizeEmail(c.Email), c.Name, string(c.Role), c.PasswordHash, c.IsActive, ts, ts)
	if err != nil {
		return mapConstraint(err)
	}

	for _, divisionID := range c.DivisionIDs {
		if err := r.addDivision(ctx, c.ID, divisionID); err != nil {
			return err
		}
	}
	return nil
}

func (r *principalsRepo) ListPrincipalsByRole(ctx context.Context, role domain.Role) ([]domain.Principal, error) {
	rows, err := r.q.db.QueryContext(ctx, selectPrincipal+`WHERE p.role = ? GROUP BY p.id ORDER BY p.email`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *principalsRepo) SetActive(ctx context.Context, id string, active bool) error {
	return mapNotFound(r.q.execOne(ctx,
		`UPDATE principals SET is_active = ?, updated_at = ? WHERE id = ?`, active, now(), id))
}

func (r *principalsRepo) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	return mapNotFound(r.q.execOne(ctx,
		`UPDATE principals SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, now(), id))
}

func (r *principalsRepo) SetDivisions(ctx context.Context, id string, divisionIDs []string) error {
	if err := r.q.execOne(ctx, `UPDATE principals SET updated_at = ? WHERE id = ?`, now(), id); err != nil {
		return mapNotFound(err)
	}
	if _, err := r.q.db.ExecContext(ctx, `DELETE FROM principal_divisions WHERE principal_id = ?`, id); err != nil {
		return err
	}
	for _, divisionID := range divisionIDs {
		if err := r.addDivision(ctx, id, divisionID); err != nil {
			return err
		}
	}
	return nil
}

func (r *principalsRepo) addDivision(ctx context.Context, principalID, divisionID string) error {
	_, err := r.q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO principal_divisions (principal_id, division_id) VALUES (?, ?)`,
		principalID, divisionID)
	return mapConstraint(err)
}

func (r *principalsRepo) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var n int
	err := r.q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM principals WHERE role = ?`, string(role)).Scan(&n)
	return n, err
}

