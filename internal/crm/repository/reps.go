package repository

import (
	"context"

	"salescrm_backend/internal/crm/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var repColumns = map[string]struct{}{
	"name":              {},
	"email":             {},
	"role":              {},
	"status":            {},
	"allowed_provinces": {},
	"allowed_brands":    {},
}

// Reps persists representatives to the remote store. Rep records originate
// in the identity provider; this table mirrors the assignment-relevant
// subset.
type Reps struct {
	pool *pgxpool.Pool
}

// NewReps creates the representative persister.
func NewReps(pool *pgxpool.Pool) *Reps {
	return &Reps{pool: pool}
}

func (r *Reps) Create(ctx context.Context, rep domain.Representative) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO representatives (
			id, name, email, role, status, allowed_provinces, allowed_brands, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`,
		rep.ID, rep.Name, rep.Email, string(rep.Role), string(rep.Status),
		rep.AllowedProvinces, uuidStrings(rep.AllowedBrands), rep.CreatedAt,
	)
	return err
}

func (r *Reps) Update(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	sql, args, err := buildPatchSQL("representatives", patch, repColumns)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, sql, append(args, id)...)
	return err
}

func (r *Reps) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM representatives WHERE id = $1`, id)
	return err
}

func (r *Reps) ListAll(ctx context.Context) ([]domain.Representative, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, role, status, allowed_provinces, allowed_brands, created_at
		FROM representatives
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Representative, 0)
	for rows.Next() {
		var rep domain.Representative
		var role, status string
		var brands []string
		if err := rows.Scan(
			&rep.ID, &rep.Name, &rep.Email, &role, &status,
			&rep.AllowedProvinces, &brands, &rep.CreatedAt,
		); err != nil {
			return nil, err
		}
		rep.Role = domain.Role(role)
		rep.Status = domain.RepStatus(status)
		rep.AllowedBrands = parseUUIDs(brands)
		items = append(items, rep)
	}

	return items, rows.Err()
}

// GetByID loads a single representative. Used by processes that do not own
// the entity cache.
func (r *Reps) GetByID(ctx context.Context, id uuid.UUID) (domain.Representative, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, role, status, allowed_provinces, allowed_brands, created_at
		FROM representatives
		WHERE id = $1
	`, id)
	if err != nil {
		return domain.Representative{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return domain.Representative{}, false, rows.Err()
	}

	var rep domain.Representative
	var role, status string
	var brands []string
	if err := rows.Scan(
		&rep.ID, &rep.Name, &rep.Email, &role, &status,
		&rep.AllowedProvinces, &brands, &rep.CreatedAt,
	); err != nil {
		return domain.Representative{}, false, err
	}
	rep.Role = domain.Role(role)
	rep.Status = domain.RepStatus(status)
	rep.AllowedBrands = parseUUIDs(brands)

	return rep, true, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func parseUUIDs(raw []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}
