package repository

import (
	"context"

	"salescrm_backend/internal/crm/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var targetColumns = map[string]struct{}{
	"deals_target":  {},
	"visits_target": {},
}

// Targets persists monthly targets. The (member_id, month, year) unique key
// is enforced by the schema; Create upserts on it so a re-issued period
// target replaces the previous one.
type Targets struct {
	pool *pgxpool.Pool
}

// NewTargets creates the monthly target persister.
func NewTargets(pool *pgxpool.Pool) *Targets {
	return &Targets{pool: pool}
}

func (r *Targets) Create(ctx context.Context, t domain.MonthlyTarget) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO monthly_targets (id, member_id, month, year, deals_target, visits_target)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (member_id, month, year) DO UPDATE
		SET deals_target = EXCLUDED.deals_target,
			visits_target = EXCLUDED.visits_target
	`, t.ID, t.MemberID, t.Month, t.Year, t.DealsTarget, t.VisitsTarget)
	return err
}

func (r *Targets) Update(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	sql, args, err := buildPatchSQL("monthly_targets", patch, targetColumns)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, sql, append(args, id)...)
	return err
}

func (r *Targets) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM monthly_targets WHERE id = $1`, id)
	return err
}

func (r *Targets) ListAll(ctx context.Context) ([]domain.MonthlyTarget, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, member_id, month, year, deals_target, visits_target
		FROM monthly_targets
		ORDER BY year DESC, month DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MonthlyTarget, 0)
	for rows.Next() {
		var t domain.MonthlyTarget
		if err := rows.Scan(&t.ID, &t.MemberID, &t.Month, &t.Year, &t.DealsTarget, &t.VisitsTarget); err != nil {
			return nil, err
		}
		items = append(items, t)
	}

	return items, rows.Err()
}
