package repository

import (
	"context"
	"fmt"

	"salescrm_backend/internal/crm/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Activities persists the append-only interaction log.
type Activities struct {
	pool *pgxpool.Pool
}

// NewActivities creates the activity persister.
func NewActivities(pool *pgxpool.Pool) *Activities {
	return &Activities{pool: pool}
}

func (r *Activities) Create(ctx context.Context, a domain.Activity) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO activities (id, client_id, type, timestamp, description, actor_id, actor_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, a.ClientID, string(a.Type), a.Timestamp, a.Description, a.ActorID, a.ActorName)
	return err
}

// Update is rejected: activities are immutable once created. The service
// layer never enqueues one; reaching this is a programming error.
func (r *Activities) Update(_ context.Context, id uuid.UUID, _ map[string]any) error {
	return fmt.Errorf("activity %s is immutable", id)
}

// Delete is rejected for the same reason: the log is append-only.
func (r *Activities) Delete(_ context.Context, id uuid.UUID) error {
	return fmt.Errorf("activity %s cannot be deleted", id)
}

func (r *Activities) ListAll(ctx context.Context) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, type, timestamp, description, actor_id, actor_name
		FROM activities
		ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Activity, 0)
	for rows.Next() {
		var a domain.Activity
		var typ string
		if err := rows.Scan(&a.ID, &a.ClientID, &typ, &a.Timestamp, &a.Description, &a.ActorID, &a.ActorName); err != nil {
			return nil, err
		}
		a.Type = domain.ActivityType(typ)
		items = append(items, a)
	}

	return items, rows.Err()
}
