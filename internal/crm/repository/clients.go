package repository

import (
	"context"

	"salescrm_backend/internal/crm/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Patchable client columns. Keys of update patches must match these.
var clientColumns = map[string]struct{}{
	"name":                {},
	"phone":               {},
	"email":               {},
	"address":             {},
	"instagram":           {},
	"maps_link":           {},
	"status":              {},
	"assigned_to":         {},
	"province":            {},
	"brand_id":            {},
	"deal_value":          {},
	"last_interaction_at": {},
	"follow_up_at":        {},
	"follow_up_note":      {},
	"loss_reason":         {},
	"loss_note":           {},
}

// Clients persists leads to the remote store.
type Clients struct {
	pool *pgxpool.Pool
}

// NewClients creates the client persister.
func NewClients(pool *pgxpool.Pool) *Clients {
	return &Clients{pool: pool}
}

func (r *Clients) Create(ctx context.Context, c domain.Client) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clients (
			id, name, phone, email, address, instagram, maps_link,
			status, assigned_to, province, brand_id, deal_value,
			last_interaction_at, follow_up_at, follow_up_note,
			loss_reason, loss_note, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO NOTHING
	`,
		c.ID, c.Name, c.Phone, c.Email, c.Address, c.Instagram, c.MapsLink,
		string(c.Status), c.AssignedTo, c.Province, c.BrandID, c.DealValue,
		c.LastInteractionAt, c.FollowUpAt, c.FollowUpNote,
		nullableReason(c.LossReason), c.LossNote, c.CreatedAt,
	)
	return err
}

// Update applies a field patch. A missing row is a success: the cache is the
// source of the mutation and the row may have been deleted concurrently.
func (r *Clients) Update(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	sql, args, err := buildPatchSQL("clients", patch, clientColumns)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, sql, append(args, id)...)
	return err
}

func (r *Clients) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	return err
}

// ListAll streams every client for cache warm-up and reconciliation.
func (r *Clients) ListAll(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, phone, email, address, instagram, maps_link,
			status, assigned_to, province, brand_id, deal_value,
			last_interaction_at, follow_up_at, follow_up_note,
			loss_reason, loss_note, created_at, updated_at
		FROM clients
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Client, 0)
	for rows.Next() {
		var c domain.Client
		var status string
		var lossReason *string
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Instagram, &c.MapsLink,
			&status, &c.AssignedTo, &c.Province, &c.BrandID, &c.DealValue,
			&c.LastInteractionAt, &c.FollowUpAt, &c.FollowUpNote,
			&lossReason, &c.LossNote, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c.Status = domain.Status(status)
		if lossReason != nil {
			c.LossReason = domain.LossReason(*lossReason)
		}
		items = append(items, c)
	}

	return items, rows.Err()
}

// GetByID fetches one client directly from the remote store. Used by the
// reminder worker, which runs outside the cache-owning process.
func (r *Clients) GetByID(ctx context.Context, id uuid.UUID) (domain.Client, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, phone, email, address, instagram, maps_link,
			status, assigned_to, province, brand_id, deal_value,
			last_interaction_at, follow_up_at, follow_up_note,
			loss_reason, loss_note, created_at, updated_at
		FROM clients
		WHERE id = $1
	`, id)
	if err != nil {
		return domain.Client{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return domain.Client{}, false, rows.Err()
	}

	var c domain.Client
	var status string
	var lossReason *string
	if err := rows.Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Instagram, &c.MapsLink,
		&status, &c.AssignedTo, &c.Province, &c.BrandID, &c.DealValue,
		&c.LastInteractionAt, &c.FollowUpAt, &c.FollowUpNote,
		&lossReason, &c.LossNote, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return domain.Client{}, false, err
	}
	c.Status = domain.Status(status)
	if lossReason != nil {
		c.LossReason = domain.LossReason(*lossReason)
	}
	return c, true, nil
}

func nullableReason(r domain.LossReason) *string {
	if r == "" {
		return nil
	}
	s := string(r)
	return &s
}
