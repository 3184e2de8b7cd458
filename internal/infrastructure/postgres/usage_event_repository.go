package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

var _ repository.UsageEventRepository = (*UsageEventRepo)(nil)

// UsageEventRepo libro de uso sobre PostgreSQL. Solo INSERT y SELECT.
type UsageEventRepo struct {
	q Querier
}

// NewUsageEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUsageEventRepository(q Querier) *UsageEventRepo {
	return &UsageEventRepo{q: q}
}

// Append agrega un evento al libro.
func (r *UsageEventRepo) Append(ctx context.Context, ev *entity.UsageEvent) error {
	query := `
		INSERT INTO usage_events (id, item_id, quantity_change, change_type, quantity_after, notes, created_by, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, ev.ID, ev.ItemID, ev.QuantityChange, ev.ChangeType,
		ev.QuantityAfter, ev.Notes, ev.CreatedBy, pgTime(ev.OccurredAt))
	if err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

// ListByItem devuelve los eventos del artículo, del más antiguo al más reciente.
func (r *UsageEventRepo) ListByItem(ctx context.Context, itemID string, since *time.Time) ([]entity.UsageEvent, error) {
	query := `
		SELECT id, item_id, quantity_change, change_type, quantity_after, notes, created_by, occurred_at
		FROM usage_events
		WHERE item_id = $1`
	args := []any{itemID}
	if since != nil {
		query += ` AND occurred_at >= $2`
		args = append(args, pgTime(*since))
	}
	query += ` ORDER BY occurred_at, id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list usage events: %w", err)
	}
	defer rows.Close()

	var list []entity.UsageEvent
	for rows.Next() {
		var ev entity.UsageEvent
		if err := rows.Scan(&ev.ID, &ev.ItemID, &ev.QuantityChange, &ev.ChangeType,
			&ev.QuantityAfter, &ev.Notes, &ev.CreatedBy, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan usage event: %w", err)
		}
		list = append(list, ev)
	}
	return list, rows.Err()
}
