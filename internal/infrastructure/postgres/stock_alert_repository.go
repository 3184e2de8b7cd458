package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// StockAlertRepo alertas de stock sobre PostgreSQL. El índice único parcial
// ux_stock_alerts_open_item impide dos alertas abiertas para el mismo artículo.
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador.
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

const alertColumns = `id, item_id, item_name, alert_type, threshold_at_creation, quantity_at_alert,
	created_at, last_notified_at, notification_count, resolved, resolved_at,
	COALESCE(resolved_by, ''), COALESCE(resolution_notes, '')`

func scanAlert(row pgx.Row) (*entity.StockAlert, error) {
	var a entity.StockAlert
	err := row.Scan(&a.ID, &a.ItemID, &a.ItemName, &a.AlertType, &a.ThresholdAtCreation, &a.QuantityAtAlert,
		&a.CreatedAt, &a.LastNotifiedAt, &a.NotificationCount, &a.Resolved, &a.ResolvedAt,
		&a.ResolvedBy, &a.ResolutionNotes)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserta la alerta; domain.ErrDuplicate si el artículo ya tiene una abierta.
func (r *StockAlertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	a.CreatedAt = pgTime(a.CreatedAt)
	a.LastNotifiedAt = pgTime(a.LastNotifiedAt)
	query := `
		INSERT INTO stock_alerts (id, item_id, item_name, alert_type, threshold_at_creation, quantity_at_alert,
			created_at, last_notified_at, notification_count, resolved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false)`
	_, err := r.q.Exec(ctx, query, a.ID, a.ItemID, a.ItemName, a.AlertType, a.ThresholdAtCreation,
		a.QuantityAtAlert, a.CreatedAt, a.LastNotifiedAt, a.NotificationCount)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock alert: %w", err)
	}
	return nil
}

// GetByID obtiene una alerta; nil, nil si no existe.
func (r *StockAlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx, `SELECT `+alertColumns+` FROM stock_alerts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock alert: %w", err)
	}
	return a, nil
}

// GetOpenByItem devuelve la alerta sin resolver del artículo; nil, nil si no hay.
func (r *StockAlertRepo) GetOpenByItem(ctx context.Context, itemID string) (*entity.StockAlert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx,
		`SELECT `+alertColumns+` FROM stock_alerts WHERE item_id = $1 AND NOT resolved`, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open stock alert: %w", err)
	}
	return a, nil
}

// Renotify compare-and-set sobre last_notified_at: si otro barrido ya re-notificó, no afecta filas.
func (r *StockAlertRepo) Renotify(ctx context.Context, id string, quantity int, notifiedAt, previousNotifiedAt time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_alerts
		SET quantity_at_alert = $2,
		    notification_count = notification_count + 1,
		    last_notified_at = $3
		WHERE id = $1 AND NOT resolved AND last_notified_at = $4`,
		id, quantity, pgTime(notifiedAt), pgTime(previousNotifiedAt))
	if err != nil {
		return false, fmt.Errorf("renotify stock alert: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Resolve marca la alerta como resuelta si sigue abierta.
func (r *StockAlertRepo) Resolve(ctx context.Context, id, resolvedBy, notes string, resolvedAt time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_alerts
		SET resolved = true, resolved_at = $2, resolved_by = $3, resolution_notes = $4
		WHERE id = $1 AND NOT resolved`,
		id, pgTime(resolvedAt), resolvedBy, nullString(notes))
	if err != nil {
		return false, fmt.Errorf("resolve stock alert: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListOpen devuelve las alertas abiertas, la más reciente primero.
func (r *StockAlertRepo) ListOpen(ctx context.Context) ([]*entity.StockAlert, error) {
	return r.list(ctx, `SELECT `+alertColumns+` FROM stock_alerts WHERE NOT resolved ORDER BY created_at DESC, id DESC`)
}

// ListHistory devuelve hasta limit alertas, la más reciente primero.
func (r *StockAlertRepo) ListHistory(ctx context.Context, limit int) ([]*entity.StockAlert, error) {
	return r.list(ctx, `SELECT `+alertColumns+` FROM stock_alerts ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

func (r *StockAlertRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockAlert, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock alerts: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.StockAlert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
