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

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación de InventoryItemRepository sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const itemColumns = `id, name, stock_quantity, low_stock_threshold, lead_time_days,
	safety_stock_multiplier, reorder_point, updated_at`

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(&it.ID, &it.Name, &it.StockQuantity, &it.LowStockThreshold, &it.LeadTimeDays,
		&it.SafetyStockMultiplier, &it.ReorderPoint, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserta un artículo. Devuelve domain.ErrValidation o domain.ErrDuplicate.
func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}
	query := `
		INSERT INTO inventory_items (id, name, stock_quantity, low_stock_threshold, lead_time_days,
			safety_stock_multiplier, reorder_point, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, item.ID, item.Name, item.StockQuantity, item.LowStockThreshold,
		item.LeadTimeDays, item.SafetyStockMultiplier, item.ReorderPoint, pgTime(item.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo; nil, nil si no existe.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

// GetForUpdate obtiene el artículo y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item for update: %w", err)
	}
	return it, nil
}

// ListTracked devuelve los artículos con stock y umbral configurados, ordenados por nombre.
func (r *InventoryItemRepo) ListTracked(ctx context.Context) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE stock_quantity IS NOT NULL AND low_stock_threshold IS NOT NULL
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list tracked items: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// UpdateStock fija la cantidad en stock.
func (r *InventoryItemRepo) UpdateStock(ctx context.Context, id string, quantity int) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET stock_quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateReorderPoint guarda el punto de reorden calculado.
func (r *InventoryItemRepo) UpdateReorderPoint(ctx context.Context, id string, reorderPoint int) error {
	tag, err := r.q.Exec(ctx, `UPDATE inventory_items SET reorder_point = $2 WHERE id = $1`, id, reorderPoint)
	if err != nil {
		return fmt.Errorf("update reorder point: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
