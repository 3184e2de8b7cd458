package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/internal/application/inventory"
	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func seedItem(t *testing.T, store *memory.Store, id, name string, stock, threshold *int, lead int, mult string) {
	t.Helper()
	err := store.Items().Create(context.Background(), &entity.InventoryItem{
		ID:                    id,
		Name:                  name,
		StockQuantity:         stock,
		LowStockThreshold:     threshold,
		LeadTimeDays:          lead,
		SafetyStockMultiplier: decimal.RequireFromString(mult),
	})
	require.NoError(t, err)
}

func newLedger(store *memory.Store, now func() time.Time) *inventory.UsageLedgerUseCase {
	return inventory.NewUsageLedgerUseCase(store.TxRunner(), store.UsageEvents(), zerolog.Nop()).WithClock(now)
}

// ──────────────────────────────────────────────────────────────────────────────
// Record
// ──────────────────────────────────────────────────────────────────────────────

func TestRecord_ActualizaStockYAgregaEvento(t *testing.T) {
	store := memory.NewStore()
	seedItem(t, store, "item-1", "Camiseta", intPtr(10), intPtr(5), 7, "1.2")
	ledger := newLedger(store, func() time.Time { return baseTime })

	ev, err := ledger.Record(context.Background(), inventory.RecordUsageInput{
		ItemID: "item-1", QuantityChange: -3, ChangeType: entity.ChangeTypeConsumption, QuantityAfter: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, ev.QuantityAfter)
	assert.Equal(t, baseTime, ev.OccurredAt)

	item, err := store.Items().GetByID(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, 7, item.CurrentStock(), "el stock se escribe junto con el evento")
}

func TestRecord_CantidadInconsistenteSeRechaza(t *testing.T) {
	store := memory.NewStore()
	seedItem(t, store, "item-1", "Camiseta", intPtr(10), intPtr(5), 7, "1.2")
	ledger := newLedger(store, time.Now)

	_, err := ledger.Record(context.Background(), inventory.RecordUsageInput{
		ItemID: "item-1", QuantityChange: -3, ChangeType: entity.ChangeTypeConsumption, QuantityAfter: 8,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	item, _ := store.Items().GetByID(context.Background(), "item-1")
	assert.Equal(t, 10, item.CurrentStock(), "un rechazo no toca el stock")
	events, _ := ledger.Query(context.Background(), "item-1", nil)
	assert.Empty(t, events)
}

func TestRecord_CantidadNegativaSeRechaza(t *testing.T) {
	store := memory.NewStore()
	seedItem(t, store, "item-1", "Camiseta", intPtr(2), intPtr(5), 7, "1.2")
	ledger := newLedger(store, time.Now)

	_, err := ledger.Record(context.Background(), inventory.RecordUsageInput{
		ItemID: "item-1", QuantityChange: -3, ChangeType: entity.ChangeTypeConsumption, QuantityAfter: -1,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecord_TipoDesconocidoYArticuloInexistente(t *testing.T) {
	store := memory.NewStore()
	ledger := newLedger(store, time.Now)

	_, err := ledger.Record(context.Background(), inventory.RecordUsageInput{
		ItemID: "item-1", QuantityChange: 1, ChangeType: "theft", QuantityAfter: 1,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ledger.Record(context.Background(), inventory.RecordUsageInput{
		ItemID: "nope", QuantityChange: 1, ChangeType: entity.ChangeTypeOther, QuantityAfter: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Apply / RecordCount / Query
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_EncadenaSnapshots(t *testing.T) {
	store := memory.NewStore()
	seedItem(t, store, "item-1", "Gorra", intPtr(20), intPtr(5), 7, "1.0")
	clock := baseTime
	ledger := newLedger(store, func() time.Time { clock = clock.Add(time.Minute); return clock })
	ctx := context.Background()

	_, err := ledger.Apply(ctx, inventory.ApplyUsageInput{ItemID: "item-1", QuantityChange: -5, ChangeType: entity.ChangeTypeConsumption})
	require.NoError(t, err)
	_, err = ledger.Apply(ctx, inventory.ApplyUsageInput{ItemID: "item-1", QuantityChange: 10, ChangeType: entity.ChangeTypeReceivedShipment})
	require.NoError(t, err)
	_, err = ledger.Apply(ctx, inventory.ApplyUsageInput{ItemID: "item-1", QuantityChange: -40, ChangeType: entity.ChangeTypeConsumption})
	assert.ErrorIs(t, err, domain.ErrValidation, "no se permite stock negativo")

	events, err := ledger.Query(ctx, "item-1", nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 15, events[0].QuantityAfter)
	assert.Equal(t, 25, events[1].QuantityAfter)
	assert.True(t, events[0].OccurredAt.Before(events[1].OccurredAt), "orden: más antiguo primero")
}

func TestRecordCount_RegistraDiferencia(t *testing.T) {
	store := memory.NewStore()
	seedItem(t, store, "item-1", "Gorra", intPtr(20), intPtr(5), 7, "1.0")
	ledger := newLedger(store, time.Now)

	ev, err := ledger.RecordCount(context.Background(), "item-1", 17, "conteo mensual", "user-1")
	require.NoError(t, err)
	assert.Equal(t, -3, ev.QuantityChange)
	assert.Equal(t, entity.ChangeTypeInventoryCount, ev.ChangeType)
	assert.Equal(t, 17, ev.QuantityAfter)
}

func TestQuery_FiltraDesde(t *testing.T) {
	store := memory.NewStore()
	seedItem(t, store, "item-1", "Gorra", intPtr(20), intPtr(5), 7, "1.0")
	clock := baseTime
	ledger := newLedger(store, func() time.Time { return clock })
	ctx := context.Background()

	_, err := ledger.Apply(ctx, inventory.ApplyUsageInput{ItemID: "item-1", QuantityChange: -1, ChangeType: entity.ChangeTypeConsumption})
	require.NoError(t, err)
	clock = baseTime.AddDate(0, 0, 10)
	_, err = ledger.Apply(ctx, inventory.ApplyUsageInput{ItemID: "item-1", QuantityChange: -1, ChangeType: entity.ChangeTypeConsumption})
	require.NoError(t, err)

	since := baseTime.AddDate(0, 0, 5)
	events, err := ledger.Query(ctx, "item-1", &since)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
