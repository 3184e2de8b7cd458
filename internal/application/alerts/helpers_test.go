package alerts_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/internal/application/alerts"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var baseTime = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func seedItem(t *testing.T, store *memory.Store, id, name string, stock, threshold *int) {
	t.Helper()
	err := store.Items().Create(context.Background(), &entity.InventoryItem{
		ID:                    id,
		Name:                  name,
		StockQuantity:         stock,
		LowStockThreshold:     threshold,
		LeadTimeDays:          7,
		SafetyStockMultiplier: decimal.NewFromFloat(1.5),
	})
	require.NoError(t, err)
}

func setStock(t *testing.T, store *memory.Store, id string, qty int) {
	t.Helper()
	require.NoError(t, store.Items().UpdateStock(context.Background(), id, qty))
}

// clock reloj manual compartido por los componentes bajo prueba.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeNotifier registra las alertas notificadas.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []entity.StockAlert
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, alert *entity.StockAlert, _ *entity.InventoryItem, _ entity.AlertSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, *alert)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fixture struct {
	store     *memory.Store
	clock     *clock
	notifier  *fakeNotifier
	monitor   *alerts.Monitor
	lifecycle *alerts.LifecycleManager
	service   *alerts.Service
}

func newFixture() *fixture {
	store := memory.NewStore()
	clk := newClock(baseTime)
	notifier := &fakeNotifier{}
	monitor := alerts.NewMonitor(store.Items())
	lifecycle := alerts.NewLifecycleManager(store.Alerts(), notifier, zerolog.Nop()).WithClock(clk.Now)
	service := alerts.NewService(store.Settings(), store.Alerts(), monitor, lifecycle, entity.DefaultAlertSettings(), zerolog.Nop()).
		WithClock(clk.Now)
	return &fixture{store: store, clock: clk, notifier: notifier, monitor: monitor, lifecycle: lifecycle, service: service}
}

func enabledSettings(cooldownHours int) entity.AlertSettings {
	s := entity.DefaultAlertSettings()
	s.CooldownHours = cooldownHours
	s.RecipientEmails = []string{"bodega@example.com"}
	return s
}

// sweep ejecuta monitor + ciclo de vida con la configuración dada.
func (f *fixture) sweep(t *testing.T, settings entity.AlertSettings) *alerts.ProcessResult {
	t.Helper()
	res, err := f.monitor.Sweep(context.Background(), settings)
	require.NoError(t, err)
	return f.lifecycle.Process(context.Background(), res.BelowThreshold, settings)
}

func (f *fixture) openAlerts(t *testing.T) []*entity.StockAlert {
	t.Helper()
	list, err := f.store.Alerts().ListOpen(context.Background())
	require.NoError(t, err)
	return list
}
