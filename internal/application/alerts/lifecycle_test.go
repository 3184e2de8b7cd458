package alerts_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/internal/application/alerts"
	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Process
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_UnaSolaAlertaAbiertaPorArticulo(t *testing.T) {
	f := newFixture()
	seedItem(t, f.store, "item-1", "Harina", intPtr(4), intPtr(10))
	settings := enabledSettings(24)

	first := f.sweep(t, settings)
	assert.Equal(t, 1, first.Created)

	for i := 0; i < 5; i++ {
		f.clock.Advance(30 * time.Minute)
		res := f.sweep(t, settings)
		assert.Zero(t, res.Created)
		assert.Zero(t, res.Updated)
	}
	assert.Len(t, f.openAlerts(t), 1)
	assert.Equal(t, 1, f.notifier.count())
}

func TestProcess_NuevaAlertaCongelaUmbralYCantidad(t *testing.T) {
	f := newFixture()
	seedItem(t, f.store, "item-1", "Harina", intPtr(0), intPtr(10))

	f.sweep(t, enabledSettings(24))

	open := f.openAlerts(t)
	require.Len(t, open, 1)
	a := open[0]
	assert.Equal(t, entity.AlertTypeOutOfStock, a.AlertType)
	assert.Equal(t, "Harina", a.ItemName)
	assert.Equal(t, 10, a.ThresholdAtCreation)
	assert.Equal(t, 0, a.QuantityAtAlert)
	assert.Equal(t, 1, a.NotificationCount)
	assert.Equal(t, baseTime, a.CreatedAt)
	assert.Equal(t, baseTime, a.LastNotifiedAt)
	assert.False(t, a.Resolved)
}

func TestProcess_RespetaCooldown(t *testing.T) {
	f := newFixture()
	seedItem(t, f.store, "item-1", "Harina", intPtr(8), intPtr(10))
	settings := enabledSettings(24)
	f.sweep(t, settings)

	f.clock.Advance(23*time.Hour + 59*time.Minute)
	setStock(t, f.store, "item-1", 5)
	res := f.sweep(t, settings)
	assert.Zero(t, res.Updated)
	assert.Equal(t, 8, f.openAlerts(t)[0].QuantityAtAlert, "dentro del cooldown no se toca la alerta")

	f.clock.Advance(time.Minute)
	res = f.sweep(t, settings)
	assert.Equal(t, 1, res.Updated)
	a := f.openAlerts(t)[0]
	assert.Equal(t, 2, a.NotificationCount)
	assert.Equal(t, 5, a.QuantityAtAlert)
	assert.Equal(t, 10, a.ThresholdAtCreation)
	assert.Equal(t, baseTime.Add(24*time.Hour), a.LastNotifiedAt)
	assert.Equal(t, 2, f.notifier.count())
}

func TestProcess_CooldownCeroRenotificaSiempre(t *testing.T) {
	f := newFixture()
	seedItem(t, f.store, "item-1", "Harina", intPtr(1), intPtr(10))
	settings := enabledSettings(0)

	f.sweep(t, settings)
	f.clock.Advance(time.Second)
	res := f.sweep(t, settings)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, f.openAlerts(t)[0].NotificationCount)
}

func TestProcess_FalloDeTransporteNoRevierteLaAlerta(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("smtp caído")
	seedItem(t, f.store, "item-1", "Harina", intPtr(1), intPtr(10))

	res := f.sweep(t, enabledSettings(24))
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.NotificationsRequested)
	assert.Equal(t, 1, res.NotificationFailures)
	assert.Empty(t, res.Errors)
	assert.Len(t, f.openAlerts(t), 1)
}

func TestProcess_BarridosConcurrentesNoDuplican(t *testing.T) {
	f := newFixture()
	seedItem(t, f.store, "item-1", "Harina", intPtr(2), intPtr(10))
	settings := enabledSettings(24)
	sweep, err := f.monitor.Sweep(context.Background(), settings)
	require.NoError(t, err)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		updated int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := f.lifecycle.Process(context.Background(), sweep.BelowThreshold, settings)
			mu.Lock()
			created += res.Created
			updated += res.Updated
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Zero(t, updated)
	assert.Len(t, f.openAlerts(t), 1)
	assert.Equal(t, 1, f.notifier.count())
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolve
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_SiguienteBarridoAbreAlertaNueva(t *testing.T) {
	f := newFixture()
	seedItem(t, f.store, "item-1", "Harina", intPtr(3), intPtr(10))
	settings := enabledSettings(24)
	f.sweep(t, settings)
	first := f.openAlerts(t)[0]

	f.clock.Advance(time.Hour)
	require.NoError(t, f.lifecycle.Resolve(context.Background(), first.ID, "user-1", "pedido en camino"))
	assert.Empty(t, f.openAlerts(t))

	resolved, err := f.store.Alerts().GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	assert.Equal(t, "user-1", resolved.ResolvedBy)
	assert.Equal(t, "pedido en camino", resolved.ResolutionNotes)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, baseTime.Add(time.Hour), *resolved.ResolvedAt)

	res := f.sweep(t, settings)
	assert.Equal(t, 1, res.Created)
	open := f.openAlerts(t)
	require.Len(t, open, 1)
	assert.NotEqual(t, first.ID, open[0].ID)
	assert.Equal(t, 1, open[0].NotificationCount)
}

func TestResolve_Errores(t *testing.T) {
	f := newFixture()
	seedItem(t, f.store, "item-1", "Harina", intPtr(3), intPtr(10))
	f.sweep(t, enabledSettings(24))
	id := f.openAlerts(t)[0].ID

	err := f.lifecycle.Resolve(context.Background(), id, "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = f.lifecycle.Resolve(context.Background(), "no-existe", "user-1", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.lifecycle.Resolve(context.Background(), id, "user-1", ""))
	err = f.lifecycle.Resolve(context.Background(), id, "user-2", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenario_StockBajoCooldownYResolucion(t *testing.T) {
	f := newFixture()
	seedItem(t, f.store, "item-1", "Café", intPtr(8), intPtr(10))
	settings := enabledSettings(24)

	// 08:00 stock 8 <= 10: se crea la alerta y se notifica.
	res := f.sweep(t, settings)
	assert.Equal(t, 1, res.Created)

	// 09:00 stock 3: dentro del cooldown, sin cambios.
	f.clock.Advance(time.Hour)
	setStock(t, f.store, "item-1", 3)
	res = f.sweep(t, settings)
	assert.Zero(t, res.Created+res.Updated)
	assert.Equal(t, 8, f.openAlerts(t)[0].QuantityAtAlert)

	// Día siguiente 09:00: cooldown vencido, se re-notifica con la cantidad actual.
	f.clock.Advance(24 * time.Hour)
	res = f.sweep(t, settings)
	assert.Equal(t, 1, res.Updated)
	a := f.openAlerts(t)[0]
	assert.Equal(t, 2, a.NotificationCount)
	assert.Equal(t, 3, a.QuantityAtAlert)

	// El operador resuelve sin reponer: el siguiente barrido abre una alerta nueva.
	require.NoError(t, f.lifecycle.Resolve(context.Background(), a.ID, "user-1", ""))
	f.clock.Advance(time.Minute)
	res = f.sweep(t, settings)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 3, f.notifier.count())

	// Con stock repuesto no hay nada que hacer.
	setStock(t, f.store, "item-1", 40)
	require.NoError(t, f.lifecycle.Resolve(context.Background(), f.openAlerts(t)[0].ID, "user-1", "repuesto"))
	res = f.sweep(t, settings)
	assert.Zero(t, res.Created+res.Updated)

	history, err := f.store.Alerts().ListHistory(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestProcess_SinNotificadorSoloRegistra(t *testing.T) {
	f := newFixture()
	seedItem(t, f.store, "item-1", "Harina", intPtr(1), intPtr(10))
	mgr := alerts.NewLifecycleManager(f.store.Alerts(), nil, zerolog.Nop()).WithClock(f.clock.Now)

	sweep, err := f.monitor.Sweep(context.Background(), enabledSettings(24))
	require.NoError(t, err)
	res := mgr.Process(context.Background(), sweep.BelowThreshold, enabledSettings(24))
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.NotificationsRequested)
	assert.Zero(t, res.NotificationFailures)
}

// ──────────────────────────────────────────────────────────────────────────────
// Notificaciones en paralelo
// ──────────────────────────────────────────────────────────────────────────────

// delayedChannel tarda delay en cada envío y registra el máximo de envíos simultáneos.
type delayedChannel struct {
	delay    time.Duration
	sent     atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
}

func (c *delayedChannel) Send(ctx context.Context, _ []string, _, _ string) error {
	cur := c.inflight.Add(1)
	defer c.inflight.Add(-1)
	for {
		p := c.peak.Load()
		if cur <= p || c.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	select {
	case <-time.After(c.delay):
		c.sent.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func seedLowItems(t *testing.T, f *fixture, n int) []alerts.ClassifiedItem {
	t.Helper()
	for i := 0; i < n; i++ {
		seedItem(t, f.store, fmt.Sprintf("item-%d", i), fmt.Sprintf("Insumo %d", i), intPtr(1), intPtr(10))
	}
	sweep, err := f.monitor.Sweep(context.Background(), enabledSettings(24))
	require.NoError(t, err)
	require.Len(t, sweep.BelowThreshold, n)
	return sweep.BelowThreshold
}

func TestProcess_CanalColgadoNoSerializaElBarrido(t *testing.T) {
	const n = 10
	f := newFixture()
	items := seedLowItems(t, f, n)

	d := alerts.NewDispatcher(map[entity.NotificationChannel]alerts.Channel{
		entity.ChannelEmail: &fakeChannel{block: true},
	}, 100*time.Millisecond, zerolog.Nop())
	mgr := alerts.NewLifecycleManager(f.store.Alerts(), d, zerolog.Nop()).WithClock(f.clock.Now)

	start := time.Now()
	res := mgr.Process(context.Background(), items, enabledSettings(24))
	elapsed := time.Since(start)

	assert.Equal(t, n, res.Created)
	assert.Equal(t, n, res.NotificationsRequested)
	assert.Equal(t, n, res.NotificationFailures)
	assert.Empty(t, res.Errors)
	assert.Less(t, elapsed, 500*time.Millisecond, "los envíos colgados deben solaparse")
	assert.Len(t, f.openAlerts(t), n)
}

func TestProcess_PlazoDelBarridoNoCancelaEnvios(t *testing.T) {
	f := newFixture()
	items := seedLowItems(t, f, 3)

	slow := &delayedChannel{delay: 100 * time.Millisecond}
	d := alerts.NewDispatcher(map[entity.NotificationChannel]alerts.Channel{
		entity.ChannelEmail: slow,
	}, time.Second, zerolog.Nop())
	mgr := alerts.NewLifecycleManager(f.store.Alerts(), d, zerolog.Nop()).WithClock(f.clock.Now)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := mgr.Process(ctx, items, enabledSettings(24))

	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 3, res.NotificationsRequested)
	assert.Zero(t, res.NotificationFailures)
	assert.Equal(t, int32(3), slow.sent.Load())
}

func TestProcess_RespetaLimiteDeEnviosSimultaneos(t *testing.T) {
	f := newFixture()
	items := seedLowItems(t, f, 6)

	slow := &delayedChannel{delay: 30 * time.Millisecond}
	d := alerts.NewDispatcher(map[entity.NotificationChannel]alerts.Channel{
		entity.ChannelEmail: slow,
	}, time.Second, zerolog.Nop())
	mgr := alerts.NewLifecycleManager(f.store.Alerts(), d, zerolog.Nop()).
		WithClock(f.clock.Now).
		WithNotifyWorkers(2)

	res := mgr.Process(context.Background(), items, enabledSettings(24))

	assert.Zero(t, res.NotificationFailures)
	assert.Equal(t, int32(6), slow.sent.Load())
	assert.LessOrEqual(t, slow.peak.Load(), int32(2))
}
