package alerts_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/internal/application/alerts"
	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

type sentMessage struct {
	recipients []string
	subject    string
	body       string
}

type fakeChannel struct {
	mu    sync.Mutex
	sent  []sentMessage
	err   error
	block bool
}

func (c *fakeChannel) Send(ctx context.Context, recipients []string, subject, body string) error {
	if c.block {
		<-ctx.Done()
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentMessage{recipients: recipients, subject: subject, body: body})
	return c.err
}

func sampleAlert(qty int) (*entity.StockAlert, *entity.InventoryItem) {
	alert := &entity.StockAlert{
		ID: "alert-1", ItemID: "item-1", ItemName: "Café", AlertType: entity.AlertTypeLowStock,
		ThresholdAtCreation: 15000, QuantityAtAlert: qty, NotificationCount: 1, CreatedAt: baseTime, LastNotifiedAt: baseTime,
	}
	item := &entity.InventoryItem{ID: "item-1", Name: "Café", StockQuantity: intPtr(qty), LowStockThreshold: intPtr(15000)}
	return alert, item
}

func bothChannels() entity.AlertSettings {
	s := enabledSettings(24)
	s.NotifyBySMS = true
	s.RecipientPhones = []string{"+573001112233"}
	return s
}

func TestDispatcher_EnviaPorCadaCanalActivo(t *testing.T) {
	email, sms := &fakeChannel{}, &fakeChannel{}
	d := alerts.NewDispatcher(map[entity.NotificationChannel]alerts.Channel{
		entity.ChannelEmail: email,
		entity.ChannelSMS:   sms,
	}, time.Second, zerolog.Nop())

	alert, item := sampleAlert(1200)
	require.NoError(t, d.Notify(context.Background(), alert, item, bothChannels()))

	require.Len(t, email.sent, 1)
	assert.Equal(t, []string{"bodega@example.com"}, email.sent[0].recipients)
	assert.Equal(t, "[Inventario] Stock bajo: Café", email.sent[0].subject)
	require.Len(t, sms.sent, 1)
	assert.Equal(t, []string{"+573001112233"}, sms.sent[0].recipients)
}

func TestDispatcher_CanalDesactivadoNoSeUsa(t *testing.T) {
	email, sms := &fakeChannel{}, &fakeChannel{}
	d := alerts.NewDispatcher(map[entity.NotificationChannel]alerts.Channel{
		entity.ChannelEmail: email,
		entity.ChannelSMS:   sms,
	}, time.Second, zerolog.Nop())

	alert, item := sampleAlert(3)
	require.NoError(t, d.Notify(context.Background(), alert, item, enabledSettings(24)))
	assert.Len(t, email.sent, 1)
	assert.Empty(t, sms.sent)
}

func TestDispatcher_FalloDeUnCanalNoBloqueaLosDemas(t *testing.T) {
	email := &fakeChannel{err: errors.New("535 auth failed")}
	sms := &fakeChannel{}
	d := alerts.NewDispatcher(map[entity.NotificationChannel]alerts.Channel{
		entity.ChannelEmail: email,
		entity.ChannelSMS:   sms,
	}, time.Second, zerolog.Nop())

	alert, item := sampleAlert(3)
	err := d.Notify(context.Background(), alert, item, bothChannels())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "email")
	assert.Len(t, sms.sent, 1)
}

func TestDispatcher_TimeoutPorCanal(t *testing.T) {
	slow := &fakeChannel{block: true}
	d := alerts.NewDispatcher(map[entity.NotificationChannel]alerts.Channel{
		entity.ChannelEmail: slow,
	}, 20*time.Millisecond, zerolog.Nop())

	alert, item := sampleAlert(3)
	err := d.Notify(context.Background(), alert, item, enabledSettings(24))
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorContains(t, err, context.DeadlineExceeded.Error())
}

func TestDispatcher_CanalSinTransporteSeOmite(t *testing.T) {
	d := alerts.NewDispatcher(nil, time.Second, zerolog.Nop())
	alert, item := sampleAlert(3)
	assert.NoError(t, d.Notify(context.Background(), alert, item, bothChannels()))
}

func TestRender_AgotadoYFormatoNumerico(t *testing.T) {
	d := alerts.NewDispatcher(nil, time.Second, zerolog.Nop())

	alert, item := sampleAlert(0)
	subject, body := d.Render(alert, item)
	assert.Equal(t, "[Inventario] Agotado: Café", subject)
	assert.Contains(t, body, "Cantidad actual: 0")
	assert.Contains(t, body, "Umbral configurado: 15.000")

	alert, item = sampleAlert(1200)
	alert.NotificationCount = 3
	_, body = d.Render(alert, item)
	assert.Contains(t, body, "Aviso n.º 3")
	assert.Contains(t, body, "01/03/2026 08:00")
}
