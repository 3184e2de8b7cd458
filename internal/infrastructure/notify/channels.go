package notify

import (
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-alerts/internal/application/alerts"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/pkg/config"
)

// Channels registra los transportes con configuración completa. Un canal sin
// configuración no se registra y el despachador lo omite.
func Channels(cfg config.NotifyConfig, log zerolog.Logger) map[entity.NotificationChannel]alerts.Channel {
	channels := make(map[entity.NotificationChannel]alerts.Channel, 2)
	if cfg.SMTP.Configured() {
		channels[entity.ChannelEmail] = NewEmailChannel(cfg.SMTP)
	} else {
		log.Warn().Msg("SMTP_HOST/SMTP_FROM sin configurar: canal email deshabilitado")
	}
	if cfg.SMS.Configured() {
		channels[entity.ChannelSMS] = NewSMSChannel(cfg.SMS)
	} else {
		log.Warn().Msg("SMS_BASE_URL sin configurar: canal SMS deshabilitado")
	}
	return channels
}
