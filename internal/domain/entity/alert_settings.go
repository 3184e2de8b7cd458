package entity

import "time"

// NotificationChannel identifica un canal de notificación.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
)

// AlertSettings configuración global del motor de alertas (fila única).
// Se lee al inicio de cada barrido; un cambio aplica en el siguiente ciclo.
type AlertSettings struct {
	Enabled              bool
	NotifyByEmail        bool
	NotifyBySMS          bool
	CheckIntervalMinutes int
	CooldownHours        int
	RecipientEmails      []string
	RecipientPhones      []string
	UpdatedAt            time.Time
	UpdatedBy            string
}

// DefaultAlertSettings valores usados cuando aún no existe la fila de configuración.
func DefaultAlertSettings() AlertSettings {
	return AlertSettings{
		Enabled:              true,
		NotifyByEmail:        true,
		NotifyBySMS:          false,
		CheckIntervalMinutes: 360,
		CooldownHours:        24,
	}
}

// Cooldown devuelve la ventana mínima entre notificaciones de una misma alerta.
func (s AlertSettings) Cooldown() time.Duration {
	return time.Duration(s.CooldownHours) * time.Hour
}

// Targets devuelve los canales activos con sus destinatarios.
// Un canal activo sin destinatarios no aparece.
func (s AlertSettings) Targets() map[NotificationChannel][]string {
	targets := make(map[NotificationChannel][]string, 2)
	if s.NotifyByEmail && len(s.RecipientEmails) > 0 {
		targets[ChannelEmail] = s.RecipientEmails
	}
	if s.NotifyBySMS && len(s.RecipientPhones) > 0 {
		targets[ChannelSMS] = s.RecipientPhones
	}
	return targets
}
