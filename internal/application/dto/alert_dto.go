package dto

import "time"

// StockAlertDTO alerta de stock para el operador.
type StockAlertDTO struct {
	ID                  string     `json:"id"`
	ItemID              string     `json:"item_id"`
	ItemName            string     `json:"item_name"`
	AlertType           string     `json:"alert_type"` // low_stock | out_of_stock
	ThresholdAtCreation int        `json:"threshold_at_creation"`
	QuantityAtAlert     int        `json:"quantity_at_alert"`
	CreatedAt           time.Time  `json:"created_at"`
	LastNotifiedAt      time.Time  `json:"last_notified_at"`
	NotificationCount   int        `json:"notification_count"`
	Resolved            bool       `json:"resolved"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy          string     `json:"resolved_by,omitempty"`
	ResolutionNotes     string     `json:"resolution_notes,omitempty"`
}

// ResolveAlertRequest body para POST /api/alerts/:id/resolve.
type ResolveAlertRequest struct {
	Notes string `json:"notes,omitempty"`
}

// AlertSettingsDTO configuración global de alertas.
type AlertSettingsDTO struct {
	Enabled              bool      `json:"enabled"`
	NotifyByEmail        bool      `json:"notify_by_email"`
	NotifyBySMS          bool      `json:"notify_by_sms"`
	CheckIntervalMinutes int       `json:"check_interval_minutes"`
	CooldownHours        int       `json:"cooldown_hours"`
	RecipientEmails      []string  `json:"recipient_emails"`
	RecipientPhones      []string  `json:"recipient_phones"`
	UpdatedAt            time.Time `json:"updated_at,omitempty"`
	UpdatedBy            string    `json:"updated_by,omitempty"`
}

// UpdateAlertSettingsRequest body para PUT /api/alerts/settings. Campos nil no se modifican.
type UpdateAlertSettingsRequest struct {
	Enabled              *bool     `json:"enabled,omitempty"`
	NotifyByEmail        *bool     `json:"notify_by_email,omitempty"`
	NotifyBySMS          *bool     `json:"notify_by_sms,omitempty"`
	CheckIntervalMinutes *int      `json:"check_interval_minutes,omitempty"`
	CooldownHours        *int      `json:"cooldown_hours,omitempty"`
	RecipientEmails      *[]string `json:"recipient_emails,omitempty"`
	RecipientPhones      *[]string `json:"recipient_phones,omitempty"`
}

// ItemErrorDTO fallo aislado de un artículo dentro de un barrido.
type ItemErrorDTO struct {
	ItemID string `json:"item_id"`
	Error  string `json:"error"`
}

// RiskItemDTO artículo clasificado por debajo de su umbral estático.
type RiskItemDTO struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	AlertType string `json:"alert_type"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
}

// CheckResultDTO resultado de un barrido completo (monitor + ciclo de vida).
type CheckResultDTO struct {
	Enabled                bool           `json:"enabled"`
	Checked                int            `json:"checked"`
	BelowThreshold         int            `json:"below_threshold"`
	Created                int            `json:"created"`
	Updated                int            `json:"updated"`
	NotificationsRequested int            `json:"notifications_requested"`
	NotificationFailures   int            `json:"notification_failures"`
	Errors                 []ItemErrorDTO `json:"errors,omitempty"`
	StartedAt              time.Time      `json:"started_at"`
	FinishedAt             time.Time      `json:"finished_at"`
}

// SchedulerStatusDTO estado del planificador.
type SchedulerStatusDTO struct {
	Running         bool       `json:"running"`
	IntervalMinutes int        `json:"interval_minutes"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	NextRunAt       *time.Time `json:"next_run_at,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
}
