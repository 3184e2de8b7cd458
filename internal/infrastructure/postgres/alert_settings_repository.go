package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

var _ repository.AlertSettingsRepository = (*AlertSettingsRepo)(nil)

// AlertSettingsRepo configuración global en la fila única id = 1.
type AlertSettingsRepo struct {
	q Querier
}

// NewAlertSettingsRepository construye el adaptador.
func NewAlertSettingsRepository(q Querier) *AlertSettingsRepo {
	return &AlertSettingsRepo{q: q}
}

// Get devuelve la configuración; nil, nil si la fila aún no existe.
func (r *AlertSettingsRepo) Get(ctx context.Context) (*entity.AlertSettings, error) {
	var s entity.AlertSettings
	err := r.q.QueryRow(ctx, `
		SELECT enabled, notify_by_email, notify_by_sms, check_interval_minutes, cooldown_hours,
		       recipient_emails, recipient_phones, updated_at, updated_by
		FROM alert_settings WHERE id = 1`,
	).Scan(&s.Enabled, &s.NotifyByEmail, &s.NotifyBySMS, &s.CheckIntervalMinutes, &s.CooldownHours,
		&s.RecipientEmails, &s.RecipientPhones, &s.UpdatedAt, &s.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert settings: %w", err)
	}
	return &s, nil
}

// Save inserta o reemplaza la fila única.
func (r *AlertSettingsRepo) Save(ctx context.Context, s *entity.AlertSettings) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO alert_settings (id, enabled, notify_by_email, notify_by_sms, check_interval_minutes,
			cooldown_hours, recipient_emails, recipient_phones, updated_at, updated_by)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			notify_by_email = EXCLUDED.notify_by_email,
			notify_by_sms = EXCLUDED.notify_by_sms,
			check_interval_minutes = EXCLUDED.check_interval_minutes,
			cooldown_hours = EXCLUDED.cooldown_hours,
			recipient_emails = EXCLUDED.recipient_emails,
			recipient_phones = EXCLUDED.recipient_phones,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`,
		s.Enabled, s.NotifyByEmail, s.NotifyBySMS, s.CheckIntervalMinutes, s.CooldownHours,
		nonNil(s.RecipientEmails), nonNil(s.RecipientPhones), pgTime(s.UpdatedAt), s.UpdatedBy)
	if err != nil {
		return fmt.Errorf("save alert settings: %w", err)
	}
	return nil
}
