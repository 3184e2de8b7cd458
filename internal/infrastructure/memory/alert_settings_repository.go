package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

var _ repository.AlertSettingsRepository = (*AlertSettingsRepository)(nil)

// AlertSettingsRepository configuración en memoria.
type AlertSettingsRepository struct {
	s *Store
}

// Get devuelve una copia de la configuración; nil, nil si nunca se guardó.
func (r *AlertSettingsRepository) Get(_ context.Context) (*entity.AlertSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.settings == nil {
		return nil, nil
	}
	c := *r.s.settings
	c.RecipientEmails = append([]string(nil), r.s.settings.RecipientEmails...)
	c.RecipientPhones = append([]string(nil), r.s.settings.RecipientPhones...)
	return &c, nil
}

// Save reemplaza la configuración.
func (r *AlertSettingsRepository) Save(_ context.Context, settings *entity.AlertSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *settings
	c.RecipientEmails = cloneStrings(settings.RecipientEmails)
	c.RecipientPhones = cloneStrings(settings.RecipientPhones)
	c.UpdatedBy = strings.Clone(settings.UpdatedBy)
	r.s.settings = &c
	return nil
}
