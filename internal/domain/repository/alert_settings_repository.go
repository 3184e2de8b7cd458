package repository

import (
	"context"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// AlertSettingsRepository define el puerto de la configuración global de alertas (fila única).
type AlertSettingsRepository interface {
	// Get devuelve la configuración vigente; si no existe fila devuelve nil, nil.
	Get(ctx context.Context) (*entity.AlertSettings, error)
	Save(ctx context.Context, settings *entity.AlertSettings) error
}
