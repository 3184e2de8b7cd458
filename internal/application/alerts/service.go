package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-alerts/internal/application/dto"
	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Service es la superficie del operador: barridos, consulta y resolución de alertas, configuración.
type Service struct {
	settingsRepo repository.AlertSettingsRepository
	alertRepo    repository.StockAlertRepository
	monitor      *Monitor
	lifecycle    *LifecycleManager
	defaults     entity.AlertSettings
	now          func() time.Time
	log          zerolog.Logger
}

// NewService construye el servicio. defaults se usa mientras no exista la fila de configuración.
func NewService(
	settingsRepo repository.AlertSettingsRepository,
	alertRepo repository.StockAlertRepository,
	monitor *Monitor,
	lifecycle *LifecycleManager,
	defaults entity.AlertSettings,
	log zerolog.Logger,
) *Service {
	return &Service{
		settingsRepo: settingsRepo,
		alertRepo:    alertRepo,
		monitor:      monitor,
		lifecycle:    lifecycle,
		defaults:     defaults,
		now:          time.Now,
		log:          log.With().Str("component", "alert_service").Logger(),
	}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Settings lee la configuración vigente; nunca se cachea entre barridos.
func (s *Service) Settings(ctx context.Context) (entity.AlertSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return entity.AlertSettings{}, fmt.Errorf("%w: leer configuración de alertas: %v", domain.ErrStorage, err)
	}
	if settings == nil {
		return s.defaults, nil
	}
	return *settings, nil
}

// RunCheck ejecuta un barrido completo: lee configuración, clasifica y procesa alertas.
// Un error de almacenamiento al leer configuración o catálogo aborta solo este barrido.
func (s *Service) RunCheck(ctx context.Context) (*dto.CheckResultDTO, error) {
	started := s.now()
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.CheckResultDTO{Enabled: settings.Enabled, StartedAt: started}
	sweep, err := s.monitor.Sweep(ctx, settings)
	if err != nil {
		return nil, err
	}
	res.Checked = sweep.Checked
	res.BelowThreshold = len(sweep.BelowThreshold)
	res.Errors = appendItemErrors(res.Errors, sweep.Errors)

	if len(sweep.BelowThreshold) > 0 {
		processed := s.lifecycle.Process(ctx, sweep.BelowThreshold, settings)
		res.Created = processed.Created
		res.Updated = processed.Updated
		res.NotificationsRequested = processed.NotificationsRequested
		res.NotificationFailures = processed.NotificationFailures
		res.Errors = appendItemErrors(res.Errors, processed.Errors)
	}
	res.FinishedAt = s.now()

	s.log.Info().
		Bool("enabled", res.Enabled).
		Int("checked", res.Checked).
		Int("below_threshold", res.BelowThreshold).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("notifications", res.NotificationsRequested).
		Int("errors", len(res.Errors)).
		Msg("barrido de stock completado")
	return res, nil
}

// CurrentRisk devuelve los artículos hoy en o por debajo de su umbral, sin crear alertas.
func (s *Service) CurrentRisk(ctx context.Context) ([]dto.RiskItemDTO, error) {
	sweep, err := s.monitor.CurrentRisk(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]dto.RiskItemDTO, 0, len(sweep.BelowThreshold))
	for _, ci := range sweep.BelowThreshold {
		list = append(list, dto.RiskItemDTO{
			ItemID:    ci.Item.ID,
			ItemName:  ci.Item.Name,
			AlertType: ci.AlertType,
			Quantity:  ci.Item.CurrentStock(),
			Threshold: ci.Item.Threshold(),
		})
	}
	return list, nil
}

// GetActiveAlerts lista las alertas sin resolver.
func (s *Service) GetActiveAlerts(ctx context.Context) ([]dto.StockAlertDTO, error) {
	list, err := s.alertRepo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listar alertas activas: %v", domain.ErrStorage, err)
	}
	return toAlertDTOs(list), nil
}

// GetAlertHistory lista las últimas alertas (abiertas y resueltas).
func (s *Service) GetAlertHistory(ctx context.Context, limit int) ([]dto.StockAlertDTO, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	list, err := s.alertRepo.ListHistory(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: listar historial de alertas: %v", domain.ErrStorage, err)
	}
	return toAlertDTOs(list), nil
}

// ResolveAlert resuelve una alerta en nombre del usuario.
func (s *Service) ResolveAlert(ctx context.Context, alertID, userID, notes string) error {
	return s.lifecycle.Resolve(ctx, alertID, userID, strings.TrimSpace(notes))
}

// GetAlertSettings devuelve la configuración vigente.
func (s *Service) GetAlertSettings(ctx context.Context) (*dto.AlertSettingsDTO, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return toSettingsDTO(settings), nil
}

// UpdateAlertSettings aplica los campos presentes y guarda. El cambio aplica en el próximo barrido.
func (s *Service) UpdateAlertSettings(ctx context.Context, in dto.UpdateAlertSettingsRequest, userID string) (*dto.AlertSettingsDTO, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if in.Enabled != nil {
		settings.Enabled = *in.Enabled
	}
	if in.NotifyByEmail != nil {
		settings.NotifyByEmail = *in.NotifyByEmail
	}
	if in.NotifyBySMS != nil {
		settings.NotifyBySMS = *in.NotifyBySMS
	}
	if in.CheckIntervalMinutes != nil {
		settings.CheckIntervalMinutes = *in.CheckIntervalMinutes
	}
	if in.CooldownHours != nil {
		settings.CooldownHours = *in.CooldownHours
	}
	if in.RecipientEmails != nil {
		settings.RecipientEmails = cleanList(*in.RecipientEmails)
	}
	if in.RecipientPhones != nil {
		settings.RecipientPhones = cleanList(*in.RecipientPhones)
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	settings.UpdatedAt = s.now()
	settings.UpdatedBy = userID

	if err := s.settingsRepo.Save(ctx, &settings); err != nil {
		return nil, fmt.Errorf("%w: guardar configuración: %v", domain.ErrStorage, err)
	}
	s.log.Info().
		Str("updated_by", userID).
		Bool("enabled", settings.Enabled).
		Int("interval_minutes", settings.CheckIntervalMinutes).
		Int("cooldown_hours", settings.CooldownHours).
		Msg("configuración de alertas actualizada")
	return toSettingsDTO(settings), nil
}

func validateSettings(s entity.AlertSettings) error {
	if s.CheckIntervalMinutes < 1 {
		return fmt.Errorf("%w: check_interval_minutes debe ser >= 1", domain.ErrValidation)
	}
	if s.CooldownHours < 0 {
		return fmt.Errorf("%w: cooldown_hours no puede ser negativo", domain.ErrValidation)
	}
	for _, e := range s.RecipientEmails {
		if !strings.Contains(e, "@") {
			return fmt.Errorf("%w: email inválido %q", domain.ErrValidation, e)
		}
	}
	return nil
}

// cleanList recorta espacios y descarta vacíos.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func appendItemErrors(dst []dto.ItemErrorDTO, src []ItemError) []dto.ItemErrorDTO {
	for _, e := range src {
		dst = append(dst, dto.ItemErrorDTO{ItemID: e.ItemID, Error: e.Err.Error()})
	}
	return dst
}

func toAlertDTOs(list []*entity.StockAlert) []dto.StockAlertDTO {
	out := make([]dto.StockAlertDTO, 0, len(list))
	for _, a := range list {
		out = append(out, dto.StockAlertDTO{
			ID:                  a.ID,
			ItemID:              a.ItemID,
			ItemName:            a.ItemName,
			AlertType:           a.AlertType,
			ThresholdAtCreation: a.ThresholdAtCreation,
			QuantityAtAlert:     a.QuantityAtAlert,
			CreatedAt:           a.CreatedAt,
			LastNotifiedAt:      a.LastNotifiedAt,
			NotificationCount:   a.NotificationCount,
			Resolved:            a.Resolved,
			ResolvedAt:          a.ResolvedAt,
			ResolvedBy:          a.ResolvedBy,
			ResolutionNotes:     a.ResolutionNotes,
		})
	}
	return out
}

func toSettingsDTO(s entity.AlertSettings) *dto.AlertSettingsDTO {
	emails := s.RecipientEmails
	if emails == nil {
		emails = []string{}
	}
	phones := s.RecipientPhones
	if phones == nil {
		phones = []string{}
	}
	return &dto.AlertSettingsDTO{
		Enabled:              s.Enabled,
		NotifyByEmail:        s.NotifyByEmail,
		NotifyBySMS:          s.NotifyBySMS,
		CheckIntervalMinutes: s.CheckIntervalMinutes,
		CooldownHours:        s.CooldownHours,
		RecipientEmails:      emails,
		RecipientPhones:      phones,
		UpdatedAt:            s.UpdatedAt,
		UpdatedBy:            s.UpdatedBy,
	}
}
