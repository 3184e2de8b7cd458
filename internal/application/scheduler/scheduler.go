// Package scheduler ejecuta el barrido de stock en intervalo fijo y el recálculo
// periódico de puntos de reorden.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-alerts/internal/application/dto"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

const (
	DefaultSweepTimeout     = 5 * time.Minute
	DefaultFallbackInterval = 360 * time.Minute
)

// CheckRunner ejecuta un barrido y expone la configuración vigente.
type CheckRunner interface {
	RunCheck(ctx context.Context) (*dto.CheckResultDTO, error)
	Settings(ctx context.Context) (entity.AlertSettings, error)
}

// ReorderRecalculator recalcula los puntos de reorden de todo el catálogo.
type ReorderRecalculator interface {
	RecalculateAll(ctx context.Context) ([]dto.ReorderPointDTO, error)
}

// Config parámetros del planificador. Valores en cero toman los defaults.
type Config struct {
	InitialDelay     time.Duration
	SweepTimeout     time.Duration
	FallbackInterval time.Duration
	// ReorderCron expresión cron de 5 campos; vacía desactiva el recálculo.
	ReorderCron string
}

// Scheduler dispara RunCheck cada CheckIntervalMinutes (releído antes de cada espera).
type Scheduler struct {
	runner  CheckRunner
	reorder ReorderRecalculator
	cfg     Config
	now     func() time.Time
	log     zerolog.Logger

	// runMu serializa los barridos (timer y TriggerNow).
	runMu sync.Mutex

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	cron      *cron.Cron
	interval  time.Duration
	lastRunAt *time.Time
	nextRunAt *time.Time
	lastErr   string
}

// New construye el planificador. reorder puede ser nil.
func New(runner CheckRunner, reorder ReorderRecalculator, cfg Config, log zerolog.Logger) *Scheduler {
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = DefaultSweepTimeout
	}
	if cfg.FallbackInterval <= 0 {
		cfg.FallbackInterval = DefaultFallbackInterval
	}
	return &Scheduler{
		runner:   runner,
		reorder:  reorder,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("component", "scheduler").Logger(),
		interval: cfg.FallbackInterval,
	}
}

// Start arranca el ciclo. Llamarlo con el planificador ya corriendo no hace nada.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	var c *cron.Cron
	if s.cfg.ReorderCron != "" && s.reorder != nil {
		c = cron.New()
		if _, err := c.AddFunc(s.cfg.ReorderCron, s.recalculateReorderPoints); err != nil {
			return fmt.Errorf("programar recálculo de reorden %q: %w", s.cfg.ReorderCron, err)
		}
		c.Start()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.cron = c
	s.running = true
	go s.loop(ctx, s.done)

	s.log.Info().
		Dur("initial_delay", s.cfg.InitialDelay).
		Str("reorder_cron", s.cfg.ReorderCron).
		Msg("planificador iniciado")
	return nil
}

// Stop detiene el ciclo y espera a que termine el barrido en curso, si lo hay.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done, c := s.cancel, s.done, s.cron
	s.running = false
	s.nextRunAt = nil
	s.mu.Unlock()

	cancel()
	<-done
	if c != nil {
		<-c.Stop().Done()
	}
	s.log.Info().Msg("planificador detenido")
}

// TriggerNow ejecuta un barrido inmediato. Si hay uno en curso, espera a que termine.
func (s *Scheduler) TriggerNow(ctx context.Context) (*dto.CheckResultDTO, error) {
	return s.runOnce(ctx)
}

// Status devuelve el estado actual.
func (s *Scheduler) Status() dto.SchedulerStatusDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dto.SchedulerStatusDTO{
		Running:         s.running,
		IntervalMinutes: int(s.interval / time.Minute),
		LastRunAt:       copyTime(s.lastRunAt),
		NextRunAt:       copyTime(s.nextRunAt),
		LastError:       s.lastErr,
	}
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	wait := s.cfg.InitialDelay
	for {
		s.setNextRun(wait)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// El barrido no se corta a mitad por Stop; solo por su propio timeout.
		sweepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SweepTimeout)
		_, _ = s.runOnce(sweepCtx)
		cancel()

		wait = s.nextInterval(ctx)
	}
}

func (s *Scheduler) runOnce(ctx context.Context) (*dto.CheckResultDTO, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	res, err := s.runner.RunCheck(ctx)
	at := s.now()

	s.mu.Lock()
	s.lastRunAt = &at
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Msg("barrido de stock fallido")
		return nil, err
	}
	return res, nil
}

// nextInterval lee CheckIntervalMinutes antes de cada espera; si falla usa el intervalo de respaldo.
func (s *Scheduler) nextInterval(ctx context.Context) time.Duration {
	interval := s.cfg.FallbackInterval
	settings, err := s.runner.Settings(ctx)
	switch {
	case err != nil:
		if !errors.Is(err, context.Canceled) {
			s.log.Warn().Err(err).Msg("no se pudo leer el intervalo, se usa el de respaldo")
		}
	case settings.CheckIntervalMinutes >= 1:
		interval = time.Duration(settings.CheckIntervalMinutes) * time.Minute
	}
	s.mu.Lock()
	s.interval = interval
	s.mu.Unlock()
	return interval
}

func (s *Scheduler) setNextRun(wait time.Duration) {
	next := s.now().Add(wait)
	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

func (s *Scheduler) recalculateReorderPoints() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SweepTimeout)
	defer cancel()
	points, err := s.reorder.RecalculateAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("updated", len(points)).Msg("recálculo de puntos de reorden con errores")
		return
	}
	s.log.Info().Int("updated", len(points)).Msg("puntos de reorden recalculados")
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
