package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-alerts/internal/application/alerts"
	"github.com/jhoicas/stock-alerts/internal/application/inventory"
	"github.com/jhoicas/stock-alerts/internal/application/scheduler"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/memory"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/stock-alerts/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-alerts/internal/interfaces/http"
	"github.com/jhoicas/stock-alerts/pkg/config"
	"github.com/jhoicas/stock-alerts/pkg/logger"
)

// stores repositorios del driver elegido.
type stores struct {
	items    repository.InventoryItemRepository
	usage    repository.UsageEventRepository
	alerts   repository.StockAlertRepository
	settings repository.AlertSettingsRepository
	tx       inventory.TxRunner
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	st := openStores(ctx, cfg, log)
	defer st.close()

	zl := log.Zerolog()

	// Alertas: monitor → ciclo de vida → despachador (email/SMS)
	dispatcher := alerts.NewDispatcher(notify.Channels(cfg.Notify, log.Component("notify")), cfg.Notify.Timeout(), zl)
	monitor := alerts.NewMonitor(st.items)
	lifecycle := alerts.NewLifecycleManager(st.alerts, dispatcher, zl).WithNotifyWorkers(cfg.Notify.Workers)
	alertSvc := alerts.NewService(st.settings, st.alerts, monitor, lifecycle, alertDefaults(cfg.Alerts), zl)

	// Inventario: libro de uso, velocidad y reorden
	ledger := inventory.NewUsageLedgerUseCase(st.tx, st.usage, zl)
	velocity := inventory.NewVelocityCalculator(st.usage)
	reorderEngine := inventory.NewReorderEngine(st.items, velocity, infrapdf.NewReorderReportGenerator(cfg.App.Name), zl)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(alertSvc, reorderEngine, scheduler.Config{
			InitialDelay: cfg.Scheduler.InitialDelay(),
			SweepTimeout: cfg.Scheduler.SweepTimeout(),
			ReorderCron:  cfg.Scheduler.ReorderCron,
		}, zl)
		if err := sched.Start(); err != nil {
			log.Fatal().Err(err).Msg("arrancar planificador")
		}
	} else {
		log.Warn().Msg("SCHEDULER_ENABLED=false: los barridos solo se ejecutan vía POST /api/alerts/check")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	deps := httpRouter.RouterDeps{
		AlertHandler:     httpRouter.NewAlertHandler(alertSvc, nil),
		InventoryHandler: httpRouter.NewInventoryHandler(ledger, reorderEngine),
		JWTSecret:        cfg.JWT.Secret,
		JWTIssuer:        cfg.JWT.Issuer,
	}
	if sched != nil {
		deps.AlertHandler = httpRouter.NewAlertHandler(alertSvc, sched)
	}
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if sched != nil {
		sched.Stop()
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) stores {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return stores{
			items:    s.Items(),
			usage:    s.UsageEvents(),
			alerts:   s.Alerts(),
			settings: s.Settings(),
			tx:       s.TxRunner(),
			close:    func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
	}
	return stores{
		items:    postgres.NewInventoryItemRepository(pool),
		usage:    postgres.NewUsageEventRepository(pool),
		alerts:   postgres.NewStockAlertRepository(pool),
		settings: postgres.NewAlertSettingsRepository(pool),
		tx:       postgres.NewTxRunner(pool),
		close:    pool.Close,
	}
}

// alertDefaults traduce la configuración de entorno a los valores iniciales de alertas.
func alertDefaults(c config.AlertsConfig) entity.AlertSettings {
	s := entity.DefaultAlertSettings()
	s.Enabled = c.Enabled
	s.NotifyByEmail = c.NotifyByEmail
	s.NotifyBySMS = c.NotifyBySMS
	if c.CheckIntervalMinutes > 0 {
		s.CheckIntervalMinutes = c.CheckIntervalMinutes
	}
	if c.CooldownHours >= 0 {
		s.CooldownHours = c.CooldownHours
	}
	s.RecipientEmails = c.RecipientEmails
	s.RecipientPhones = c.RecipientPhones
	return s
}
