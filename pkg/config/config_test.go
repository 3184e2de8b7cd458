package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "stock-alerts", cfg.App.Name)
	assert.Equal(t, config.StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.InitialDelay())
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.SweepTimeout())
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.ReorderCron)
	assert.Equal(t, 15*time.Second, cfg.Notify.Timeout())
	assert.Equal(t, 16, cfg.Notify.Workers)
	assert.Equal(t, 360, cfg.Alerts.CheckIntervalMinutes)
	assert.Equal(t, 24, cfg.Alerts.CooldownHours)
	assert.False(t, cfg.Notify.SMTP.Configured())
	assert.False(t, cfg.Notify.SMS.Configured())
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("ALERTS_RECIPIENT_EMAILS", "a@example.com, b@example.com,")
	t.Setenv("ALERTS_NOTIFY_SMS", "true")
	t.Setenv("SCHEDULER_INITIAL_DELAY_SECONDS", "5")
	t.Setenv("REORDER_RECALC_CRON", "")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "alertas@example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Alerts.RecipientEmails)
	assert.True(t, cfg.Alerts.NotifyBySMS)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.InitialDelay())
	assert.Empty(t, cfg.Scheduler.ReorderCron)
	assert.True(t, cfg.Notify.SMTP.Configured())
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "sqlite")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/stock?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
