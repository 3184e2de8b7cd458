package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "ux_stock_alerts_open_item"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert stock alert: %w", dup)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("23505 en el texto no cuenta")))
}

func TestPgTime_TruncaAMicrosegundos(t *testing.T) {
	in := time.Date(2026, 3, 1, 8, 0, 0, 123456789, time.FixedZone("COT", -5*3600))
	out := pgTime(in)
	assert.Equal(t, 123456000, out.Nanosecond())
	assert.Equal(t, time.UTC, out.Location())
	assert.True(t, in.Truncate(time.Microsecond).Equal(out))
}

func TestMigrationsEmbebidas(t *testing.T) {
	sql, err := migrationsFS.ReadFile("migrations/001_stock_alerts.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(sql), "ux_stock_alerts_open_item")
	assert.Contains(t, string(sql), "WHERE NOT resolved")
}
