package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// pgTime normaliza a la precisión de TIMESTAMPTZ (microsegundos) para que las
// comparaciones de last_notified_at coincidan con lo que devuelve la base.
func pgTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
