package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los adaptadores y casos de uso los envuelven con fmt.Errorf("...: %w", err)
// y los handlers los distinguen con errors.Is.
var (
	ErrValidation      = errors.New("entrada inválida")
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrAlreadyResolved = errors.New("la alerta ya fue resuelta")
	ErrDuplicate       = errors.New("recurso duplicado")
	ErrTransport       = errors.New("fallo en el canal de notificación")
	ErrStorage         = errors.New("fallo de almacenamiento")
	ErrUnauthorized    = errors.New("no autorizado")
)
