package entity

import "time"

// Tipos de cambio registrados en el libro de uso.
const (
	ChangeTypeConsumption      = "consumption"       // salida real (venta, entrega)
	ChangeTypeReceivedShipment = "received_shipment" // entrada de mercancía
	ChangeTypeInventoryCount   = "inventory_count"   // conteo físico
	ChangeTypeAdjustment       = "adjustment"        // ajuste manual
	ChangeTypeDamage           = "damage"            // merma o daño
	ChangeTypeOther            = "other"
)

// ValidChangeType indica si t es un tipo de cambio conocido.
func ValidChangeType(t string) bool {
	switch t {
	case ChangeTypeConsumption, ChangeTypeReceivedShipment, ChangeTypeInventoryCount,
		ChangeTypeAdjustment, ChangeTypeDamage, ChangeTypeOther:
		return true
	}
	return false
}

// UsageEvent es una fila inmutable del libro de uso (append-only).
// Las correcciones se registran como eventos nuevos, nunca como ediciones.
type UsageEvent struct {
	ID             string
	ItemID         string
	QuantityChange int // negativo = salida, positivo = entrada/corrección
	ChangeType     string
	QuantityAfter  int // snapshot posterior: anterior + QuantityChange
	Notes          string
	CreatedBy      string
	OccurredAt     time.Time
}

// IsConsumption indica si el evento cuenta para la velocidad de consumo.
func (e UsageEvent) IsConsumption() bool {
	return e.ChangeType == ChangeTypeConsumption
}
