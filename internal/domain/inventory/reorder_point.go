package inventory

import (
	"github.com/shopspring/decimal"
)

// roundingPlaces corta los artefactos de la división (2/3*3 = 2.0000000000000001) antes del techo.
const roundingPlaces = 6

// ReorderPoint calcula el punto de reorden dinámico.
// PuntoReorden = ceil(Velocidad * LeadTimeDays * MultiplicadorSeguridad)
// Siempre redondea hacia arriba: pedir de menos cuesta más que pedir de más.
func ReorderPoint(velocity decimal.Decimal, leadTimeDays int, safetyMultiplier decimal.Decimal) int {
	if velocity.LessThanOrEqual(decimal.Zero) || leadTimeDays <= 0 {
		return 0
	}
	if safetyMultiplier.LessThan(decimal.NewFromInt(1)) {
		safetyMultiplier = decimal.NewFromInt(1)
	}
	raw := velocity.Mul(decimal.NewFromInt(int64(leadTimeDays))).Mul(safetyMultiplier)
	return int(raw.Round(roundingPlaces).Ceil().IntPart())
}

// SuggestedQuantity cantidad sugerida de pedido: dos ciclos de punto de reorden menos el stock actual,
// nunca negativa.
func SuggestedQuantity(reorderPoint, currentStock int) int {
	qty := reorderPoint*2 - currentStock
	if qty < 0 {
		return 0
	}
	return qty
}

// CoverageRatio relación stock actual / punto de reorden (0 = más urgente).
// Con punto de reorden 0 el ratio es 0 si no hay stock; en otro caso no aplica y se devuelve 1.
func CoverageRatio(currentStock, reorderPoint int) decimal.Decimal {
	if reorderPoint <= 0 {
		if currentStock <= 0 {
			return decimal.Zero
		}
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(currentStock)).Div(decimal.NewFromInt(int64(reorderPoint)))
}
