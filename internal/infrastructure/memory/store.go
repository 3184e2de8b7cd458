// Package memory implementa los puertos de persistencia en memoria.
// Se usa en tests y con STORAGE_DRIVER=memory para demos locales sin PostgreSQL.
package memory

import (
	"strings"
	"sync"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// Store contiene todas las tablas en memoria. Los repositorios son vistas sobre el mismo Store.
type Store struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	items    map[string]*entity.InventoryItem
	events   []entity.UsageEvent
	alerts   map[string]*entity.StockAlert
	settings *entity.AlertSettings
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		items:  make(map[string]*entity.InventoryItem),
		alerts: make(map[string]*entity.StockAlert),
	}
}

// Items devuelve el repositorio de artículos.
func (s *Store) Items() *InventoryItemRepository { return &InventoryItemRepository{s: s} }

// UsageEvents devuelve el repositorio del libro de uso.
func (s *Store) UsageEvents() *UsageEventRepository { return &UsageEventRepository{s: s} }

// Alerts devuelve el repositorio de alertas.
func (s *Store) Alerts() *StockAlertRepository { return &StockAlertRepository{s: s} }

// Settings devuelve el repositorio de configuración.
func (s *Store) Settings() *AlertSettingsRepository { return &AlertSettingsRepository{s: s} }

// TxRunner devuelve un runner transaccional sobre el Store.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// Las copias clonan también los strings: quien llama puede pasar strings que apuntan
// a buffers reutilizados (p. ej. parámetros de ruta de fiber).

func copyItem(i *entity.InventoryItem) *entity.InventoryItem {
	c := *i
	c.ID = strings.Clone(i.ID)
	c.Name = strings.Clone(i.Name)
	if i.StockQuantity != nil {
		v := *i.StockQuantity
		c.StockQuantity = &v
	}
	if i.LowStockThreshold != nil {
		v := *i.LowStockThreshold
		c.LowStockThreshold = &v
	}
	if i.ReorderPoint != nil {
		v := *i.ReorderPoint
		c.ReorderPoint = &v
	}
	return &c
}

func copyAlert(a *entity.StockAlert) *entity.StockAlert {
	c := *a
	c.ID = strings.Clone(a.ID)
	c.ItemID = strings.Clone(a.ItemID)
	c.ItemName = strings.Clone(a.ItemName)
	c.AlertType = strings.Clone(a.AlertType)
	c.ResolvedBy = strings.Clone(a.ResolvedBy)
	c.ResolutionNotes = strings.Clone(a.ResolutionNotes)
	if a.ResolvedAt != nil {
		v := *a.ResolvedAt
		c.ResolvedAt = &v
	}
	return &c
}

func copyEvent(e entity.UsageEvent) entity.UsageEvent {
	e.ID = strings.Clone(e.ID)
	e.ItemID = strings.Clone(e.ItemID)
	e.ChangeType = strings.Clone(e.ChangeType)
	e.Notes = strings.Clone(e.Notes)
	e.CreatedBy = strings.Clone(e.CreatedBy)
	return e
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.Clone(v)
	}
	return out
}
