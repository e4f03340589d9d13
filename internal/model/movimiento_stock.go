package model

import (
	"time"

	"github.com/google/uuid"
)

// MovimientoStock registra cada cambio de stock en un producto.
// Movements are immutable — cancellations create inverse entries.
type MovimientoStock struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo       string    `gorm:"not null"` // "venta" | "anulacion" | "ajuste_manual" | "edicion_item"
	Cantidad   int       `gorm:"not null"` // positive = entrada, negative = salida
	// Stock snapshot around the delta, read inside the same transaction.
	StockAnterior int `gorm:"not null"`
	StockNuevo    int `gorm:"not null"`
	Motivo        string
	// ReferenciaID links to the originating Venta or VentaItem if applicable.
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
