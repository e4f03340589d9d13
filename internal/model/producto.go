package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is an inventory item. Stock is only ever mutated through relative
// deltas applied at the storage layer (see ProductoRepository.AjustarStockTx) —
// never by writing back a value computed in application memory.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU         string    `gorm:"column:sku;not null"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	// Imagen is a storage path/key managed by the external UI layer.
	Imagen *string
	Precio decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// Stock may go negative when oversell is permitted (PERMITIR_STOCK_NEGATIVO).
	Stock       int       `gorm:"not null;default:0"`
	StockMinimo int       `gorm:"not null;default:5"`
	CategoriaID uuid.UUID `gorm:"type:uuid;not null;index"`
	Activo      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
}

func (Producto) TableName() string { return "productos" }

// StockBajo reports whether the product is at or below its alert threshold.
// Presentation-only: nothing in the sale flow consults it.
func (p *Producto) StockBajo() bool { return p.Stock <= p.StockMinimo }
