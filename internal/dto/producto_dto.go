package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	SKU         string          `json:"sku"          validate:"required,min=2,max=64"`
	Nombre      string          `json:"nombre"       validate:"required,min=2,max=120"`
	Descripcion *string         `json:"descripcion"`
	Imagen      *string         `json:"imagen"`
	Precio      decimal.Decimal `json:"precio"       validate:"required"`
	Stock       int             `json:"stock"        validate:"min=0"`
	StockMinimo int             `json:"stock_minimo" validate:"min=0"`
	CategoriaID string          `json:"categoria_id" validate:"required,uuid"`
}

type ActualizarProductoRequest struct {
	Nombre      *string          `json:"nombre"       validate:"omitempty,min=2,max=120"`
	Descripcion *string          `json:"descripcion"`
	Imagen      *string          `json:"imagen"`
	Precio      *decimal.Decimal `json:"precio"`
	StockMinimo *int             `json:"stock_minimo" validate:"omitempty,min=0"`
	CategoriaID *string          `json:"categoria_id" validate:"omitempty,uuid"`
}

// AjustarStockRequest applies a signed manual delta (restock, shrinkage, count fix).
type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	SKU         string `form:"sku"`
	Nombre      string `form:"nombre"`
	CategoriaID string `form:"categoria_id"`
	Activo      string `form:"activo"` // "false" | "all" | default: solo activos
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion,omitempty"`
	Imagen      *string         `json:"imagen,omitempty"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	StockMinimo int             `json:"stock_minimo"`
	StockBajo   bool            `json:"stock_bajo"`
	CategoriaID string          `json:"categoria_id"`
	Categoria   string          `json:"categoria,omitempty"`
	Activo      bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ConsultaPrecioResponse is returned by the public price check endpoint (no auth).
type ConsultaPrecioResponse struct {
	Nombre          string          `json:"nombre"`
	Precio          decimal.Decimal `json:"precio"`
	StockDisponible int             `json:"stock_disponible"`
	Categoria       string          `json:"categoria"`
}

// AlertaStockResponse flags products at or below their minimum threshold.
// Purely informational — never blocks a sale.
type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	SKU         string `json:"sku"`
	Nombre      string `json:"nombre"`
	Stock       int    `json:"stock"`
	StockMinimo int    `json:"stock_minimo"`
}
