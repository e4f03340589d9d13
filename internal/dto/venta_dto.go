package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha  string `form:"fecha"`  // YYYY-MM-DD; empty = today
	Estado string `form:"estado"` // pendiente | completada | cancelada | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type RegistrarVentaRequest struct {
	// ClienteNumeroDocumento: optional — consumidor final when absent.
	ClienteNumeroDocumento *string            `json:"cliente_numero_documento"`
	Items                  []ItemVentaRequest `json:"items"       validate:"required,min=1,dive"`
	Impuesto               decimal.Decimal    `json:"impuesto"    validate:"min=0"`
	Descuento              decimal.Decimal    `json:"descuento"   validate:"min=0"`
	MetodoPago             string             `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta transferencia otro"`
	Notas                  *string            `json:"notas"`
}

type AgregarItemRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type CambiarEstadoVentaRequest struct {
	Estado string  `json:"estado" validate:"required,oneof=completada cancelada"`
	Motivo *string `json:"motivo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	PrecioTotal    decimal.Decimal `json:"precio_total"`
}

type VentaResponse struct {
	ID            string  `json:"id"`
	NumeroFactura string  `json:"numero_factura"`
	ClienteNombre *string `json:"cliente_nombre,omitempty"`
	// Snapshot of the customer identity at sale time.
	ClienteTipoDocumento   *string             `json:"cliente_tipo_documento,omitempty"`
	ClienteNumeroDocumento *string             `json:"cliente_numero_documento,omitempty"`
	VendedorID             string              `json:"vendedor_id"`
	FechaVenta             string              `json:"fecha_venta"`
	Items                  []ItemVentaResponse `json:"items"`
	Subtotal               decimal.Decimal     `json:"subtotal"`
	Impuesto               decimal.Decimal     `json:"impuesto"`
	Descuento              decimal.Decimal     `json:"descuento"`
	Total                  decimal.Decimal     `json:"total"`
	MetodoPago             string              `json:"metodo_pago"`
	Estado                 string              `json:"estado"`
	Notas                  *string             `json:"notas,omitempty"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
