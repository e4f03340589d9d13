package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetodoPago is the closed set of payment methods.
type MetodoPago string

const (
	PagoEfectivo      MetodoPago = "efectivo"
	PagoTarjeta       MetodoPago = "tarjeta"
	PagoTransferencia MetodoPago = "transferencia"
	PagoOtro          MetodoPago = "otro"
)

// Valido reports whether m is a known payment method.
func (m MetodoPago) Valido() bool {
	switch m {
	case PagoEfectivo, PagoTarjeta, PagoTransferencia, PagoOtro:
		return true
	}
	return false
}

// EstadoVenta is the closed set of sale states.
type EstadoVenta string

const (
	VentaPendiente  EstadoVenta = "pendiente"
	VentaCompletada EstadoVenta = "completada"
	VentaCancelada  EstadoVenta = "cancelada"
)

// Valido reports whether e is a known sale state.
func (e EstadoVenta) Valido() bool {
	switch e {
	case VentaPendiente, VentaCompletada, VentaCancelada:
		return true
	}
	return false
}

// PuedeTransicionarA enforces the sale state graph:
// pendiente → completada, pendiente → cancelada, completada → cancelada.
// cancelada is terminal.
func (e EstadoVenta) PuedeTransicionarA(destino EstadoVenta) bool {
	switch e {
	case VentaPendiente:
		return destino == VentaCompletada || destino == VentaCancelada
	case VentaCompletada:
		return destino == VentaCancelada
	default:
		return false
	}
}

// Venta is a sale. The customer identity is denormalized at sale time so the
// record stays intact if the customer row changes or is deleted later; the FK
// to clientes goes through the natural key numero_documento.
type Venta struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroFactura string    `gorm:"uniqueIndex;not null"`

	ClienteNumeroDocumento *string        `gorm:"index"`
	ClienteTipoDocumento   *TipoDocumento `gorm:"type:varchar(10)"`
	ClienteNombre          *string

	VendedorID uuid.UUID `gorm:"type:uuid;not null;index"`
	FechaVenta time.Time `gorm:"not null"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Impuesto  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Descuento decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	// Total is never set directly — always the result of CalcularTotal.
	Total decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	MetodoPago MetodoPago  `gorm:"type:varchar(20);not null"`
	Estado     EstadoVenta `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Notas      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Vendedor *Usuario    `gorm:"foreignKey:VendedorID"`
	Items    []VentaItem `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
}

func (Venta) TableName() string { return "ventas" }

// CalcularTotal recomputes Total = Subtotal + Impuesto - Descuento.
// Idempotent; must be called after any mutation of the three inputs.
func (v *Venta) CalcularTotal() {
	v.Total = v.Subtotal.Add(v.Impuesto).Sub(v.Descuento)
}

// GenerarNumeroFactura builds an invoice number: prefix, creation date, and a
// 12-hex-char random suffix taken from a v4 UUID. Collision-resistant under
// concurrent creation; the unique index on ventas.numero_factura backs it up.
func GenerarNumeroFactura(prefijo string, fecha time.Time) string {
	sufijo := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return fmt.Sprintf("%s-%s-%s", prefijo, fecha.Format("20060102"), sufijo)
}

// VentaItem is one product/quantity/price line within a sale. The unit price is
// a snapshot of the product price at the moment the line was added.
type VentaItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Cantidad   int       `gorm:"not null"`

	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// PrecioTotal is derived — see CalcularPrecioTotal.
	PrecioTotal decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaItem) TableName() string { return "venta_items" }

// CalcularPrecioTotal recomputes PrecioTotal = Cantidad × PrecioUnitario.
// Runs before every persist of the line.
func (i *VentaItem) CalcularPrecioTotal() {
	i.PrecioTotal = i.PrecioUnitario.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}
