package service

import (
	"context"
	"testing"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/model"
	"tiendaweb/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ventaFixture struct {
	ventas      VentaService
	inventario  InventarioService
	productos   *stubProductoRepo
	clientes    *stubClienteRepo
	ventaRepo   *stubVentaRepo
	movimientos *stubMovimientoRepo
}

func newVentaFixture(permitirStockNegativo bool) *ventaFixture {
	f := &ventaFixture{
		productos:   newStubProductoRepo(),
		clientes:    newStubClienteRepo(),
		ventaRepo:   newStubVentaRepo(),
		movimientos: newStubMovimientoRepo(),
	}
	f.inventario = NewInventarioService(f.productos, f.movimientos)
	f.ventas = NewVentaService(f.ventaRepo, f.productos, f.clientes, f.inventario, nil, "FAC", permitirStockNegativo)
	return f
}

func (f *ventaFixture) producto(t *testing.T, precio string, stock int) *model.Producto {
	t.Helper()
	return f.productos.agregar(&model.Producto{
		SKU:         "SKU-" + uuid.NewString()[:8],
		Nombre:      "Producto de prueba",
		Precio:      decimal.RequireFromString(precio),
		Stock:       stock,
		StockMinimo: 2,
		CategoriaID: uuid.New(),
		Activo:      true,
	})
}

func TestRegistrarVentaDebitaStockYCalculaTotales(t *testing.T) {
	f := newVentaFixture(true)
	p := f.producto(t, "100.00", 10)

	resp, err := f.ventas.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		Impuesto:   decimal.RequireFromString("19.00"),
		Descuento:  decimal.RequireFromString("10.00"),
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)

	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("300.00")), "subtotal = %s", resp.Subtotal)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("309.00")), "total = %s", resp.Total)
	assert.Equal(t, "pendiente", resp.Estado)
	assert.Regexp(t, `^FAC-\d{8}-[0-9A-F]{12}$`, resp.NumeroFactura)

	actualizado, err := f.productos.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, actualizado.Stock)

	movs := f.movimientos.porTipo("venta")
	require.Len(t, movs, 1)
	assert.Equal(t, -3, movs[0].Cantidad)
	assert.Equal(t, 10, movs[0].StockAnterior)
	assert.Equal(t, 7, movs[0].StockNuevo)
	assert.Equal(t, p.ID, movs[0].ProductoID)
	require.NotNil(t, movs[0].ReferenciaID)
	assert.Equal(t, resp.ID, movs[0].ReferenciaID.String())
}

func TestRegistrarVentaConClienteTomaSnapshot(t *testing.T) {
	f := newVentaFixture(true)
	p := f.producto(t, "50.00", 5)
	require.NoError(t, f.clientes.Create(context.Background(), &model.Cliente{
		TipoDocumento:   model.DocDNI,
		NumeroDocumento: "12345678",
		Nombre:          "Juana Quispe",
		Activo:          true,
	}))

	doc := "12345678"
	resp, err := f.ventas.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		ClienteNumeroDocumento: &doc,
		Items:                  []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MetodoPago:             "tarjeta",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ClienteNombre)
	assert.Equal(t, "Juana Quispe", *resp.ClienteNombre)
	require.NotNil(t, resp.ClienteTipoDocumento)
	assert.Equal(t, "DNI", *resp.ClienteTipoDocumento)
}

func TestRegistrarVentaClienteDesconocido(t *testing.T) {
	f := newVentaFixture(true)
	p := f.producto(t, "50.00", 5)

	doc := "99999999"
	_, err := f.ventas.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		ClienteNumeroDocumento: &doc,
		Items:                  []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MetodoPago:             "efectivo",
	})
	assert.Error(t, err)
}

func TestRegistrarVentaStockInsuficiente(t *testing.T) {
	f := newVentaFixture(false)
	p := f.producto(t, "100.00", 2)

	_, err := f.ventas.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		MetodoPago: "efectivo",
	})
	require.ErrorIs(t, err, repository.ErrStockInsuficiente)

	actualizado, err := f.productos.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, actualizado.Stock, "el stock no debe cambiar cuando el débito es rechazado")
	assert.Empty(t, f.movimientos.porTipo("venta"))
}

func TestRegistrarVentaPermiteStockNegativo(t *testing.T) {
	f := newVentaFixture(true)
	p := f.producto(t, "100.00", 2)

	_, err := f.ventas.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 5}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)

	actualizado, err := f.productos.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, -3, actualizado.Stock)

	// The deficit surfaces via the low-stock alert, never as a blocked sale.
	alertas, err := f.inventario.ObtenerAlertas(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 1)
	assert.Equal(t, -3, alertas[0].Stock)
}

func TestCancelarVentaRestauraStock(t *testing.T) {
	f := newVentaFixture(true)
	p := f.producto(t, "100.00", 10)

	resp, err := f.ventas.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)
	ventaID := uuid.MustParse(resp.ID)

	tras, _ := f.productos.FindByID(context.Background(), p.ID)
	require.Equal(t, 7, tras.Stock)

	resp, err = f.ventas.CambiarEstado(context.Background(), ventaID, dto.CambiarEstadoVentaRequest{Estado: "completada"})
	require.NoError(t, err)
	assert.Equal(t, "completada", resp.Estado)

	resp, err = f.ventas.CambiarEstado(context.Background(), ventaID, dto.CambiarEstadoVentaRequest{Estado: "cancelada"})
	require.NoError(t, err)
	assert.Equal(t, "cancelada", resp.Estado)

	restaurado, err := f.productos.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, restaurado.Stock)

	movs := f.movimientos.porTipo("anulacion")
	require.Len(t, movs, 1)
	assert.Equal(t, 3, movs[0].Cantidad)
	assert.Equal(t, 7, movs[0].StockAnterior)
	assert.Equal(t, 10, movs[0].StockNuevo)
}

func TestCancelarVentaEsTerminal(t *testing.T) {
	f := newVentaFixture(true)
	p := f.producto(t, "100.00", 10)

	resp, err := f.ventas.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)
	ventaID := uuid.MustParse(resp.ID)

	_, err = f.ventas.CambiarEstado(context.Background(), ventaID, dto.CambiarEstadoVentaRequest{Estado: "cancelada"})
	require.NoError(t, err)

	_, err = f.ventas.CambiarEstado(context.Background(), ventaID, dto.CambiarEstadoVentaRequest{Estado: "completada"})
	assert.ErrorIs(t, err, ErrTransicionInvalida)

	// Double cancellation must not credit stock twice.
	_, err = f.ventas.CambiarEstado(context.Background(), ventaID, dto.CambiarEstadoVentaRequest{Estado: "cancelada"})
	assert.ErrorIs(t, err, ErrTransicionInvalida)
	final, _ := f.productos.FindByID(context.Background(), p.ID)
	assert.Equal(t, 10, final.Stock)
}

func TestAgregarYEliminarItemAjustaStockYTotales(t *testing.T) {
	f := newVentaFixture(true)
	p1 := f.producto(t, "100.00", 10)
	p2 := f.producto(t, "40.00", 10)

	resp, err := f.ventas.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p1.ID.String(), Cantidad: 2}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)
	ventaID := uuid.MustParse(resp.ID)

	resp, err = f.ventas.AgregarItem(context.Background(), ventaID, dto.AgregarItemRequest{
		ProductoID: p2.ID.String(),
		Cantidad:   3,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("320.00")), "subtotal = %s", resp.Subtotal)

	stockP2, _ := f.productos.FindByID(context.Background(), p2.ID)
	assert.Equal(t, 7, stockP2.Stock)

	var itemP2 string
	for _, it := range resp.Items {
		if it.ProductoID == p2.ID.String() {
			itemP2 = it.ID
		}
	}
	require.NotEmpty(t, itemP2)

	resp, err = f.ventas.EliminarItem(context.Background(), ventaID, uuid.MustParse(itemP2))
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("200.00")), "subtotal = %s", resp.Subtotal)

	stockP2, _ = f.productos.FindByID(context.Background(), p2.ID)
	assert.Equal(t, 10, stockP2.Stock, "eliminar el item devuelve el stock")
}

func TestItemsInmutablesFueraDePendiente(t *testing.T) {
	f := newVentaFixture(true)
	p := f.producto(t, "100.00", 10)

	resp, err := f.ventas.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)
	ventaID := uuid.MustParse(resp.ID)
	itemID := uuid.MustParse(resp.Items[0].ID)

	_, err = f.ventas.CambiarEstado(context.Background(), ventaID, dto.CambiarEstadoVentaRequest{Estado: "completada"})
	require.NoError(t, err)

	_, err = f.ventas.AgregarItem(context.Background(), ventaID, dto.AgregarItemRequest{ProductoID: p.ID.String(), Cantidad: 1})
	assert.ErrorIs(t, err, ErrVentaNoEditable)

	_, err = f.ventas.EliminarItem(context.Background(), ventaID, itemID)
	assert.ErrorIs(t, err, ErrVentaNoEditable)
}

// ventaRepoLecturaDesfasada simulates a racing request: FindByID always reports
// the sale as pendiente even after another writer moved it on.
type ventaRepoLecturaDesfasada struct {
	*stubVentaRepo
}

func (r *ventaRepoLecturaDesfasada) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	v, err := r.stubVentaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Estado = model.VentaPendiente
	return v, nil
}

func TestCancelacionConcurrenteNoDuplicaRestitucion(t *testing.T) {
	f := newVentaFixture(true)
	repoDesfasado := &ventaRepoLecturaDesfasada{stubVentaRepo: f.ventaRepo}
	ventas := NewVentaService(repoDesfasado, f.productos, f.clientes, f.inventario, nil, "FAC", true)

	p := f.producto(t, "100.00", 10)
	resp, err := ventas.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)
	ventaID := uuid.MustParse(resp.ID)

	// First cancel wins: the stored state really is pendiente.
	_, err = ventas.CambiarEstado(context.Background(), ventaID, dto.CambiarEstadoVentaRequest{Estado: "cancelada"})
	require.NoError(t, err)
	restaurado, _ := f.productos.FindByID(context.Background(), p.ID)
	require.Equal(t, 10, restaurado.Stock)

	// Second cancel read a stale pendiente; the compare-and-swap on estado
	// must reject it before any stock is credited.
	_, err = ventas.CambiarEstado(context.Background(), ventaID, dto.CambiarEstadoVentaRequest{Estado: "cancelada"})
	require.ErrorIs(t, err, ErrTransicionInvalida)

	final, _ := f.productos.FindByID(context.Background(), p.ID)
	assert.Equal(t, 10, final.Stock, "la restitución debe aplicarse exactamente una vez")
	assert.Len(t, f.movimientos.porTipo("anulacion"), 1)

	guardada, _ := f.ventaRepo.FindByID(context.Background(), ventaID)
	assert.Equal(t, model.VentaCancelada, guardada.Estado)
}

func TestPrecioUnitarioEsSnapshot(t *testing.T) {
	f := newVentaFixture(true)
	p := f.producto(t, "100.00", 10)

	resp, err := f.ventas.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)

	// A later catalog price change must not alter the recorded line.
	p.Precio = decimal.RequireFromString("999.00")
	require.NoError(t, f.productos.Update(context.Background(), p))

	releido, err := f.ventas.ObtenerVenta(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.True(t, releido.Items[0].PrecioUnitario.Equal(decimal.RequireFromString("100.00")))
}
