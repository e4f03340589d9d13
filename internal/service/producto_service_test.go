package service

import (
	"context"
	"testing"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductoService(t *testing.T) (ProductoService, *stubProductoRepo, *model.Categoria) {
	t.Helper()
	productos := newStubProductoRepo()
	categorias := newStubCategoriaRepo()
	cat := &model.Categoria{Nombre: "General", Slug: "general", Activo: true}
	require.NoError(t, categorias.Crear(context.Background(), cat))
	return NewProductoService(productos, categorias, nil), productos, cat
}

func TestCrearProducto(t *testing.T) {
	svc, _, cat := setupProductoService(t)

	resp, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		SKU:         "LAP-001",
		Nombre:      "Laptop 14",
		Precio:      decimal.RequireFromString("2500.00"),
		Stock:       4,
		StockMinimo: 5,
		CategoriaID: cat.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "LAP-001", resp.SKU)
	assert.True(t, resp.StockBajo, "4 <= 5 debe marcar stock bajo")
	assert.Equal(t, "General", resp.Categoria)
}

func TestCrearProductoSKUDuplicado(t *testing.T) {
	svc, _, cat := setupProductoService(t)

	req := dto.CrearProductoRequest{
		SKU:         "DUP-001",
		Nombre:      "Original",
		Precio:      decimal.RequireFromString("10.00"),
		CategoriaID: cat.ID.String(),
	}
	_, err := svc.Crear(context.Background(), req)
	require.NoError(t, err)

	req.Nombre = "Copia"
	_, err = svc.Crear(context.Background(), req)
	assert.ErrorIs(t, err, ErrSKUDuplicado)
}

func TestSKULiberadoAlDesactivar(t *testing.T) {
	svc, _, cat := setupProductoService(t)

	original, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		SKU:         "REC-001",
		Nombre:      "Original",
		Precio:      decimal.RequireFromString("10.00"),
		CategoriaID: cat.ID.String(),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Desactivar(context.Background(), mustUUID(t, original.ID)))

	// Con el original inactivo, el SKU vuelve a estar disponible.
	_, err = svc.Crear(context.Background(), dto.CrearProductoRequest{
		SKU:         "REC-001",
		Nombre:      "Reemplazo",
		Precio:      decimal.RequireFromString("12.00"),
		CategoriaID: cat.ID.String(),
	})
	assert.NoError(t, err)
}

func TestConsultarPrecioSinCache(t *testing.T) {
	svc, productos, cat := setupProductoService(t)
	productos.agregar(&model.Producto{
		SKU:         "CAF-001",
		Nombre:      "Café molido 250g",
		Precio:      decimal.RequireFromString("18.50"),
		Stock:       30,
		CategoriaID: cat.ID,
		Categoria:   cat,
		Activo:      true,
	})

	resp, err := svc.ConsultarPrecio(context.Background(), "CAF-001")
	require.NoError(t, err)
	assert.Equal(t, "Café molido 250g", resp.Nombre)
	assert.True(t, resp.Precio.Equal(decimal.RequireFromString("18.50")))
	assert.Equal(t, 30, resp.StockDisponible)
}

func TestConsultarPrecioProductoInactivo(t *testing.T) {
	svc, productos, cat := setupProductoService(t)
	productos.agregar(&model.Producto{
		SKU:         "OLD-001",
		Nombre:      "Descontinuado",
		Precio:      decimal.RequireFromString("5.00"),
		CategoriaID: cat.ID,
		Activo:      false,
	})

	_, err := svc.ConsultarPrecio(context.Background(), "OLD-001")
	assert.Error(t, err, "un producto inactivo no aparece en la consulta pública")
}
