package router

import (
	"time"

	"tiendaweb/internal/handler"
	"tiendaweb/internal/middleware"
	"tiendaweb/internal/model"
	"tiendaweb/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Usuarios   *handler.UsuarioHandler
	Categorias *handler.CategoriaHandler
	Productos  *handler.ProductoHandler
	Clientes   *handler.ClienteHandler
	Ventas     *handler.VentaHandler
	Inventario *handler.InventarioHandler
}

// New builds the gin engine with the full route table.
//
// Role map:
//   - categorías/productos/inventario: admin, logistica
//   - clientes/ventas: admin, ventas (lecturas de ventas también contabilidad)
//   - usuarios: admin
func New(env string, h Handlers, auth service.AuthService, rdb *redis.Client) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery(), middleware.CORS())

	r.GET("/health", h.Health.Check)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")

	// Public: price check terminal and login.
	v1.GET("/precio/:sku", h.Productos.ConsultarPrecio)
	v1.POST("/auth/login", middleware.LoginRateLimit(rdb, 10, time.Minute), h.Auth.Login)
	v1.POST("/auth/refresh", h.Auth.Refresh)

	priv := v1.Group("")
	priv.Use(middleware.JWTAuth(auth))

	catalogo := priv.Group("")
	catalogo.Use(middleware.RequireRole(model.RolAdmin, model.RolLogistica))
	{
		catalogo.POST("/categorias", h.Categorias.Crear)
		catalogo.PUT("/categorias/:id", h.Categorias.Actualizar)
		catalogo.DELETE("/categorias/:id", h.Categorias.Desactivar)

		catalogo.POST("/productos", h.Productos.Crear)
		catalogo.PUT("/productos/:id", h.Productos.Actualizar)
		catalogo.DELETE("/productos/:id", h.Productos.Desactivar)
		catalogo.POST("/productos/:id/reactivar", h.Productos.Reactivar)
		catalogo.PATCH("/productos/:id/stock", h.Inventario.AjustarStock)

		catalogo.GET("/inventario/alertas", h.Inventario.Alertas)
		catalogo.GET("/inventario/movimientos", h.Inventario.Movimientos)
	}

	// Catalog reads are open to any authenticated role.
	priv.GET("/categorias", h.Categorias.Listar)
	priv.GET("/categorias/:id", h.Categorias.Obtener)
	priv.GET("/categorias/slug/:slug", h.Categorias.ObtenerPorSlug)
	priv.GET("/productos", h.Productos.Listar)
	priv.GET("/productos/:id", h.Productos.Obtener)

	mostrador := priv.Group("")
	mostrador.Use(middleware.RequireRole(model.RolAdmin, model.RolVentas))
	{
		mostrador.POST("/clientes", h.Clientes.Crear)
		mostrador.GET("/clientes", h.Clientes.Listar)
		mostrador.GET("/clientes/:id", h.Clientes.Obtener)
		mostrador.GET("/clientes/documento/:documento", h.Clientes.ObtenerPorDocumento)
		mostrador.PUT("/clientes/:id", h.Clientes.Actualizar)
		mostrador.DELETE("/clientes/:id", h.Clientes.Desactivar)

		mostrador.POST("/ventas", h.Ventas.Registrar)
		mostrador.POST("/ventas/:id/items", h.Ventas.AgregarItem)
		mostrador.DELETE("/ventas/:id/items/:itemId", h.Ventas.EliminarItem)
		mostrador.PATCH("/ventas/:id/estado", h.Ventas.CambiarEstado)
	}

	// Sales reads additionally open to accounting.
	lecturaVentas := priv.Group("")
	lecturaVentas.Use(middleware.RequireRole(model.RolAdmin, model.RolVentas, model.RolContabilidad))
	{
		lecturaVentas.GET("/ventas", h.Ventas.Listar)
		lecturaVentas.GET("/ventas/:id", h.Ventas.Obtener)
		lecturaVentas.GET("/ventas/factura/:numero", h.Ventas.ObtenerPorFactura)
	}

	admin := priv.Group("")
	admin.Use(middleware.RequireRole(model.RolAdmin))
	{
		admin.POST("/usuarios", h.Usuarios.Crear)
		admin.GET("/usuarios", h.Usuarios.Listar)
		admin.GET("/usuarios/:id", h.Usuarios.Obtener)
		admin.PUT("/usuarios/:id", h.Usuarios.Actualizar)
		admin.DELETE("/usuarios/:id", h.Usuarios.Desactivar)
		admin.POST("/usuarios/:id/reactivar", h.Usuarios.Reactivar)
	}

	return r
}
