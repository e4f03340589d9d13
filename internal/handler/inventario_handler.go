package handler

import (
	"net/http"
	"strconv"

	"tiendaweb/internal/apierror"
	"tiendaweb/internal/dto"
	"tiendaweb/internal/repository"
	"tiendaweb/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct {
	inventario service.InventarioService
}

func NewInventarioHandler(inventario service.InventarioService) *InventarioHandler {
	return &InventarioHandler{inventario: inventario}
}

// AjustarStock godoc
// @Summary Ajuste manual de stock
// @Tags inventario
// @Accept json
// @Produce json
// @Param id path string true "ID del producto"
// @Param body body dto.AjustarStockRequest true "Delta y motivo"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/productos/{id}/stock [patch]
func (h *InventarioHandler) AjustarStock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.inventario.AjustarStockManual(c.Request.Context(), id, req.Delta, req.Motivo); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Alertas godoc
// @Summary Productos con stock en o bajo el mínimo
// @Tags inventario
// @Produce json
// @Success 200 {array} dto.AlertaStockResponse
// @Router /v1/inventario/alertas [get]
func (h *InventarioHandler) Alertas(c *gin.Context) {
	alertas, err := h.inventario.ObtenerAlertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alertas)
}

// Movimientos lists the immutable stock movement ledger.
func (h *InventarioHandler) Movimientos(c *gin.Context) {
	filter := repository.MovimientoStockFilter{
		Tipo: c.Query("tipo"),
	}
	if raw := c.Query("producto_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("producto_id inválido: "+raw))
			return
		}
		filter.ProductoID = &id
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))

	resp, err := h.inventario.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
