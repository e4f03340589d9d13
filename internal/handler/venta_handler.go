package handler

import (
	"net/http"

	"tiendaweb/internal/apierror"
	"tiendaweb/internal/dto"
	"tiendaweb/internal/middleware"
	"tiendaweb/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentaHandler struct {
	ventas service.VentaService
}

func NewVentaHandler(ventas service.VentaService) *VentaHandler {
	return &VentaHandler{ventas: ventas}
}

// Registrar godoc
// @Summary Registrar venta
// @Tags ventas
// @Accept json
// @Produce json
// @Param body body dto.RegistrarVentaRequest true "Venta"
// @Success 201 {object} dto.VentaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ventas [post]
func (h *VentaHandler) Registrar(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("no autenticado"))
		return
	}
	vendedorID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("token inválido"))
		return
	}

	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ventas.RegistrarVenta(c.Request.Context(), vendedorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *VentaHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.ventas.ListarVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentaHandler) Obtener(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.ventas.ObtenerVenta(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentaHandler) ObtenerPorFactura(c *gin.Context) {
	resp, err := h.ventas.ObtenerPorNumeroFactura(c.Request.Context(), c.Param("numero"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarItem godoc
// @Summary Agregar item a una venta pendiente
// @Tags ventas
// @Accept json
// @Produce json
// @Param id path string true "ID de la venta"
// @Param body body dto.AgregarItemRequest true "Item"
// @Success 200 {object} dto.VentaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ventas/{id}/items [post]
func (h *VentaHandler) AgregarItem(c *gin.Context) {
	ventaID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AgregarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ventas.AgregarItem(c.Request.Context(), ventaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarItem removes a line and credits the stock back.
func (h *VentaHandler) EliminarItem(c *gin.Context) {
	ventaID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	resp, err := h.ventas.EliminarItem(c.Request.Context(), ventaID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarEstado godoc
// @Summary Completar o anular una venta
// @Tags ventas
// @Accept json
// @Produce json
// @Param id path string true "ID de la venta"
// @Param body body dto.CambiarEstadoVentaRequest true "Nuevo estado"
// @Success 200 {object} dto.VentaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ventas/{id}/estado [patch]
func (h *VentaHandler) CambiarEstado(c *gin.Context) {
	ventaID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CambiarEstadoVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ventas.CambiarEstado(c.Request.Context(), ventaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
