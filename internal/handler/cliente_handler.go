package handler

import (
	"net/http"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/service"

	"github.com/gin-gonic/gin"
)

type ClienteHandler struct {
	clientes service.ClienteService
}

func NewClienteHandler(clientes service.ClienteService) *ClienteHandler {
	return &ClienteHandler{clientes: clientes}
}

// Crear godoc
// @Summary Registrar cliente
// @Tags clientes
// @Accept json
// @Produce json
// @Param body body dto.CrearClienteRequest true "Cliente"
// @Success 201 {object} dto.ClienteResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/clientes [post]
func (h *ClienteHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.clientes.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ClienteHandler) Listar(c *gin.Context) {
	var filter dto.ClienteFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.clientes.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClienteHandler) Obtener(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.clientes.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorDocumento looks up by the natural key used at the sale counter.
func (h *ClienteHandler) ObtenerPorDocumento(c *gin.Context) {
	resp, err := h.clientes.ObtenerPorDocumento(c.Request.Context(), c.Param("documento"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClienteHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.clientes.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClienteHandler) Desactivar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.clientes.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
