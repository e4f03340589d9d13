package handler

import (
	"net/http"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoriaHandler struct {
	categorias service.CategoriaService
}

func NewCategoriaHandler(categorias service.CategoriaService) *CategoriaHandler {
	return &CategoriaHandler{categorias: categorias}
}

// Crear godoc
// @Summary Crear categoría
// @Tags categorias
// @Accept json
// @Produce json
// @Param body body dto.CrearCategoriaRequest true "Categoría"
// @Success 201 {object} dto.CategoriaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/categorias [post]
func (h *CategoriaHandler) Crear(c *gin.Context) {
	var req dto.CrearCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.categorias.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CategoriaHandler) Listar(c *gin.Context) {
	resp, err := h.categorias.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoriaHandler) Obtener(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.categorias.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoriaHandler) ObtenerPorSlug(c *gin.Context) {
	resp, err := h.categorias.ObtenerPorSlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoriaHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.categorias.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoriaHandler) Desactivar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.categorias.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
