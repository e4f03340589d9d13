package handler

import (
	"errors"
	"net/http"
	"reflect"

	"tiendaweb/internal/apierror"
	"tiendaweb/internal/repository"
	"tiendaweb/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// decimal.Decimal is an opaque struct to the validator; expose it as its
	// float value so min/gt tags work on money fields.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// bindAndValidate binds the JSON body into req and runs struct validation,
// writing the 400 response itself. Returns false when the caller must stop.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("cuerpo de la petición inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
			return false
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	return true
}

// bindQueryAndValidate binds query-string filters.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("parámetros de consulta inválidos: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	return true
}

// parseUUIDParam extracts and parses a UUID path parameter, writing the 400
// response on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("identificador inválido: "+c.Param(name)))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service/repository errors to HTTP status codes with stable
// machine-readable reason codes where the frontend switches on them.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New("recurso no encontrado"))
	case errors.Is(err, repository.ErrStockInsuficiente):
		c.JSON(http.StatusConflict, apierror.NewCoded("stock_insuficiente", err.Error()))
	case errors.Is(err, service.ErrSKUDuplicado):
		c.JSON(http.StatusConflict, apierror.NewCoded("sku_duplicado", err.Error()))
	case errors.Is(err, service.ErrDocumentoDuplicado):
		c.JSON(http.StatusConflict, apierror.NewCoded("documento_duplicado", err.Error()))
	case errors.Is(err, service.ErrCategoriaDuplicada):
		c.JSON(http.StatusConflict, apierror.NewCoded("categoria_duplicada", err.Error()))
	case errors.Is(err, service.ErrUsernameDuplicado):
		c.JSON(http.StatusConflict, apierror.NewCoded("username_duplicado", err.Error()))
	case errors.Is(err, service.ErrDocumentoInvalido):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewCoded("documento_invalido", err.Error()))
	case errors.Is(err, service.ErrTransicionInvalida):
		c.JSON(http.StatusConflict, apierror.NewCoded("transicion_invalida", err.Error()))
	case errors.Is(err, service.ErrVentaNoEditable):
		c.JSON(http.StatusConflict, apierror.NewCoded("venta_no_editable", err.Error()))
	case errors.Is(err, service.ErrCredencialesInvalidas):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrTokenInvalido):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
