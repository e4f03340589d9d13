package service

import "errors"

// Sentinel errors — stable, machine-readable rejection reasons. Handlers map
// them to apierror codes; services never wrap them beyond fmt.Errorf("%w").
var (
	ErrDocumentoInvalido  = errors.New("numero de documento invalido para el tipo")
	ErrSKUDuplicado       = errors.New("ya existe un producto activo con ese SKU")
	ErrTransicionInvalida = errors.New("transicion de estado no permitida")
	ErrVentaNoEditable    = errors.New("solo una venta pendiente puede modificar sus items")
)
