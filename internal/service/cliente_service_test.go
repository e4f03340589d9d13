package service

import (
	"context"
	"testing"

	"tiendaweb/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrearClienteValidaDocumento(t *testing.T) {
	svc := NewClienteService(newStubClienteRepo())

	casos := []struct {
		nombre string
		tipo   string
		numero string
		ok     bool
	}{
		{"DNI válido", "DNI", "12345678", true},
		{"DNI de 7 dígitos", "DNI", "1234567", false},
		{"DNI con letras", "DNI", "12a45678", false},
		{"RUC válido", "RUC", "20123456789", true},
		{"RUC de 10 dígitos", "RUC", "2012345678", false},
		{"CE formato libre", "CE", "X-123/45", true},
		{"pasaporte formato libre", "PAS", "AB99", true},
	}
	for i, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			resp, err := svc.Crear(context.Background(), dto.CrearClienteRequest{
				TipoDocumento:   c.tipo,
				NumeroDocumento: c.numero,
				Nombre:          "Cliente " + string(rune('A'+i)),
			})
			if c.ok {
				require.NoError(t, err)
				assert.Equal(t, c.numero, resp.NumeroDocumento)
			} else {
				assert.ErrorIs(t, err, ErrDocumentoInvalido)
			}
		})
	}
}

func TestCrearClienteDocumentoDuplicado(t *testing.T) {
	svc := NewClienteService(newStubClienteRepo())

	_, err := svc.Crear(context.Background(), dto.CrearClienteRequest{
		TipoDocumento: "DNI", NumeroDocumento: "12345678", Nombre: "Primero",
	})
	require.NoError(t, err)

	_, err = svc.Crear(context.Background(), dto.CrearClienteRequest{
		TipoDocumento: "DNI", NumeroDocumento: "12345678", Nombre: "Segundo",
	})
	assert.ErrorIs(t, err, ErrDocumentoDuplicado)
}

func TestActualizarClienteNoTocaDocumento(t *testing.T) {
	repo := newStubClienteRepo()
	svc := NewClienteService(repo)

	creado, err := svc.Crear(context.Background(), dto.CrearClienteRequest{
		TipoDocumento: "RUC", NumeroDocumento: "20123456789", Nombre: "Empresa SAC",
	})
	require.NoError(t, err)

	nuevoNombre := "Empresa Renombrada SAC"
	actualizado, err := svc.Actualizar(context.Background(), mustUUID(t, creado.ID), dto.ActualizarClienteRequest{
		Nombre: &nuevoNombre,
	})
	require.NoError(t, err)
	assert.Equal(t, "Empresa Renombrada SAC", actualizado.Nombre)
	assert.Equal(t, "20123456789", actualizado.NumeroDocumento)
	assert.Equal(t, "RUC", actualizado.TipoDocumento)
}
