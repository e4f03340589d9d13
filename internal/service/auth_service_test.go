package service

import (
	"context"
	"testing"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuth(t *testing.T) AuthService {
	t.Helper()
	svc := NewAuthService(newStubUsuarioRepo(), "secreto-de-prueba", 1, 24)
	_, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "vendedor1",
		Nombre:   "Vendedor Uno",
		Password: "clave-segura",
		Rol:      "ventas",
	})
	require.NoError(t, err)
	return svc
}

func TestLoginYValidacionDeToken(t *testing.T) {
	svc := setupAuth(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "vendedor1",
		Password: "clave-segura",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "ventas", resp.User.Rol)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "vendedor1", claims.Username)
	assert.Equal(t, model.RolVentas, claims.Rol)
}

func TestLoginCredencialesIncorrectas(t *testing.T) {
	svc := setupAuth(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "vendedor1", Password: "otra-clave",
	})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Username: "no-existe", Password: "clave-segura",
	})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
}

func TestValidateTokenRechazaBasura(t *testing.T) {
	svc := setupAuth(t)
	_, err := svc.ValidateToken("no.es.un.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalido)
}

func TestRefreshDevuelveTokensNuevos(t *testing.T) {
	svc := setupAuth(t)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "vendedor1", Password: "clave-segura",
	})
	require.NoError(t, err)

	renovado, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renovado.AccessToken)
	assert.Equal(t, "vendedor1", renovado.User.Username)
}

func TestUsernameDuplicado(t *testing.T) {
	svc := setupAuth(t)
	_, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "vendedor1",
		Nombre:   "Otro",
		Password: "123456",
		Rol:      "admin",
	})
	assert.ErrorIs(t, err, ErrUsernameDuplicado)
}
