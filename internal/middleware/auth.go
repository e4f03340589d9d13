package middleware

import (
	"net/http"
	"strings"

	"tiendaweb/internal/apierror"
	"tiendaweb/internal/model"
	"tiendaweb/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	// CtxClaims is the gin context key under which JWTAuth stores the claims.
	CtxClaims = "claims"
)

// JWTAuth validates the Bearer token and stores the claims in the context.
func JWTAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("token de autenticación requerido"))
			return
		}
		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("token inválido o expirado"))
			return
		}
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

// RequireRole allows the request only when the authenticated user holds one of
// the given roles. Must run after JWTAuth.
func RequireRole(roles ...model.Rol) gin.HandlerFunc {
	allowed := make(map[model.Rol]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("no autenticado"))
			return
		}
		if _, ok := allowed[claims.Rol]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the authenticated user's claims, or nil.
func GetClaims(c *gin.Context) *service.Claims {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*service.Claims)
	return claims
}
