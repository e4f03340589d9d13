package middleware

import (
	"net/http"
	"time"

	"tiendaweb/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Logger emits one structured access-log line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		inicio := time.Now()
		c.Next()

		evento := log.Info()
		if c.Writer.Status() >= 500 {
			evento = log.Error()
		} else if c.Writer.Status() >= 400 {
			evento = log.Warn()
		}
		evento.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(inicio)).
			Str("request_id", c.GetString("request_id")).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// Recovery converts panics into a clean 500 without leaking internals.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString("request_id")).
					Msg("panic recuperado")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					apierror.New("error interno del servidor"))
			}
		}()
		c.Next()
	}
}
