package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"recipe-backend/internal/shared/response"
)

// Recovery turns a panic into a 500 {"message": ...}
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("path", c.Request.URL.Path).
					Interface("error", err).
					Msg("Panic recovered")

				if !c.Writer.Written() {
					response.InternalServerError(c, "Internal server error")
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}

// NotFound trả về body JSON cho route không tồn tại
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Message(c, http.StatusNotFound, "Route not found")
	}
}
