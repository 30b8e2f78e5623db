package middleware

import (
	"github.com/gin-gonic/gin"

	"panchayat/internal/apperr"
)

// ErrorResponse maps err to its status code and the body clients see.
func ErrorResponse(err error) (int, gin.H) {
	code, message := apperr.Public(err)
	return apperr.KindOf(err).HTTPStatus(), gin.H{"error": code, "message": message}
}

func abortWithError(c *gin.Context, err error) {
	status, body := ErrorResponse(err)
	c.AbortWithStatusJSON(status, body)
}
