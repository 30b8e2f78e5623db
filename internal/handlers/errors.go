package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"panchayat/internal/apperr"
	"panchayat/internal/middleware"
)

func respondError(c *gin.Context, err error) {
	status, body := middleware.ErrorResponse(err)
	if status >= http.StatusInternalServerError {
		middleware.RequestLogger(c).Error().
			Err(err).
			Str("kind", apperr.KindOf(err).String()).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the body into dst and answers 400 itself when that fails.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.New(apperr.KindValidation, "invalid_request", describeBindError(err)))
		return false
	}
	return true
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "request body is not valid JSON for this endpoint"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// pagination reads page/perPage query parameters.
// maxOffset caps the row offset a page number can reach.
const maxOffset = 1_000_000

func pagination(c *gin.Context) (limit, offset int) {
	limit = 50
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = maxOffset
			if v-1 <= maxOffset/limit {
				offset = (v - 1) * limit
			}
		}
	}
	return limit, offset
}
