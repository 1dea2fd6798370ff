// Package response centralizes HTTP response shaping, including the mapping
// from the domain error taxonomy to status codes.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citypath/service-routing/internal/domain/errs"
)

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Paginated writes a 200 response with items and pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// Error translates a domain error into a structured error response:
// ValidationError maps to 400, NotFoundError to 404, DependencyError to 502,
// anything else to 500. Nothing is swallowed and no partial result is sent.
func Error(c *gin.Context, err error) {
	var (
		validationErr *errs.ValidationError
		notFoundErr   *errs.NotFoundError
		dependencyErr *errs.DependencyError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &dependencyErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": dependencyErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
