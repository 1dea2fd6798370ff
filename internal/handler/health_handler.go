package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports service liveness and, when configured, database
// reachability.
type HealthHandler struct {
	db          *gorm.DB
	serviceName string
	version     string
	environment string
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the
// service runs without persistence.
func NewHealthHandler(db *gorm.DB, serviceName, version, environment string) *HealthHandler {
	return &HealthHandler{
		db:          db,
		serviceName: serviceName,
		version:     version,
		environment: environment,
	}
}

// RegisterRoutes registers the health endpoint.
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Check)
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":      status,
		"service":     h.serviceName,
		"version":     h.version,
		"environment": h.environment,
	})
}
