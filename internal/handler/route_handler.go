package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/citypath/service-routing/internal/application"
	"github.com/citypath/service-routing/internal/response"
)

// RouteHandler handles HTTP requests for route computation and history.
type RouteHandler struct {
	service *application.RoutingService
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(service *application.RoutingService) *RouteHandler {
	return &RouteHandler{service: service}
}

// RegisterRoutes registers all routing endpoints on the given router group.
// History endpoints are only exposed when persistence is configured.
func (h *RouteHandler) RegisterRoutes(r *gin.RouterGroup) {
	routes := r.Group("/api/v1/routes")
	{
		routes.POST("", h.ComputeRoute)
		if h.service.HistoryEnabled() {
			routes.GET("", h.ListRoutes)
			routes.GET("/:id", h.GetRoute)
		}
	}
}

// ComputeRoute handles POST /api/v1/routes.
func (h *RouteHandler) ComputeRoute(c *gin.Context) {
	var req application.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ComputeRoute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListRoutes handles GET /api/v1/routes.
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	page, limit := parsePagination(c)

	records, total, err := h.service.ListRouteRecords(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, records, total, page, limit)
}

// GetRoute handles GET /api/v1/routes/:id.
func (h *RouteHandler) GetRoute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid route ID")
		return
	}

	record, err := h.service.GetRouteRecord(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, record)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
