package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/enquiry-api/internal/application/service"
	"github.com/sangkips/enquiry-api/internal/presentation/http/dto/response"
)

// DashboardHandler serves the reporting endpoints. Every figure is computed
// over the caller's scope.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	scoper           Scoper
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService, scoper Scoper) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, scoper: scoper}
}

// Summary handles the headline totals and status classification
func (h *DashboardHandler) Summary(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	summary, err := h.dashboardService.Summary(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Dashboard summary retrieved successfully", summary)
}

// Sources handles the per-source breakdown
func (h *DashboardHandler) Sources(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	sources, err := h.dashboardService.Sources(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Source breakdown retrieved successfully", sources)
}

// Executives handles per-assignee performance
func (h *DashboardHandler) Executives(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	stats, err := h.dashboardService.Executives(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Executive performance retrieved successfully", stats)
}

// Trends handles monthly visitor and enquiry counts
func (h *DashboardHandler) Trends(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))
	points, err := h.dashboardService.Trends(c.Request.Context(), scope, months)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Trends retrieved successfully", points)
}
