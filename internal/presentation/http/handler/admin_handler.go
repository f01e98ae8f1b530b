package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/enquiry-api/internal/application/service"
	"github.com/sangkips/enquiry-api/internal/presentation/http/dto/response"
)

// AdminHandler handles maintenance operations
type AdminHandler struct {
	assignmentService *service.AssignmentService
	contentService    *service.ContentService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(assignmentService *service.AssignmentService, contentService *service.ContentService) *AdminHandler {
	return &AdminHandler{assignmentService: assignmentService, contentService: contentService}
}

// Reconcile copies every visitor's assignment to its enquiries. Running it
// twice changes nothing the second time.
// @Summary Reconcile assignments
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /admin/reconcile [post]
func (h *AdminHandler) Reconcile(c *gin.Context) {
	report, err := h.assignmentService.Reconcile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Assignments reconciled", report)
}

// RebuildIndex rebuilds the chatbot FAQ index
func (h *AdminHandler) RebuildIndex(c *gin.Context) {
	n, err := h.contentService.RebuildIndex(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "FAQ index rebuilt", gin.H{"faqs": n})
}
