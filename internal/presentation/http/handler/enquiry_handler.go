package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/enquiry-api/internal/application/service"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/presentation/http/dto/request"
	"github.com/sangkips/enquiry-api/internal/presentation/http/dto/response"
)

// EnquiryHandler handles enquiry HTTP requests
type EnquiryHandler struct {
	enquiryService *service.EnquiryService
	statusService  *service.StatusService
	scoper         Scoper
}

// NewEnquiryHandler creates a new enquiry handler
func NewEnquiryHandler(enquiryService *service.EnquiryService, statusService *service.StatusService, scoper Scoper) *EnquiryHandler {
	return &EnquiryHandler{enquiryService: enquiryService, statusService: statusService, scoper: scoper}
}

// Create handles creating an enquiry, optionally linked to a visitor
// @Summary Create Enquiry
// @Tags enquiries
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateEnquiryRequest true "Enquiry"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /enquiries [post]
func (h *EnquiryHandler) Create(c *gin.Context) {
	p, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	var req request.CreateEnquiryRequest
	if !bindJSON(c, &req) {
		return
	}
	visitorID, err := optionalID(req.VisitorID)
	if err != nil {
		response.BadRequest(c, "Invalid visitor ID")
		return
	}

	enquiry, err := h.enquiryService.CreateEnquiry(c.Request.Context(), scope, p, &service.CreateEnquiryInput{
		VisitorID:      visitorID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Organization:   req.Organization,
		Region:         req.Region,
		Service:        req.Service,
		Subservice:     req.Subservice,
		EnquiryDetails: req.EnquiryDetails,
		Source:         enum.Source(req.Source),
		Status:         req.Status,
		Comments:       req.Comments,
		Amount:         req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Enquiry created successfully", enquiry)
}

// List handles listing the enquiries in the caller's scope
func (h *EnquiryHandler) List(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	var q request.EnquiryQuery
	_ = c.ShouldBindQuery(&q)
	visitorID, err := optionalID(q.VisitorID)
	if err != nil {
		response.BadRequest(c, "Invalid visitor ID")
		return
	}

	result, err := h.enquiryService.ListEnquiries(c.Request.Context(), scope, service.EnquiryListFilter{
		Search:    q.Search,
		Status:    q.Status,
		Service:   q.Service,
		VisitorID: visitorID,
	}, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Enquiries retrieved successfully", result)
}

// Get handles fetching one enquiry
func (h *EnquiryHandler) Get(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "enquiry")
	if !ok {
		return
	}
	enquiry, err := h.enquiryService.GetEnquiry(c.Request.Context(), scope, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Enquiry retrieved successfully", enquiry)
}

// Update handles editing enquiry details
func (h *EnquiryHandler) Update(c *gin.Context) {
	p, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "enquiry")
	if !ok {
		return
	}
	var req request.UpdateEnquiryRequest
	if !bindJSON(c, &req) {
		return
	}

	enquiry, err := h.enquiryService.UpdateEnquiry(c.Request.Context(), scope, p, &service.UpdateEnquiryInput{
		ID:             id,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Organization:   req.Organization,
		Region:         req.Region,
		Service:        req.Service,
		Subservice:     req.Subservice,
		EnquiryDetails: req.EnquiryDetails,
		Comments:       req.Comments,
		Amount:         req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Enquiry updated successfully", enquiry)
}

// SetStatus handles moving an enquiry through the pipeline
func (h *EnquiryHandler) SetStatus(c *gin.Context) {
	p, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "enquiry")
	if !ok {
		return
	}
	var req request.StatusRequest
	if !bindJSON(c, &req) {
		return
	}

	enquiry, err := h.statusService.SetEnquiryStatus(c.Request.Context(), scope, p, &service.SetStatusInput{
		ID:      id,
		Status:  req.Status,
		Notes:   req.Notes,
		Version: req.Version,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Status updated successfully", gin.H{
		"enquiry": enquiry,
		"class":   h.statusService.Classifier().Classify(enquiry.Status),
	})
}

// Delete handles removing an enquiry; admin only
func (h *EnquiryHandler) Delete(c *gin.Context) {
	p, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "enquiry")
	if !ok {
		return
	}
	if err := h.enquiryService.DeleteEnquiry(c.Request.Context(), scope, p, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Enquiry deleted successfully", nil)
}
