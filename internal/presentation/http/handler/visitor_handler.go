package handler

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/enquiry-api/internal/application/service"
	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/presentation/http/dto/request"
	"github.com/sangkips/enquiry-api/internal/presentation/http/dto/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// VisitorHandler handles visitor HTTP requests
type VisitorHandler struct {
	visitorService    *service.VisitorService
	assignmentService *service.AssignmentService
	statusService     *service.StatusService
	chatService       *service.ChatService
	scoper            Scoper
}

// NewVisitorHandler creates a new visitor handler
func NewVisitorHandler(
	visitorService *service.VisitorService,
	assignmentService *service.AssignmentService,
	statusService *service.StatusService,
	chatService *service.ChatService,
	scoper Scoper,
) *VisitorHandler {
	return &VisitorHandler{
		visitorService:    visitorService,
		assignmentService: assignmentService,
		statusService:     statusService,
		chatService:       chatService,
		scoper:            scoper,
	}
}

// Submit handles the public website form. The visitor is unassigned.
// @Summary Submit enquiry form
// @Tags visitors
// @Accept json
// @Produce json
// @Param request body request.CreateVisitorRequest true "Visitor"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /public/visitors [post]
func (h *VisitorHandler) Submit(c *gin.Context) {
	var req request.CreateVisitorRequest
	if !bindJSON(c, &req) {
		return
	}
	input := createVisitorInput(&req)
	if input.Source != enum.SourceChatbot {
		input.Source = enum.SourceWebsite
	}
	input.Status = ""

	visitor, err := h.visitorService.CreateVisitor(c.Request.Context(), nil, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Thank you, we will be in touch", gin.H{"id": visitor.ID})
}

// Create handles staff logging a visitor, e.g. from a call
func (h *VisitorHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req request.CreateVisitorRequest
	if !bindJSON(c, &req) {
		return
	}
	visitor, err := h.visitorService.CreateVisitor(c.Request.Context(), &p, createVisitorInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Visitor created successfully", visitor)
}

// List handles listing the visitors in the caller's scope
// @Summary List Visitors
// @Tags visitors
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name, email, phone or organization"
// @Param status query string false "Status"
// @Param source query string false "Source"
// @Param service query string false "Service"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(15)
// @Success 200 {object} response.APIResponse
// @Router /visitors [get]
func (h *VisitorHandler) List(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	var q request.VisitorQuery
	_ = c.ShouldBindQuery(&q)

	result, err := h.visitorService.ListVisitors(c.Request.Context(), scope, visitorFilter(q), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Visitors retrieved successfully", result)
}

// Get handles fetching one visitor
func (h *VisitorHandler) Get(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "visitor")
	if !ok {
		return
	}
	visitor, err := h.visitorService.GetVisitor(c.Request.Context(), scope, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Visitor retrieved successfully", visitor)
}

// Update handles editing visitor details
func (h *VisitorHandler) Update(c *gin.Context) {
	p, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "visitor")
	if !ok {
		return
	}
	var req request.UpdateVisitorRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateVisitorInput{
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
		Version:        req.Version,
	}
	if req.Source != nil {
		source := enum.Source(*req.Source)
		input.Source = &source
	}

	visitor, err := h.visitorService.UpdateVisitor(c.Request.Context(), scope, p, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Visitor updated successfully", visitor)
}

// Assign handles filling an assignment slot. The change is copied to the
// visitor's enquiries; a partial copy is reported in sync.warning.
// @Summary Assign Visitor
// @Tags visitors
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Visitor ID"
// @Param request body request.AssignRequest true "Assignment"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /visitors/{id}/assign [put]
func (h *VisitorHandler) Assign(c *gin.Context) {
	p, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "visitor")
	if !ok {
		return
	}
	var req request.AssignRequest
	if !bindJSON(c, &req) {
		return
	}

	visitor, sync, err := h.assignmentService.Assign(c.Request.Context(), scope, p, &service.AssignInput{
		VisitorID:    id,
		Role:         enum.AssignmentRole(req.Role),
		IdentityID:   req.ID,
		IdentityName: req.Name,
		Reason:       req.Reason,
		Version:      req.Version,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Visitor assigned successfully"
	if sync.Partial {
		message = "Visitor assigned; some enquiries were not updated"
	}
	response.OK(c, message, gin.H{"visitor": visitor, "sync": sync})
}

// Reconcile copies the visitor's current assignment to its enquiries again
func (h *VisitorHandler) Reconcile(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "visitor")
	if !ok {
		return
	}
	sync, err := h.assignmentService.ReconcileVisitor(c.Request.Context(), scope, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Enquiries reconciled", sync)
}

// SetStatus handles moving a visitor through the pipeline
func (h *VisitorHandler) SetStatus(c *gin.Context) {
	p, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "visitor")
	if !ok {
		return
	}
	var req request.StatusRequest
	if !bindJSON(c, &req) {
		return
	}

	visitor, err := h.statusService.SetVisitorStatus(c.Request.Context(), scope, p, &service.SetStatusInput{
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
		"visitor": visitor,
		"class":   h.statusService.Classifier().Classify(visitor.Status),
	})
}

// History handles the pipeline and assignment history of a visitor
func (h *VisitorHandler) History(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "visitor")
	if !ok {
		return
	}
	history, err := h.visitorService.History(c.Request.Context(), scope, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "History retrieved successfully", history)
}

// Messages handles the chat transcript of a visitor
func (h *VisitorHandler) Messages(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "visitor")
	if !ok {
		return
	}
	messages, err := h.chatService.Messages(c.Request.Context(), scope, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if messages == nil {
		messages = []entity.ChatMessage{}
	}
	response.OK(c, "Messages retrieved successfully", messages)
}

// Export returns the visitors in scope as an xlsx workbook
func (h *VisitorHandler) Export(c *gin.Context) {
	_, scope, ok := scoped(c, h.scoper)
	if !ok {
		return
	}
	var q request.VisitorQuery
	_ = c.ShouldBindQuery(&q)

	var buf bytes.Buffer
	rows, err := h.visitorService.Export(c.Request.Context(), scope, visitorFilter(q), &buf)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("visitors-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("X-Export-Rows", strconv.Itoa(rows))
	c.Data(200, xlsxContentType, buf.Bytes())
}

func createVisitorInput(req *request.CreateVisitorRequest) *service.CreateVisitorInput {
	return &service.CreateVisitorInput{
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
	}
}

func visitorFilter(q request.VisitorQuery) service.VisitorListFilter {
	return service.VisitorListFilter{
		Search:  q.Search,
		Status:  q.Status,
		Source:  q.Source,
		Service: q.Service,
	}
}
