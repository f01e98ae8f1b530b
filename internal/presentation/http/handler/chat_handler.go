package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/enquiry-api/internal/application/service"
	"github.com/sangkips/enquiry-api/internal/presentation/http/dto/request"
	"github.com/sangkips/enquiry-api/internal/presentation/http/dto/response"
)

// ChatHandler serves the public chat widget
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// PostMessage records a widget message and answers it
// @Summary Chat message
// @Tags chat
// @Accept json
// @Produce json
// @Param request body request.ChatMessageRequest true "Message"
// @Success 201 {object} response.APIResponse
// @Router /chat/messages [post]
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req request.ChatMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	visitorID, err := optionalID(req.VisitorID)
	if err != nil {
		response.BadRequest(c, "Invalid visitor ID")
		return
	}

	reply, err := h.chatService.PostMessage(c.Request.Context(), &service.PostMessageInput{
		VisitorID: visitorID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Service:   req.Service,
		Message:   req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Message received", reply)
}
