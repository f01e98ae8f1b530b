package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/enquiry-api/internal/application/service"
	"github.com/sangkips/enquiry-api/internal/presentation/http/dto/request"
	"github.com/sangkips/enquiry-api/internal/presentation/http/dto/response"
	"github.com/sangkips/enquiry-api/internal/presentation/http/middleware"
)

// ContentHandler serves FAQs and articles. Reads are public and see only
// active FAQs and published articles; admins see everything.
type ContentHandler struct {
	contentService *service.ContentService
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func isAdmin(c *gin.Context) bool {
	p, ok := middleware.GetPrincipal(c)
	return ok && p.IsAdmin()
}

// ListFAQs handles listing FAQs
func (h *ContentHandler) ListFAQs(c *gin.Context) {
	result, err := h.contentService.ListFAQs(c.Request.Context(), !isAdmin(c), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "FAQs retrieved successfully", result)
}

// GetFAQ handles fetching one FAQ
func (h *ContentHandler) GetFAQ(c *gin.Context) {
	id, ok := pathID(c, "id", "FAQ")
	if !ok {
		return
	}
	faq, err := h.contentService.GetFAQ(c.Request.Context(), id, isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "FAQ retrieved successfully", faq)
}

// CreateFAQ handles creating an FAQ
func (h *ContentHandler) CreateFAQ(c *gin.Context) {
	var req request.FAQRequest
	if !bindJSON(c, &req) {
		return
	}
	faq, err := h.contentService.CreateFAQ(c.Request.Context(), faqInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "FAQ created successfully", faq)
}

// UpdateFAQ handles editing an FAQ
func (h *ContentHandler) UpdateFAQ(c *gin.Context) {
	id, ok := pathID(c, "id", "FAQ")
	if !ok {
		return
	}
	var req request.FAQRequest
	if !bindJSON(c, &req) {
		return
	}
	faq, err := h.contentService.UpdateFAQ(c.Request.Context(), id, faqInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "FAQ updated successfully", faq)
}

// DeleteFAQ handles removing an FAQ
func (h *ContentHandler) DeleteFAQ(c *gin.Context) {
	id, ok := pathID(c, "id", "FAQ")
	if !ok {
		return
	}
	if err := h.contentService.DeleteFAQ(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "FAQ deleted successfully", nil)
}

// ListArticles handles listing articles
func (h *ContentHandler) ListArticles(c *gin.Context) {
	result, err := h.contentService.ListArticles(c.Request.Context(), !isAdmin(c), c.Query("search"), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Articles retrieved successfully", result)
}

// GetArticle handles fetching an article by id or slug
func (h *ContentHandler) GetArticle(c *gin.Context) {
	article, err := h.contentService.GetArticle(c.Request.Context(), c.Param("id"), isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Article retrieved successfully", article)
}

// CreateArticle handles creating an article
func (h *ContentHandler) CreateArticle(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req request.ArticleRequest
	if !bindJSON(c, &req) {
		return
	}
	article, err := h.contentService.CreateArticle(c.Request.Context(), p, articleInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Article created successfully", article)
}

// UpdateArticle handles editing an article
func (h *ContentHandler) UpdateArticle(c *gin.Context) {
	id, ok := pathID(c, "id", "article")
	if !ok {
		return
	}
	var req request.ArticleRequest
	if !bindJSON(c, &req) {
		return
	}
	article, err := h.contentService.UpdateArticle(c.Request.Context(), id, articleInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Article updated successfully", article)
}

// DeleteArticle handles removing an article
func (h *ContentHandler) DeleteArticle(c *gin.Context) {
	id, ok := pathID(c, "id", "article")
	if !ok {
		return
	}
	if err := h.contentService.DeleteArticle(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Article deleted successfully", nil)
}

func faqInput(req *request.FAQRequest) *service.FAQInput {
	return &service.FAQInput{
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
		Keywords: req.Keywords,
		Active:   req.Active,
	}
}

func articleInput(req *request.ArticleRequest) *service.ArticleInput {
	return &service.ArticleInput{
		Title:     req.Title,
		Body:      req.Body,
		Tags:      req.Tags,
		Published: req.Published,
	}
}
