package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/presentation/http/dto/response"
	"github.com/sangkips/enquiry-api/internal/presentation/http/middleware"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

// Scoper resolves the record filter a principal may see
type Scoper interface {
	Scope(ctx context.Context, p entity.Principal) (filter.Filter, error)
}

// principal returns the authenticated principal or writes a 401
func principal(c *gin.Context) (entity.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return entity.Principal{}, false
	}
	return p, true
}

// scoped returns the principal together with its record scope
func scoped(c *gin.Context, scoper Scoper) (entity.Principal, filter.Filter, bool) {
	p, ok := principal(c)
	if !ok {
		return p, filter.None(), false
	}
	scope, err := scoper.Scope(c.Request.Context(), p)
	if err != nil {
		response.Error(c, err)
		return p, filter.None(), false
	}
	return p, scope, true
}

// pathID parses an ObjectId path parameter or writes a 400
func pathID(c *gin.Context, name, resource string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+resource+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// optionalID parses an ObjectId that may be empty
func optionalID(raw string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}
