package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/apperror"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

const (
	defaultVisitorStatus = "new"
	exportBatchSize      = 500
	exportSheet          = "Visitors"
)

// VisitorService handles visitor-related operations
type VisitorService struct {
	visitorRepo repository.VisitorRepository
	log         *logrus.Logger
	now         func() time.Time
}

// NewVisitorService creates a new visitor service
func NewVisitorService(visitorRepo repository.VisitorRepository, log *logrus.Logger) *VisitorService {
	return &VisitorService{visitorRepo: visitorRepo, log: log, now: time.Now}
}

// CreateVisitorInput represents the create visitor input
type CreateVisitorInput struct {
	Name           string
	Email          string
	Phone          string
	Organization   string
	Region         string
	Service        string
	Subservice     string
	EnquiryDetails string
	Source         enum.Source
	Status         string
	Comments       string
	Amount         float64
}

// CreateVisitor validates and stores a new visitor. actor is nil for public
// chatbot and website submissions.
func (s *VisitorService) CreateVisitor(ctx context.Context, actor *entity.Principal, input *CreateVisitorInput) (*entity.Visitor, error) {
	now := s.now().UTC()
	visitor := &entity.Visitor{
		ID:                primitive.NewObjectID(),
		Name:              strings.TrimSpace(input.Name),
		Email:             strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:             strings.TrimSpace(input.Phone),
		Organization:      strings.TrimSpace(input.Organization),
		Region:            strings.TrimSpace(input.Region),
		Service:           strings.TrimSpace(input.Service),
		Subservice:        strings.TrimSpace(input.Subservice),
		EnquiryDetails:    strings.TrimSpace(input.EnquiryDetails),
		Source:            input.Source,
		Status:            strings.TrimSpace(input.Status),
		Comments:          strings.TrimSpace(input.Comments),
		Amount:            input.Amount,
		Version:           1,
		LastModifiedAt:    now,
		CreatedAt:         now,
		LastInteractionAt: now,
	}
	if visitor.Source == "" {
		visitor.Source = enum.SourceWebsite
	}
	if visitor.Status == "" {
		visitor.Status = defaultVisitorStatus
	}
	if actor != nil {
		visitor.LastModifiedBy = actor.Name
	}

	if err := validateStruct(visitor); err != nil {
		return nil, err
	}
	if err := s.visitorRepo.Create(ctx, visitor); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"visitor_id": visitor.ID.Hex(),
		"source":     visitor.Source,
	}).Info("visitor created")
	return visitor, nil
}

// CreateOrTouch returns the visitor already known by email or phone,
// refreshing its last interaction time, or creates a new one
func (s *VisitorService) CreateOrTouch(ctx context.Context, input *CreateVisitorInput) (*entity.Visitor, bool, error) {
	existing, err := s.visitorRepo.FindByContact(ctx,
		strings.ToLower(strings.TrimSpace(input.Email)),
		strings.TrimSpace(input.Phone),
	)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		visitor, err := s.CreateVisitor(ctx, nil, input)
		return visitor, err == nil, err
	}

	touched, err := s.visitorRepo.Update(ctx, existing.ID, filter.All(), nil, repository.Patch{
		Set: map[string]any{"lastInteractionAt": s.now().UTC()},
	})
	if err != nil {
		return nil, false, err
	}
	if touched == nil {
		return existing, false, nil
	}
	return touched, false, nil
}

// GetVisitor retrieves a visitor within scope
func (s *VisitorService) GetVisitor(ctx context.Context, scope filter.Filter, id primitive.ObjectID) (*entity.Visitor, error) {
	visitor, err := s.visitorRepo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if visitor == nil {
		return nil, apperror.NewNotFoundError("Visitor")
	}
	return visitor, nil
}

// VisitorListFilter narrows a visitor listing
type VisitorListFilter struct {
	Search  string
	Status  string
	Source  string
	Service string
}

func (f VisitorListFilter) build(scope filter.Filter) filter.Filter {
	parts := []filter.Filter{scope}
	if q := strings.TrimSpace(f.Search); q != "" {
		parts = append(parts, filter.Or(
			filter.Contains("name", q),
			filter.Contains("email", q),
			filter.Contains("phone", q),
			filter.Contains("organization", q),
		))
	}
	if v := strings.TrimSpace(f.Status); v != "" {
		parts = append(parts, filter.Eq("status", v))
	}
	if v := strings.TrimSpace(f.Source); v != "" {
		parts = append(parts, filter.Eq("source", v))
	}
	if v := strings.TrimSpace(f.Service); v != "" {
		parts = append(parts, filter.Eq("service", v))
	}
	return filter.And(parts...)
}

// ListVisitors lists the visitors in scope, newest first
func (s *VisitorService) ListVisitors(ctx context.Context, scope filter.Filter, f VisitorListFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Visitor], error) {
	visitors, total, err := s.visitorRepo.List(ctx, f.build(scope), params)
	if err != nil {
		return nil, err
	}
	return paginate(visitors, total, params), nil
}

// UpdateVisitorInput represents the update visitor input. Status and
// assignment change through their own operations.
type UpdateVisitorInput struct {
	ID             primitive.ObjectID
	Name           *string
	Email          *string
	Phone          *string
	Organization   *string
	Region         *string
	Service        *string
	Subservice     *string
	EnquiryDetails *string
	Source         *enum.Source
	Comments       *string
	Amount         *float64
	Version        *int64
}

// UpdateVisitor applies the supplied fields. The merged record must still
// satisfy the visitor invariants.
func (s *VisitorService) UpdateVisitor(ctx context.Context, scope filter.Filter, actor entity.Principal, input *UpdateVisitorInput) (*entity.Visitor, error) {
	visitor, err := s.GetVisitor(ctx, scope, input.ID)
	if err != nil {
		return nil, err
	}

	set := map[string]any{}
	str := func(field string, v *string, dst *string) {
		if v = trimPtr(v); v != nil {
			*dst = *v
			set[field] = *v
		}
	}
	if input.Email != nil {
		lowered := strings.ToLower(*input.Email)
		input.Email = &lowered
	}
	str("name", input.Name, &visitor.Name)
	str("email", input.Email, &visitor.Email)
	str("phone", input.Phone, &visitor.Phone)
	str("organization", input.Organization, &visitor.Organization)
	str("region", input.Region, &visitor.Region)
	str("service", input.Service, &visitor.Service)
	str("subservice", input.Subservice, &visitor.Subservice)
	str("enquiryDetails", input.EnquiryDetails, &visitor.EnquiryDetails)
	str("comments", input.Comments, &visitor.Comments)
	if input.Source != nil {
		visitor.Source = *input.Source
		set["source"] = *input.Source
	}
	if input.Amount != nil {
		visitor.Amount = *input.Amount
		set["amount"] = *input.Amount
	}

	if err := validateStruct(visitor); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return visitor, nil
	}

	set["lastModifiedBy"] = actor.Name
	set["lastModifiedAt"] = s.now().UTC()
	updated, err := s.visitorRepo.Update(ctx, input.ID, scope, input.Version, repository.Patch{
		Set: set,
		Inc: map[string]int64{"version": 1},
	})
	if err != nil {
		return nil, mapVersionConflict(err)
	}
	if updated == nil {
		return nil, apperror.NewNotFoundError("Visitor")
	}
	return updated, nil
}

// VisitorHistory holds a visitor's two audit logs
type VisitorHistory struct {
	Pipeline   []entity.PipelineEntry   `json:"pipelineHistory"`
	Assignment []entity.AssignmentEntry `json:"assignmentHistory"`
}

// History returns the visitor's status and assignment history
func (s *VisitorService) History(ctx context.Context, scope filter.Filter, id primitive.ObjectID) (*VisitorHistory, error) {
	visitor, err := s.GetVisitor(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	h := &VisitorHistory{Pipeline: visitor.PipelineHistory, Assignment: visitor.AssignmentHistory}
	if h.Pipeline == nil {
		h.Pipeline = []entity.PipelineEntry{}
	}
	if h.Assignment == nil {
		h.Assignment = []entity.AssignmentEntry{}
	}
	return h, nil
}

var exportHeader = []any{
	"ID", "Name", "Email", "Phone", "Organization", "Region", "Service", "Subservice",
	"Source", "Status", "Converted", "Agent", "Sales Executive", "Customer Executive",
	"Amount", "Created At", "Last Interaction",
}

// Export writes every visitor in scope to w as an xlsx workbook and returns
// the number of rows written
func (s *VisitorService) Export(ctx context.Context, scope filter.Filter, f VisitorListFilter, w io.Writer) (int, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, err
	}
	sw, err := file.NewStreamWriter(exportSheet)
	if err != nil {
		return 0, err
	}
	if err := sw.SetRow("A1", exportHeader); err != nil {
		return 0, err
	}

	rows := 0
	query := f.build(scope)
	after := primitive.NilObjectID
	for {
		batch, err := s.visitorRepo.Batch(ctx, query, after, exportBatchSize)
		if err != nil {
			return rows, err
		}
		for i := range batch {
			cell, err := excelize.CoordinatesToCellName(1, rows+2)
			if err != nil {
				return rows, err
			}
			if err := sw.SetRow(cell, exportRow(&batch[i])); err != nil {
				return rows, err
			}
			rows++
		}
		if len(batch) < exportBatchSize {
			break
		}
		after = batch[len(batch)-1].ID
	}

	if err := sw.Flush(); err != nil {
		return rows, err
	}
	if _, err := file.WriteTo(w); err != nil {
		return rows, fmt.Errorf("writing workbook: %w", err)
	}
	return rows, nil
}

func exportRow(v *entity.Visitor) []any {
	return []any{
		v.ID.Hex(), v.Name, v.Email, v.Phone, v.Organization, v.Region, v.Service, v.Subservice,
		string(v.Source), v.Status, v.IsConverted, v.AgentName, v.SalesExecutiveName, v.CustomerExecutiveName,
		v.Amount, v.CreatedAt.Format(time.RFC3339), v.LastInteractionAt.Format(time.RFC3339),
	}
}

// paginate wraps a page of items the way list endpoints return them
func paginate[T any](items []T, total int64, params *pagination.PaginationParams) *pagination.PaginatedResult[T] {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()
	return pagination.NewPaginatedResult(items, pagination.NewPagination(params.Page, params.PerPage, total))
}
