package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/apperror"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

// EnquiryService handles enquiry-related operations
type EnquiryService struct {
	enquiryRepo repository.EnquiryRepository
	visitorRepo repository.VisitorRepository
	log         *logrus.Logger
	now         func() time.Time
}

// NewEnquiryService creates a new enquiry service
func NewEnquiryService(enquiryRepo repository.EnquiryRepository, visitorRepo repository.VisitorRepository, log *logrus.Logger) *EnquiryService {
	return &EnquiryService{enquiryRepo: enquiryRepo, visitorRepo: visitorRepo, log: log, now: time.Now}
}

// CreateEnquiryInput represents the create enquiry input. When VisitorID is
// set the enquiry is linked and starts with the visitor's assignment.
type CreateEnquiryInput struct {
	VisitorID      *primitive.ObjectID
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

// CreateEnquiry stores a new enquiry
func (s *EnquiryService) CreateEnquiry(ctx context.Context, scope filter.Filter, actor entity.Principal, input *CreateEnquiryInput) (*entity.Enquiry, error) {
	now := s.now().UTC()
	enquiry := &entity.Enquiry{
		ID:             primitive.NewObjectID(),
		Name:           strings.TrimSpace(input.Name),
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:          strings.TrimSpace(input.Phone),
		Organization:   strings.TrimSpace(input.Organization),
		Region:         strings.TrimSpace(input.Region),
		Service:        strings.TrimSpace(input.Service),
		Subservice:     strings.TrimSpace(input.Subservice),
		EnquiryDetails: strings.TrimSpace(input.EnquiryDetails),
		Source:         input.Source,
		Status:         strings.TrimSpace(input.Status),
		Comments:       strings.TrimSpace(input.Comments),
		Amount:         input.Amount,
		LastModifiedBy: actor.Name,
		LastModifiedAt: now,
		CreatedAt:      now,
	}

	if input.VisitorID != nil {
		visitor, err := s.visitorRepo.GetByID(ctx, *input.VisitorID, scope)
		if err != nil {
			return nil, err
		}
		if visitor == nil {
			return nil, apperror.NewNotFoundError("Visitor")
		}
		id := visitor.ID
		enquiry.VisitorID = &id
		enquiry.Assignment = visitor.Assignment
		fillFromVisitor(enquiry, visitor)
	}

	if enquiry.Source == "" {
		enquiry.Source = enum.SourceWebsite
	}
	if enquiry.Status == "" {
		enquiry.Status = defaultVisitorStatus
	}

	if err := validateStruct(enquiry); err != nil {
		return nil, err
	}
	if err := s.enquiryRepo.Create(ctx, enquiry); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"enquiry_id": enquiry.ID.Hex(),
		"linked":     enquiry.VisitorID != nil,
	}).Info("enquiry created")
	return enquiry, nil
}

// fillFromVisitor copies the visitor's details into fields the caller left blank
func fillFromVisitor(q *entity.Enquiry, v *entity.Visitor) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&q.Name, v.Name)
	fill(&q.Email, v.Email)
	fill(&q.Phone, v.Phone)
	fill(&q.Organization, v.Organization)
	fill(&q.Region, v.Region)
	fill(&q.Service, v.Service)
	fill(&q.Subservice, v.Subservice)
	fill(&q.EnquiryDetails, v.EnquiryDetails)
	if q.Source == "" {
		q.Source = v.Source
	}
}

// GetEnquiry retrieves an enquiry within scope
func (s *EnquiryService) GetEnquiry(ctx context.Context, scope filter.Filter, id primitive.ObjectID) (*entity.Enquiry, error) {
	enquiry, err := s.enquiryRepo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if enquiry == nil {
		return nil, apperror.NewNotFoundError("Enquiry")
	}
	return enquiry, nil
}

// EnquiryListFilter narrows an enquiry listing
type EnquiryListFilter struct {
	Search    string
	Status    string
	Service   string
	VisitorID *primitive.ObjectID
}

// ListEnquiries lists the enquiries in scope, newest first
func (s *EnquiryService) ListEnquiries(ctx context.Context, scope filter.Filter, f EnquiryListFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Enquiry], error) {
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
	if v := strings.TrimSpace(f.Service); v != "" {
		parts = append(parts, filter.Eq("service", v))
	}
	if f.VisitorID != nil {
		parts = append(parts, filter.Eq("visitorId", *f.VisitorID))
	}

	enquiries, total, err := s.enquiryRepo.List(ctx, filter.And(parts...), params)
	if err != nil {
		return nil, err
	}
	return paginate(enquiries, total, params), nil
}

// UpdateEnquiryInput represents the update enquiry input. Assignment follows
// the linked visitor and status has its own operation.
type UpdateEnquiryInput struct {
	ID             primitive.ObjectID
	Name           *string
	Email          *string
	Phone          *string
	Organization   *string
	Region         *string
	Service        *string
	Subservice     *string
	EnquiryDetails *string
	Comments       *string
	Amount         *float64
}

// UpdateEnquiry applies the supplied fields
func (s *EnquiryService) UpdateEnquiry(ctx context.Context, scope filter.Filter, actor entity.Principal, input *UpdateEnquiryInput) (*entity.Enquiry, error) {
	enquiry, err := s.GetEnquiry(ctx, scope, input.ID)
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
	str("name", input.Name, &enquiry.Name)
	str("email", input.Email, &enquiry.Email)
	str("phone", input.Phone, &enquiry.Phone)
	str("organization", input.Organization, &enquiry.Organization)
	str("region", input.Region, &enquiry.Region)
	str("service", input.Service, &enquiry.Service)
	str("subservice", input.Subservice, &enquiry.Subservice)
	str("enquiryDetails", input.EnquiryDetails, &enquiry.EnquiryDetails)
	str("comments", input.Comments, &enquiry.Comments)
	if input.Amount != nil {
		enquiry.Amount = *input.Amount
		set["amount"] = *input.Amount
	}

	if err := validateStruct(enquiry); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return enquiry, nil
	}

	set["lastModifiedBy"] = actor.Name
	set["lastModifiedAt"] = s.now().UTC()
	updated, err := s.enquiryRepo.Update(ctx, input.ID, scope, repository.Patch{Set: set})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperror.NewNotFoundError("Enquiry")
	}
	return updated, nil
}

// DeleteEnquiry permanently removes an enquiry
func (s *EnquiryService) DeleteEnquiry(ctx context.Context, scope filter.Filter, actor entity.Principal, id primitive.ObjectID) error {
	deleted, err := s.enquiryRepo.Delete(ctx, id, scope)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NewNotFoundError("Enquiry")
	}
	s.log.WithFields(logrus.Fields{
		"enquiry_id": id.Hex(),
		"actor":      actor.Name,
	}).Warn("enquiry deleted")
	return nil
}
