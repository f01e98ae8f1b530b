package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

// VisitorRepository defines the interface for visitor data operations.
// Every read and write takes the caller's scope filter; a record outside the
// scope behaves exactly like a missing one.
type VisitorRepository interface {
	Create(ctx context.Context, visitor *entity.Visitor) error
	GetByID(ctx context.Context, id primitive.ObjectID, scope filter.Filter) (*entity.Visitor, error)
	FindByContact(ctx context.Context, email, phone string) (*entity.Visitor, error)
	List(ctx context.Context, f filter.Filter, params *pagination.PaginationParams) ([]entity.Visitor, int64, error)
	// Batch returns visitors after the given id in id order, for full scans
	Batch(ctx context.Context, f filter.Filter, after primitive.ObjectID, size int64) ([]entity.Visitor, error)
	Count(ctx context.Context, f filter.Filter) (int64, error)
	// Update applies p to the visitor if it is in scope and, when expectedVersion
	// is non-nil, still at that version. The updated visitor is returned.
	Update(ctx context.Context, id primitive.ObjectID, scope filter.Filter, expectedVersion *int64, p Patch) (*entity.Visitor, error)
	Group(ctx context.Context, f filter.Filter, g Grouping) ([]Bucket, error)
}

// EnquiryRepository defines the interface for enquiry data operations
type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *entity.Enquiry) error
	GetByID(ctx context.Context, id primitive.ObjectID, scope filter.Filter) (*entity.Enquiry, error)
	List(ctx context.Context, f filter.Filter, params *pagination.PaginationParams) ([]entity.Enquiry, int64, error)
	Count(ctx context.Context, f filter.Filter) (int64, error)
	CountByVisitor(ctx context.Context, visitorID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, scope filter.Filter, p Patch) (*entity.Enquiry, error)
	// UpdateByVisitor applies p to every enquiry linked to visitorID in one bulk write
	UpdateByVisitor(ctx context.Context, visitorID primitive.ObjectID, p Patch) (UpdateResult, error)
	Delete(ctx context.Context, id primitive.ObjectID, scope filter.Filter) (bool, error)
	Group(ctx context.Context, f filter.Filter, g Grouping) ([]Bucket, error)
}

// ChatMessageRepository defines the interface for chat transcript operations
type ChatMessageRepository interface {
	Create(ctx context.Context, msg *entity.ChatMessage) error
	ListByVisitor(ctx context.Context, visitorID primitive.ObjectID, limit int64) ([]entity.ChatMessage, error)
}
