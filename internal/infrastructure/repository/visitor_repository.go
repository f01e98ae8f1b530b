package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	domainRepo "github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

type visitorRepository struct {
	coll domainRepo.Collection
}

// NewVisitorRepository creates a new visitor repository
func NewVisitorRepository(store domainRepo.Store) domainRepo.VisitorRepository {
	return &visitorRepository{coll: store.Collection(entity.Visitor{}.CollectionName())}
}

func (r *visitorRepository) Create(ctx context.Context, visitor *entity.Visitor) error {
	if visitor.PipelineHistory == nil {
		visitor.PipelineHistory = []entity.PipelineEntry{}
	}
	if visitor.AssignmentHistory == nil {
		visitor.AssignmentHistory = []entity.AssignmentEntry{}
	}
	return r.coll.InsertOne(ctx, visitor)
}

func (r *visitorRepository) GetByID(ctx context.Context, id primitive.ObjectID, scope filter.Filter) (*entity.Visitor, error) {
	return findOne[entity.Visitor](ctx, r.coll, filter.And(byID(id), scope))
}

func (r *visitorRepository) FindByContact(ctx context.Context, email, phone string) (*entity.Visitor, error) {
	var parts []filter.Filter
	if email != "" {
		parts = append(parts, filter.Eq("email", email))
	}
	if phone != "" {
		parts = append(parts, filter.Eq("phone", phone))
	}
	f := filter.Or(parts...)
	if f.IsNone() {
		return nil, nil
	}
	return findOne[entity.Visitor](ctx, r.coll, f)
}

func (r *visitorRepository) List(ctx context.Context, f filter.Filter, params *pagination.PaginationParams) ([]entity.Visitor, int64, error) {
	return findPage[entity.Visitor](ctx, r.coll, f, newestFirst, params)
}

func (r *visitorRepository) Batch(ctx context.Context, f filter.Filter, after primitive.ObjectID, size int64) ([]entity.Visitor, error) {
	if !after.IsZero() {
		f = filter.And(f, filter.Gt("_id", after))
	}
	visitors := []entity.Visitor{}
	err := r.coll.Find(ctx, f, domainRepo.FindOptions{
		Sort:  []domainRepo.SortField{{Field: "_id"}},
		Limit: size,
	}, &visitors)
	return visitors, err
}

func (r *visitorRepository) Count(ctx context.Context, f filter.Filter) (int64, error) {
	return r.coll.Count(ctx, f)
}

func (r *visitorRepository) Update(ctx context.Context, id primitive.ObjectID, scope filter.Filter, expectedVersion *int64, p domainRepo.Patch) (*entity.Visitor, error) {
	f := filter.And(byID(id), scope)
	if expectedVersion != nil {
		f = filter.And(f, filter.Eq("version", *expectedVersion))
	}
	visitor, err := updateOne[entity.Visitor](ctx, r.coll, f, p)
	if err != nil || visitor != nil || expectedVersion == nil {
		return visitor, err
	}

	// distinguish a stale version from a missing record
	existing, err := r.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domainRepo.ErrVersionConflict
	}
	return nil, nil
}

func (r *visitorRepository) Group(ctx context.Context, f filter.Filter, g domainRepo.Grouping) ([]domainRepo.Bucket, error) {
	return r.coll.Group(ctx, f, g)
}
