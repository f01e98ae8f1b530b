package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	domainRepo "github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

type enquiryRepository struct {
	coll domainRepo.Collection
}

// NewEnquiryRepository creates a new enquiry repository
func NewEnquiryRepository(store domainRepo.Store) domainRepo.EnquiryRepository {
	return &enquiryRepository{coll: store.Collection(entity.Enquiry{}.CollectionName())}
}

func (r *enquiryRepository) Create(ctx context.Context, enquiry *entity.Enquiry) error {
	if enquiry.StatusHistory == nil {
		enquiry.StatusHistory = []entity.PipelineEntry{}
	}
	return r.coll.InsertOne(ctx, enquiry)
}

func (r *enquiryRepository) GetByID(ctx context.Context, id primitive.ObjectID, scope filter.Filter) (*entity.Enquiry, error) {
	return findOne[entity.Enquiry](ctx, r.coll, filter.And(byID(id), scope))
}

func (r *enquiryRepository) List(ctx context.Context, f filter.Filter, params *pagination.PaginationParams) ([]entity.Enquiry, int64, error) {
	return findPage[entity.Enquiry](ctx, r.coll, f, newestFirst, params)
}

func (r *enquiryRepository) Count(ctx context.Context, f filter.Filter) (int64, error) {
	return r.coll.Count(ctx, f)
}

func (r *enquiryRepository) CountByVisitor(ctx context.Context, visitorID primitive.ObjectID) (int64, error) {
	return r.coll.Count(ctx, filter.Eq("visitorId", visitorID))
}

func (r *enquiryRepository) Update(ctx context.Context, id primitive.ObjectID, scope filter.Filter, p domainRepo.Patch) (*entity.Enquiry, error) {
	return updateOne[entity.Enquiry](ctx, r.coll, filter.And(byID(id), scope), p)
}

func (r *enquiryRepository) UpdateByVisitor(ctx context.Context, visitorID primitive.ObjectID, p domainRepo.Patch) (domainRepo.UpdateResult, error) {
	return r.coll.UpdateMany(ctx, filter.Eq("visitorId", visitorID), p)
}

func (r *enquiryRepository) Delete(ctx context.Context, id primitive.ObjectID, scope filter.Filter) (bool, error) {
	n, err := r.coll.DeleteOne(ctx, filter.And(byID(id), scope))
	return n > 0, err
}

func (r *enquiryRepository) Group(ctx context.Context, f filter.Filter, g domainRepo.Grouping) ([]domainRepo.Bucket, error) {
	return r.coll.Group(ctx, f, g)
}
