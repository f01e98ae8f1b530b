package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	domainRepo "github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

type userRepository struct {
	coll domainRepo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(store domainRepo.Store) domainRepo.UserRepository {
	return &userRepository{coll: store.Collection(entity.User{}.CollectionName())}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.coll.InsertOne(ctx, user)
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	return findOne[entity.User](ctx, r.coll, byID(id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return findOne[entity.User](ctx, r.coll, filter.Eq("email", email))
}

func (r *userRepository) List(ctx context.Context, role enum.Role, params *pagination.PaginationParams) ([]entity.User, int64, error) {
	f := filter.All()
	if role != "" {
		f = filter.Eq("role", string(role))
	}
	return findPage[entity.User](ctx, r.coll, f, []domainRepo.SortField{{Field: "name"}, {Field: "_id"}}, params)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.Count(ctx, filter.All())
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, p domainRepo.Patch) (*entity.User, error) {
	return updateOne[entity.User](ctx, r.coll, byID(id), p)
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.coll.DeleteOne(ctx, byID(id))
	return n > 0, err
}

type executiveServiceRepository struct {
	coll domainRepo.Collection
}

// NewExecutiveServiceRepository creates a repository for executive service coverage
func NewExecutiveServiceRepository(store domainRepo.Store) domainRepo.ExecutiveServiceRepository {
	return &executiveServiceRepository{coll: store.Collection(entity.ExecutiveServices{}.CollectionName())}
}

func (r *executiveServiceRepository) Get(ctx context.Context, executiveID primitive.ObjectID) (*entity.ExecutiveServices, error) {
	return findOne[entity.ExecutiveServices](ctx, r.coll, byID(executiveID))
}

// Set replaces the executive's services, creating the mapping on first use
func (r *executiveServiceRepository) Set(ctx context.Context, a *entity.ExecutiveServices) error {
	if a.Services == nil {
		a.Services = []string{}
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now().UTC()
	}
	patch := domainRepo.Patch{Set: map[string]any{
		"services":  a.Services,
		"updatedAt": a.UpdatedAt,
		"updatedBy": a.UpdatedBy,
	}}

	for attempt := 0; attempt < 2; attempt++ {
		res, err := r.coll.UpdateOne(ctx, byID(a.ExecutiveID), patch)
		if err != nil || res.Matched > 0 {
			return err
		}
		err = r.coll.InsertOne(ctx, a)
		if !errors.Is(err, domainRepo.ErrDuplicateKey) {
			return err
		}
		// inserted concurrently; update the winner
	}
	return domainRepo.ErrDuplicateKey
}
