package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, role enum.Role, params *pagination.PaginationParams) ([]entity.User, int64, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, p Patch) (*entity.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// ExecutiveServiceRepository maps customer executives to the services they cover
type ExecutiveServiceRepository interface {
	Get(ctx context.Context, executiveID primitive.ObjectID) (*entity.ExecutiveServices, error)
	Set(ctx context.Context, assignment *entity.ExecutiveServices) error
}
