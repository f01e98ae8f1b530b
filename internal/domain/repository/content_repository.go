package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

// FAQRepository defines the interface for FAQ data operations
type FAQRepository interface {
	Create(ctx context.Context, faq *entity.FAQ) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.FAQ, error)
	List(ctx context.Context, activeOnly bool, params *pagination.PaginationParams) ([]entity.FAQ, int64, error)
	ListActive(ctx context.Context) ([]entity.FAQ, error)
	Update(ctx context.Context, id primitive.ObjectID, p Patch) (*entity.FAQ, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *entity.Article) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Article, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*entity.Article, error)
	List(ctx context.Context, publishedOnly bool, search string, params *pagination.PaginationParams) ([]entity.Article, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, p Patch) (*entity.Article, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}
