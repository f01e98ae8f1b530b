package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	domainRepo "github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

type faqRepository struct {
	coll domainRepo.Collection
}

// NewFAQRepository creates a new FAQ repository
func NewFAQRepository(store domainRepo.Store) domainRepo.FAQRepository {
	return &faqRepository{coll: store.Collection(entity.FAQ{}.CollectionName())}
}

func (r *faqRepository) Create(ctx context.Context, faq *entity.FAQ) error {
	if faq.Keywords == nil {
		faq.Keywords = []string{}
	}
	return r.coll.InsertOne(ctx, faq)
}

func (r *faqRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.FAQ, error) {
	return findOne[entity.FAQ](ctx, r.coll, byID(id))
}

func (r *faqRepository) List(ctx context.Context, activeOnly bool, params *pagination.PaginationParams) ([]entity.FAQ, int64, error) {
	f := filter.All()
	if activeOnly {
		f = filter.Eq("active", true)
	}
	return findPage[entity.FAQ](ctx, r.coll, f, newestFirst, params)
}

func (r *faqRepository) ListActive(ctx context.Context) ([]entity.FAQ, error) {
	faqs := []entity.FAQ{}
	err := r.coll.Find(ctx, filter.Eq("active", true), domainRepo.FindOptions{}, &faqs)
	return faqs, err
}

func (r *faqRepository) Update(ctx context.Context, id primitive.ObjectID, p domainRepo.Patch) (*entity.FAQ, error) {
	return updateOne[entity.FAQ](ctx, r.coll, byID(id), p)
}

func (r *faqRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.coll.DeleteOne(ctx, byID(id))
	return n > 0, err
}

type articleRepository struct {
	coll domainRepo.Collection
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(store domainRepo.Store) domainRepo.ArticleRepository {
	return &articleRepository{coll: store.Collection(entity.Article{}.CollectionName())}
}

func (r *articleRepository) Create(ctx context.Context, article *entity.Article) error {
	if article.Tags == nil {
		article.Tags = []string{}
	}
	return r.coll.InsertOne(ctx, article)
}

func (r *articleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Article, error) {
	return findOne[entity.Article](ctx, r.coll, byID(id))
}

func (r *articleRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*entity.Article, error) {
	f := filter.Eq("slug", slug)
	if publishedOnly {
		f = filter.And(f, filter.Eq("published", true))
	}
	return findOne[entity.Article](ctx, r.coll, f)
}

func (r *articleRepository) List(ctx context.Context, publishedOnly bool, search string, params *pagination.PaginationParams) ([]entity.Article, int64, error) {
	f := filter.All()
	if publishedOnly {
		f = filter.Eq("published", true)
	}
	if search != "" {
		f = filter.And(f, filter.Or(filter.Contains("title", search), filter.Contains("body", search)))
	}
	return findPage[entity.Article](ctx, r.coll, f, newestFirst, params)
}

func (r *articleRepository) Update(ctx context.Context, id primitive.ObjectID, p domainRepo.Patch) (*entity.Article, error) {
	return updateOne[entity.Article](ctx, r.coll, byID(id), p)
}

func (r *articleRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.coll.DeleteOne(ctx, byID(id))
	return n > 0, err
}
