package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/apperror"
	"github.com/sangkips/enquiry-api/pkg/pagination"
	"github.com/sangkips/enquiry-api/pkg/utils"
)

// FAQIndexer rebuilds the chatbot's FAQ index
type FAQIndexer interface {
	Rebuild(faqs []entity.FAQ) error
}

// ContentService manages FAQs and knowledge-base articles
type ContentService struct {
	faqRepo     repository.FAQRepository
	articleRepo repository.ArticleRepository
	index       FAQIndexer
	log         *logrus.Logger
	now         func() time.Time
}

// NewContentService creates a new content service
func NewContentService(faqRepo repository.FAQRepository, articleRepo repository.ArticleRepository, index FAQIndexer, log *logrus.Logger) *ContentService {
	return &ContentService{faqRepo: faqRepo, articleRepo: articleRepo, index: index, log: log, now: time.Now}
}

// RebuildIndex reloads the active FAQs into the chatbot index
func (s *ContentService) RebuildIndex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	faqs, err := s.faqRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.index.Rebuild(faqs); err != nil {
		return 0, err
	}
	return len(faqs), nil
}

// faqsChanged keeps the index in step with the store. A failed rebuild
// leaves the previous index serving.
func (s *ContentService) faqsChanged(ctx context.Context) {
	n, err := s.RebuildIndex(ctx)
	if err != nil {
		s.log.WithError(err).Error("failed to rebuild faq index")
		return
	}
	s.log.WithField("faqs", n).Debug("faq index rebuilt")
}

// FAQInput represents FAQ create and update input
type FAQInput struct {
	Question *string
	Answer   *string
	Category *string
	Keywords []string
	Active   *bool
}

// CreateFAQ stores a new FAQ; it is active unless stated otherwise
func (s *ContentService) CreateFAQ(ctx context.Context, input *FAQInput) (*entity.FAQ, error) {
	now := s.now().UTC()
	faq := &entity.FAQ{
		ID:        primitive.NewObjectID(),
		Keywords:  cleanList(input.Keywords),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if v := trimPtr(input.Question); v != nil {
		faq.Question = *v
	}
	if v := trimPtr(input.Answer); v != nil {
		faq.Answer = *v
	}
	if v := trimPtr(input.Category); v != nil {
		faq.Category = *v
	}
	if input.Active != nil {
		faq.Active = *input.Active
	}

	if err := validateStruct(faq); err != nil {
		return nil, err
	}
	if err := s.faqRepo.Create(ctx, faq); err != nil {
		return nil, err
	}
	s.faqsChanged(ctx)
	return faq, nil
}

// GetFAQ retrieves an FAQ; inactive ones are hidden unless includeInactive
func (s *ContentService) GetFAQ(ctx context.Context, id primitive.ObjectID, includeInactive bool) (*entity.FAQ, error) {
	faq, err := s.faqRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if faq == nil || (!faq.Active && !includeInactive) {
		return nil, apperror.NewNotFoundError("FAQ")
	}
	return faq, nil
}

// ListFAQs lists FAQs
func (s *ContentService) ListFAQs(ctx context.Context, activeOnly bool, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.FAQ], error) {
	faqs, total, err := s.faqRepo.List(ctx, activeOnly, params)
	if err != nil {
		return nil, err
	}
	return paginate(faqs, total, params), nil
}

// UpdateFAQ applies the supplied fields
func (s *ContentService) UpdateFAQ(ctx context.Context, id primitive.ObjectID, input *FAQInput) (*entity.FAQ, error) {
	faq, err := s.GetFAQ(ctx, id, true)
	if err != nil {
		return nil, err
	}

	set := map[string]any{}
	if v := trimPtr(input.Question); v != nil {
		faq.Question = *v
		set["question"] = *v
	}
	if v := trimPtr(input.Answer); v != nil {
		faq.Answer = *v
		set["answer"] = *v
	}
	if v := trimPtr(input.Category); v != nil {
		faq.Category = *v
		set["category"] = *v
	}
	if input.Keywords != nil {
		faq.Keywords = cleanList(input.Keywords)
		set["keywords"] = faq.Keywords
	}
	if input.Active != nil {
		faq.Active = *input.Active
		set["active"] = *input.Active
	}
	if err := validateStruct(faq); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return faq, nil
	}
	set["updatedAt"] = s.now().UTC()

	updated, err := s.faqRepo.Update(ctx, id, repository.Patch{Set: set})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperror.NewNotFoundError("FAQ")
	}
	s.faqsChanged(ctx)
	return updated, nil
}

// DeleteFAQ removes an FAQ
func (s *ContentService) DeleteFAQ(ctx context.Context, id primitive.ObjectID) error {
	deleted, err := s.faqRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NewNotFoundError("FAQ")
	}
	s.faqsChanged(ctx)
	return nil
}

// ArticleInput represents article create and update input
type ArticleInput struct {
	Title     *string
	Body      *string
	Tags      []string
	Published *bool
}

// CreateArticle stores a new article under a slug derived from its title
func (s *ContentService) CreateArticle(ctx context.Context, actor entity.Principal, input *ArticleInput) (*entity.Article, error) {
	now := s.now().UTC()
	article := &entity.Article{
		ID:        primitive.NewObjectID(),
		Tags:      cleanList(input.Tags),
		Author:    actor.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if v := trimPtr(input.Title); v != nil {
		article.Title = *v
	}
	if v := trimPtr(input.Body); v != nil {
		article.Body = *v
	}
	if input.Published != nil {
		article.Published = *input.Published
	}
	if err := validateStruct(article); err != nil {
		return nil, err
	}

	article.Slug = utils.Slugify(article.Title)
	taken, err := s.articleRepo.GetBySlug(ctx, article.Slug, false)
	if err != nil {
		return nil, err
	}
	if article.Slug == "" || taken != nil {
		article.Slug = utils.UniqueSlug(article.Title)
	}
	err = s.articleRepo.Create(ctx, article)
	if errors.Is(err, repository.ErrDuplicateKey) {
		article.Slug = utils.UniqueSlug(article.Title)
		err = s.articleRepo.Create(ctx, article)
	}
	if err != nil {
		return nil, mapDuplicate(err, "An article with this slug already exists")
	}
	return article, nil
}

// GetArticle retrieves an article by id or slug; drafts are hidden unless includeDrafts
func (s *ContentService) GetArticle(ctx context.Context, idOrSlug string, includeDrafts bool) (*entity.Article, error) {
	var article *entity.Article
	var err error
	if id, perr := primitive.ObjectIDFromHex(idOrSlug); perr == nil {
		article, err = s.articleRepo.GetByID(ctx, id)
	} else {
		article, err = s.articleRepo.GetBySlug(ctx, idOrSlug, !includeDrafts)
	}
	if err != nil {
		return nil, err
	}
	if article == nil || (!article.Published && !includeDrafts) {
		return nil, apperror.NewNotFoundError("Article")
	}
	return article, nil
}

// ListArticles lists articles, optionally searching title and body
func (s *ContentService) ListArticles(ctx context.Context, publishedOnly bool, search string, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Article], error) {
	articles, total, err := s.articleRepo.List(ctx, publishedOnly, strings.TrimSpace(search), params)
	if err != nil {
		return nil, err
	}
	return paginate(articles, total, params), nil
}

// UpdateArticle applies the supplied fields; the slug never changes
func (s *ContentService) UpdateArticle(ctx context.Context, id primitive.ObjectID, input *ArticleInput) (*entity.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apperror.NewNotFoundError("Article")
	}

	set := map[string]any{}
	if v := trimPtr(input.Title); v != nil {
		article.Title = *v
		set["title"] = *v
	}
	if v := trimPtr(input.Body); v != nil {
		article.Body = *v
		set["body"] = *v
	}
	if input.Tags != nil {
		article.Tags = cleanList(input.Tags)
		set["tags"] = article.Tags
	}
	if input.Published != nil {
		article.Published = *input.Published
		set["published"] = *input.Published
	}
	if err := validateStruct(article); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return article, nil
	}
	set["updatedAt"] = s.now().UTC()

	updated, err := s.articleRepo.Update(ctx, id, repository.Patch{Set: set})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperror.NewNotFoundError("Article")
	}
	return updated, nil
}

// DeleteArticle removes an article
func (s *ContentService) DeleteArticle(ctx context.Context, id primitive.ObjectID) error {
	deleted, err := s.articleRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NewNotFoundError("Article")
	}
	return nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(v)]; dup {
			continue
		}
		seen[strings.ToLower(v)] = struct{}{}
		out = append(out, v)
	}
	return out
}
