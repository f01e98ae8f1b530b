package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	domainRepo "github.com/sangkips/enquiry-api/internal/domain/repository"
)

type chatMessageRepository struct {
	coll domainRepo.Collection
}

// NewChatMessageRepository creates a new chat transcript repository
func NewChatMessageRepository(store domainRepo.Store) domainRepo.ChatMessageRepository {
	return &chatMessageRepository{coll: store.Collection(entity.ChatMessage{}.CollectionName())}
}

func (r *chatMessageRepository) Create(ctx context.Context, msg *entity.ChatMessage) error {
	return r.coll.InsertOne(ctx, msg)
}

// ListByVisitor returns the conversation oldest first
func (r *chatMessageRepository) ListByVisitor(ctx context.Context, visitorID primitive.ObjectID, limit int64) ([]entity.ChatMessage, error) {
	messages := []entity.ChatMessage{}
	err := r.coll.Find(ctx, filter.Eq("visitorId", visitorID), domainRepo.FindOptions{
		Sort:  []domainRepo.SortField{{Field: "at"}, {Field: "_id"}},
		Limit: limit,
	}, &messages)
	return messages, err
}
