package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FAQ is a canned question/answer pair the chatbot replies from
type FAQ struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Question  string             `bson:"question" json:"question" validate:"required,max=500"`
	Answer    string             `bson:"answer" json:"answer" validate:"required"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	Keywords  []string           `bson:"keywords" json:"keywords"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CollectionName returns the collection name for the FAQ model
func (FAQ) CollectionName() string {
	return "faqs"
}

// Article is a published knowledge-base page
type Article struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title" validate:"required,max=255"`
	Slug      string             `bson:"slug" json:"slug"`
	Body      string             `bson:"body" json:"body" validate:"required"`
	Tags      []string           `bson:"tags" json:"tags"`
	Published bool               `bson:"published" json:"published"`
	Author    string             `bson:"author,omitempty" json:"author,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CollectionName returns the collection name for the Article model
func (Article) CollectionName() string {
	return "articles"
}
