package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/enum"
)

// ChatMessage is one immutable line of a chatbot conversation
type ChatMessage struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	VisitorID primitive.ObjectID `bson:"visitorId" json:"visitorId"`
	Sender    enum.Sender        `bson:"sender" json:"sender"`
	Message   string             `bson:"message" json:"message"`
	At        time.Time          `bson:"at" json:"at"`
}

// CollectionName returns the collection name for the ChatMessage model
func (ChatMessage) CollectionName() string {
	return "chat_messages"
}
