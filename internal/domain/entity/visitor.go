package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/enum"
)

// Visitor is the canonical lead record and the source of truth for assignment
type Visitor struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Name           string             `bson:"name" json:"name" validate:"required,max=255"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty" validate:"required_without=Phone,omitempty,email,max=255"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty" validate:"required_without=Email,omitempty,max=50"`
	Organization   string             `bson:"organization,omitempty" json:"organization,omitempty"`
	Region         string             `bson:"region,omitempty" json:"region,omitempty"`
	Service        string             `bson:"service" json:"service"`
	Subservice     string             `bson:"subservice,omitempty" json:"subservice,omitempty"`
	EnquiryDetails string             `bson:"enquiryDetails,omitempty" json:"enquiryDetails,omitempty"`
	Source         enum.Source        `bson:"source" json:"source" validate:"omitempty,oneof=chatbot email calls website"`
	Status         string             `bson:"status" json:"status"`
	IsConverted    bool               `bson:"isConverted" json:"isConverted"`

	Assignment `bson:",inline"`

	Comments string  `bson:"comments,omitempty" json:"comments,omitempty"`
	Amount   float64 `bson:"amount" json:"amount" validate:"gte=0"`

	PipelineHistory   []PipelineEntry   `bson:"pipelineHistory" json:"pipelineHistory"`
	AssignmentHistory []AssignmentEntry `bson:"assignmentHistory" json:"assignmentHistory"`

	Version           int64     `bson:"version" json:"version"`
	LastModifiedBy    string    `bson:"lastModifiedBy,omitempty" json:"lastModifiedBy,omitempty"`
	LastModifiedAt    time.Time `bson:"lastModifiedAt" json:"lastModifiedAt"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	LastInteractionAt time.Time `bson:"lastInteractionAt" json:"lastInteractionAt"`
}

// CollectionName returns the collection name for the Visitor model
func (Visitor) CollectionName() string {
	return "visitors"
}
