package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/enum"
)

// User is a staff account that can sign in to a dashboard
type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name" validate:"required,max=255"`
	Email        string             `bson:"email" json:"email" validate:"required,email,max=255"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         enum.Role          `bson:"role" json:"role" validate:"required,oneof=admin sales-executive customer-executive"`
	Region       string             `bson:"region,omitempty" json:"region,omitempty"`
	Active       bool               `bson:"active" json:"active"`
	LastLoginAt  *time.Time         `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CollectionName returns the collection name for the User model
func (User) CollectionName() string {
	return "users"
}

// Principal returns the request identity for this user
func (u *User) Principal() Principal {
	return Principal{
		ID:     u.ID.Hex(),
		Name:   u.Name,
		Role:   u.Role,
		Region: u.Region,
	}
}

// ExecutiveServices maps a customer executive to the service categories they cover
type ExecutiveServices struct {
	ExecutiveID primitive.ObjectID `bson:"_id" json:"executiveId"`
	Services    []string           `bson:"services" json:"services"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy   string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}

// CollectionName returns the collection name for the ExecutiveServices model
func (ExecutiveServices) CollectionName() string {
	return "executive_services"
}
