package entity

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/enum"
)

// Principal is the authenticated identity making a request. It is rebuilt
// from the access token on every request and never persisted.
type Principal struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Role   enum.Role `json:"role"`
	Region string    `json:"region,omitempty"`
}

// ObjectID returns the principal id as an ObjectId when it has that shape
func (p Principal) ObjectID() (primitive.ObjectID, bool) {
	if !primitive.IsValidObjectID(p.ID) {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// IsAdmin reports whether the principal has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == enum.RoleAdmin
}
