package entity

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is who an assignment slot points at: either a resolved reference
// to a User, or only a display name when no User record backs it.
type Identity struct {
	id       primitive.ObjectID
	name     string
	resolved bool
}

// Resolved builds an identity backed by a User id
func Resolved(id primitive.ObjectID, name string) Identity {
	return Identity{id: id, name: strings.TrimSpace(name), resolved: true}
}

// Unresolved builds a name-only identity
func Unresolved(name string) Identity {
	return Identity{name: strings.TrimSpace(name)}
}

// ParseIdentity resolves rawID only when it has the 24-hex ObjectId shape.
// A malformed id is never stored as a reference; it becomes the display name
// when no name was supplied.
func ParseIdentity(rawID, name string) Identity {
	rawID = strings.TrimSpace(rawID)
	name = strings.TrimSpace(name)
	if primitive.IsValidObjectID(rawID) {
		if id, err := primitive.ObjectIDFromHex(rawID); err == nil {
			return Resolved(id, name)
		}
	}
	if name == "" {
		name = rawID
	}
	return Unresolved(name)
}

// ID returns the referenced User id, if resolved
func (i Identity) ID() (primitive.ObjectID, bool) {
	return i.id, i.resolved
}

// IDRef returns the value stored in the ObjectId-typed field (nil when unresolved)
func (i Identity) IDRef() *primitive.ObjectID {
	if !i.resolved {
		return nil
	}
	id := i.id
	return &id
}

// Name returns the display name
func (i Identity) Name() string {
	return i.name
}

// IsResolved reports whether the identity references a User
func (i Identity) IsResolved() bool {
	return i.resolved
}

// IsZero reports whether the identity carries neither a reference nor a name
func (i Identity) IsZero() bool {
	return !i.resolved && i.name == ""
}

// WithName returns a copy with the display name replaced
func (i Identity) WithName(name string) Identity {
	i.name = strings.TrimSpace(name)
	return i
}
