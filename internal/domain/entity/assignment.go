package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/enum"
)

// Assignment holds the identity slots shared by visitors and enquiries.
// Each slot is a nullable ObjectId reference plus a display name.
type Assignment struct {
	AssignedAgent         *primitive.ObjectID `bson:"assignedAgent" json:"assignedAgent"`
	AgentName             string              `bson:"agentName" json:"agentName"`
	SalesExecutive        *primitive.ObjectID `bson:"salesExecutive" json:"salesExecutive"`
	SalesExecutiveName    string              `bson:"salesExecutiveName" json:"salesExecutiveName"`
	CustomerExecutive     *primitive.ObjectID `bson:"customerExecutive" json:"customerExecutive"`
	CustomerExecutiveName string              `bson:"customerExecutiveName" json:"customerExecutiveName"`
}

// Identity returns the identity held in a slot
func (a Assignment) Identity(role enum.AssignmentRole) Identity {
	var ref *primitive.ObjectID
	var name string
	switch role {
	case enum.AssignmentAgent:
		ref, name = a.AssignedAgent, a.AgentName
	case enum.AssignmentSalesExecutive:
		ref, name = a.SalesExecutive, a.SalesExecutiveName
	case enum.AssignmentCustomerExecutive:
		ref, name = a.CustomerExecutive, a.CustomerExecutiveName
	}
	if ref != nil {
		return Resolved(*ref, name)
	}
	return Unresolved(name)
}

// AssignmentFields returns the slot as a field->value map ready for a $set
func AssignmentFields(role enum.AssignmentRole, identity Identity) map[string]any {
	return map[string]any{
		role.IDField():   identity.IDRef(),
		role.NameField(): identity.Name(),
	}
}

// AllFields returns every slot as a field->value map
func (a Assignment) AllFields() map[string]any {
	fields := make(map[string]any, 6)
	for _, role := range []enum.AssignmentRole{enum.AssignmentAgent, enum.AssignmentSalesExecutive, enum.AssignmentCustomerExecutive} {
		for k, v := range AssignmentFields(role, a.Identity(role)) {
			fields[k] = v
		}
	}
	return fields
}

// PipelineEntry is one append-only status history record
type PipelineEntry struct {
	Status    string    `bson:"status" json:"status"`
	ChangedAt time.Time `bson:"changedAt" json:"changedAt"`
	ChangedBy string    `bson:"changedBy" json:"changedBy"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// AssignmentEntry is one append-only assignment audit record
type AssignmentEntry struct {
	Role       enum.AssignmentRole `bson:"role" json:"role"`
	AssignedBy string              `bson:"assignedBy" json:"assignedBy"`
	AssignedTo string              `bson:"assignedTo" json:"assignedTo"`
	AssignedAt time.Time           `bson:"assignedAt" json:"assignedAt"`
	Reason     string              `bson:"reason,omitempty" json:"reason,omitempty"`
}
