package enum

// AssignmentRole names which identity slot of a visitor an assignment fills
type AssignmentRole string

const (
	AssignmentAgent             AssignmentRole = "agent"
	AssignmentSalesExecutive    AssignmentRole = "salesExecutive"
	AssignmentCustomerExecutive AssignmentRole = "customerExecutive"
)

// IsValid reports whether r is a known assignment slot
func (r AssignmentRole) IsValid() bool {
	switch r {
	case AssignmentAgent, AssignmentSalesExecutive, AssignmentCustomerExecutive:
		return true
	}
	return false
}

// IDField returns the document field holding the ObjectId reference
func (r AssignmentRole) IDField() string {
	switch r {
	case AssignmentAgent:
		return "assignedAgent"
	case AssignmentSalesExecutive:
		return "salesExecutive"
	case AssignmentCustomerExecutive:
		return "customerExecutive"
	}
	return ""
}

// NameField returns the document field holding the display name
func (r AssignmentRole) NameField() string {
	switch r {
	case AssignmentAgent:
		return "agentName"
	case AssignmentSalesExecutive:
		return "salesExecutiveName"
	case AssignmentCustomerExecutive:
		return "customerExecutiveName"
	}
	return ""
}
