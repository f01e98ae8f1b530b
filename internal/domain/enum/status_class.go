package enum

// StatusClass is the reporting bucket a raw status string falls into
type StatusClass string

const (
	StatusClassLead    StatusClass = "lead"
	StatusClassPending StatusClass = "pending"
	StatusClassOther   StatusClass = "other"
)
