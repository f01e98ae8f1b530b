package enum

// RecordKind distinguishes the two lead collections that carry a status history
type RecordKind string

const (
	RecordVisitor RecordKind = "visitor"
	RecordEnquiry RecordKind = "enquiry"
)

// Sender identifies who wrote a chat message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)
