package enum

// Source is the channel a visitor first reached us through
type Source string

const (
	SourceChatbot Source = "chatbot"
	SourceEmail   Source = "email"
	SourceCalls   Source = "calls"
	SourceWebsite Source = "website"
)

// IsValid reports whether s is a known source
func (s Source) IsValid() bool {
	switch s {
	case SourceChatbot, SourceEmail, SourceCalls, SourceWebsite:
		return true
	}
	return false
}
