package request

// FAQRequest is used for both create and partial update
type FAQRequest struct {
	Question *string  `json:"question"`
	Answer   *string  `json:"answer"`
	Category *string  `json:"category"`
	Keywords []string `json:"keywords"`
	Active   *bool    `json:"active"`
}

// ArticleRequest is used for both create and partial update
type ArticleRequest struct {
	Title     *string  `json:"title"`
	Body      *string  `json:"body"`
	Tags      []string `json:"tags"`
	Published *bool    `json:"published"`
}

// ChatMessageRequest is one message from the chat widget
type ChatMessageRequest struct {
	VisitorID string `json:"visitorId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Service   string `json:"service"`
	Message   string `json:"message"`
}
