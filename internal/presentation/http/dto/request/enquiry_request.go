package request

// CreateEnquiryRequest represents a create enquiry request. VisitorID links
// the enquiry to a visitor it then inherits assignment from.
type CreateEnquiryRequest struct {
	VisitorID      string  `json:"visitorId"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Organization   string  `json:"organization"`
	Region         string  `json:"region"`
	Service        string  `json:"service"`
	Subservice     string  `json:"subservice"`
	EnquiryDetails string  `json:"enquiryDetails"`
	Source         string  `json:"source"`
	Status         string  `json:"status"`
	Comments       string  `json:"comments"`
	Amount         float64 `json:"amount"`
}

// UpdateEnquiryRequest carries only the fields being changed
type UpdateEnquiryRequest struct {
	Name           *string  `json:"name"`
	Email          *string  `json:"email"`
	Phone          *string  `json:"phone"`
	Organization   *string  `json:"organization"`
	Region         *string  `json:"region"`
	Service        *string  `json:"service"`
	Subservice     *string  `json:"subservice"`
	EnquiryDetails *string  `json:"enquiryDetails"`
	Comments       *string  `json:"comments"`
	Amount         *float64 `json:"amount"`
}

// EnquiryQuery holds the listing query string
type EnquiryQuery struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	Service   string `form:"service"`
	VisitorID string `form:"visitorId"`
}
