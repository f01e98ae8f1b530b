package request

// CreateVisitorRequest is a website form, a call logged by staff or an
// email lead
type CreateVisitorRequest struct {
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

// UpdateVisitorRequest carries only the fields being changed
type UpdateVisitorRequest struct {
	Name           *string  `json:"name"`
	Email          *string  `json:"email"`
	Phone          *string  `json:"phone"`
	Organization   *string  `json:"organization"`
	Region         *string  `json:"region"`
	Service        *string  `json:"service"`
	Subservice     *string  `json:"subservice"`
	EnquiryDetails *string  `json:"enquiryDetails"`
	Source         *string  `json:"source"`
	Comments       *string  `json:"comments"`
	Amount         *float64 `json:"amount"`
	Version        *int64   `json:"version"`
}

// AssignRequest fills one assignment slot. ID is a user id; Name alone
// records an assignee without an account.
type AssignRequest struct {
	Role    string `json:"role"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Reason  string `json:"reason"`
	Version *int64 `json:"version"`
}

// StatusRequest moves a record through the pipeline
type StatusRequest struct {
	Status  string `json:"status"`
	Notes   string `json:"notes"`
	Version *int64 `json:"version"`
}

// VisitorQuery holds the listing query string
type VisitorQuery struct {
	Search  string `form:"search"`
	Status  string `form:"status"`
	Source  string `form:"source"`
	Service string `form:"service"`
}
