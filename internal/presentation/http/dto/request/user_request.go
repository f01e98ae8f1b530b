package request

// CreateUserRequest represents a staff account creation request
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Region   string `json:"region"`
}

// UpdateUserRequest carries only the fields being changed
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Region   *string `json:"region"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}

// ExecutiveServicesRequest replaces a customer executive's service coverage
type ExecutiveServicesRequest struct {
	Services []string `json:"services"`
}
