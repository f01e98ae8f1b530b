package enum

// Role is the dashboard role carried by an authenticated principal
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleSalesExecutive    Role = "sales-executive"
	RoleCustomerExecutive Role = "customer-executive"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSalesExecutive, RoleCustomerExecutive:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
