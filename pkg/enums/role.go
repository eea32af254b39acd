package enums

import "fmt"

// Role decides which area of the application a visitor is routed to.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "cliente"
)

var validRoles = []Role{
	RoleAdmin,
	RoleCustomer,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// HomePath is the landing view for the role.
func (r Role) HomePath() string {
	if r == RoleAdmin {
		return "/admin/productos"
	}
	return "/tienda/catalogo"
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
