package enums

import "fmt"

// UserType discriminates the flattened user records.
type UserType string

const (
	UserTypeCustomer UserType = "cliente"
	UserTypeAdmin    UserType = "admin"
)

var validUserTypes = []UserType{
	UserTypeCustomer,
	UserTypeAdmin,
}

// String implements fmt.Stringer.
func (u UserType) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserType.
func (u UserType) IsValid() bool {
	for _, candidate := range validUserTypes {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserType converts raw input into a UserType.
func ParseUserType(value string) (UserType, error) {
	for _, candidate := range validUserTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user type %q", value)
}
