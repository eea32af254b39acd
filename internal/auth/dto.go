package auth

import "github.com/angelmondragon/smartsales/pkg/enums"

// LoginRequest captures the credentials forwarded to the backend.
type LoginRequest struct {
	Email    string `json:"correo" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionUser describes the authenticated account.
type SessionUser struct {
	ID    int64      `json:"id"`
	Email string     `json:"correo"`
	Name  string     `json:"nombre,omitempty"`
	Role  enums.Role `json:"rol"`
}

// LoginResponse carries the gateway token and where the UI should land.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   int64       `json:"expires_at"`
	HomePath    string      `json:"home_path"`
	User        SessionUser `json:"user"`
}
