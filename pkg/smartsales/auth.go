package smartsales

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/angelmondragon/smartsales/pkg/enums"
)

const endpointLogin = "auth.login"

type loginEnvelope struct {
	User *struct {
		ID    int64         `json:"id"`
		Email string        `json:"correo"`
		Token string        `json:"token"`
		Role  string        `json:"rol"`
		Admin *AdminProfile `json:"administrador"`
	} `json:"usuario"`
}

// Login exchanges credentials for a backend bearer token. Accounts with an
// administrator profile get the admin role; everyone else is a customer.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	raw, err := c.do(WithToken(ctx, ""), request{
		endpoint: endpointLogin,
		method:   http.MethodPost,
		path:     "users/auth",
		json:     map[string]string{"correo": email, "password": password},
		public:   true,
	})
	if err != nil {
		return LoginResult{}, err
	}

	envelope, err := decodeEnvelope[loginEnvelope](endpointLogin, raw.body)
	if err != nil {
		return LoginResult{}, err
	}
	if envelope.User == nil || strings.TrimSpace(envelope.User.Token) == "" {
		return LoginResult{}, shapeError(endpointLogin, fmt.Errorf("missing usuario.token"))
	}

	role := enums.RoleCustomer
	if envelope.User.Admin != nil {
		role = enums.RoleAdmin
	}
	return LoginResult{
		UserID:  envelope.User.ID,
		Email:   envelope.User.Email,
		Token:   envelope.User.Token,
		Role:    role,
		RawRole: envelope.User.Role,
		Admin:   envelope.User.Admin,
	}, nil
}
