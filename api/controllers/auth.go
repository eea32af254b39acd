package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/smartsales/api/middleware"
	"github.com/angelmondragon/smartsales/api/responses"
	"github.com/angelmondragon/smartsales/api/validators"
	"github.com/angelmondragon/smartsales/internal/auth"
	pkgAuth "github.com/angelmondragon/smartsales/pkg/auth"
	"github.com/angelmondragon/smartsales/pkg/config"
	"github.com/angelmondragon/smartsales/pkg/enums"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/logger"
)

// AuthLogin exchanges backend credentials for a gateway access token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// AuthLogout revokes the session behind the presented token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}
		if err := svc.Logout(r.Context(), middleware.AccessIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

type sessionResponse struct {
	UserID   string     `json:"user_id"`
	Role     enums.Role `json:"rol"`
	HomePath string     `json:"home_path"`
}

// AuthSession describes the authenticated caller.
func AuthSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := middleware.RoleFromContext(r.Context())
		responses.WriteSuccess(w, sessionResponse{
			UserID:   middleware.UserIDFromContext(r.Context()),
			Role:     role,
			HomePath: role.HomePath(),
		})
	}
}

// RoleRedirect sends admins to the admin area and everyone else, including
// anonymous visitors, to the storefront.
func RoleRedirect(cfg config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := enums.RoleCustomer
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			if claims, err := pkgAuth.ParseAccessToken(cfg, strings.TrimSpace(raw[7:])); err == nil {
				role = claims.Role
			}
		}
		http.Redirect(w, r, role.HomePath(), http.StatusFound)
	}
}
