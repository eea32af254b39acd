package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/smartsales/pkg/auth"
	"github.com/angelmondragon/smartsales/pkg/config"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/logger"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type authBackend interface {
	Login(ctx context.Context, email, password string) (smartsales.LoginResult, error)
}

type sessionManager interface {
	Create(ctx context.Context, backendToken string) (string, error)
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	backend  authBackend
	sessions sessionManager
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Backend        authBackend
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("auth backend is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		backend:  params.Backend,
		sessions: params.SessionManager,
		jwtCfg:   params.JWTConfig,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Login authenticates against the backend, parks the backend token in a
// server-side session and returns a gateway JWT whose jti is the session id.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	result, err := s.backend.Login(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	accessID, err := s.sessions.Create(ctx, result.Token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	now := s.now()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: result.UserID,
		Email:  result.Email,
		Role:   result.Role,
		JTI:    accessID,
	})
	if err != nil {
		if revokeErr := s.sessions.Revoke(ctx, accessID); revokeErr != nil {
			s.logg.Error(ctx, "failed to revoke orphaned session", revokeErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	user := SessionUser{
		ID:    result.UserID,
		Email: result.Email,
		Role:  result.Role,
	}
	if result.Admin != nil {
		user.Name = result.Admin.Name
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"user_id": result.UserID,
		"role":    result.Role.String(),
	}), "login succeeded")

	return &LoginResponse{
		AccessToken: token,
		ExpiresAt:   now.Add(s.jwtCfg.SessionTTL()).Unix(),
		HomePath:    result.Role.HomePath(),
		User:        user,
	}, nil
}

// Logout revokes the server-side session; the backend token dies with it.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}
