package users

import (
	"context"
	"fmt"

	"github.com/angelmondragon/smartsales/pkg/enums"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/logger"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

type usersBackend interface {
	ListClients(ctx context.Context) ([]smartsales.User, error)
	GetClient(ctx context.Context, id int64) (smartsales.User, error)
	CreateClient(ctx context.Context, in smartsales.ClientInput) (smartsales.User, error)
	UpdateClient(ctx context.Context, id int64, in smartsales.ClientInput) (smartsales.User, error)
	DeleteClient(ctx context.Context, id int64) error
	ListAdmins(ctx context.Context) ([]smartsales.User, error)
	GetAdmin(ctx context.Context, id int64) (smartsales.User, error)
	CreateAdmin(ctx context.Context, in smartsales.AdminInput) (smartsales.User, error)
	UpdateAdmin(ctx context.Context, id int64, in smartsales.AdminInput) (smartsales.User, error)
	DeleteAdmin(ctx context.Context, id int64) error
}

// Service administers client and admin accounts.
type Service interface {
	List(ctx context.Context, kind enums.UserType) ([]smartsales.User, error)
	Get(ctx context.Context, kind enums.UserType, id int64) (smartsales.User, error)
	CreateClient(ctx context.Context, in smartsales.ClientInput) (smartsales.User, error)
	UpdateClient(ctx context.Context, id int64, in smartsales.ClientInput) (smartsales.User, error)
	CreateAdmin(ctx context.Context, in smartsales.AdminInput) (smartsales.User, error)
	UpdateAdmin(ctx context.Context, id int64, in smartsales.AdminInput) (smartsales.User, error)
	Delete(ctx context.Context, kind enums.UserType, id int64) error
}

type service struct {
	backend usersBackend
	logg    *logger.Logger
}

// NewService constructs the user administration service.
func NewService(backend usersBackend, logg *logger.Logger) (Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("users backend required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{backend: backend, logg: logg}, nil
}

// List returns one kind of account, or clients followed by admins when kind is empty.
func (s *service) List(ctx context.Context, kind enums.UserType) ([]smartsales.User, error) {
	switch kind {
	case enums.UserTypeCustomer:
		return nonNil(s.backend.ListClients(ctx))
	case enums.UserTypeAdmin:
		return nonNil(s.backend.ListAdmins(ctx))
	case "":
	default:
		return nil, invalidKind(kind)
	}

	clients, err := s.backend.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	admins, err := s.backend.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]smartsales.User, 0, len(clients)+len(admins))
	all = append(all, clients...)
	all = append(all, admins...)
	return all, nil
}

func (s *service) Get(ctx context.Context, kind enums.UserType, id int64) (smartsales.User, error) {
	if id <= 0 {
		return smartsales.User{}, invalidID()
	}
	switch kind {
	case enums.UserTypeCustomer:
		return s.backend.GetClient(ctx, id)
	case enums.UserTypeAdmin:
		return s.backend.GetAdmin(ctx, id)
	}
	return smartsales.User{}, invalidKind(kind)
}

func (s *service) CreateClient(ctx context.Context, in smartsales.ClientInput) (smartsales.User, error) {
	if in.Password == "" {
		return smartsales.User{}, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	user, err := s.backend.CreateClient(ctx, in)
	if err != nil {
		return smartsales.User{}, err
	}
	s.logg.Info(s.logg.WithField(ctx, "account_id", user.ID), "client created")
	return user, nil
}

func (s *service) UpdateClient(ctx context.Context, id int64, in smartsales.ClientInput) (smartsales.User, error) {
	if id <= 0 {
		return smartsales.User{}, invalidID()
	}
	return s.backend.UpdateClient(ctx, id, in)
}

func (s *service) CreateAdmin(ctx context.Context, in smartsales.AdminInput) (smartsales.User, error) {
	if in.Password == "" {
		return smartsales.User{}, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	user, err := s.backend.CreateAdmin(ctx, in)
	if err != nil {
		return smartsales.User{}, err
	}
	s.logg.Info(s.logg.WithField(ctx, "account_id", user.ID), "admin created")
	return user, nil
}

func (s *service) UpdateAdmin(ctx context.Context, id int64, in smartsales.AdminInput) (smartsales.User, error) {
	if id <= 0 {
		return smartsales.User{}, invalidID()
	}
	return s.backend.UpdateAdmin(ctx, id, in)
}

func (s *service) Delete(ctx context.Context, kind enums.UserType, id int64) error {
	if id <= 0 {
		return invalidID()
	}
	var err error
	switch kind {
	case enums.UserTypeCustomer:
		err = s.backend.DeleteClient(ctx, id)
	case enums.UserTypeAdmin:
		err = s.backend.DeleteAdmin(ctx, id)
	default:
		return invalidKind(kind)
	}
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"account_id": id, "kind": kind.String()}), "account deleted")
	return nil
}

func nonNil(users []smartsales.User, err error) ([]smartsales.User, error) {
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []smartsales.User{}
	}
	return users, nil
}

func invalidID() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid user id")
}

func invalidKind(kind enums.UserType) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown user type %q", kind))
}
