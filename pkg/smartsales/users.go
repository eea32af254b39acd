package smartsales

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/smartsales/pkg/enums"
	"github.com/angelmondragon/smartsales/pkg/types"
)

const defaultAdminName = "Administrador"

var (
	clientsResource = resource{name: "clients", path: "users/clientes", listKey: "clientes", itemKey: "cliente"}
	adminsResource  = resource{name: "admins", path: "users/admins", listKey: "admins", itemKey: "admin"}
)

type nestedAccount struct {
	ID        int64           `json:"id"`
	Email     string          `json:"correo"`
	CreatedAt types.Timestamp `json:"created_at"`
	UpdatedAt types.Timestamp `json:"updated_at"`
}

// userRecord is the wire shape: {usuario: {...}, ...profile}, or the flat variant.
type userRecord struct {
	ID              int64           `json:"id"`
	AccountID       int64           `json:"usuario_id"`
	Email           string          `json:"correo"`
	Account         *nestedAccount  `json:"usuario"`
	Names           string          `json:"nombres"`
	PaternalSurname string          `json:"apellidoPaterno"`
	MaternalSurname string          `json:"apellidoMaterno"`
	CI              string          `json:"ci"`
	Phone           string          `json:"telefono"`
	Name            string          `json:"nombre"`
	CreatedAt       types.Timestamp `json:"created_at"`
	UpdatedAt       types.Timestamp `json:"updated_at"`
}

func (r userRecord) flatten(kind enums.UserType) User {
	user := User{
		ID:        r.ID,
		Type:      kind,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.AccountID != 0 {
		user.ID = r.AccountID
	}
	if r.Account != nil {
		if r.Account.ID != 0 {
			user.ID = r.Account.ID
		}
		if r.Account.Email != "" {
			user.Email = r.Account.Email
		}
		if !r.Account.CreatedAt.IsZero() {
			user.CreatedAt = r.Account.CreatedAt
		}
		if !r.Account.UpdatedAt.IsZero() {
			user.UpdatedAt = r.Account.UpdatedAt
		}
	}

	switch kind {
	case enums.UserTypeAdmin:
		user.Name = r.Name
		user.FullName = r.Name
		if strings.TrimSpace(user.FullName) == "" {
			user.FullName = defaultAdminName
		}
	default:
		user.Names = r.Names
		user.PaternalSurname = r.PaternalSurname
		user.MaternalSurname = r.MaternalSurname
		user.CI = r.CI
		user.Phone = r.Phone
		user.FullName = strings.Join(strings.Fields(strings.Join([]string{r.Names, r.PaternalSurname, r.MaternalSurname}, " ")), " ")
	}
	return user
}

func flattenAll(records []userRecord, kind enums.UserType) []User {
	users := make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, record.flatten(kind))
	}
	return users
}

// ClientInput is the payload for creating or updating a client account.
type ClientInput struct {
	Email           string `json:"correo"`
	Password        string `json:"password,omitempty"`
	Names           string `json:"nombres"`
	PaternalSurname string `json:"apellidoPaterno"`
	MaternalSurname string `json:"apellidoMaterno"`
	CI              string `json:"ci"`
	Phone           string `json:"telefono,omitempty"`
}

// AdminInput is the payload for creating or updating an admin account.
type AdminInput struct {
	Email    string `json:"correo"`
	Password string `json:"password,omitempty"`
	Name     string `json:"nombre,omitempty"`
}

func (c *Client) listUsers(ctx context.Context, r resource, kind enums.UserType) ([]User, error) {
	records, err := listResource[userRecord](ctx, c, r, false)
	if err != nil {
		return nil, err
	}
	return flattenAll(records, kind), nil
}

func (c *Client) getUser(ctx context.Context, r resource, kind enums.UserType, id int64) (User, error) {
	record, err := getResource[userRecord](ctx, c, r, id, false)
	if err != nil {
		return User{}, err
	}
	return record.flatten(kind), nil
}

func (c *Client) writeUser(ctx context.Context, r resource, kind enums.UserType, op, method, path string, body any) (User, error) {
	record, err := writeResource[userRecord](ctx, c, r, op, method, path, body, nil)
	if err != nil {
		return User{}, err
	}
	return record.flatten(kind), nil
}

func (c *Client) ListClients(ctx context.Context) ([]User, error) {
	return c.listUsers(ctx, clientsResource, enums.UserTypeCustomer)
}

func (c *Client) GetClient(ctx context.Context, id int64) (User, error) {
	return c.getUser(ctx, clientsResource, enums.UserTypeCustomer, id)
}

func (c *Client) CreateClient(ctx context.Context, in ClientInput) (User, error) {
	return c.writeUser(ctx, clientsResource, enums.UserTypeCustomer, "create", http.MethodPost, clientsResource.path+"/register", in)
}

func (c *Client) UpdateClient(ctx context.Context, id int64, in ClientInput) (User, error) {
	return c.writeUser(ctx, clientsResource, enums.UserTypeCustomer, "update", http.MethodPut, clientsResource.itemPath(id, "update"), in)
}

func (c *Client) DeleteClient(ctx context.Context, id int64) error {
	return deleteResource(ctx, c, clientsResource, id)
}

func (c *Client) ListAdmins(ctx context.Context) ([]User, error) {
	return c.listUsers(ctx, adminsResource, enums.UserTypeAdmin)
}

func (c *Client) GetAdmin(ctx context.Context, id int64) (User, error) {
	return c.getUser(ctx, adminsResource, enums.UserTypeAdmin, id)
}

func (c *Client) CreateAdmin(ctx context.Context, in AdminInput) (User, error) {
	return c.writeUser(ctx, adminsResource, enums.UserTypeAdmin, "create", http.MethodPost, adminsResource.path+"/register", in)
}

func (c *Client) UpdateAdmin(ctx context.Context, id int64, in AdminInput) (User, error) {
	return c.writeUser(ctx, adminsResource, enums.UserTypeAdmin, "update", http.MethodPut, adminsResource.itemPath(id, "update"), in)
}

func (c *Client) DeleteAdmin(ctx context.Context, id int64) error {
	return deleteResource(ctx, c, adminsResource, id)
}
