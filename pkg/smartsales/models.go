package smartsales

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelmondragon/smartsales/pkg/enums"
	"github.com/angelmondragon/smartsales/pkg/types"
)

// Category is a product category.
type Category struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion,omitempty"`
	CreatedAt   types.Timestamp `json:"created_at"`
	UpdatedAt   types.Timestamp `json:"updated_at"`
}

// Brand is a product brand.
type Brand struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion,omitempty"`
	CreatedAt   types.Timestamp `json:"created_at"`
	UpdatedAt   types.Timestamp `json:"updated_at"`
}

// Warranty covers products of a brand for a number of months.
type Warranty struct {
	ID          int64           `json:"id"`
	Coverage    int             `json:"cobertura"`
	Description string          `json:"descripcion,omitempty"`
	Brand       *Brand          `json:"marca,omitempty"`
	CreatedAt   types.Timestamp `json:"created_at"`
	UpdatedAt   types.Timestamp `json:"updated_at"`
}

// Product is a sellable catalog item. Price is parsed once from string or number.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Price       types.Money     `json:"precio"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imagen_url,omitempty"`
	Category    *Category       `json:"categoria,omitempty"`
	Brand       *Brand          `json:"marca,omitempty"`
	Warranty    *Warranty       `json:"garantia,omitempty"`
	CreatedAt   types.Timestamp `json:"created_at"`
	UpdatedAt   types.Timestamp `json:"updated_at"`
}

// CheckoutItem is one (product, quantity) pair of a checkout snapshot.
type CheckoutItem struct {
	ProductID int64 `json:"producto_id"`
	Quantity  int   `json:"cantidad"`
}

// CheckoutSession is the payment gateway session created for a cart snapshot.
type CheckoutSession struct {
	SessionID string      `json:"session_id"`
	URL       string      `json:"url"`
	SaleID    int64       `json:"nota_venta_id"`
	Total     types.Money `json:"total"`
}

// PaymentSession is the gateway's view of a checkout session.
type PaymentSession struct {
	ID            string      `json:"id"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	AmountTotal   types.Money `json:"amount_total"`
}

// SaleSummary is the sale record attached to a verification.
type SaleSummary struct {
	ID     int64            `json:"id"`
	Status enums.SaleStatus `json:"estado"`
	Total  types.Money      `json:"total"`
}

// Verification is the backend answer for a checkout session lookup.
type Verification struct {
	OK      bool            `json:"ok"`
	Session *PaymentSession `json:"session,omitempty"`
	Sale    *SaleSummary    `json:"nota_venta,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// PaymentMethod arrives either as a bare name or as {nombre, descripcion}.
type PaymentMethod struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PaymentMethod) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "" || trimmed == "null":
		*p = PaymentMethod{}
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*p = PaymentMethod{Name: name}
		return nil
	case strings.HasPrefix(trimmed, "{"):
		type plain PaymentMethod
		var out plain
		if err := json.Unmarshal(data, &out); err != nil {
			return err
		}
		*p = PaymentMethod(out)
		return nil
	}
	return fmt.Errorf("unsupported payment method %s", trimmed)
}

// SaleProduct is the product snapshot stored on a sale line.
type SaleProduct struct {
	ID          int64         `json:"id"`
	Name        string        `json:"nombre"`
	Description string        `json:"descripcion,omitempty"`
	ImageURL    string        `json:"imagen_url,omitempty"`
	Category    string        `json:"categoria,omitempty"`
	Brand       string        `json:"marca,omitempty"`
	Warranty    *SaleWarranty `json:"garantia,omitempty"`
}

// SaleWarranty is the warranty coverage copied onto a sale line.
type SaleWarranty struct {
	Coverage int `json:"cobertura"`
}

// SaleLine is one line of a sale record.
type SaleLine struct {
	Product   SaleProduct `json:"producto"`
	Quantity  int         `json:"cantidad"`
	UnitPrice types.Money `json:"precio_unitario"`
	Subtotal  types.Money `json:"subtotal"`
}

// Buyer identifies who placed a sale.
type Buyer struct {
	Email string `json:"email"`
}

// Sale is the backend's durable order record (nota de venta).
type Sale struct {
	ID            int64            `json:"id"`
	Total         types.Money      `json:"total"`
	Status        enums.SaleStatus `json:"estado"`
	PaymentMethod PaymentMethod    `json:"metodo_pago"`
	CreatedAt     types.Timestamp  `json:"created_at"`
	UpdatedAt     types.Timestamp  `json:"updated_at"`
	Buyer         *Buyer           `json:"usuario,omitempty"`
	Lines         []SaleLine       `json:"detalles"`
}

// PurchaseStats aggregates a visitor's purchases.
type PurchaseStats struct {
	TotalOrders int         `json:"total_compras"`
	Paid        int         `json:"compras_pagadas"`
	Pending     int         `json:"compras_pendientes"`
	TotalSpent  types.Money `json:"total_gastado"`
}

// PurchaseHistory is the visitor's sale list plus aggregate counters.
type PurchaseHistory struct {
	Purchases []Sale        `json:"compras"`
	Stats     PurchaseStats `json:"estadisticas"`
}

// LoginResult is the authenticated backend user and its bearer token.
type LoginResult struct {
	UserID  int64
	Email   string
	Token   string
	Role    enums.Role
	RawRole string
	Admin   *AdminProfile
}

// AdminProfile is present on logins of administrator accounts.
type AdminProfile struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// User is the flattened client or admin record.
type User struct {
	ID              int64           `json:"id"`
	Type            enums.UserType  `json:"tipo"`
	Email           string          `json:"correo"`
	FullName        string          `json:"nombre_completo"`
	Names           string          `json:"nombres,omitempty"`
	PaternalSurname string          `json:"apellido_paterno,omitempty"`
	MaternalSurname string          `json:"apellido_materno,omitempty"`
	CI              string          `json:"ci,omitempty"`
	Phone           string          `json:"telefono,omitempty"`
	Name            string          `json:"nombre,omitempty"`
	CreatedAt       types.Timestamp `json:"created_at"`
	UpdatedAt       types.Timestamp `json:"updated_at"`
}
