package smartsales

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/angelmondragon/smartsales/pkg/enums"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
)

const (
	endpointCheckoutCreate = "sales.checkout_create"
	endpointCheckoutVerify = "sales.checkout_verify"
	endpointPurchases      = "sales.purchases"
	endpointPurchase       = "sales.purchase"
	endpointRefund         = "sales.refund"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CreateCheckout opens a payment session for the items and returns its redirect URL.
func (c *Client) CreateCheckout(ctx context.Context, items []CheckoutItem) (CheckoutSession, error) {
	raw, err := c.do(ctx, request{
		endpoint: endpointCheckoutCreate,
		method:   http.MethodPost,
		path:     "sales/checkout/create/",
		json:     map[string]any{"items": items},
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	session, err := decodeEnvelope[CheckoutSession](endpointCheckoutCreate, raw.body)
	if err != nil {
		return CheckoutSession{}, err
	}
	if session.SessionID == "" || session.URL == "" {
		return CheckoutSession{}, shapeError(endpointCheckoutCreate, fmt.Errorf("missing session_id or url"))
	}
	return session, nil
}

// VerifyCheckout looks up a checkout session. A body with ok=false is returned as a
// Verification, not an error, so callers can surface the backend reason.
func (c *Client) VerifyCheckout(ctx context.Context, sessionID string) (Verification, error) {
	sessionID = strings.TrimSpace(sessionID)
	if !sessionIDPattern.MatchString(sessionID) {
		return Verification{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid session identifier")
	}

	raw, err := c.do(ctx, request{
		endpoint: endpointCheckoutVerify,
		method:   http.MethodGet,
		path:     "sales/checkout/verify/" + url.PathEscape(sessionID) + "/",
	})
	if err != nil {
		return Verification{}, err
	}
	if !isJSONObject(raw.body) {
		return Verification{}, shapeError(endpointCheckoutVerify, fmt.Errorf("expected a JSON object"))
	}

	var out Verification
	if err := json.Unmarshal(raw.body, &out); err != nil {
		return Verification{}, shapeError(endpointCheckoutVerify, err)
	}
	if out.OK && out.Sale == nil {
		return Verification{}, shapeError(endpointCheckoutVerify, fmt.Errorf("missing nota_venta"))
	}
	return out, nil
}

// ListPurchases returns the caller's purchases, optionally filtered by status.
func (c *Client) ListPurchases(ctx context.Context, status enums.SaleStatus) (PurchaseHistory, error) {
	query := url.Values{}
	if status != "" {
		if !status.IsValid() {
			return PurchaseHistory{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
		}
		query.Set("estado", status.String())
	}

	raw, err := c.do(ctx, request{
		endpoint: endpointPurchases,
		method:   http.MethodGet,
		path:     "sales/mis-compras/",
		query:    query,
	})
	if err != nil {
		return PurchaseHistory{}, err
	}

	envelope, err := objectEnvelope(raw.body)
	if err != nil {
		return PurchaseHistory{}, shapeError(endpointPurchases, err)
	}
	if err := rejectNotOK(endpointPurchases, envelope); err != nil {
		return PurchaseHistory{}, err
	}
	if compras, ok := envelope["compras"]; !ok || !isJSONArray(compras) {
		return PurchaseHistory{}, shapeError(endpointPurchases, fmt.Errorf("missing compras array"))
	}

	var history PurchaseHistory
	if err := json.Unmarshal(raw.body, &history); err != nil {
		return PurchaseHistory{}, shapeError(endpointPurchases, err)
	}
	for _, sale := range history.Purchases {
		if !sale.Status.IsValid() {
			return PurchaseHistory{}, shapeError(endpointPurchases, fmt.Errorf("sale %d has unknown status %q", sale.ID, sale.Status))
		}
	}
	return history, nil
}

// GetPurchase returns one of the caller's purchases with its lines.
func (c *Client) GetPurchase(ctx context.Context, id int64) (Sale, error) {
	raw, err := c.do(ctx, request{
		endpoint: endpointPurchase,
		method:   http.MethodGet,
		path:     fmt.Sprintf("sales/mis-compras/%d/", id),
	})
	if err != nil {
		return Sale{}, err
	}

	sale, err := decodeOne[Sale](endpointPurchase, raw.body, "compra")
	if err != nil {
		return Sale{}, err
	}
	if !sale.Status.IsValid() {
		return Sale{}, shapeError(endpointPurchase, fmt.Errorf("sale %d has unknown status %q", sale.ID, sale.Status))
	}
	return sale, nil
}

// RequestRefund asks the backend to refund a paid purchase and returns its message.
func (c *Client) RequestRefund(ctx context.Context, id int64) (string, error) {
	raw, err := c.do(ctx, request{
		endpoint: endpointRefund,
		method:   http.MethodPost,
		path:     fmt.Sprintf("sales/reembolso/%d/", id),
	})
	if err != nil {
		return "", err
	}

	out, err := decodeEnvelope[struct {
		Message string `json:"message"`
	}](endpointRefund, raw.body)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}
