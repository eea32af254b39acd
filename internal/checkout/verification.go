package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/smartsales/pkg/enums"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

const (
	ReasonMissingSession = "missing session identifier"
	ReasonGeneric        = "could not verify payment"
)

// Verification is one run of the payment verification state machine:
// verifying -> success | failure. Terminal states are final.
type Verification struct {
	SessionID string                  `json:"session_id,omitempty"`
	State     enums.VerificationState `json:"state"`
	Reason    string                  `json:"reason,omitempty"`
	SaleID    int64                   `json:"sale_id,omitempty"`
	Status    enums.SaleStatus        `json:"status,omitempty"`
	Total     decimal.Decimal         `json:"total"`

	// CartCleared is false when the payment succeeded but clearing the cart failed.
	CartCleared bool `json:"cart_cleared"`
}

func newVerification(sessionID string) *Verification {
	return &Verification{
		SessionID: sessionID,
		State:     enums.VerificationStateVerifying,
		Total:     decimal.Zero,
	}
}

func (v *Verification) succeed(sale smartsales.SaleSummary) bool {
	if v.State.IsTerminal() {
		return false
	}
	v.State = enums.VerificationStateSuccess
	v.SaleID = sale.ID
	v.Status = sale.Status
	v.Total = sale.Total.Decimal
	return true
}

func (v *Verification) fail(reason string) bool {
	if v.State.IsTerminal() {
		return false
	}
	v.State = enums.VerificationStateFailure
	v.Reason = reason
	return true
}

func statusReason(status enums.SaleStatus) string {
	return fmt.Sprintf("payment status: %s", status)
}
