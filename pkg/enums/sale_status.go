package enums

import "fmt"

// SaleStatus tracks the payment lifecycle of a sale record (nota de venta).
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pendiente"
	SaleStatusPaid      SaleStatus = "pagada"
	SaleStatusFailed    SaleStatus = "fallida"
	SaleStatusCancelled SaleStatus = "cancelada"
	SaleStatusRefunded  SaleStatus = "reembolsada"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusPending,
	SaleStatusPaid,
	SaleStatusFailed,
	SaleStatusCancelled,
	SaleStatusRefunded,
}

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSaleStatus converts raw input into a SaleStatus.
func ParseSaleStatus(value string) (SaleStatus, error) {
	for _, candidate := range validSaleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}
