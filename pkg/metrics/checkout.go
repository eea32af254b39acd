package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics counts checkout initiations and verification outcomes.
type CheckoutMetrics struct {
	created  *prometheus.CounterVec
	verified *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Checkout initiations by outcome.",
	}, []string{"outcome"})
	verified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verifications_total",
		Help: "Payment verifications by terminal state.",
	}, []string{"state"})
	reg.MustRegister(created, verified)
	return &CheckoutMetrics{created: created, verified: verified}
}

// IncCheckout counts one checkout attempt.
func (c *CheckoutMetrics) IncCheckout(outcome string) {
	if c == nil || c.created == nil {
		return
	}
	c.created.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncVerification counts one verification that reached a terminal state.
func (c *CheckoutMetrics) IncVerification(state string) {
	if c == nil || c.verified == nil {
		return
	}
	c.verified.WithLabelValues(normalizeLabel(state)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
