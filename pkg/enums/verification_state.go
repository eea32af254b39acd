package enums

// VerificationState is the state of a payment verification run.
type VerificationState string

const (
	VerificationStateVerifying VerificationState = "verifying"
	VerificationStateSuccess   VerificationState = "success"
	VerificationStateFailure   VerificationState = "failure"
)

// String implements fmt.Stringer.
func (v VerificationState) String() string {
	return string(v)
}

// IsTerminal reports whether no further transition is allowed.
func (v VerificationState) IsTerminal() bool {
	return v == VerificationStateSuccess || v == VerificationStateFailure
}
