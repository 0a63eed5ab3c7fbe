package checkout

// Status is the checkout form's lifecycle state.
type Status string

const (
	StatusCollecting  Status = "COLLECTING"
	StatusValidating  Status = "VALIDATING"
	StatusSubmitting  Status = "SUBMITTING"
	StatusRedirecting Status = "REDIRECTING"
	StatusFailed      Status = "FAILED"
)

// CanTransitionTo reports whether moving from current to next is legal.
// FAILED is recoverable: editing a field returns to COLLECTING and a
// resubmit re-enters VALIDATING. REDIRECTING is terminal.
func CanTransitionTo(current, next Status) bool {
	switch current {
	case StatusCollecting:
		return next == StatusValidating
	case StatusValidating:
		return next == StatusSubmitting || next == StatusFailed
	case StatusSubmitting:
		return next == StatusRedirecting || next == StatusFailed
	case StatusFailed:
		return next == StatusCollecting || next == StatusValidating
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusRedirecting
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}
