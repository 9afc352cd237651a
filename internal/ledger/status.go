package ledger

// Status is the lifecycle state of a transaction.
type Status string

const (
	// StatusPending is the initial state of every submitted transaction.
	StatusPending Status = "pending"

	// StatusCompleted means the debit and credit have both been applied.
	StatusCompleted Status = "completed"

	// StatusPendingSync means the transaction was accepted while offline
	// (or over the proximity channel) and awaits reconciliation.
	StatusPendingSync Status = "pending_sync"

	// StatusFailed means the transaction was terminally rejected. Failed
	// transactions are retained for audit.
	StatusFailed Status = "failed"
)

// ValidStatus reports whether s is a known status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusPendingSync, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether the edge from -> to is a legal lifecycle
// transition. Self-transitions are not legal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusCompleted || to == StatusPendingSync || to == StatusFailed
	case StatusPendingSync:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}
