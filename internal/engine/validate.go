package engine

import "github.com/paisapp/paisa/internal/ledger"

// validateSubmit rejects malformed submissions before anything is
// recorded. Account existence is checked separately against the store.
func validateSubmit(p SubmitParams) error {
	if !p.Amount.IsPositive() {
		return ledger.InvalidRequestf("amount must be positive, got %s", p.Amount)
	}
	if p.SenderID == "" || p.ReceiverID == "" {
		return ledger.InvalidRequestf("sender and receiver are required")
	}
	if p.SenderID == p.ReceiverID {
		return ledger.InvalidRequestf("sender and receiver must differ")
	}
	if !ledger.ValidChannel(p.Channel) {
		return ledger.InvalidRequestf("unknown channel %q", p.Channel)
	}
	return nil
}
