package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/paisapp/paisa/internal/ledger"
	"github.com/paisapp/paisa/internal/money"
)

// Accounts is the account store: it owns atomic balance mutation on top
// of the durable repository.
//
// Every mutation of one account's balance is serialized by that account's
// lock; mutations on distinct accounts proceed concurrently. Two-account
// operations (Settle) take both locks in id order, so concurrent
// settlements over overlapping account pairs cannot deadlock.
type Accounts struct {
	store ledger.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAccounts creates an account store over the given repository.
func NewAccounts(store ledger.Store) *Accounts {
	return &Accounts{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing mutations of one account.
// Locks are created on first use and retained for the process lifetime;
// accounts are provisioned once and never deleted.
func (a *Accounts) lockFor(id string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.locks[id]
	if !ok {
		l = &sync.Mutex{}
		a.locks[id] = l
	}
	return l
}

// lockPair acquires both account locks in id order and returns the
// unlock function. Deterministic ordering is the deadlock guard.
func (a *Accounts) lockPair(first, second string) func() {
	lo, hi := first, second
	if hi < lo {
		lo, hi = hi, lo
	}
	l1, l2 := a.lockFor(lo), a.lockFor(hi)
	l1.Lock()
	l2.Lock()
	return func() {
		l2.Unlock()
		l1.Unlock()
	}
}

// GetBalance returns the primary and emergency balances of an account.
func (a *Accounts) GetBalance(ctx context.Context, id string) (primary, emergency money.Amount, err error) {
	acc, err := a.store.LoadAccount(ctx, id)
	if err != nil {
		return money.Zero(), money.Zero(), err
	}
	return acc.Primary, acc.Emergency, nil
}

// Adjust atomically applies delta (positive or negative) to the primary
// balance and returns the new value. Fails with InsufficientFunds if the
// result would go negative; the emergency reserve is never consulted.
func (a *Accounts) Adjust(ctx context.Context, id string, delta money.Amount) (money.Amount, error) {
	l := a.lockFor(id)
	l.Lock()
	defer l.Unlock()

	return a.adjustLocked(ctx, id, delta)
}

// adjustLocked applies delta with the account lock already held.
func (a *Accounts) adjustLocked(ctx context.Context, id string, delta money.Amount) (money.Amount, error) {
	acc, err := a.store.LoadAccount(ctx, id)
	if err != nil {
		return money.Zero(), err
	}

	next := acc.Primary.Add(delta)
	if next.IsNegative() {
		return money.Zero(), ledger.InsufficientFundsf(
			"account %s: balance %s cannot cover %s", id, acc.Primary, delta.Neg())
	}

	acc.Primary = next
	if err := a.store.SaveAccount(ctx, acc); err != nil {
		return money.Zero(), err
	}
	return next, nil
}

// DrawEmergency moves amount from the emergency reserve into the primary
// balance. This is the only operation that touches the reserve; ordinary
// transfers never do.
func (a *Accounts) DrawEmergency(ctx context.Context, id string, amount money.Amount) (ledger.Account, error) {
	if !amount.IsPositive() {
		return ledger.Account{}, ledger.InvalidRequestf("emergency draw amount must be positive, got %s", amount)
	}

	l := a.lockFor(id)
	l.Lock()
	defer l.Unlock()

	acc, err := a.store.LoadAccount(ctx, id)
	if err != nil {
		return ledger.Account{}, err
	}

	if acc.Emergency.LessThan(amount) {
		return ledger.Account{}, ledger.InsufficientFundsf(
			"account %s: emergency reserve %s cannot cover %s", id, acc.Emergency, amount)
	}

	acc.Emergency = acc.Emergency.Sub(amount)
	acc.Primary = acc.Primary.Add(amount)
	if err := a.store.SaveAccount(ctx, acc); err != nil {
		return ledger.Account{}, err
	}
	return acc, nil
}

// Settle applies a transfer as one logical operation: debit the sender,
// credit the receiver, and compensate by reversing the debit if the
// credit cannot be written.
//
// Outcomes:
//   - nil: both balances updated.
//   - InsufficientFunds: nothing written; the credit was never attempted.
//   - StoreUnavailable: nothing committed irrecoverably; safe to retry.
//   - Consistency: the debit was applied, the credit failed, and the
//     reversal also failed. Escalated and logged for manual audit.
//
// Both account locks are held for the duration, so a concurrent Adjust
// cannot interleave between the debit and the credit.
func (a *Accounts) Settle(ctx context.Context, senderID, receiverID string, amount money.Amount) error {
	unlock := a.lockPair(senderID, receiverID)
	defer unlock()

	sender, err := a.store.LoadAccount(ctx, senderID)
	if err != nil {
		return err
	}
	receiver, err := a.store.LoadAccount(ctx, receiverID)
	if err != nil {
		return err
	}

	if sender.Primary.LessThan(amount) {
		return ledger.InsufficientFundsf(
			"account %s: balance %s cannot cover %s", senderID, sender.Primary, amount)
	}

	debited := sender
	debited.Primary = sender.Primary.Sub(amount)
	if err := a.store.SaveAccount(ctx, debited); err != nil {
		// Debit never landed; nothing to compensate.
		return err
	}

	credited := receiver
	credited.Primary = receiver.Primary.Add(amount)
	if err := a.store.SaveAccount(ctx, credited); err != nil {
		// The debit is on disk without its credit. Reverse it before
		// reporting failure so no money vanishes.
		if revErr := a.store.SaveAccount(ctx, sender); revErr != nil {
			slog.Error("compensation failed: account debited without credit or reversal",
				"sender", senderID,
				"receiver", receiverID,
				"amount", amount.String(),
				"credit_error", err,
				"reversal_error", revErr,
			)
			return ledger.Consistencyf(revErr,
				"account %s debited %s without matching credit; reversal failed", senderID, amount)
		}
		return err
	}

	return nil
}
