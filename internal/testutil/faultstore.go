package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/paisapp/paisa/internal/ledger"
)

// Op names a ledger.Store operation for fault injection.
type Op string

const (
	OpLoadAccount        Op = "LoadAccount"
	OpSaveAccount        Op = "SaveAccount"
	OpLoadTransaction    Op = "LoadTransaction"
	OpUpdateStatus       Op = "UpdateTransactionStatus"
	OpSavePendingEntry   Op = "SavePendingEntry"
	OpUpdatePendingEntry Op = "UpdatePendingEntry"
	OpDeletePendingEntry Op = "DeletePendingEntry"
	OpSaveMode           Op = "SaveMode"
)

// FaultStore wraps a real ledger.Store and injects transient
// StoreUnavailable failures on selected operations. Used to exercise the
// engine's retry, compensation, and attempt-budget paths against an
// otherwise honest store.
//
// Faults are counted down: FailNext(op, n) makes the next n calls of op
// fail, after which the store behaves normally again. FailAfter lets a
// number of calls through first, which is how tests break the second
// write of a two-write sequence. A fault can also be conditioned on an
// argument (account id, transaction id) via FailNextMatching.
type FaultStore struct {
	ledger.Store

	mu     sync.Mutex
	faults map[Op]*fault
	calls  map[Op]int
}

type fault struct {
	skip      int    // calls to let through before failing
	remaining int
	match     string // empty matches every call
}

// NewFaultStore wraps inner with no faults armed.
func NewFaultStore(inner ledger.Store) *FaultStore {
	return &FaultStore{
		Store:  inner,
		faults: make(map[Op]*fault),
		calls:  make(map[Op]int),
	}
}

// FailNext arms op to fail its next n calls with StoreUnavailable.
func (f *FaultStore) FailNext(op Op, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[op] = &fault{remaining: n}
}

// FailAfter arms op to let skip calls through and then fail the next n.
func (f *FaultStore) FailAfter(op Op, skip, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[op] = &fault{skip: skip, remaining: n}
}

// FailNextMatching arms op to fail its next n calls whose key argument
// (account id, transaction id) equals match.
func (f *FaultStore) FailNextMatching(op Op, match string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[op] = &fault{remaining: n, match: match}
}

// Calls returns how many times op was invoked (faulted or not).
func (f *FaultStore) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// trip records the call and reports whether it should fail.
func (f *FaultStore) trip(op Op, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++

	fl, ok := f.faults[op]
	if !ok || fl.remaining <= 0 {
		return nil
	}
	if fl.match != "" && fl.match != key {
		return nil
	}
	if fl.skip > 0 {
		fl.skip--
		return nil
	}
	fl.remaining--
	return ledger.StoreUnavailable(string(op), errors.New("injected fault"))
}

func (f *FaultStore) LoadAccount(ctx context.Context, id string) (ledger.Account, error) {
	if err := f.trip(OpLoadAccount, id); err != nil {
		return ledger.Account{}, err
	}
	return f.Store.LoadAccount(ctx, id)
}

func (f *FaultStore) SaveAccount(ctx context.Context, a ledger.Account) error {
	if err := f.trip(OpSaveAccount, a.ID); err != nil {
		return err
	}
	return f.Store.SaveAccount(ctx, a)
}

func (f *FaultStore) LoadTransaction(ctx context.Context, id string) (ledger.Transaction, error) {
	if err := f.trip(OpLoadTransaction, id); err != nil {
		return ledger.Transaction{}, err
	}
	return f.Store.LoadTransaction(ctx, id)
}

func (f *FaultStore) UpdateTransactionStatus(ctx context.Context, id string, status ledger.Status) error {
	if err := f.trip(OpUpdateStatus, id); err != nil {
		return err
	}
	return f.Store.UpdateTransactionStatus(ctx, id, status)
}

func (f *FaultStore) SavePendingEntry(ctx context.Context, e ledger.PendingEntry) error {
	if err := f.trip(OpSavePendingEntry, e.TransactionID); err != nil {
		return err
	}
	return f.Store.SavePendingEntry(ctx, e)
}

func (f *FaultStore) UpdatePendingEntry(ctx context.Context, e ledger.PendingEntry) error {
	if err := f.trip(OpUpdatePendingEntry, e.TransactionID); err != nil {
		return err
	}
	return f.Store.UpdatePendingEntry(ctx, e)
}

func (f *FaultStore) DeletePendingEntry(ctx context.Context, transactionID string) error {
	if err := f.trip(OpDeletePendingEntry, transactionID); err != nil {
		return err
	}
	return f.Store.DeletePendingEntry(ctx, transactionID)
}

func (f *FaultStore) SaveMode(ctx context.Context, m ledger.Mode) error {
	if err := f.trip(OpSaveMode, string(m)); err != nil {
		return err
	}
	return f.Store.SaveMode(ctx, m)
}
