package engine

import (
	"context"
	"log/slog"

	"github.com/paisapp/paisa/internal/ledger"
)

// Drain settles the reconciliation queue against the account store.
//
// Membership is snapshotted up front: entries enqueued while the drain
// runs wait for the next cycle, so nothing is ever settled twice. Entries
// are processed in FIFO order of original submission - the earliest
// offline transaction settles first.
//
// Per-entry verdicts:
//   - success: transaction completed, entry removed
//   - insufficient funds: transaction failed, entry removed (waiting
//     would not make funds appear)
//   - transient store failure: attempt recorded, entry retried on the
//     next drain until the attempt budget is exhausted, then failed
//   - consistency escalation: transaction failed, entry removed, full
//     context logged for manual audit
//
// Drains never overlap; concurrent callers queue up behind the drain
// mutex. No queue lock is held while an entry settles.
func (e *Engine) Drain(ctx context.Context) {
	e.drainMu.Lock()
	defer e.drainMu.Unlock()

	snapshot := e.queue.Snapshot()
	if len(snapshot) == 0 {
		return
	}

	slog.Info("reconciliation drain started", "entries", len(snapshot))

	var settled, failed, deferred int
	for _, entry := range snapshot {
		switch e.reconcile(ctx, entry) {
		case reconcileSettled:
			settled++
		case reconcileFailed:
			failed++
		case reconcileDeferred:
			deferred++
		}
	}

	slog.Info("reconciliation drain finished",
		"settled", settled,
		"failed", failed,
		"deferred", deferred,
	)
}

type reconcileVerdict int

const (
	reconcileSettled reconcileVerdict = iota + 1
	reconcileFailed
	reconcileDeferred
)

// reconcile resolves a single queue entry.
func (e *Engine) reconcile(ctx context.Context, entry ledger.PendingEntry) reconcileVerdict {
	tx, err := e.store.LoadTransaction(ctx, entry.TransactionID)
	if ledger.IsNotFound(err) {
		// Entry without its transaction; drop it and note the anomaly.
		slog.Error("reconciliation entry references unknown transaction", "transaction", entry.TransactionID)
		e.resolve(ctx, entry.TransactionID)
		return reconcileFailed
	}
	if err != nil {
		return e.deferEntry(ctx, entry, err)
	}

	if tx.Status.Terminal() {
		// Already resolved in a previous cycle; just drop the entry.
		// Nonterminal statuses settle below: an entry whose pending_sync
		// status write was lost still holds real money.
		e.resolve(ctx, entry.TransactionID)
		return reconcileSettled
	}

	err = e.accounts.Settle(ctx, tx.SenderID, tx.ReceiverID, tx.Amount)
	switch {
	case err == nil:
		e.resolve(ctx, tx.ID)
		e.transition(ctx, &tx, ledger.StatusCompleted)
		return reconcileSettled

	case ledger.IsInsufficientFunds(err):
		e.resolve(ctx, tx.ID)
		e.transition(ctx, &tx, ledger.StatusFailed)
		slog.Info("reconciliation rejected transaction",
			"transaction", tx.ID,
			"reason", err.Error(),
		)
		return reconcileFailed

	case ledger.IsConsistency(err):
		// Settle already logged the audit record; fail the transaction
		// so it is not silently retried against damaged state.
		e.resolve(ctx, tx.ID)
		e.transition(ctx, &tx, ledger.StatusFailed)
		return reconcileFailed

	default:
		return e.deferEntry(ctx, entry, err)
	}
}

// deferEntry records a transient failure against the entry, failing it
// terminally once the attempt budget is spent.
func (e *Engine) deferEntry(ctx context.Context, entry ledger.PendingEntry, cause error) reconcileVerdict {
	entry.Attempts++
	entry.LastAttemptAt = e.now()

	if entry.Attempts >= e.maxAttempts {
		slog.Error("reconciliation attempts exhausted",
			"transaction", entry.TransactionID,
			"attempts", entry.Attempts,
			"error", cause,
		)
		e.resolve(ctx, entry.TransactionID)
		tx := ledger.Transaction{ID: entry.TransactionID, Status: ledger.StatusPendingSync}
		e.transition(ctx, &tx, ledger.StatusFailed)
		return reconcileFailed
	}

	e.queue.Bump(entry)
	if err := e.store.UpdatePendingEntry(ctx, entry); err != nil {
		// Attempt bookkeeping is best-effort; the in-memory queue still
		// carries the count for this process.
		slog.Warn("failed to persist reconciliation attempt",
			"transaction", entry.TransactionID,
			"error", err,
		)
	}

	slog.Info("reconciliation deferred transaction",
		"transaction", entry.TransactionID,
		"attempts", entry.Attempts,
		"error", cause,
	)
	return reconcileDeferred
}

// resolve removes an entry from both the in-memory queue and the durable
// pending_sync table. Removal happens before the status transition so a
// crash cannot lead to a second settlement of the same transaction.
func (e *Engine) resolve(ctx context.Context, transactionID string) {
	e.queue.Remove(transactionID)
	if err := e.store.DeletePendingEntry(ctx, transactionID); err != nil {
		slog.Error("failed to delete resolved reconciliation entry",
			"transaction", transactionID,
			"error", err,
		)
	}
}
