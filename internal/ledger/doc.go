// Package ledger defines the domain model of the payment ledger: accounts,
// merchants, transactions and their lifecycle, connectivity mode, the
// durable store contract, and the error taxonomy shared by every layer.
//
// # Transaction lifecycle
//
// A transaction is created in StatusPending and moves through exactly one
// of these paths:
//
//	pending -> completed      settled immediately (direct channel, online)
//	pending -> failed         rejected at settlement (e.g. insufficient funds)
//	pending -> pending_sync   deferred for reconciliation (proximity or offline)
//	pending_sync -> completed settled during a reconciliation drain
//	pending_sync -> failed    rejected during a reconciliation drain
//
// completed and failed are terminal. A transaction's amount is immutable
// after creation; only its status changes, and only along the edges above.
// Failed transactions are retained for audit, never deleted.
//
// # Ordering
//
// Every transaction carries a Seq value from a monotonic logical clock.
// History listings and reconciliation order use Seq, never wall-clock
// timestamps, so ordering is stable across hosts and restarts.
package ledger
