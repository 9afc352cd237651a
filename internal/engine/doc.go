// Package engine implements the ledger and reconciliation engine.
//
// The engine owns account balances, transaction state transitions, the
// offline reconciliation queue, and the connectivity mode, and publishes
// every change on the broadcast bus.
//
// ARCHITECTURE:
//
// Submission path:
//  1. Submit validates the request and appends a pending transaction.
//  2. The connectivity mode and channel decide the settlement path:
//     direct+online settles immediately; proximity or offline defers the
//     transaction into the reconciliation queue as pending_sync.
//  3. Every status change is published as a transaction_update event.
//
// Settlement is a single logical operation: debit the sender, credit the
// receiver, and compensate (reverse the debit) if the credit cannot be
// applied. Money is never created or destroyed; a compensation failure is
// escalated as a consistency error and logged for manual audit.
//
// Reconciliation:
// The queue holds pending_sync transactions in FIFO order of original
// submission. Transitioning offline -> online drains it exactly once per
// transition. A drain snapshots queue membership up front; entries that
// arrive mid-drain wait for the next cycle, so no entry is ever settled
// twice. Transient store failures are retried on later drains with a
// bounded attempt budget; insufficient funds is terminal immediately,
// since waiting does not make funds appear.
//
// Concurrency model:
//   - Balance mutation is serialized per account (lock table); distinct
//     accounts settle concurrently. Two-account settlements take locks in
//     id order, so they cannot deadlock.
//   - Mode transitions are serialized by the engine's mode mutex, which is
//     what makes "exactly one drain per transition" hold under concurrent
//     SetMode calls.
//   - The drain mutex prevents overlapping drains without blocking
//     unrelated account operations.
//
// All events are stamped with a monotonic seq from the logical clock;
// ordering decisions never rely on wall-clock timestamps.
package engine
