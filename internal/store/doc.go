// Package store provides the SQLite-backed durable repository behind the
// ledger.Store contract.
//
// Tables:
//   - accounts: identity plus primary and emergency balances
//   - merchants: payment acceptors with essential-service flags
//   - transactions: the append-only ledger with lifecycle status
//   - pending_sync: reconciliation-queue entries awaiting settlement
//   - connectivity: the single persisted connectivity mode row
//
// Monetary columns are TEXT holding canonical decimal strings; amounts
// never pass through floating point on their way to or from disk.
//
// All ordering uses the seq column (logical clock), never timestamps, so
// listings are stable across hosts and restarts.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// Error mapping: sql.ErrNoRows becomes ledger.KindNotFound; every other
// driver failure becomes ledger.KindStoreUnavailable so the engine treats
// it as transient.
package store
