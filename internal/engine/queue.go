package engine

import (
	"sync"

	"github.com/paisapp/paisa/internal/ledger"
)

// syncQueue is the in-memory reconciliation queue: pending_sync
// transactions in FIFO order of original submission (ascending seq).
//
// The queue mirrors the durable pending_sync table; Restore rebuilds it
// at startup. Membership is guarded by a mutex, but the mutex is never
// held across the settlement of an entry - drains work off a snapshot so
// unrelated account operations and new enqueues are never blocked.
type syncQueue struct {
	mu      sync.Mutex
	entries []ledger.PendingEntry
	present map[string]struct{} // transaction ids currently queued
}

func newSyncQueue() *syncQueue {
	return &syncQueue{
		present: make(map[string]struct{}),
	}
}

// Restore replaces queue membership with entries, assumed already in
// FIFO (ascending seq) order as the store returns them.
func (q *syncQueue) Restore(entries []ledger.PendingEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = make([]ledger.PendingEntry, len(entries))
	copy(q.entries, entries)
	q.present = make(map[string]struct{}, len(entries))
	for _, e := range entries {
		q.present[e.TransactionID] = struct{}{}
	}
}

// Enqueue appends an entry. Idempotent on transaction id: re-enqueuing a
// queued transaction is a no-op and returns false.
func (q *syncQueue) Enqueue(e ledger.PendingEntry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.present[e.TransactionID]; ok {
		return false
	}
	q.entries = append(q.entries, e)
	q.present[e.TransactionID] = struct{}{}
	return true
}

// Snapshot returns a copy of the current membership in FIFO order.
// Entries enqueued after the snapshot belong to the next drain cycle.
func (q *syncQueue) Snapshot() []ledger.PendingEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	snap := make([]ledger.PendingEntry, len(q.entries))
	copy(snap, q.entries)
	return snap
}

// Remove drops the entry for a resolved transaction. A no-op if absent.
func (q *syncQueue) Remove(transactionID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.present[transactionID]; !ok {
		return
	}
	delete(q.present, transactionID)
	for i, e := range q.entries {
		if e.TransactionID == transactionID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// Bump records a failed reconciliation attempt against a queued entry,
// keeping its FIFO position. A no-op if the entry was removed meanwhile.
func (q *syncQueue) Bump(e ledger.PendingEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.entries {
		if q.entries[i].TransactionID == e.TransactionID {
			q.entries[i].Attempts = e.Attempts
			q.entries[i].LastAttemptAt = e.LastAttemptAt
			return
		}
	}
}

// Len returns the current queue length.
func (q *syncQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
