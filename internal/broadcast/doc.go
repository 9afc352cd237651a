// Package broadcast implements the typed publish/subscribe bus that fans
// ledger and connectivity changes out to observers.
//
// Delivery contract:
//   - Every subscriber active at publish time receives the event at least
//     once, in the order the publisher emitted them for that topic.
//   - A newly connecting subscriber immediately receives the current
//     connectivity mode as a synthetic first event, so it never observes a
//     stale mode.
//   - Slow subscribers never block publishers: each subscriber has a
//     bounded buffer with a drop-oldest policy. Loss is acceptable on this
//     best-effort channel; reordering is not.
package broadcast
