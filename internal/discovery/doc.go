// Package discovery simulates proximity peer discovery.
//
// The proximity channel needs a way to find nearby counterparties without
// network connectivity. This package models that radio as a deterministic
// simulation: a fixed set of peers at fixed distances, filtered by the
// scanner's range. Swapping in a real transport later only has to satisfy
// the Scanner interface.
package discovery
