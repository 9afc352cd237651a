package discovery

import (
	"context"
	"log/slog"
	"sort"
)

// Peer is a counterparty reachable over the proximity channel.
type Peer struct {
	AccountID   string
	DisplayName string
	// DistanceKm is the straight-line distance to the peer. Peers beyond
	// the scanner's range are invisible.
	DistanceKm float64
	// Merchant marks peers that accept payments as a business.
	Merchant bool
}

// Scanner finds peers reachable over the proximity channel.
type Scanner interface {
	// Scan returns reachable peers ordered nearest first.
	Scan(ctx context.Context) ([]Peer, error)
}

// DefaultRangeKm is how far the simulated radio reaches.
const DefaultRangeKm = 5.0

// Simulated is a Scanner over a fixed peer set. Deterministic: the same
// peers come back on every scan, which keeps demos and tests stable.
type Simulated struct {
	peers   []Peer
	rangeKm float64
}

// Option configures a Simulated scanner.
type Option func(*Simulated)

// WithRange overrides the scan range.
func WithRange(km float64) Option {
	return func(s *Simulated) { s.rangeKm = km }
}

// NewSimulated creates a scanner over the given peers.
func NewSimulated(peers []Peer, opts ...Option) *Simulated {
	s := &Simulated{
		peers:   append([]Peer(nil), peers...),
		rangeKm: DefaultRangeKm,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPeers is the demo neighborhood.
func DefaultPeers() []Peer {
	return []Peer{
		{AccountID: "priya-sharma", DisplayName: "Priya Sharma", DistanceKm: 2.3},
		{AccountID: "amit-patel", DisplayName: "Amit Patel", DistanceKm: 4.1},
		{AccountID: "deepak-store", DisplayName: "Deepak Store", DistanceKm: 1.8, Merchant: true},
	}
}

// Scan returns the in-range peers, nearest first.
func (s *Simulated) Scan(ctx context.Context) ([]Peer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var found []Peer
	for _, p := range s.peers {
		if p.DistanceKm <= s.rangeKm {
			found = append(found, p)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].DistanceKm < found[j].DistanceKm })

	slog.Debug("proximity scan", "visible", len(found), "total", len(s.peers))
	return found, nil
}
