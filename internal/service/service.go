package service

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/paisapp/paisa/internal/broadcast"
	"github.com/paisapp/paisa/internal/discovery"
	"github.com/paisapp/paisa/internal/engine"
	"github.com/paisapp/paisa/internal/ledger"
	"github.com/paisapp/paisa/internal/money"
)

// Service translates between untrusted external input and the engine.
type Service struct {
	engine  *engine.Engine
	store   ledger.Store
	bus     *broadcast.Bus
	scanner discovery.Scanner
}

// New wires a service over its collaborators.
func New(e *engine.Engine, store ledger.Store, bus *broadcast.Bus, scanner discovery.Scanner) *Service {
	return &Service{
		engine:  e,
		store:   store,
		bus:     bus,
		scanner: scanner,
	}
}

// clean trims and NFC-normalizes free-form input so that visually
// identical strings (composed vs decomposed accents) compare equal in
// the ledger.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// PayRequest is an external payment submission. Amount arrives as a
// string; the service owns parsing it.
type PayRequest struct {
	SenderID    string `json:"sender_id"`
	ReceiverID  string `json:"receiver_id"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`

	// Proximity routes the payment over the local channel; it is always
	// deferred for reconciliation regardless of connectivity.
	Proximity bool `json:"proximity,omitempty"`
}

// Pay submits a payment and returns its final view. For a direct payment
// while online that view is already settled (completed or failed); a
// proximity or offline payment comes back pending_sync.
func (s *Service) Pay(ctx context.Context, req PayRequest) (TransactionView, error) {
	amount, err := money.Parse(clean(req.Amount))
	if err != nil {
		return TransactionView{}, ledger.InvalidRequestf("amount %q: %v", req.Amount, err)
	}

	channel := ledger.ChannelDirect
	if req.Proximity {
		channel = ledger.ChannelProximity
	}

	tx, err := s.engine.Submit(ctx, engine.SubmitParams{
		SenderID:    clean(req.SenderID),
		ReceiverID:  clean(req.ReceiverID),
		Amount:      amount,
		Channel:     channel,
		Description: clean(req.Description),
	})
	if err != nil {
		return transactionView(tx), err
	}
	return transactionView(tx), nil
}

// Account returns one account.
func (s *Service) Account(ctx context.Context, id string) (AccountView, error) {
	acc, err := s.store.LoadAccount(ctx, clean(id))
	if err != nil {
		return AccountView{}, err
	}
	return accountView(acc), nil
}

// Accounts lists every account.
func (s *Service) Accounts(ctx context.Context) ([]AccountView, error) {
	accs, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]AccountView, len(accs))
	for i, a := range accs {
		views[i] = accountView(a)
	}
	return views, nil
}

// Merchants lists merchants, optionally only essential services.
func (s *Service) Merchants(ctx context.Context, essentialOnly bool) ([]MerchantView, error) {
	ms, err := s.store.ListMerchants(ctx, essentialOnly)
	if err != nil {
		return nil, err
	}
	views := make([]MerchantView, len(ms))
	for i, m := range ms {
		views[i] = merchantView(m)
	}
	return views, nil
}

// History returns an account's transactions, newest first.
func (s *Service) History(ctx context.Context, accountID string) ([]TransactionView, error) {
	txs, err := s.engine.GetHistory(ctx, clean(accountID))
	if err != nil {
		return nil, err
	}
	views := make([]TransactionView, len(txs))
	for i, tx := range txs {
		views[i] = transactionView(tx)
	}
	return views, nil
}

// Status reports the connectivity mode and reconciliation backlog.
// A read of in-process engine state; it never touches the store.
func (s *Service) Status() StatusView {
	return StatusView{
		Mode:      string(s.engine.Mode()),
		ChangedAt: s.engine.ModeChangedAt(),
		Queued:    s.engine.QueueDepth(),
	}
}

// SetMode switches the connectivity mode ("online" or "offline") and
// returns the resulting status. Reconnecting drains the reconciliation
// queue before this returns.
func (s *Service) SetMode(ctx context.Context, mode string) (StatusView, error) {
	if err := s.engine.SetMode(ctx, ledger.Mode(clean(mode))); err != nil {
		return StatusView{}, err
	}
	return s.Status(), nil
}

// DrawEmergency moves amount from the account's emergency reserve into
// its primary balance.
func (s *Service) DrawEmergency(ctx context.Context, accountID, amount string) (AccountView, error) {
	parsed, err := money.Parse(clean(amount))
	if err != nil {
		return AccountView{}, ledger.InvalidRequestf("amount %q: %v", amount, err)
	}

	acc, err := s.engine.Accounts().DrawEmergency(ctx, clean(accountID), parsed)
	if err != nil {
		return AccountView{}, err
	}
	return accountView(acc), nil
}

// Scan discovers proximity peers, nearest first.
func (s *Service) Scan(ctx context.Context) ([]PeerView, error) {
	peers, err := s.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]PeerView, len(peers))
	for i, p := range peers {
		views[i] = peerView(p)
	}
	return views, nil
}

// Subscribe attaches a live event subscriber. The first event is always
// the current connectivity mode. Callers must Close the subscriber.
func (s *Service) Subscribe() *broadcast.Subscriber {
	return s.bus.Subscribe()
}
