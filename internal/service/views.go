package service

import (
	"time"

	"github.com/paisapp/paisa/internal/discovery"
	"github.com/paisapp/paisa/internal/ledger"
	"github.com/paisapp/paisa/internal/money"
)

// AccountView is the external shape of an account.
type AccountView struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Phone     string       `json:"phone,omitempty"`
	Primary   money.Amount `json:"primary_balance"`
	Emergency money.Amount `json:"emergency_balance"`
}

// MerchantView is the external shape of a merchant.
type MerchantView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Essential bool   `json:"essential"`
}

// TransactionView is the external shape of a ledger transaction.
type TransactionView struct {
	ID          string       `json:"id"`
	SenderID    string       `json:"sender_id"`
	ReceiverID  string       `json:"receiver_id"`
	Amount      money.Amount `json:"amount"`
	Status      string       `json:"status"`
	Channel     string       `json:"channel"`
	Description string       `json:"description,omitempty"`
	Seq         int64        `json:"seq"`
	CreatedAt   time.Time    `json:"created_at"`
}

// PeerView is a proximity peer as seen by a scan.
type PeerView struct {
	AccountID  string  `json:"account_id"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
	Merchant   bool    `json:"merchant"`
}

// StatusView reports connectivity and reconciliation state.
type StatusView struct {
	Mode      string    `json:"mode"`
	ChangedAt time.Time `json:"changed_at"`
	Queued    int       `json:"queued"`
}

func accountView(a ledger.Account) AccountView {
	return AccountView{
		ID:        a.ID,
		Name:      a.DisplayName,
		Phone:     a.Phone,
		Primary:   a.Primary,
		Emergency: a.Emergency,
	}
}

func merchantView(m ledger.Merchant) MerchantView {
	return MerchantView{
		ID:        m.ID,
		Name:      m.Name,
		Category:  m.Category,
		Essential: m.Essential,
	}
}

func transactionView(tx ledger.Transaction) TransactionView {
	return TransactionView{
		ID:          tx.ID,
		SenderID:    tx.SenderID,
		ReceiverID:  tx.ReceiverID,
		Amount:      tx.Amount,
		Status:      string(tx.Status),
		Channel:     string(tx.Channel),
		Description: tx.Description,
		Seq:         tx.Seq,
		CreatedAt:   tx.CreatedAt,
	}
}

func peerView(p discovery.Peer) PeerView {
	return PeerView{
		AccountID:  p.AccountID,
		Name:       p.DisplayName,
		DistanceKm: p.DistanceKm,
		Merchant:   p.Merchant,
	}
}
