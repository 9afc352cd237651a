package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paisapp/paisa/internal/ledger"
	"github.com/paisapp/paisa/internal/money"
)

// Seed declares the accounts and merchants to provision.
type Seed struct {
	Accounts  []AccountSeed  `yaml:"accounts"`
	Merchants []MerchantSeed `yaml:"merchants"`
}

// AccountSeed declares one personal account.
type AccountSeed struct {
	// ID uniquely identifies the account.
	ID string `yaml:"id"`

	// Name is the display name.
	Name string `yaml:"name"`

	// Phone is the contact number, optional.
	Phone string `yaml:"phone,omitempty"`

	// Primary is the opening spendable balance, e.g. "2500.00".
	Primary string `yaml:"primary"`

	// Emergency is the opening emergency reserve.
	Emergency string `yaml:"emergency"`
}

// MerchantSeed declares a merchant together with its account.
type MerchantSeed struct {
	// ID uniquely identifies both the merchant and its account.
	ID string `yaml:"id"`

	// Name is the business name.
	Name string `yaml:"name"`

	// Category classifies the business (e.g. "Healthcare").
	Category string `yaml:"category"`

	// Essential marks services that stay reachable over the proximity
	// channel during outages.
	Essential bool `yaml:"essential,omitempty"`

	// Primary is the opening spendable balance.
	Primary string `yaml:"primary"`

	// Emergency is the opening emergency reserve.
	Emergency string `yaml:"emergency"`
}

// Load reads a seed file.
func Load(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return seed, nil
}

// DefaultSeed is the demo ledger: one personal account and one essential
// merchant.
func DefaultSeed() Seed {
	return Seed{
		Accounts: []AccountSeed{
			{ID: "rahul-kumar", Name: "Rahul Kumar", Phone: "9876543210", Primary: "2500.00", Emergency: "500.00"},
		},
		Merchants: []MerchantSeed{
			{ID: "medplus-pharmacy", Name: "MedPlus Pharmacy", Category: "Healthcare", Essential: true, Primary: "5000.00", Emergency: "1000.00"},
		},
	}
}

// Apply provisions the seed into the store. Existing accounts are
// skipped; the returned count is the number of accounts actually created.
func Apply(ctx context.Context, store ledger.Store, seed Seed, now func() time.Time) (int, error) {
	created := 0

	for _, a := range seed.Accounts {
		acc, err := accountFromSeed(a.ID, a.Name, a.Phone, a.Primary, a.Emergency, now)
		if err != nil {
			return created, err
		}
		ok, err := createAccount(ctx, store, acc)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	for _, m := range seed.Merchants {
		acc, err := accountFromSeed(m.ID, m.Name, "", m.Primary, m.Emergency, now)
		if err != nil {
			return created, err
		}
		ok, err := createAccount(ctx, store, acc)
		if err != nil {
			return created, err
		}
		if !ok {
			continue
		}
		created++

		merchant := ledger.Merchant{
			ID:        m.ID,
			AccountID: m.ID,
			Name:      m.Name,
			Category:  m.Category,
			Essential: m.Essential,
		}
		if err := store.SaveMerchant(ctx, merchant); err != nil {
			return created, err
		}
	}

	slog.Info("ledger provisioned",
		"accounts", len(seed.Accounts),
		"merchants", len(seed.Merchants),
		"created", created,
	)
	return created, nil
}

// accountFromSeed validates one seed entry into an account.
func accountFromSeed(id, name, phone, primary, emergency string, now func() time.Time) (ledger.Account, error) {
	if id == "" {
		return ledger.Account{}, ledger.InvalidRequestf("seed account %q: id is required", name)
	}
	if name == "" {
		return ledger.Account{}, ledger.InvalidRequestf("seed account %s: name is required", id)
	}

	primaryAmount, err := money.Parse(primary)
	if err != nil {
		return ledger.Account{}, ledger.InvalidRequestf("seed account %s: primary balance: %v", id, err)
	}
	emergencyAmount, err := money.Parse(emergency)
	if err != nil {
		return ledger.Account{}, ledger.InvalidRequestf("seed account %s: emergency balance: %v", id, err)
	}
	if primaryAmount.IsNegative() || emergencyAmount.IsNegative() {
		return ledger.Account{}, ledger.InvalidRequestf("seed account %s: balances must not be negative", id)
	}

	return ledger.Account{
		ID:          id,
		DisplayName: name,
		Phone:       phone,
		Primary:     primaryAmount,
		Emergency:   emergencyAmount,
		CreatedAt:   now(),
	}, nil
}

// createAccount writes the account unless it already exists. Returns
// whether a new account was created.
func createAccount(ctx context.Context, store ledger.Store, acc ledger.Account) (bool, error) {
	_, err := store.LoadAccount(ctx, acc.ID)
	switch {
	case err == nil:
		slog.Debug("seed account already exists, skipping", "account", acc.ID)
		return false, nil
	case !ledger.IsNotFound(err):
		return false, err
	}

	if err := store.SaveAccount(ctx, acc); err != nil {
		return false, err
	}
	return true, nil
}
