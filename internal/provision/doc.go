// Package provision seeds a ledger with accounts and merchants.
//
// Seeds come from a YAML file or from the built-in demo set. Provisioning
// is idempotent: accounts that already exist are left untouched, so
// re-running init against a live ledger never resets balances.
package provision
