// Package service is the application boundary over the ledger engine.
//
// It accepts untrusted string input (amounts, descriptions, ids),
// normalizes and validates it, and maps ledger records into stable JSON
// views for the CLI and the event stream. All domain decisions live in
// the engine; this layer only translates.
package service
