package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paisapp/paisa/internal/ledger"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "boom", nil)))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := WrapExitError(ExitCommandError, "outer", errors.New("inner"))
	assert.Equal(t, "outer: inner", wrapped.Error())
	assert.Equal(t, "inner", errors.Unwrap(wrapped).Error())
}

func TestDomainExit_CodeByKind(t *testing.T) {
	assert.Equal(t, ExitFailure,
		domainExit("x", ledger.InsufficientFundsf("broke")).Code)
	assert.Equal(t, ExitFailure,
		domainExit("x", ledger.NotFoundf("who")).Code)
	assert.Equal(t, ExitCommandError,
		domainExit("x", ledger.InvalidRequestf("bad")).Code)
	assert.Equal(t, ExitCommandError,
		domainExit("x", ledger.StoreUnavailable("db", errors.New("locked"))).Code)
}

func TestFail_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	assert.NoError(t, f.Fail(ledger.NotFoundf("account ghost")))
	assert.Contains(t, buf.String(), "NOT_FOUND")
	assert.Contains(t, buf.String(), "account ghost")
}

func TestErrorCode_UnknownError(t *testing.T) {
	assert.Equal(t, "INTERNAL", errorCode(errors.New("mystery")))
}
