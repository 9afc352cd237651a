package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/paisapp/paisa/internal/ledger"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // domain rejection (insufficient funds, unknown account, ...)
	ExitCommandError = 2 // command error (bad flags, unreadable database, ...)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // exit code (ExitFailure or ExitCommandError)
	Message string // error message
	Err     error  // underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode maps a ledger error to the stable code shown to users.
func errorCode(err error) string {
	if kind := ledger.KindOf(err); kind != "" {
		return string(kind)
	}
	return "INTERNAL"
}

// domainExit converts a ledger error into an ExitError: invalid input and
// unreadable stores are command errors, domain rejections are failures.
func domainExit(message string, err error) *ExitError {
	code := ExitFailure
	if ledger.IsInvalidRequest(err) || ledger.IsStoreUnavailable(err) {
		code = ExitCommandError
	}
	return WrapExitError(code, message, err)
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// Response is the standard JSON envelope for CLI output.
type Response struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *Error      `json:"error,omitempty"` // error details
}

// Error is the error structure for CLI responses.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON outputs a successful payload in the configured format. Text mode
// falls back to the provided text function.
func (f *OutputFormatter) JSON(data interface{}, text func(io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(Response{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Fail outputs an error in the configured format.
func (f *OutputFormatter) Fail(err error) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &Error{Code: errorCode(err), Message: err.Error()},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", errorCode(err), err.Error())
	return nil
}
