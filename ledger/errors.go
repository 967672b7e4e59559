package ledger

import "errors"

var (
	// ErrInvalidInput marks caller mistakes: malformed codes, zero
	// quantities, non-positive deposits, rows that fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeOrder is raised when a row is older than the most recent
	// accepted transaction. Appending it would corrupt the log's time
	// ordering, so this is an error rather than a validation false.
	ErrTimeOrder = errors.New("transaction older than most recent trade")

	// ErrStaleQuote is raised when a fetched quote predates the most
	// recent accepted transaction.
	ErrStaleQuote = errors.New("quote older than most recent trade")

	// ErrStoreNotFound is returned when the store path cannot be created
	// because its parent directory does not exist.
	ErrStoreNotFound = errors.New("history store not found")

	// ErrEmptyLog is returned by Store.ReadAll when the log exists but has
	// no rows. Open recovers from it by appending the seed deposit.
	ErrEmptyLog = errors.New("history log is empty")
)
