package ledger

// Store is a durable, append-only transaction log. Implementations must
// return rows from ReadAll in append order and must never rewrite rows.
type Store interface {
	// ReadAll returns every row in the log. An existing but empty log
	// yields ErrEmptyLog.
	ReadAll() ([]Row, error)
	// Append persists one row at the end of the log.
	Append(Row) error
	Close() error
}
