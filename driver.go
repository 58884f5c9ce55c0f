package colbind

import "context"

// This file defines the contract this package consumes from an underlying
// SQL client library. The primitives are assumed already blocking and
// already correct: connection establishment, authentication, and the wire
// protocol itself live behind these interfaces and are not implemented or
// retried here.

// Conn is an established connection capable of preparing statements and
// opening transactions. At most one in-flight operation may use a Conn at
// a time.
type Conn interface {
	// Prepare compiles sql into an executable statement.
	Prepare(ctx context.Context, sql string) (Statement, error)

	// Begin opens a transaction on the connection. Statements prepared
	// while the transaction is open execute inside it.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a transaction handle. Only the owning call may commit or abandon
// it; an uncommitted transaction must leave no rows visible.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Statement is a prepared statement with column-wise parameter binding.
// Bound buffers are referenced, not copied, until Execute returns: the
// caller must not mutate or reuse them while an execute is in flight, and
// must rebind before every execute.
type Statement interface {
	// BindInt32s binds an integer parameter column. Absent values are
	// represented in-band by sentinel.
	BindInt32s(col int, values []int32, sentinel int32) error

	// BindFloat64s binds a double parameter column with an explicit
	// null mask, one entry per row.
	BindFloat64s(col int, values []float64, nulls []bool) error

	// BindStrings binds a text parameter column (UTF-8) with a null mask.
	BindStrings(col int, values []string, nulls []bool) error

	// BindTimestamps binds a calendar-field parameter column with a
	// null mask.
	BindTimestamps(col int, values []Timestamp, nulls []bool) error

	// BindBytes binds a binary blob parameter column with a null mask.
	BindBytes(col int, values [][]byte, nulls []bool) error

	// Execute runs the statement once per bound row. It blocks until the
	// client library returns.
	Execute(ctx context.Context, rows int) error

	// Query executes the statement and returns a cursor over its result.
	Query(ctx context.Context) (Cursor, error)

	Close() error
}

// Cursor yields result rows one at a time, in the order the statement
// produced them. Each row-fetch call blocks until the client library
// returns; cancellation means not issuing the next fetch.
type Cursor interface {
	// Columns reports the result's column metadata, available before the
	// first row is read.
	Columns() []ColumnMeta

	// Next advances to the next row, returning false when the result is
	// exhausted or an error occurred (see Err).
	Next() bool

	// IsNull reports whether the current row's value in col is absent.
	// For variable-length text some protocols only report nullity
	// reliably after the value has been materialized once; callers must
	// re-check after String.
	IsNull(col int) bool

	Int32(col int) (int32, error)
	Float64(col int) (float64, error)
	String(col int) (string, error)
	Timestamp(col int) (Timestamp, error)
	Bytes(col int) ([]byte, error)

	// Err returns the error, if any, that terminated iteration.
	Err() error

	Close() error
}
