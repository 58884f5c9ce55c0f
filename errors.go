package colbind

import "fmt"

// ClassifyError reports an unsupported or inconsistent in-memory column
// discovered before any binding or execution began.
type ClassifyError struct {
	Column string // The offending column's name
	Err    error  // The underlying error
}

func (e *ClassifyError) Error() string {
	return fmt.Sprintf("cannot classify column %q: %v", e.Column, e.Err)
}

func (e *ClassifyError) Unwrap() error {
	return e.Err
}

// BindError reports a failure while encoding or binding one parameter
// column of one batch. Execute failures are not wrapped: they propagate
// from the client library unmodified.
type BindError struct {
	Column string // The offending column's name
	Batch  int    // Zero-based batch index within the insert
	Err    error  // The underlying error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind column %q in batch %d: %v", e.Column, e.Batch, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// FetchError reports a fatal failure while materializing a result, e.g.
// the cursor terminating with an error. Per-cell extraction problems are
// non-fatal and surface as warnings instead.
type FetchError struct {
	Operation string // Which phase failed (e.g. "row_iteration")
	Err       error  // The underlying error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed during %s: %v", e.Operation, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
