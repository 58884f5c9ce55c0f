package colbind_test

import (
	"context"
	"fmt"

	"github.com/colbind/colbind"
)

// fakeConn is an in-memory implementation of the driver contract. It
// records every prepared statement, executed batch, and transaction
// outcome so tests can assert on the exact protocol traffic.
type fakeConn struct {
	statements []*fakeStatement
	txs        []*fakeTx
	batches    []executedBatch

	prepareErr   error
	beginErr     error
	executeErrAt int // batch index at which Execute fails; -1 for never
}

func newFakeConn() *fakeConn {
	return &fakeConn{executeErrAt: -1}
}

func (c *fakeConn) Prepare(ctx context.Context, sql string) (colbind.Statement, error) {
	if c.prepareErr != nil {
		return nil, c.prepareErr
	}
	st := &fakeStatement{conn: c, sql: sql, binds: map[int]*fakeBind{}}
	c.statements = append(c.statements, st)
	return st, nil
}

func (c *fakeConn) Begin(ctx context.Context) (colbind.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	tx := &fakeTx{}
	c.txs = append(c.txs, tx)
	return tx, nil
}

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

// executedBatch is the snapshot of one Execute call: the bound buffers as
// the driver saw them while the call was in flight, decoded to plain Go
// values with nil meaning absent.
type executedBatch struct {
	size int
	cols map[int][]any
}

type fakeBind struct {
	ints     []int32
	sentinel int32
	floats   []float64
	strings  []string
	times    []colbind.Timestamp
	bytes    [][]byte
	nulls    []bool
	kind     string
}

type fakeStatement struct {
	conn   *fakeConn
	sql    string
	binds  map[int]*fakeBind
	closed bool
}

func (st *fakeStatement) BindInt32s(col int, values []int32, sentinel int32) error {
	st.binds[col] = &fakeBind{kind: "int", ints: values, sentinel: sentinel}
	return nil
}

func (st *fakeStatement) BindFloat64s(col int, values []float64, nulls []bool) error {
	st.binds[col] = &fakeBind{kind: "float", floats: values, nulls: nulls}
	return nil
}

func (st *fakeStatement) BindStrings(col int, values []string, nulls []bool) error {
	st.binds[col] = &fakeBind{kind: "string", strings: values, nulls: nulls}
	return nil
}

func (st *fakeStatement) BindTimestamps(col int, values []colbind.Timestamp, nulls []bool) error {
	st.binds[col] = &fakeBind{kind: "time", times: values, nulls: nulls}
	return nil
}

func (st *fakeStatement) BindBytes(col int, values [][]byte, nulls []bool) error {
	st.binds[col] = &fakeBind{kind: "bytes", bytes: values, nulls: nulls}
	return nil
}

func (st *fakeStatement) Execute(ctx context.Context, rows int) error {
	if at := st.conn.executeErrAt; at >= 0 && at == len(st.conn.batches) {
		return fmt.Errorf("execute failed on batch %d", at)
	}
	batch := executedBatch{size: rows, cols: map[int][]any{}}
	for col, b := range st.binds {
		vals := make([]any, rows)
		for i := 0; i < rows; i++ {
			if b.nulls != nil && b.nulls[i] {
				continue
			}
			switch b.kind {
			case "int":
				if b.ints[i] == b.sentinel {
					continue
				}
				vals[i] = b.ints[i]
			case "float":
				vals[i] = b.floats[i]
			case "string":
				vals[i] = b.strings[i]
			case "time":
				vals[i] = b.times[i]
			case "bytes":
				vals[i] = b.bytes[i]
			}
		}
		batch.cols[col] = vals
	}
	st.conn.batches = append(st.conn.batches, batch)
	return nil
}

func (st *fakeStatement) Query(ctx context.Context) (colbind.Cursor, error) {
	return nil, fmt.Errorf("fakeStatement does not support queries")
}

func (st *fakeStatement) Close() error {
	st.closed = true
	return nil
}

// insertedRows flattens every executed batch into row-major values for
// round-trip comparisons.
func (c *fakeConn) insertedRows(ncols int) [][]any {
	var rows [][]any
	for _, batch := range c.batches {
		for i := 0; i < batch.size; i++ {
			row := make([]any, ncols)
			for col := 0; col < ncols; col++ {
				row[col] = batch.cols[col][i]
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// fakeCursor serves rows from memory. Values are int32, float64, string,
// colbind.Timestamp, []byte, or nil for absent.
type fakeCursor struct {
	metas []colbind.ColumnMeta
	rows  [][]any
	idx   int
	err   error

	// lazyNullCols models wire implementations where the null indicator
	// for text is only reliable after the value has been materialized.
	lazyNullCols map[int]bool
	materialized map[int]bool

	// failCols makes every typed getter on the column return an error.
	failCols map[int]bool

	closed bool
}

func newFakeCursor(metas []colbind.ColumnMeta, rows [][]any) *fakeCursor {
	return &fakeCursor{metas: metas, rows: rows, idx: -1}
}

func (c *fakeCursor) Columns() []colbind.ColumnMeta {
	return c.metas
}

func (c *fakeCursor) Next() bool {
	if c.err != nil || c.idx+1 >= len(c.rows) {
		return false
	}
	c.idx++
	c.materialized = map[int]bool{}
	return true
}

func (c *fakeCursor) IsNull(col int) bool {
	if c.lazyNullCols[col] && !c.materialized[col] {
		return false
	}
	return c.rows[c.idx][col] == nil
}

func (c *fakeCursor) get(col int) (any, error) {
	if c.failCols[col] {
		return nil, fmt.Errorf("extraction blew up")
	}
	c.materialized[col] = true
	return c.rows[c.idx][col], nil
}

func (c *fakeCursor) Int32(col int) (int32, error) {
	v, err := c.get(col)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int32)
	if !ok {
		return 0, fmt.Errorf("value is %T, not int32", v)
	}
	return i, nil
}

func (c *fakeCursor) Float64(col int) (float64, error) {
	v, err := c.get(col)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("value is %T, not float64", v)
	}
	return f, nil
}

func (c *fakeCursor) String(col int) (string, error) {
	v, err := c.get(col)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("value is %T, not string", v)
	}
	return s, nil
}

func (c *fakeCursor) Timestamp(col int) (colbind.Timestamp, error) {
	v, err := c.get(col)
	if err != nil {
		return colbind.Timestamp{}, err
	}
	ts, ok := v.(colbind.Timestamp)
	if !ok {
		return colbind.Timestamp{}, fmt.Errorf("value is %T, not Timestamp", v)
	}
	return ts, nil
}

func (c *fakeCursor) Bytes(col int) ([]byte, error) {
	v, err := c.get(col)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("value is %T, not bytes", v)
	}
	return b, nil
}

func (c *fakeCursor) Err() error {
	return c.err
}

func (c *fakeCursor) Close() error {
	c.closed = true
	return nil
}
