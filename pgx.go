package colbind

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxConn implements Conn over a pgx connection pool. It pins a single
// pooled connection so prepared statements and transactions share one
// session, matching the one-in-flight-operation model.
type PgxConn struct {
	pool *pgxpool.Pool
	conn *pgxpool.Conn
	tx   pgx.Tx
	loc  *time.Location
}

// NewPgxConn connects to PostgreSQL. loc is the timezone used to convert
// between calendar fields and time.Time values at the binding boundary;
// nil means the process-local timezone. It should match the session's
// codec location.
func NewPgxConn(ctx context.Context, connString string, loc *time.Location) (*PgxConn, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	return &PgxConn{pool: pool, loc: loc}, nil
}

func (c *PgxConn) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if c.conn == nil {
		conn, err := c.pool.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		c.conn = conn
	}
	return c.conn, nil
}

// Prepare compiles sql server-side under a unique statement name.
// ?-style placeholders are rewritten to PostgreSQL's $n form.
func (c *PgxConn) Prepare(ctx context.Context, sql string) (Statement, error) {
	conn, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	name := uuid.NewString()
	if _, err := conn.Conn().Prepare(ctx, name, rewritePlaceholders(sql)); err != nil {
		return nil, err
	}
	return &pgxStatement{conn: c, name: name}, nil
}

// Begin opens a transaction on the pinned connection.
func (c *PgxConn) Begin(ctx context.Context) (Tx, error) {
	conn, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	c.tx = tx
	return &pgxTx{conn: c, tx: tx}, nil
}

// Close releases the pinned connection and the pool.
func (c *PgxConn) Close() {
	if c.conn != nil {
		c.conn.Release()
		c.conn = nil
	}
	c.pool.Close()
}

type pgxTx struct {
	conn *PgxConn
	tx   pgx.Tx
}

func (t *pgxTx) Commit(ctx context.Context) error {
	t.conn.tx = nil
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	t.conn.tx = nil
	return t.tx.Rollback(ctx)
}

// pgxStatement adapts column-wise binding to pgx's row-wise argument
// model: bound columns are kept as accessors and expanded into per-row
// argument lists at execute time.
type pgxStatement struct {
	conn *PgxConn
	name string
	cols []func(row int) any
}

func (st *pgxStatement) setCol(col int, get func(row int) any) {
	for len(st.cols) <= col {
		st.cols = append(st.cols, nil)
	}
	st.cols[col] = get
}

func (st *pgxStatement) BindInt32s(col int, values []int32, sentinel int32) error {
	st.setCol(col, func(row int) any {
		if values[row] == sentinel {
			return nil
		}
		return values[row]
	})
	return nil
}

func (st *pgxStatement) BindFloat64s(col int, values []float64, nulls []bool) error {
	st.setCol(col, func(row int) any {
		if nulls != nil && nulls[row] {
			return nil
		}
		return values[row]
	})
	return nil
}

func (st *pgxStatement) BindStrings(col int, values []string, nulls []bool) error {
	st.setCol(col, func(row int) any {
		if nulls != nil && nulls[row] {
			return nil
		}
		return values[row]
	})
	return nil
}

func (st *pgxStatement) BindTimestamps(col int, values []Timestamp, nulls []bool) error {
	loc := st.conn.loc
	st.setCol(col, func(row int) any {
		if nulls != nil && nulls[row] {
			return nil
		}
		ts := values[row]
		return time.Date(ts.Year, time.Month(ts.Month), ts.Day, ts.Hour, ts.Min, ts.Sec, int(ts.Frac*1e9), loc)
	})
	return nil
}

func (st *pgxStatement) BindBytes(col int, values [][]byte, nulls []bool) error {
	st.setCol(col, func(row int) any {
		if nulls != nil && nulls[row] {
			return nil
		}
		return values[row]
	})
	return nil
}

// Execute runs the prepared statement once per bound row as a single
// pipelined batch.
func (st *pgxStatement) Execute(ctx context.Context, rows int) error {
	batch := &pgx.Batch{}
	for row := 0; row < rows; row++ {
		args := make([]any, len(st.cols))
		for col, get := range st.cols {
			if get == nil {
				return fmt.Errorf("parameter column %d is not bound", col)
			}
			args[col] = get(row)
		}
		batch.Queue(st.name, args...)
	}

	var results pgx.BatchResults
	if st.conn.tx != nil {
		results = st.conn.tx.SendBatch(ctx, batch)
	} else {
		results = st.conn.conn.SendBatch(ctx, batch)
	}
	for row := 0; row < rows; row++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}
	return results.Close()
}

func (st *pgxStatement) Query(ctx context.Context) (Cursor, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if st.conn.tx != nil {
		rows, err = st.conn.tx.Query(ctx, st.name)
	} else {
		rows, err = st.conn.conn.Query(ctx, st.name)
	}
	if err != nil {
		return nil, err
	}

	fields := rows.FieldDescriptions()
	metas := make([]ColumnMeta, len(fields))
	for i, fd := range fields {
		metas[i] = ColumnMeta{Name: fd.Name, Type: oidToWireType(fd.DataTypeOID)}
	}
	return &pgxCursor{rows: rows, metas: metas, loc: st.conn.loc}, nil
}

func (st *pgxStatement) Close() error {
	return st.conn.conn.Conn().Deallocate(context.Background(), st.name)
}

// oidToWireType translates PostgreSQL type OIDs to the wire type codes
// the classifier understands. Unknown OIDs map to code 0, which the
// classifier treats as an unrecognized type (string fallback).
func oidToWireType(oid uint32) WireType {
	switch oid {
	case pgtype.BoolOID:
		return WireTypeBit
	case pgtype.Int2OID:
		return WireTypeSmallint
	case pgtype.Int4OID:
		return WireTypeInteger
	case pgtype.Int8OID:
		return WireTypeBigint
	case pgtype.Float4OID:
		return WireTypeReal
	case pgtype.Float8OID:
		return WireTypeDouble
	case pgtype.NumericOID:
		return WireTypeNumeric
	case pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID, pgtype.NameOID:
		return WireTypeVarchar
	case pgtype.ByteaOID:
		return WireTypeVarBinary
	case pgtype.DateOID:
		return WireTypeTypeDate
	case pgtype.TimeOID:
		return WireTypeTypeTime
	case pgtype.TimestampOID, pgtype.TimestamptzOID:
		return WireTypeTypeTimestamp
	default:
		return WireType(0)
	}
}

type pgxCursor struct {
	rows  pgx.Rows
	metas []ColumnMeta
	vals  []any
	err   error
	loc   *time.Location
}

func (c *pgxCursor) Columns() []ColumnMeta {
	return c.metas
}

func (c *pgxCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	vals, err := c.rows.Values()
	if err != nil {
		c.err = err
		return false
	}
	c.vals = vals
	return true
}

func (c *pgxCursor) IsNull(col int) bool {
	return c.vals[col] == nil
}

func (c *pgxCursor) Int32(col int) (int32, error) {
	switch v := c.vals[col].(type) {
	case int16:
		return int32(v), nil
	case int32:
		return v, nil
	case int64:
		return int32(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int32", v)
	}
}

func (c *pgxCursor) Float64(col int) (float64, error) {
	switch v := c.vals[col].(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil {
			return 0, err
		}
		return f.Float64, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
}

func (c *pgxCursor) String(col int) (string, error) {
	switch v := c.vals[col].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot convert %T to string", v)
	}
}

func (c *pgxCursor) Timestamp(col int) (Timestamp, error) {
	t, ok := c.vals[col].(time.Time)
	if !ok {
		return Timestamp{}, fmt.Errorf("cannot convert %T to timestamp", c.vals[col])
	}
	t = t.In(c.loc)
	return Timestamp{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
		Hour:  t.Hour(),
		Min:   t.Minute(),
		Sec:   t.Second(),
		Frac:  float64(t.Nanosecond()) / 1e9,
	}, nil
}

func (c *pgxCursor) Bytes(col int) ([]byte, error) {
	v, ok := c.vals[col].([]byte)
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to bytes", c.vals[col])
	}
	return v, nil
}

func (c *pgxCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *pgxCursor) Close() error {
	c.rows.Close()
	return nil
}

// rewritePlaceholders converts ?-style placeholders to PostgreSQL's $n
// form, leaving single-quoted literals untouched.
func rewritePlaceholders(sql string) string {
	var b strings.Builder
	n := 0
	inQuote := false
	for _, r := range sql {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			fmt.Fprintf(&b, "$%d", n)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
