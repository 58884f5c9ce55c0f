package colbind

import "context"

// batchScratch holds the encoding buffers for exactly one batch. The
// statement binds by reference into these buffers for the duration of the
// execute call, so a fresh scratch is constructed per batch and dropped at
// batch end: nothing can leak into the next batch.
type batchScratch struct {
	ints    [][]int32
	strings [][]string
	times   [][]Timestamp
	nulls   []NullMask
}

func newBatchScratch(ncols int) *batchScratch {
	return &batchScratch{
		ints:    make([][]int32, ncols),
		strings: make([][]string, ncols),
		times:   make([][]Timestamp, ncols),
		nulls:   make([]NullMask, ncols),
	}
}

// Insert encodes table column-wise into protocol parameter buffers and
// executes sql once per row, in consecutive batches of the session's
// batch size, all inside a single transaction. The transaction commits
// only after every batch succeeds; on any failure it is rolled back and
// no partial insert is observable. Execute failures propagate from the
// client library unmodified.
func (s *Session) Insert(ctx context.Context, conn Conn, sql string, table *Table) error {
	types, err := ClassifyColumns(table)
	if err != nil {
		return err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	nrows := table.NumRows()
	batch := 0
	for start := 0; start < nrows; start += s.batchSize {
		end := start + s.batchSize
		if end > nrows {
			end = nrows
		}
		if err := s.insertBatch(ctx, conn, sql, table, types, batch, start, end); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		batch++
	}

	return tx.Commit(ctx)
}

// insertBatch prepares a statement, binds every column for the row slice
// [start, end) and executes it. The scratch buffers stay alive until the
// execute call returns because binding is by reference.
func (s *Session) insertBatch(ctx context.Context, conn Conn, sql string, table *Table, types []CanonicalType, batch, start, end int) error {
	stmt, err := conn.Prepare(ctx, sql)
	if err != nil {
		return err
	}
	defer stmt.Close()

	size := end - start
	scratch := newBatchScratch(len(table.Columns))

	for col := range table.Columns {
		c := &table.Columns[col]
		var err error
		switch types[col] {
		case Integer:
			err = s.bindInts(stmt, c, col, scratch, start, size)
		case Logical:
			err = s.bindBools(stmt, c, col, scratch, start, size)
		case Double:
			err = s.bindDoubles(stmt, c, col, scratch, start, size)
		case String:
			err = s.bindStrings(stmt, c, col, scratch, start, size)
		case Date:
			err = s.bindTimes(stmt, c, col, scratch, start, size, UnitDays)
		case DateTime:
			err = s.bindTimes(stmt, c, col, scratch, start, size, UnitSeconds)
		case Raw:
			err = s.bindRaw(stmt, c, col, scratch, start, size)
		}
		if err != nil {
			return &BindError{Column: c.Name, Batch: batch, Err: err}
		}
	}

	return stmt.Execute(ctx, size)
}

// bindInts binds the raw slice directly when no mask is attached; absent
// values are the in-band sentinel the driver understands. A masked column
// is folded into a scratch copy so the source is never mutated.
func (s *Session) bindInts(stmt Statement, c *Column, col int, scratch *batchScratch, start, size int) error {
	values := c.Ints[start : start+size]
	if c.Nulls != nil {
		scratch.ints[col] = make([]int32, size)
		for i := 0; i < size; i++ {
			if c.Nulls[start+i] {
				scratch.ints[col][i] = NullInt32
			} else {
				scratch.ints[col][i] = values[i]
			}
		}
		values = scratch.ints[col]
	}
	return stmt.BindInt32s(col, values, NullInt32)
}

// bindBools encodes logicals as 0/1 integers with the integer sentinel.
func (s *Session) bindBools(stmt Statement, c *Column, col int, scratch *batchScratch, start, size int) error {
	scratch.ints[col] = make([]int32, size)
	for i := 0; i < size; i++ {
		if c.IsNull(start + i) {
			scratch.ints[col][i] = NullInt32
		} else if c.Bools[start+i] {
			scratch.ints[col][i] = 1
		}
	}
	return stmt.BindInt32s(col, scratch.ints[col], NullInt32)
}

// bindDoubles cannot use a sentinel (NaN != NaN), so it builds an explicit
// null mask in parallel and binds the raw slice alongside it.
func (s *Session) bindDoubles(stmt Statement, c *Column, col int, scratch *batchScratch, start, size int) error {
	scratch.nulls[col] = newNullMask(size)
	for i := 0; i < size; i++ {
		if c.IsNull(start + i) {
			scratch.nulls[col][i] = true
		}
	}
	return stmt.BindFloat64s(col, c.Floats[start:start+size], scratch.nulls[col])
}

// bindStrings transcodes every row to the wire encoding and pushes it
// into a per-column string buffer plus a parallel null mask.
func (s *Session) bindStrings(stmt Statement, c *Column, col int, scratch *batchScratch, start, size int) error {
	scratch.strings[col] = make([]string, 0, size)
	scratch.nulls[col] = newNullMask(size)
	for i := 0; i < size; i++ {
		if c.IsNull(start + i) {
			scratch.nulls[col][i] = true
			scratch.strings[col] = append(scratch.strings[col], "")
			continue
		}
		v, err := s.transcoder.Encode(c.Strings[start+i])
		if err != nil {
			return err
		}
		scratch.strings[col] = append(scratch.strings[col], v)
	}
	return stmt.BindStrings(col, scratch.strings[col], scratch.nulls[col])
}

// bindTimes converts the numeric encoding through the timestamp codec
// into calendar fields. Date columns hold whole days since the epoch and
// are scaled to seconds by the codec before breakdown.
func (s *Session) bindTimes(stmt Statement, c *Column, col int, scratch *batchScratch, start, size int, unit TimeUnit) error {
	scratch.times[col] = make([]Timestamp, 0, size)
	scratch.nulls[col] = newNullMask(size)
	for i := 0; i < size; i++ {
		var ts Timestamp
		if c.IsNull(start + i) {
			scratch.nulls[col][i] = true
		} else {
			ts = s.codec.ToCalendar(c.Floats[start+i], unit)
		}
		scratch.times[col] = append(scratch.times[col], ts)
	}
	return stmt.BindTimestamps(col, scratch.times[col], scratch.nulls[col])
}

// bindRaw binds the blob slice with an explicit null mask.
func (s *Session) bindRaw(stmt Statement, c *Column, col int, scratch *batchScratch, start, size int) error {
	scratch.nulls[col] = newNullMask(size)
	for i := 0; i < size; i++ {
		if c.IsNull(start + i) {
			scratch.nulls[col][i] = true
		}
	}
	return stmt.BindBytes(col, c.Bytes[start:start+size], scratch.nulls[col])
}
