package colbind

import (
	"context"
	"math"
)

// Fetch pulls rows from cur into typed columnar buffers. maxRows < 0
// means unbounded: the buffer starts at the session's initial fetch
// capacity and doubles whenever it fills. A bounded fetch stops after
// exactly maxRows rows. The returned table is trimmed to the exact row
// count produced and carries canonical type tags plus any non-fatal
// warnings.
func (s *Session) Fetch(ctx context.Context, cur Cursor, maxRows int) (*Table, error) {
	metas := cur.Columns()
	types, warnings := ClassifyWireColumns(metas, s.logger)

	capacity := maxRows
	if maxRows < 0 {
		capacity = s.fetchCap
	}
	buf := newResultBuffer(metas, types, capacity)

	// Extraction problems are non-fatal and reported once per column.
	warned := make([]bool, len(metas))
	warn := func(col int, msg string) {
		if warned[col] {
			return
		}
		warned[col] = true
		warnings = append(warnings, Warning{Column: metas[col].Name, Message: msg})
		if s.logger != nil {
			s.logger.WithField("column", metas[col].Name).Warn(msg)
		}
	}

	for cur.Next() {
		// Cancellation means not issuing the next row fetch; an in-flight
		// fetch is never interrupted.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if buf.row >= buf.cap {
			if maxRows < 0 {
				buf.grow()
			} else {
				break
			}
		}
		for col := range types {
			s.extractCell(cur, buf, types[col], col, warn)
		}
		buf.row++
	}
	if err := cur.Err(); err != nil {
		return nil, &FetchError{Operation: "row_iteration", Err: err}
	}

	table := buf.trim()
	table.Warnings = warnings
	return table, nil
}

// extractCell materializes the current row's value in col per its
// canonical type. Failures leave the cell at its zero value and emit one
// warning per affected column rather than aborting the whole fetch.
func (s *Session) extractCell(cur Cursor, buf *resultBuffer, typ CanonicalType, col int, warn func(int, string)) {
	c := &buf.cols[col]
	row := buf.row
	switch typ {
	case Integer:
		if cur.IsNull(col) {
			c.Ints[row] = NullInt32
			return
		}
		v, err := cur.Int32(col)
		if err != nil {
			warn(col, "failed to extract integer value: "+err.Error())
			return
		}
		c.Ints[row] = v
	case Double:
		if cur.IsNull(col) {
			c.Floats[row] = math.NaN()
			return
		}
		v, err := cur.Float64(col)
		if err != nil {
			warn(col, "failed to extract double value: "+err.Error())
			return
		}
		c.Floats[row] = v
	case Date, DateTime:
		if cur.IsNull(col) {
			c.Floats[row] = math.NaN()
			return
		}
		ts, err := cur.Timestamp(col)
		if err != nil {
			warn(col, "failed to extract timestamp value: "+err.Error())
			return
		}
		v := s.codec.FromCalendar(ts)
		if typ == Date {
			v /= SecondsPerDay
		}
		c.Floats[row] = v
	case String:
		// Some wire implementations only report nullity for variable
		// length text reliably after the value has been materialized
		// once, so extract first and re-check before committing.
		if cur.IsNull(col) {
			c.Nulls[row] = true
			return
		}
		v, err := cur.String(col)
		if err != nil {
			warn(col, "failed to extract string value: "+err.Error())
			return
		}
		if cur.IsNull(col) {
			c.Nulls[row] = true
			return
		}
		v, err = s.transcoder.Decode(v)
		if err != nil {
			warn(col, "failed to transcode string value: "+err.Error())
			return
		}
		c.Strings[row] = v
	case Raw:
		if cur.IsNull(col) {
			c.Bytes[row] = nil
			return
		}
		v, err := cur.Bytes(col)
		if err != nil {
			warn(col, "failed to extract binary value: "+err.Error())
			return
		}
		c.Bytes[row] = v
	default:
		warn(col, "unsupported column type "+typ.String())
	}
}
