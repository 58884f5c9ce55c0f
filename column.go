package colbind

import (
	"fmt"
	"math"
)

// NullInt32 is the reserved in-band sentinel meaning "value absent" in
// integer columns. Doubles cannot use a sentinel on the write path (NaN
// != NaN), so they carry an explicit mask instead.
const NullInt32 = math.MinInt32

// NullMask marks absent values out-of-band, one entry per row of the
// current slice. A nil mask means no nulls are possible.
type NullMask []bool

func newNullMask(n int) NullMask {
	return make(NullMask, n)
}

// Column is a named, homogeneously-typed sequence of values. Exactly one
// of the value slices is populated, selected by Type. Nulls holds the
// optional explicit mask; integer and float columns may additionally use
// the NullInt32 / NaN in-band representations.
type Column struct {
	Name string
	Type CanonicalType

	Ints    []int32   // Integer
	Floats  []float64 // Double, Date (days), DateTime (epoch seconds)
	Strings []string  // String
	Bytes   [][]byte  // Raw
	Bools   []bool    // Logical

	Nulls NullMask
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	switch c.Type {
	case Integer:
		return len(c.Ints)
	case Double, Date, DateTime:
		return len(c.Floats)
	case String:
		return len(c.Strings)
	case Raw:
		return len(c.Bytes)
	case Logical:
		return len(c.Bools)
	default:
		return 0
	}
}

// IsNull reports whether the value at row i is absent, consulting the
// explicit mask first and the type's in-band representation second.
func (c *Column) IsNull(i int) bool {
	if c.Nulls != nil && c.Nulls[i] {
		return true
	}
	switch c.Type {
	case Integer:
		return c.Ints[i] == NullInt32
	case Double, Date, DateTime:
		return math.IsNaN(c.Floats[i])
	case Raw:
		return c.Bytes[i] == nil
	default:
		return false
	}
}

// check validates that the column's declared type matches its populated
// storage and that its length and mask agree with the table's row count.
func (c *Column) check(nrows int) error {
	switch c.Type {
	case Integer, Double, String, Date, DateTime, Raw, Logical:
	default:
		return fmt.Errorf("unsupported column type %s", c.Type)
	}
	if got := c.Len(); got != nrows {
		return fmt.Errorf("column has %d values, table has %d rows", got, nrows)
	}
	if c.Nulls != nil && len(c.Nulls) != nrows {
		return fmt.Errorf("null mask has %d entries, table has %d rows", len(c.Nulls), nrows)
	}
	return nil
}

// NewIntColumn creates an Integer column. Absent values may be marked via
// the mask or by storing NullInt32 directly.
func NewIntColumn(name string, values []int32, nulls NullMask) Column {
	return Column{Name: name, Type: Integer, Ints: values, Nulls: nulls}
}

// NewDoubleColumn creates a Double column. The mask is required to mark
// absent values on the write path.
func NewDoubleColumn(name string, values []float64, nulls NullMask) Column {
	return Column{Name: name, Type: Double, Floats: values, Nulls: nulls}
}

// NewStringColumn creates a String column.
func NewStringColumn(name string, values []string, nulls NullMask) Column {
	return Column{Name: name, Type: String, Strings: values, Nulls: nulls}
}

// NewDateColumn creates a Date column. Values are whole days since the
// Unix epoch; the semantic marker distinguishes it from a plain Double.
func NewDateColumn(name string, days []float64, nulls NullMask) Column {
	return Column{Name: name, Type: Date, Floats: days, Nulls: nulls}
}

// NewDateTimeColumn creates a DateTime column. Values are fractional
// seconds since the Unix epoch.
func NewDateTimeColumn(name string, seconds []float64, nulls NullMask) Column {
	return Column{Name: name, Type: DateTime, Floats: seconds, Nulls: nulls}
}

// NewRawColumn creates a Raw (binary blob) column. A nil element means
// the value is absent.
func NewRawColumn(name string, values [][]byte, nulls NullMask) Column {
	return Column{Name: name, Type: Raw, Bytes: values, Nulls: nulls}
}

// NewBoolColumn creates a Logical column.
func NewBoolColumn(name string, values []bool, nulls NullMask) Column {
	return Column{Name: name, Type: Logical, Bools: values, Nulls: nulls}
}

// Table is an ordered collection of equal-length columns. On the write
// path it is the exclusively-owned source of an insert; on the read path
// it is the materialized result, with Warnings carrying any non-fatal
// conditions encountered while producing it.
type Table struct {
	Columns  []Column
	Warnings []Warning
}

// NewTable creates a table from columns, which must all have equal length.
func NewTable(columns ...Column) *Table {
	return &Table{Columns: columns}
}

// NumRows returns the table's row count.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// Column returns the first column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// resultBuffer is the growable form of a Table used during fetch. The
// logical row count only increases; capacity only doubles, and every
// column is trimmed to the exact row count once at the end.
type resultBuffer struct {
	types []CanonicalType
	cols  []Column
	cap   int
	row   int
}

func newResultBuffer(metas []ColumnMeta, types []CanonicalType, capacity int) *resultBuffer {
	cols := make([]Column, len(metas))
	for i, meta := range metas {
		cols[i] = Column{Name: meta.Name, Type: types[i]}
		allocColumn(&cols[i], capacity)
	}
	return &resultBuffer{types: types, cols: cols, cap: capacity}
}

func allocColumn(c *Column, capacity int) {
	switch c.Type {
	case Integer:
		c.Ints = make([]int32, capacity)
	case Double, Date, DateTime:
		c.Floats = make([]float64, capacity)
	case String:
		c.Strings = make([]string, capacity)
		c.Nulls = newNullMask(capacity)
	case Raw:
		c.Bytes = make([][]byte, capacity)
	case Logical:
		c.Bools = make([]bool, capacity)
		c.Nulls = newNullMask(capacity)
	}
}

// grow doubles capacity, preserving existing values. Slots beyond the
// logical row count are undefined until written.
func (b *resultBuffer) grow() {
	newCap := b.cap * 2
	if newCap == 0 {
		newCap = 1
	}
	for i := range b.cols {
		c := &b.cols[i]
		switch c.Type {
		case Integer:
			c.Ints = append(c.Ints, make([]int32, newCap-b.cap)...)
		case Double, Date, DateTime:
			c.Floats = append(c.Floats, make([]float64, newCap-b.cap)...)
		case String:
			c.Strings = append(c.Strings, make([]string, newCap-b.cap)...)
		case Raw:
			c.Bytes = append(c.Bytes, make([][]byte, newCap-b.cap)...)
		case Logical:
			c.Bools = append(c.Bools, make([]bool, newCap-b.cap)...)
		}
		if c.Nulls != nil {
			c.Nulls = append(c.Nulls, make(NullMask, newCap-b.cap)...)
		}
	}
	b.cap = newCap
}

// trim truncates every column to the logical row count and returns the
// finished table, carrying the canonical type tags as column metadata.
func (b *resultBuffer) trim() *Table {
	for i := range b.cols {
		c := &b.cols[i]
		switch c.Type {
		case Integer:
			c.Ints = c.Ints[:b.row]
		case Double, Date, DateTime:
			c.Floats = c.Floats[:b.row]
		case String:
			c.Strings = c.Strings[:b.row]
		case Raw:
			c.Bytes = c.Bytes[:b.row]
		case Logical:
			c.Bools = c.Bools[:b.row]
		}
		if c.Nulls != nil {
			c.Nulls = c.Nulls[:b.row]
		}
	}
	return &Table{Columns: b.cols}
}
