package colbind

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// CanonicalType is the fixed internal vocabulary that drives every
// encoding and decoding decision, independent of the in-memory source
// representation and of the wire protocol's declared types. Every column
// is classified into exactly one tag before an operation begins and the
// tag never changes mid-operation.
type CanonicalType int

const (
	Integer CanonicalType = iota
	Double
	String
	Date
	DateTime
	Raw
	Logical
)

func (t CanonicalType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Double:
		return "double"
	case String:
		return "string"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	case Raw:
		return "raw"
	case Logical:
		return "logical"
	default:
		return fmt.Sprintf("CanonicalType(%d)", int(t))
	}
}

// WireType is the type code a SQL client protocol reports for a result
// column. The values follow the ODBC SQL type code assignments.
type WireType int16

const (
	WireTypeChar          WireType = 1
	WireTypeNumeric       WireType = 2
	WireTypeDecimal       WireType = 3
	WireTypeInteger       WireType = 4
	WireTypeSmallint      WireType = 5
	WireTypeFloat         WireType = 6
	WireTypeReal          WireType = 7
	WireTypeDouble        WireType = 8
	WireTypeDate          WireType = 9
	WireTypeTime          WireType = 10
	WireTypeTimestamp     WireType = 11
	WireTypeVarchar       WireType = 12
	WireTypeTypeDate      WireType = 91
	WireTypeTypeTime      WireType = 92
	WireTypeTypeTimestamp WireType = 93
	WireTypeLongVarchar   WireType = -1
	WireTypeBinary        WireType = -2
	WireTypeVarBinary     WireType = -3
	WireTypeLongVarBinary WireType = -4
	WireTypeBigint        WireType = -5
	WireTypeTinyint       WireType = -6
	WireTypeBit           WireType = -7
	WireTypeWChar         WireType = -8
	WireTypeWVarchar      WireType = -9
	WireTypeWLongVarchar  WireType = -10
)

// ColumnMeta describes one result column as reported by the client
// library: its name and the wire type code.
type ColumnMeta struct {
	Name string
	Type WireType
}

// Warning is a non-fatal condition surfaced alongside a still-usable
// result, e.g. an unrecognized wire type that fell back to text.
type Warning struct {
	Column  string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("column %s: %s", w.Column, w.Message)
}

// ClassifyColumns determines the canonical type of every table column up
// front, before any binding or execution. An unsupported or inconsistent
// column is fatal: nothing is partially written.
func ClassifyColumns(t *Table) ([]CanonicalType, error) {
	nrows := t.NumRows()
	types := make([]CanonicalType, len(t.Columns))
	for i := range t.Columns {
		col := &t.Columns[i]
		if err := col.check(nrows); err != nil {
			return nil, &ClassifyError{Column: col.Name, Err: err}
		}
		types[i] = col.Type
	}
	return types, nil
}

// ClassifyWireColumns maps every result column's wire type code to a
// canonical tag. An unrecognized code falls back to String so no data is
// lost, and emits exactly one warning for the column.
func ClassifyWireColumns(metas []ColumnMeta, logger logrus.FieldLogger) ([]CanonicalType, []Warning) {
	types := make([]CanonicalType, len(metas))
	var warnings []Warning
	for i, meta := range metas {
		switch meta.Type {
		case WireTypeBit, WireTypeTinyint, WireTypeSmallint, WireTypeInteger, WireTypeBigint:
			types[i] = Integer
		case WireTypeDouble, WireTypeFloat, WireTypeDecimal, WireTypeReal, WireTypeNumeric:
			types[i] = Double
		case WireTypeDate, WireTypeTypeDate:
			types[i] = Date
		case WireTypeTime, WireTypeTimestamp, WireTypeTypeTimestamp, WireTypeTypeTime:
			types[i] = DateTime
		case WireTypeChar, WireTypeWChar, WireTypeVarchar, WireTypeWVarchar, WireTypeLongVarchar, WireTypeWLongVarchar:
			types[i] = String
		case WireTypeBinary, WireTypeVarBinary, WireTypeLongVarBinary:
			types[i] = Raw
		default:
			types[i] = String
			w := Warning{
				Column:  meta.Name,
				Message: fmt.Sprintf("unknown wire type code %d, falling back to string", meta.Type),
			}
			warnings = append(warnings, w)
			if logger != nil {
				logger.WithField("column", meta.Name).Warnf("unknown wire type code %d, falling back to string", meta.Type)
			}
		}
	}
	return types, warnings
}
