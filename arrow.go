package colbind

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// TypeMetadataKey is the Arrow field metadata key carrying the canonical
// type tag, so consumers can tell a Date or DateTime column apart from a
// plain numeric one.
const TypeMetadataKey = "colbind.type"

// arrowType maps a canonical tag to its Arrow representation.
func arrowType(t CanonicalType) (arrow.DataType, error) {
	switch t {
	case Integer:
		return arrow.PrimitiveTypes.Int32, nil
	case Double:
		return arrow.PrimitiveTypes.Float64, nil
	case String:
		return arrow.BinaryTypes.String, nil
	case Date:
		return arrow.PrimitiveTypes.Date32, nil
	case DateTime:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
	case Raw:
		return arrow.BinaryTypes.Binary, nil
	case Logical:
		return arrow.FixedWidthTypes.Boolean, nil
	default:
		return nil, fmt.Errorf("unsupported canonical type: %s", t)
	}
}

// Schema creates an Arrow schema for the table, tagging every field with
// its canonical type.
func Schema(t *Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(t.Columns))
	for i := range t.Columns {
		dt, err := arrowType(t.Columns[i].Type)
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{
			Name:     t.Columns[i].Name,
			Type:     dt,
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{TypeMetadataKey}, []string{t.Columns[i].Type.String()}),
		}
	}
	return arrow.NewSchema(fields, nil), nil
}

// RecordFromTable converts a table to an Arrow record. The returned
// record must be released by the caller.
func RecordFromTable(mem memory.Allocator, t *Table) (arrow.Record, error) {
	schema, err := Schema(t)
	if err != nil {
		return nil, err
	}

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	nrows := t.NumRows()
	for i := range t.Columns {
		c := &t.Columns[i]
		fb := builder.Field(i)
		for row := 0; row < nrows; row++ {
			if c.IsNull(row) {
				fb.AppendNull()
				continue
			}
			switch c.Type {
			case Integer:
				fb.(*array.Int32Builder).Append(c.Ints[row])
			case Double:
				fb.(*array.Float64Builder).Append(c.Floats[row])
			case String:
				fb.(*array.StringBuilder).Append(c.Strings[row])
			case Date:
				fb.(*array.Date32Builder).Append(arrow.Date32(int32(c.Floats[row])))
			case DateTime:
				micros := int64(math.Round(c.Floats[row] * 1e6))
				fb.(*array.TimestampBuilder).Append(arrow.Timestamp(micros))
			case Raw:
				fb.(*array.BinaryBuilder).Append(c.Bytes[row])
			case Logical:
				fb.(*array.BooleanBuilder).Append(c.Bools[row])
			}
		}
	}

	return builder.NewRecord(), nil
}

// TableFromRecord converts an Arrow record back to a table, recovering
// Date and DateTime numeric encodings from the Arrow temporal types.
func TableFromRecord(rec arrow.Record) (*Table, error) {
	nrows := int(rec.NumRows())
	cols := make([]Column, rec.NumCols())

	for i := 0; i < int(rec.NumCols()); i++ {
		field := rec.Schema().Field(i)
		arr := rec.Column(i)
		col := Column{Name: field.Name}

		switch data := arr.(type) {
		case *array.Int32:
			col.Type = Integer
			col.Ints = make([]int32, nrows)
			for row := 0; row < nrows; row++ {
				if data.IsNull(row) {
					col.Ints[row] = NullInt32
				} else {
					col.Ints[row] = data.Value(row)
				}
			}
		case *array.Float64:
			col.Type = Double
			col.Floats = make([]float64, nrows)
			for row := 0; row < nrows; row++ {
				if data.IsNull(row) {
					col.Floats[row] = math.NaN()
				} else {
					col.Floats[row] = data.Value(row)
				}
			}
		case *array.String:
			col.Type = String
			col.Strings = make([]string, nrows)
			col.Nulls = newNullMask(nrows)
			for row := 0; row < nrows; row++ {
				if data.IsNull(row) {
					col.Nulls[row] = true
				} else {
					col.Strings[row] = data.Value(row)
				}
			}
		case *array.Date32:
			col.Type = Date
			col.Floats = make([]float64, nrows)
			for row := 0; row < nrows; row++ {
				if data.IsNull(row) {
					col.Floats[row] = math.NaN()
				} else {
					col.Floats[row] = float64(data.Value(row))
				}
			}
		case *array.Timestamp:
			col.Type = DateTime
			col.Floats = make([]float64, nrows)
			perSecond := 1e6
			if tt, ok := field.Type.(*arrow.TimestampType); ok {
				switch tt.Unit {
				case arrow.Second:
					perSecond = 1
				case arrow.Millisecond:
					perSecond = 1e3
				case arrow.Microsecond:
					perSecond = 1e6
				case arrow.Nanosecond:
					perSecond = 1e9
				}
			}
			for row := 0; row < nrows; row++ {
				if data.IsNull(row) {
					col.Floats[row] = math.NaN()
				} else {
					col.Floats[row] = float64(data.Value(row)) / perSecond
				}
			}
		case *array.Binary:
			col.Type = Raw
			col.Bytes = make([][]byte, nrows)
			for row := 0; row < nrows; row++ {
				if !data.IsNull(row) {
					col.Bytes[row] = data.Value(row)
				}
			}
		case *array.Boolean:
			col.Type = Logical
			col.Bools = make([]bool, nrows)
			col.Nulls = newNullMask(nrows)
			for row := 0; row < nrows; row++ {
				if data.IsNull(row) {
					col.Nulls[row] = true
				} else {
					col.Bools[row] = data.Value(row)
				}
			}
		default:
			return nil, fmt.Errorf("unsupported Arrow type: %s", field.Type)
		}

		cols[i] = col
	}

	return &Table{Columns: cols}, nil
}
