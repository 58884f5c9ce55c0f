package colbind_test

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/colbind/colbind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arrowTestTable() *colbind.Table {
	return colbind.NewTable(
		colbind.NewIntColumn("id", []int32{1, colbind.NullInt32, 3}, nil),
		colbind.NewDoubleColumn("score", []float64{1.5, math.NaN(), 3.5}, nil),
		colbind.NewStringColumn("name", []string{"a", "", "c"}, colbind.NullMask{false, true, false}),
		colbind.NewDateColumn("day", []float64{10957, 10958, math.NaN()}, nil),
		colbind.NewDateTimeColumn("at", []float64{1000000.25, math.NaN(), 1000002.5}, nil),
		colbind.NewRawColumn("blob", [][]byte{{0x01}, nil, {0x03}}, nil),
		colbind.NewBoolColumn("flag", []bool{true, false, false}, colbind.NullMask{false, false, true}),
	)
}

func TestSchema(t *testing.T) {
	t.Parallel()

	schema, err := colbind.Schema(arrowTestTable())
	require.NoError(t, err)
	require.Equal(t, 7, schema.NumFields())

	assert.Equal(t, arrow.PrimitiveTypes.Int32, schema.Field(0).Type)
	assert.Equal(t, arrow.PrimitiveTypes.Float64, schema.Field(1).Type)
	assert.Equal(t, arrow.BinaryTypes.String, schema.Field(2).Type)
	assert.Equal(t, arrow.PrimitiveTypes.Date32, schema.Field(3).Type)
	assert.Equal(t, arrow.TIMESTAMP, schema.Field(4).Type.ID())
	assert.Equal(t, arrow.BinaryTypes.Binary, schema.Field(5).Type)
	assert.Equal(t, arrow.FixedWidthTypes.Boolean, schema.Field(6).Type)

	// Semantic tags ride along as field metadata.
	v, ok := schema.Field(3).Metadata.GetValue(colbind.TypeMetadataKey)
	require.True(t, ok)
	assert.Equal(t, "date", v)
	v, ok = schema.Field(4).Metadata.GetValue(colbind.TypeMetadataKey)
	require.True(t, ok)
	assert.Equal(t, "datetime", v)
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	src := arrowTestTable()
	rec, err := colbind.RecordFromTable(memory.DefaultAllocator, src)
	require.NoError(t, err)
	defer rec.Release()

	require.Equal(t, int64(3), rec.NumRows())

	got, err := colbind.TableFromRecord(rec)
	require.NoError(t, err)
	require.Equal(t, src.NumRows(), got.NumRows())

	for col := 0; col < src.NumCols(); col++ {
		for row := 0; row < src.NumRows(); row++ {
			assert.Equal(t, src.Columns[col].IsNull(row), got.Columns[col].IsNull(row),
				"null mismatch at row %d col %s", row, src.Columns[col].Name)
		}
	}

	assert.Equal(t, src.Column("id").Ints, got.Column("id").Ints)
	assert.Equal(t, 1.5, got.Column("score").Floats[0])
	assert.Equal(t, "a", got.Column("name").Strings[0])
	assert.Equal(t, float64(10957), got.Column("day").Floats[0])
	assert.InDelta(t, 1000000.25, got.Column("at").Floats[0], 1e-6)
	assert.Equal(t, []byte{0x01}, got.Column("blob").Bytes[0])
	assert.Equal(t, true, got.Column("flag").Bools[0])
	assert.Equal(t, colbind.Date, got.Column("day").Type)
	assert.Equal(t, colbind.DateTime, got.Column("at").Type)
}
