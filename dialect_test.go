package colbind_test

import (
	"testing"

	"github.com/colbind/colbind"
	"github.com/stretchr/testify/assert"
)

func TestDialect_DDLTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dialect colbind.Dialect
		typ     colbind.CanonicalType
		want    string
	}{
		{colbind.PostgresDialect{}, colbind.Integer, "integer"},
		{colbind.PostgresDialect{}, colbind.Double, "double precision"},
		{colbind.PostgresDialect{}, colbind.DateTime, "timestamp"},
		{colbind.PostgresDialect{}, colbind.Raw, "bytea"},
		{colbind.SQLiteDialect{}, colbind.Double, "real"},
		{colbind.SQLiteDialect{}, colbind.Raw, "blob"},
		{colbind.SQLServerDialect{}, colbind.String, "nvarchar(255)"},
		{colbind.SQLServerDialect{}, colbind.Logical, "bit"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.dialect.DDLType(tt.typ), "%s %s", tt.dialect.Name(), tt.typ)
	}
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	table := colbind.NewTable(
		colbind.NewIntColumn("id", nil, nil),
		colbind.NewStringColumn("name", nil, nil),
		colbind.NewDateTimeColumn("created", nil, nil),
	)

	got := colbind.CreateTableSQL(colbind.PostgresDialect{}, "people", table)
	assert.Equal(t, `CREATE TABLE "people" ("id" integer, "name" text, "created" timestamp)`, got)
}

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	table := colbind.NewTable(
		colbind.NewIntColumn("id", nil, nil),
		colbind.NewStringColumn("name", nil, nil),
	)

	got := colbind.InsertSQL("people", table)
	assert.Equal(t, `INSERT INTO "people" ("id", "name") VALUES (?, ?)`, got)
}
