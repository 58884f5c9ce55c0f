package colbind

import (
	"fmt"
	"strings"
)

// Dialect maps canonical type tags to one backend's DDL type names. An
// implementation is selected once at connection setup and passed
// explicitly; nothing here is resolved dynamically per call.
type Dialect interface {
	// Name identifies the backend, e.g. "postgres".
	Name() string

	// DDLType returns the backend's SQL type name for a canonical tag,
	// for use in CREATE TABLE statements.
	DDLType(t CanonicalType) string
}

// PostgresDialect targets PostgreSQL.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) DDLType(t CanonicalType) string {
	switch t {
	case Integer:
		return "integer"
	case Double:
		return "double precision"
	case String:
		return "text"
	case Date:
		return "date"
	case DateTime:
		return "timestamp"
	case Raw:
		return "bytea"
	case Logical:
		return "boolean"
	default:
		return "text"
	}
}

// SQLiteDialect targets SQLite.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) DDLType(t CanonicalType) string {
	switch t {
	case Integer:
		return "integer"
	case Double:
		return "real"
	case String:
		return "text"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	case Raw:
		return "blob"
	case Logical:
		return "boolean"
	default:
		return "text"
	}
}

// SQLServerDialect targets Microsoft SQL Server.
type SQLServerDialect struct{}

func (SQLServerDialect) Name() string { return "sqlserver" }

func (SQLServerDialect) DDLType(t CanonicalType) string {
	switch t {
	case Integer:
		return "int"
	case Double:
		return "float"
	case String:
		return "nvarchar(255)"
	case Date:
		return "date"
	case DateTime:
		return "datetime2"
	case Raw:
		return "varbinary(max)"
	case Logical:
		return "bit"
	default:
		return "nvarchar(255)"
	}
}

// CreateTableSQL renders a CREATE TABLE statement for the table's columns
// using the dialect's type names.
func CreateTableSQL(d Dialect, name string, t *Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", quoteIdent(name))
	for i := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", quoteIdent(t.Columns[i].Name), d.DDLType(t.Columns[i].Type))
	}
	b.WriteString(")")
	return b.String()
}

// InsertSQL renders a parameterized INSERT statement matching the table's
// column order, with ?-style placeholders.
func InsertSQL(name string, t *Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (", quoteIdent(name))
	for i := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(t.Columns[i].Name))
	}
	b.WriteString(") VALUES (")
	for i := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
	}
	b.WriteString(")")
	return b.String()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
