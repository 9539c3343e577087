// Package schema describes the tables and columns available to the
// translation pipeline. A Descriptor is assembled from the live database
// catalog when possible and from a fixed built-in fallback otherwise, so the
// pipeline always has some schema context to ground the language model.
package schema

// Column describes one column of a user table.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Table holds a table's columns in declaration order.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Descriptor lists tables in catalog enumeration order. Table names are
// unique within a descriptor.
type Descriptor []Table

// Source records where a descriptor came from, so callers can observe when
// the hardcoded fallback silently activated.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Result pairs a descriptor with its provenance.
type Result struct {
	Descriptor Descriptor
	Source     Source
}

// FallbackTable is the table the built-in descriptor describes. The parser's
// fallback statement samples it.
const FallbackTable = "cars"

// Fallback returns the built-in descriptor for the cars table. It is used
// whenever the live catalog is unreachable and is identical on every call.
func Fallback() Descriptor {
	return Descriptor{
		{
			Name: FallbackTable,
			Columns: []Column{
				{Name: "id", Type: "integer", Nullable: false},
				{Name: "model", Type: "varchar(50)", Nullable: false},
				{Name: "mpg", Type: "numeric(5,1)", Nullable: true},
				{Name: "cyl", Type: "integer", Nullable: true},
				{Name: "disp", Type: "numeric(6,1)", Nullable: true},
				{Name: "hp", Type: "integer", Nullable: true},
				{Name: "drat", Type: "numeric(4,2)", Nullable: true},
				{Name: "wt", Type: "numeric(5,3)", Nullable: true},
				{Name: "qsec", Type: "numeric(5,2)", Nullable: true},
				{Name: "vs", Type: "integer", Nullable: true},
				{Name: "am", Type: "integer", Nullable: true},
				{Name: "gear", Type: "integer", Nullable: true},
				{Name: "carb", Type: "integer", Nullable: true},
			},
		},
	}
}
