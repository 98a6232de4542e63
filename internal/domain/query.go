package domain

// Shape is the expected output shape of a catalog query.
type Shape int

const (
	// ShapeScalar is a single row with a single value.
	ShapeScalar Shape = iota
	// ShapeRow is a single row with several columns.
	ShapeRow
	// ShapeTable is zero or more rows.
	ShapeTable
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeRow:
		return "row"
	case ShapeTable:
		return "table"
	default:
		return "unknown"
	}
}

// QueryDefinition is a named, parameterless aggregate query.
// Definitions are built once from the static catalog and never mutated.
type QueryDefinition struct {
	Name  string
	Title string
	SQL   string
	Shape Shape
}
