package dataset

import "strings"

const (
	// IDColumn carries the record identifier on every row.
	IDColumn     = "id"
	InputSuffix  = " (input)"
	OutputSuffix = " (output)"
)

// InputColumn returns the row column name for an input attribute.
func InputColumn(attr string) string { return attr + InputSuffix }

// OutputColumn returns the row column name for an output attribute.
func OutputColumn(attr string) string { return attr + OutputSuffix }

// IsInputColumn reports whether col was derived from an input attribute.
func IsInputColumn(col string) bool { return strings.HasSuffix(col, InputSuffix) }

// IsOutputColumn reports whether col was derived from an output attribute.
func IsOutputColumn(col string) bool { return strings.HasSuffix(col, OutputSuffix) }

// Row is the flat form of one Record. Rows are never padded: a column the
// record did not carry is simply absent.
type Row map[string]any

// ID returns the identifier of the record the row came from.
func (r Row) ID() string {
	s, _ := r[IDColumn].(string)
	return s
}

// Get returns the raw value of col and whether the row has it.
func (r Row) Get(col string) (any, bool) {
	v, ok := r[col]
	return v, ok
}

// Float returns the numeric value of col. Absent and non-numeric cells
// report false.
func (r Row) Float(col string) (float64, bool) {
	v, ok := r[col]
	if !ok {
		return 0, false
	}
	return Float(v)
}

// Table is the reshaped dataset shared read-only by every view.
type Table struct {
	Name string
	Rows []Row
	// Columns lists distinct column names in first-seen order.
	Columns []string
}

// Reshape flattens ds into a row table, one row per record in source order.
func Reshape(ds *Dataset) *Table {
	t := &Table{}
	if ds == nil {
		return t
	}
	t.Name = ds.Name
	t.Rows = make([]Row, 0, len(ds.Records))
	seen := map[string]bool{}
	note := func(col string) {
		if !seen[col] {
			seen[col] = true
			t.Columns = append(t.Columns, col)
		}
	}
	for _, rec := range ds.Records {
		row := make(Row, 1+len(rec.Inputs)+len(rec.Outputs))
		row[IDColumn] = rec.ID
		note(IDColumn)
		for _, a := range rec.Inputs {
			col := InputColumn(a.Name)
			row[col] = a.Value
			note(col)
		}
		for _, a := range rec.Outputs {
			col := OutputColumn(a.Name)
			row[col] = a.Value
			note(col)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether any row carries col.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// InputColumns returns the columns derived from input attributes.
func (t *Table) InputColumns() []string { return t.columnsWhere(IsInputColumn) }

// OutputColumns returns the columns derived from output attributes.
func (t *Table) OutputColumns() []string { return t.columnsWhere(IsOutputColumn) }

func (t *Table) columnsWhere(keep func(string) bool) []string {
	var out []string
	for _, c := range t.Columns {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
