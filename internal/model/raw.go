package model

// Raw is one source row as read from a tabular export. Its field set is
// source-specific; mappers and filter predicates reach into it only
// through Field.
type Raw map[string]string

// Field returns the value of the named column and whether the column
// exists. A present-but-empty value reports true.
func (r Raw) Field(name string) (string, bool) {
	v, ok := r[name]
	return v, ok
}

// Table is the in-memory snapshot of one source export: the header row
// plus every data row, in file order.
type Table struct {
	Columns []string
	Rows    []Raw
}

// HasColumn reports whether the header carries the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
