package source

import (
	"github.com/kiriyama-dx/hcpmix/internal/dates"
	"github.com/kiriyama-dx/hcpmix/internal/model"
)

// Predicate is one exact-match condition over a raw column. Field names
// are source-specific config data, never engine code.
type Predicate struct {
	Field string
	Value string
}

// FilterConfig carries one source's row predicates and its retention
// window. Read-only for mappers and the pipeline.
type FilterConfig struct {
	Predicates []Predicate
	Window     dates.Window
}

// ApplyPredicates returns the rows matching every predicate, in input
// order. A predicate naming a column the table does not carry is a
// MappingError: the export schema changed, which is not the same thing
// as no rows matching.
func ApplyPredicates(src string, tbl model.Table, preds []Predicate) ([]model.Raw, error) {
	for _, p := range preds {
		if !tbl.HasColumn(p.Field) {
			return nil, &MappingError{Source: src, Column: p.Field}
		}
	}
	if len(preds) == 0 {
		return tbl.Rows, nil
	}

	kept := make([]model.Raw, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		match := true
		for _, p := range preds {
			if v, _ := row.Field(p.Field); v != p.Value {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, row)
		}
	}
	return kept, nil
}
