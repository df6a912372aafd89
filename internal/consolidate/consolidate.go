// Package consolidate merges per-source datasets into the unified dataset.
package consolidate

import (
	"fmt"

	"github.com/kiriyama-dx/hcpmix/internal/model"
)

// IncompleteError reports a source missing from the consolidation input.
type IncompleteError struct {
	Source string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("consolidate: missing dataset for source %q", e.Source)
}

// Concat concatenates the named datasets in the given order. Every name in
// order must be present in byName; an empty dataset is valid, an absent one
// is not. Rows keep their per-source order, sources keep the given order.
func Concat(byName map[string]model.Dataset, order []string) (model.Dataset, error) {
	var total int
	for _, name := range order {
		ds, ok := byName[name]
		if !ok {
			return nil, &IncompleteError{Source: name}
		}
		total += len(ds)
	}

	unified := make(model.Dataset, 0, total)
	for _, name := range order {
		unified = append(unified, byName[name]...)
	}
	return unified, nil
}
