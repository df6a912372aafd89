package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/kiriyama-dx/hcpmix/internal/model"
)

// EncodeCSV writes a dataset in the canonical six-column layout: header
// row first, then one record per engagement in dataset order. The same
// dataset always encodes to the same bytes.
func EncodeCSV(w io.Writer, ds model.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Columns); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	for _, e := range ds {
		if err := cw.Write(e.Record()); err != nil {
			return fmt.Errorf("encode csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}
