package call

import (
	"log/slog"

	"github.com/kiriyama-dx/hcpmix/internal/dates"
	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/source"
)

// Channel is the canonical label for every call engagement. The raw
// record type (face-to-face vs. virtual) is informational and does not
// alter the canonical shape.
const Channel = "CALL"

// Raw column names in the call export.
const (
	colHCP    = "child_account_identifier_vod__c"
	colDate   = "call_date_vod__c"
	colID     = "call2_vod_id"
	colAction = "Action"
)

func init() {
	source.Register(source.Call, Mapper{})
}

// Mapper normalizes the call export: the action verb passes through
// verbatim under the fixed CALL channel.
type Mapper struct{}

func (Mapper) Map(tbl model.Table, cfg source.FilterConfig) (model.Dataset, error) {
	if err := source.RequireColumns(source.Call, tbl, colHCP, colDate, colID, colAction); err != nil {
		return nil, err
	}
	rows, err := source.ApplyPredicates(source.Call, tbl, cfg.Predicates)
	if err != nil {
		return nil, err
	}

	ds := make(model.Dataset, 0, len(rows))
	for _, row := range rows {
		hcp, _ := row.Field(colHCP)
		id, _ := row.Field(colID)
		action, _ := row.Field(colAction)
		if hcp == "" || id == "" || action == "" {
			slog.Warn("dropping row with blank field", "source", source.Call, "hcp_id", hcp, "id", id)
			continue
		}
		raw, _ := row.Field(colDate)
		d, err := dates.Parse(raw)
		if err != nil {
			slog.Warn("dropping row with unparseable date", "source", source.Call, "value", raw)
			continue
		}
		ds = append(ds, source.NewEngagement(hcp, d, id, Channel, action))
	}
	return ds, nil
}
