package events

import (
	"log/slog"

	"github.com/kiriyama-dx/hcpmix/internal/dates"
	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/source"
)

// Raw column names in the conference-events export.
const (
	colHCP     = "customer_id"
	colID      = "conference_id"
	colDate    = "ACTVY_STRT_DT"
	colChannel = "channel"
	colAction  = "action"
)

func init() {
	source.Register(source.Events, Mapper{})
}

// Mapper normalizes the conference-events export. Channel and action are
// already close to canonical and copy through verbatim; rows without a
// channel are vendor noise and drop row-level.
type Mapper struct{}

func (Mapper) Map(tbl model.Table, cfg source.FilterConfig) (model.Dataset, error) {
	if err := source.RequireColumns(source.Events, tbl, colHCP, colID, colDate, colChannel, colAction); err != nil {
		return nil, err
	}
	rows, err := source.ApplyPredicates(source.Events, tbl, cfg.Predicates)
	if err != nil {
		return nil, err
	}

	ds := make(model.Dataset, 0, len(rows))
	for _, row := range rows {
		channel, _ := row.Field(colChannel)
		if channel == "" {
			slog.Debug("dropping row without channel", "source", source.Events)
			continue
		}
		hcp, _ := row.Field(colHCP)
		id, _ := row.Field(colID)
		action, _ := row.Field(colAction)
		if hcp == "" || id == "" || action == "" {
			slog.Warn("dropping row with blank field", "source", source.Events, "hcp_id", hcp, "id", id)
			continue
		}
		raw, _ := row.Field(colDate)
		d, err := dates.Parse(raw)
		if err != nil {
			slog.Warn("dropping row with unparseable date", "source", source.Events, "value", raw)
			continue
		}
		ds = append(ds, source.NewEngagement(hcp, d, id, channel, action))
	}
	return ds, nil
}
