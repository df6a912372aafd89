package reach

import (
	"log/slog"
	"sort"

	"github.com/kiriyama-dx/hcpmix/internal/dates"
	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/source"
)

// Channel is the canonical label for every last-mile-reach broadcast,
// regardless of raw content.
const Channel = "LMMR"

// Raw column names in the reach export.
const (
	colHCP    = "customer_id"
	colDate   = "activity_date"
	colID     = "sevc_id"
	colAction = "action"
)

func init() {
	source.Register(source.Reach, Mapper{})
}

// Mapper normalizes the last-mile-reach export. Output is stably sorted
// by (HCP, date, id, action); the only source with an ordering contract.
type Mapper struct{}

func (Mapper) Map(tbl model.Table, cfg source.FilterConfig) (model.Dataset, error) {
	if err := source.RequireColumns(source.Reach, tbl, colHCP, colDate, colID, colAction); err != nil {
		return nil, err
	}
	rows, err := source.ApplyPredicates(source.Reach, tbl, cfg.Predicates)
	if err != nil {
		return nil, err
	}

	ds := make(model.Dataset, 0, len(rows))
	for _, row := range rows {
		hcp, _ := row.Field(colHCP)
		id, _ := row.Field(colID)
		action, _ := row.Field(colAction)
		if hcp == "" || id == "" || action == "" {
			slog.Warn("dropping row with blank field", "source", source.Reach, "hcp_id", hcp, "id", id)
			continue
		}
		raw, _ := row.Field(colDate)
		d, err := dates.Parse(raw)
		if err != nil {
			slog.Warn("dropping row with unparseable date", "source", source.Reach, "value", raw)
			continue
		}
		ds = append(ds, source.NewEngagement(hcp, d, id, Channel, action))
	}

	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.HCPID != b.HCPID {
			return a.HCPID < b.HCPID
		}
		if !a.ActivityDate.Equal(b.ActivityDate) {
			return a.ActivityDate.Before(b.ActivityDate)
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Action < b.Action
	})
	return ds, nil
}
